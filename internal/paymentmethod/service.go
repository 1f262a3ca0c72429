package paymentmethod

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"
)

var (
	ErrMethodNotFound = apperr.NotFound("Payment method")
	ErrNameRequired   = apperr.Validation("Payment method name is required")
	ErrNameTaken      = apperr.Conflict("A payment method with this name already exists")
	ErrMethodInUse    = apperr.ReferentialIntegrity("Cannot delete payment method. There are memberships associated with this method. Please reassign memberships first.")
)

type Service interface {
	List(ctx context.Context) ([]PaymentMethod, error)
	Get(ctx context.Context, id int) (*PaymentMethod, error)
	Create(ctx context.Context, req CreatePaymentMethodRequest) (*PaymentMethod, error)
	Update(ctx context.Context, id int, req UpdatePaymentMethodRequest) (*PaymentMethod, error)
	Delete(ctx context.Context, id int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{
		repo: repo,
	}
}

func (s *service) List(ctx context.Context) ([]PaymentMethod, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id int) (*PaymentMethod, error) {
	m, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMethodNotFound
	}
	return m, err
}

func (s *service) Create(ctx context.Context, req CreatePaymentMethodRequest) (*PaymentMethod, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	taken, err := s.repo.NameExists(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	m, err := s.repo.Create(ctx, name)
	if db.IsUniqueViolation(err, "") {
		return nil, ErrNameTaken
	}
	return m, err
}

func (s *service) Update(ctx context.Context, id int, req UpdatePaymentMethodRequest) (*PaymentMethod, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	taken, err := s.repo.NameExists(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	m, err := s.repo.Update(ctx, id, name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrMethodNotFound
	case db.IsUniqueViolation(err, ""):
		return nil, ErrNameTaken
	}
	return m, err
}

func (s *service) Delete(ctx context.Context, id int) error {
	inUse, err := s.repo.HasMemberships(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrMethodInUse
	}

	deleted, err := s.repo.Delete(ctx, id)
	if db.IsForeignKeyViolation(err, "") {
		return ErrMethodInUse
	}
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMethodNotFound
	}
	return nil
}
