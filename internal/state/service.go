package state

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"
)

var (
	ErrStateNotFound = apperr.NotFound("State")
	ErrNameRequired  = apperr.Validation("State name is required")
	ErrNameTaken     = apperr.Conflict("A state with this name already exists")
	ErrStateInUse    = apperr.ReferentialIntegrity("Cannot delete state. There are memberships associated with this state. Please reassign memberships first.")
	ErrCanonical     = apperr.Validation("States Vigente, Por vencer and Vencido cannot be renamed or deleted")
)

type Service interface {
	List(ctx context.Context) ([]State, error)
	Get(ctx context.Context, id int) (*State, error)
	Create(ctx context.Context, req CreateStateRequest) (*State, error)
	Update(ctx context.Context, id int, req UpdateStateRequest) (*State, error)
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

func (s *service) List(ctx context.Context) ([]State, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id int) (*State, error) {
	st, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStateNotFound
	}
	return st, err
}

func (s *service) Create(ctx context.Context, req CreateStateRequest) (*State, error) {
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

	st, err := s.repo.Create(ctx, name)
	if db.IsUniqueViolation(err, "") {
		return nil, ErrNameTaken
	}
	return st, err
}

func (s *service) Update(ctx context.Context, id int, req UpdateStateRequest) (*State, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if IsCanonical(current.Name) && name != current.Name {
		return nil, ErrCanonical
	}

	taken, err := s.repo.NameExists(ctx, name, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrNameTaken
	}

	st, err := s.repo.Update(ctx, id, name)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrStateNotFound
	case db.IsUniqueViolation(err, ""):
		return nil, ErrNameTaken
	}
	return st, err
}

func (s *service) Delete(ctx context.Context, id int) error {
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.repo.HasMemberships(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrStateInUse
	}
	if IsCanonical(current.Name) {
		return ErrCanonical
	}

	deleted, err := s.repo.Delete(ctx, id)
	if db.IsForeignKeyViolation(err, "") {
		return ErrStateInUse
	}
	if err != nil {
		return err
	}
	if !deleted {
		return ErrStateNotFound
	}
	return nil
}
