package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/logger"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/membership"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/state"

	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound = apperr.NotFound("User")
	ErrPhoneTaken   = apperr.Conflict("Phone number already exists")
	ErrNameRequired = apperr.Validation("name_user cannot be empty")
	ErrNoFields     = apperr.Validation("No fields to update")
	ErrNoMembership = apperr.Validation("No membership found for user")

	ErrReceiptRequired = apperr.Validation("receipt_number is required")
)

type Service interface {
	List(ctx context.Context) ([]User, error)
	Get(ctx context.Context, id int) (*User, error)
	Create(ctx context.Context, req CreateUserRequest) (*User, error)
	Update(ctx context.Context, id int, req UpdateUserRequest) (*User, error)
	Delete(ctx context.Context, id int) error

	Memberships(ctx context.Context, id int) ([]membership.Detail, error)
	GetWithMembership(ctx context.Context, id int) (*UserWithMembership, error)
	ListWithMemberships(ctx context.Context) ([]UserWithMembership, error)

	CreateWithMembership(ctx context.Context, req EnrollRequest, actorID int) (*UserWithMembership, error)
	UpdateWithMembership(ctx context.Context, id int, req RenewRequest, actorID int) (*User, error)
}

type service struct {
	conn        *sqlx.DB
	repo        Repository
	memberships membership.Repository
	lifecycle   membership.Service
	sync        *membership.Synchronizer
}

// NewService wires member CRUD to the membership lifecycle. conn is used
// to open the enrollment transactions.
func NewService(conn *sqlx.DB, repo Repository, memberships membership.Repository, lifecycle membership.Service, sync *membership.Synchronizer) Service {
	return &service{
		conn:        conn,
		repo:        repo,
		memberships: memberships,
		lifecycle:   lifecycle,
		sync:        sync,
	}
}

func (s *service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id int) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *service) checkPhone(ctx context.Context, repo Repository, phone string, excludeID int) error {
	taken, err := repo.PhoneExists(ctx, phone, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrPhoneTaken
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (*User, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	if err := s.checkPhone(ctx, s.repo, req.Phone, 0); err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, name, req.Phone)
	if db.IsUniqueViolation(err, PhoneConstraint) {
		return nil, ErrPhoneTaken
	}
	if err != nil {
		return nil, err
	}

	logger.Info("user created", "user_id", u.ID)
	return u, nil
}

func (s *service) Update(ctx context.Context, id int, req UpdateUserRequest) (*User, error) {
	if req.Name == nil && req.Phone == nil {
		return nil, ErrNoFields
	}

	var name *string
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		if trimmed == "" {
			return nil, ErrNameRequired
		}
		name = &trimmed
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	if req.Phone != nil {
		if err := s.checkPhone(ctx, s.repo, *req.Phone, id); err != nil {
			return nil, err
		}
	}

	u, err := s.repo.Update(ctx, id, name, req.Phone)
	if db.IsUniqueViolation(err, PhoneConstraint) {
		return nil, ErrPhoneTaken
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *service) Delete(ctx context.Context, id int) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrUserNotFound
	}
	logger.Info("user deleted", "user_id", id)
	return nil
}

func (s *service) Memberships(ctx context.Context, id int) ([]membership.Detail, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.lifecycle.List(ctx, membership.ListFilter{UserID: id})
}

func activeFilter(userID int) membership.ListFilter {
	return membership.ListFilter{
		UserID: userID,
		States: []string{state.Vigente, state.PorVencer},
	}
}

func (s *service) GetWithMembership(ctx context.Context, id int) (*UserWithMembership, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	details, err := s.lifecycle.List(ctx, activeFilter(id))
	if err != nil {
		return nil, err
	}

	out := &UserWithMembership{User: *u}
	if len(details) > 0 {
		out.ActiveMembership = &details[0]
	}
	return out, nil
}

// ListWithMemberships pairs every user with their newest active membership.
// Details arrive newest first, so the first one seen per user wins.
func (s *service) ListWithMemberships(ctx context.Context) ([]UserWithMembership, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	details, err := s.lifecycle.List(ctx, activeFilter(0))
	if err != nil {
		return nil, err
	}

	latest := make(map[int]*membership.Detail, len(details))
	for i := range details {
		if _, seen := latest[details[i].UserID]; !seen {
			latest[details[i].UserID] = &details[i]
		}
	}

	out := make([]UserWithMembership, 0, len(users))
	for _, u := range users {
		out = append(out, UserWithMembership{User: u, ActiveMembership: latest[u.ID]})
	}
	return out, nil
}
