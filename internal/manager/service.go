package manager

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/auth"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/logger"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/metrics"
)

var (
	ErrManagerNotFound    = apperr.NotFound("Manager")
	ErrNameTaken          = apperr.Conflict("Manager name already exists")
	ErrPhoneTaken         = apperr.Conflict("Phone number already exists")
	ErrEmailTaken         = apperr.Conflict("Email already exists")
	ErrNameRequired       = apperr.Validation("name_manager cannot be empty")
	ErrNoFields           = apperr.Validation("No fields to update")
	ErrInvalidCredentials = apperr.Auth("Invalid email or password")
	ErrInactive           = apperr.Auth("Manager account is inactive")
)

type Service interface {
	List(ctx context.Context) ([]Manager, error)
	Get(ctx context.Context, id int) (*Manager, error)
	Register(ctx context.Context, req CreateManagerRequest) (*Manager, error)
	Update(ctx context.Context, id int, req UpdateManagerRequest) (*Manager, error)
	Delete(ctx context.Context, id int) error
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
}

type service struct {
	repo      Repository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewService(repo Repository, jwtSecret string, tokenTTL time.Duration) Service {
	return &service{
		repo:      repo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

func (s *service) List(ctx context.Context) ([]Manager, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id int) (*Manager, error) {
	m, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrManagerNotFound
	}
	return m, err
}

// checkUnique rejects values already held by another manager. Empty
// values are not checked.
func (s *service) checkUnique(ctx context.Context, name, phone, email string, excludeID int) error {
	checks := []struct {
		value  string
		exists func(context.Context, string, int) (bool, error)
		err    error
	}{
		{name, s.repo.NameExists, ErrNameTaken},
		{phone, s.repo.PhoneExists, ErrPhoneTaken},
		{email, s.repo.EmailExists, ErrEmailTaken},
	}

	for _, c := range checks {
		if c.value == "" {
			continue
		}
		taken, err := c.exists(ctx, c.value, excludeID)
		if err != nil {
			return err
		}
		if taken {
			return c.err
		}
	}
	return nil
}

// uniqueConflict maps a unique violation raised by a concurrent write to
// the same error the pre-check would have returned.
func uniqueConflict(err error) error {
	switch {
	case db.IsUniqueViolation(err, NameConstraint):
		return ErrNameTaken
	case db.IsUniqueViolation(err, PhoneConstraint):
		return ErrPhoneTaken
	case db.IsUniqueViolation(err, EmailConstraint):
		return ErrEmailTaken
	}
	return err
}

func (s *service) Register(ctx context.Context, req CreateManagerRequest) (*Manager, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if err := s.checkUnique(ctx, name, req.Phone, email, 0); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	m, err := s.repo.Create(ctx, name, req.Phone, email, passwordHash)
	if err != nil {
		return nil, uniqueConflict(err)
	}

	logger.Info("manager registered", "manager_id", m.ID)
	return m, nil
}

func (s *service) Update(ctx context.Context, id int, req UpdateManagerRequest) (*Manager, error) {
	if req.Name == nil && req.Phone == nil && req.Email == nil && req.Password == nil && req.Status == nil {
		return nil, ErrNoFields
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	ch := Changes{Phone: req.Phone, Status: req.Status}
	var name, phone, email string
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		ch.Name = &name
	}
	if req.Phone != nil {
		phone = *req.Phone
	}
	if req.Email != nil {
		email = strings.ToLower(strings.TrimSpace(*req.Email))
		ch.Email = &email
	}

	if err := s.checkUnique(ctx, name, phone, email, id); err != nil {
		return nil, err
	}

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		ch.PasswordHash = &hash
	}

	m, err := s.repo.Update(ctx, id, ch)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrManagerNotFound
	}
	if err != nil {
		return nil, uniqueConflict(err)
	}
	return m, nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrManagerNotFound
	}
	logger.Info("manager deleted", "manager_id", id)
	return nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (resp *LoginResponse, err error) {
	defer func() { metrics.RecordLogin(err == nil) }()

	m, err := s.repo.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(m.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !m.Status {
		return nil, ErrInactive
	}

	token, err := auth.GenerateToken(m.ID, m.Name, m.Email, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		Token:   token,
		Manager: Identity{ID: m.ID, Name: m.Name, Email: m.Email},
	}, nil
}
