package plan

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"
)

var (
	ErrPlanNotFound     = apperr.NotFound("Plan")
	ErrDescriptionEmpty = apperr.Validation("Plan description cannot be empty")
	ErrDescriptionTaken = apperr.Conflict("A plan with this description already exists")
	ErrInvalidDuration  = apperr.Validation("Days duration must be a positive number")
	ErrInvalidPrice     = apperr.Validation("Price must be a positive number")
	ErrNoFields         = apperr.Validation("No fields to update")
	ErrPlanInUse        = apperr.ReferentialIntegrity("Cannot delete plan. There are memberships associated with this plan. Please reassign memberships first.")
)

type Service interface {
	List(ctx context.Context) ([]Plan, error)
	Get(ctx context.Context, id int) (*Plan, error)
	Create(ctx context.Context, req CreatePlanRequest) (*Plan, error)
	Update(ctx context.Context, id int, req UpdatePlanRequest) (*Plan, error)
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

func (s *service) List(ctx context.Context) ([]Plan, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, id int) (*Plan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	return p, err
}

func (s *service) checkDescription(ctx context.Context, description string, excludeID int) error {
	taken, err := s.repo.DescriptionExists(ctx, description, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return ErrDescriptionTaken
	}
	return nil
}

func (s *service) Create(ctx context.Context, req CreatePlanRequest) (*Plan, error) {
	if req.DaysDuration <= 0 {
		return nil, ErrInvalidDuration
	}
	if req.Price <= 0 {
		return nil, ErrInvalidPrice
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, ErrDescriptionEmpty
	}

	if err := s.checkDescription(ctx, description, 0); err != nil {
		return nil, err
	}

	p, err := s.repo.Create(ctx, req.DaysDuration, req.Price, description)
	if db.IsUniqueViolation(err, "") {
		return nil, ErrDescriptionTaken
	}
	return p, err
}

// Update changes the given fields only. Existing memberships keep their
// expiration dates; a new duration applies to memberships created or
// renewed afterwards.
func (s *service) Update(ctx context.Context, id int, req UpdatePlanRequest) (*Plan, error) {
	if req.DaysDuration == nil && req.Price == nil && req.Description == nil {
		return nil, ErrNoFields
	}
	if req.DaysDuration != nil && *req.DaysDuration <= 0 {
		return nil, ErrInvalidDuration
	}
	if req.Price != nil && *req.Price <= 0 {
		return nil, ErrInvalidPrice
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var description *string
	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		if d == "" {
			return nil, ErrDescriptionEmpty
		}
		if err := s.checkDescription(ctx, d, id); err != nil {
			return nil, err
		}
		description = &d
	}

	p, err := s.repo.Update(ctx, id, req.DaysDuration, req.Price, description)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, ErrPlanNotFound
	case db.IsUniqueViolation(err, ""):
		return nil, ErrDescriptionTaken
	}
	return p, err
}

func (s *service) Delete(ctx context.Context, id int) error {
	inUse, err := s.repo.HasMemberships(ctx, id)
	if err != nil {
		return err
	}
	if inUse {
		return ErrPlanInUse
	}

	// A membership written after the check still trips the foreign key.
	deleted, err := s.repo.Delete(ctx, id)
	if db.IsForeignKeyViolation(err, "") {
		return ErrPlanInUse
	}
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPlanNotFound
	}
	return nil
}
