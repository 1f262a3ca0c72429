package membership

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/logger"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/metrics"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/state"
)

const dateLayout = "2006-01-02"

var (
	ErrUserNotFound    = apperr.NotFound("User")
	ErrPlanNotFound    = apperr.NotFound("Plan")
	ErrMethodNotFound  = apperr.NotFound("Payment method")
	ErrManagerNotFound = apperr.NotFound("Manager")
	ErrReceiptTaken    = apperr.Conflict("Receipt number already exists")
	ErrNoFields        = apperr.Validation("No fields to update")
	ErrInvalidDate     = apperr.Validation("Dates must use the YYYY-MM-DD format")
)

type Service interface {
	Create(ctx context.Context, req CreateMembershipRequest, actorID int) (*Detail, error)
	Get(ctx context.Context, id int) (*Detail, error)
	List(ctx context.Context, f ListFilter) ([]Detail, error)
	ListActive(ctx context.Context) ([]Detail, error)
	Update(ctx context.Context, id int, req UpdateMembershipRequest) (*Detail, error)
	Delete(ctx context.Context, id int) error
	SyncStates(ctx context.Context) (int, error)
	Export(ctx context.Context, f ExportFilter, w io.Writer) error
}

type service struct {
	repo          Repository
	sync          *Synchronizer
	receiptPrefix string
}

func NewService(repo Repository, sync *Synchronizer, receiptPrefix string) Service {
	return &service{
		repo:          repo,
		sync:          sync,
		receiptPrefix: receiptPrefix,
	}
}

// CheckReferences verifies that the user, payment method and manager exist
// and returns the plan duration. Each missing entity is reported by name.
func CheckReferences(ctx context.Context, repo Repository, userID, planID, methodID, managerID int) (int, error) {
	if userID != 0 {
		ok, err := repo.UserExists(ctx, userID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrUserNotFound
		}
	}

	days, err := repo.PlanDuration(ctx, planID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrPlanNotFound
	}
	if err != nil {
		return 0, err
	}

	ok, err := repo.MethodExists(ctx, methodID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrMethodNotFound
	}

	if managerID != 0 {
		ok, err = repo.ManagerExists(ctx, managerID)
		if err != nil {
			return 0, err
		}
		if !ok {
			return 0, ErrManagerNotFound
		}
	}

	return days, nil
}

// MissingReference maps a foreign key violation on a membership write to
// the NotFound error of the row that went away. Other errors pass through.
func MissingReference(err error) error {
	switch {
	case db.IsForeignKeyViolation(err, UserConstraint):
		return ErrUserNotFound
	case db.IsForeignKeyViolation(err, PlanConstraint):
		return ErrPlanNotFound
	case db.IsForeignKeyViolation(err, MethodConstraint):
		return ErrMethodNotFound
	case db.IsForeignKeyViolation(err, ManagerConstraint):
		return ErrManagerNotFound
	}
	return err
}

func (s *service) Create(ctx context.Context, req CreateMembershipRequest, actorID int) (*Detail, error) {
	managerID := req.ManagerID
	if managerID == 0 {
		managerID = actorID
	}

	days, err := CheckReferences(ctx, s.repo, req.UserID, req.PlanID, req.MethodID, managerID)
	if err != nil {
		return nil, err
	}

	receipt := strings.TrimSpace(req.ReceiptNumber)
	if receipt != "" {
		taken, err := s.repo.ReceiptExists(ctx, receipt, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrReceiptTaken
		}
	}

	today := s.sync.Today()
	expiration := state.ExpirationFor(today, days)
	res, err := s.sync.Resolve(ctx, expiration, today)
	if err != nil {
		return nil, err
	}

	m := &Membership{
		LastPayment:    today,
		ExpirationDate: expiration,
		ReceiptNumber:  receipt,
		DaysArrears:    res.Arrears,
		UserID:         req.UserID,
		PlanID:         req.PlanID,
		MethodID:       req.MethodID,
		StateID:        res.StateID,
	}
	if managerID != 0 {
		m.ManagerID = &managerID
	}

	id, err := s.repo.Create(ctx, m, s.receiptPrefix)
	if db.IsUniqueViolation(err, ReceiptConstraint) {
		return nil, ErrReceiptTaken
	}
	if err != nil {
		return nil, MissingReference(err)
	}

	metrics.RecordMembershipCreated("membership")
	logger.Info("membership created", "membership_id", id, "user_id", req.UserID, "receipt", m.ReceiptNumber, "state", res.Name)

	return s.detail(ctx, id)
}

func (s *service) detail(ctx context.Context, id int) (*Detail, error) {
	d, err := s.repo.GetDetail(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	return d, err
}

func (s *service) Get(ctx context.Context, id int) (*Detail, error) {
	if _, err := s.sync.SyncOne(ctx, id); err != nil {
		return nil, err
	}
	return s.detail(ctx, id)
}

func (s *service) List(ctx context.Context, f ListFilter) ([]Detail, error) {
	if _, err := s.sync.SyncAll(ctx); err != nil {
		return nil, err
	}
	return s.repo.ListDetails(ctx, f)
}

func (s *service) ListActive(ctx context.Context) ([]Detail, error) {
	return s.List(ctx, ListFilter{States: []string{state.Vigente, state.PorVencer}})
}

func parseDate(v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *v)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}

func (req UpdateMembershipRequest) patch() (Patch, error) {
	lastPayment, err := parseDate(req.LastPayment)
	if err != nil {
		return Patch{}, err
	}
	expiration, err := parseDate(req.ExpirationDate)
	if err != nil {
		return Patch{}, err
	}

	p := Patch{
		LastPayment:    lastPayment,
		ExpirationDate: expiration,
		UserID:         req.UserID,
		PlanID:         req.PlanID,
		MethodID:       req.MethodID,
		ManagerID:      req.ManagerID,
	}
	if req.ReceiptNumber != nil {
		receipt := strings.TrimSpace(*req.ReceiptNumber)
		if receipt == "" {
			return Patch{}, apperr.Validation("Receipt number cannot be empty")
		}
		p.ReceiptNumber = &receipt
	}
	return p, nil
}

// Update applies a partial update and then reconciles state and arrears.
// Changing the plan or last payment without an explicit expiration date
// recomputes the expiration from the resulting plan and payment date.
func (s *service) Update(ctx context.Context, id int, req UpdateMembershipRequest) (*Detail, error) {
	p, err := req.patch()
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return nil, ErrNoFields
	}

	current, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, err
	}

	if p.ReceiptNumber != nil && *p.ReceiptNumber != current.ReceiptNumber {
		taken, err := s.repo.ReceiptExists(ctx, *p.ReceiptNumber, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrReceiptTaken
		}
	}

	if err := s.checkPatchReferences(ctx, p); err != nil {
		return nil, err
	}

	if p.ExpirationDate == nil && (p.PlanID != nil || p.LastPayment != nil) {
		planID := current.PlanID
		if p.PlanID != nil {
			planID = *p.PlanID
		}
		lastPayment := current.LastPayment
		if p.LastPayment != nil {
			lastPayment = *p.LastPayment
		}
		days, err := s.repo.PlanDuration(ctx, planID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		if err != nil {
			return nil, err
		}
		expiration := state.ExpirationFor(lastPayment, days)
		p.ExpirationDate = &expiration
	}

	updated, err := s.repo.ApplyPatch(ctx, id, p)
	if db.IsUniqueViolation(err, ReceiptConstraint) {
		return nil, ErrReceiptTaken
	}
	if err != nil {
		return nil, MissingReference(err)
	}
	if !updated {
		return nil, ErrMembershipNotFound
	}

	return s.Get(ctx, id)
}

func (s *service) checkPatchReferences(ctx context.Context, p Patch) error {
	if p.UserID != nil {
		ok, err := s.repo.UserExists(ctx, *p.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}
	}
	if p.PlanID != nil {
		if _, err := s.repo.PlanDuration(ctx, *p.PlanID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrPlanNotFound
			}
			return err
		}
	}
	if p.MethodID != nil {
		ok, err := s.repo.MethodExists(ctx, *p.MethodID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrMethodNotFound
		}
	}
	if p.ManagerID != nil {
		ok, err := s.repo.ManagerExists(ctx, *p.ManagerID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrManagerNotFound
		}
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrMembershipNotFound
	}
	logger.Info("membership deleted", "membership_id", id)
	return nil
}

func (s *service) SyncStates(ctx context.Context) (int, error) {
	return s.sync.SyncAll(ctx)
}

func (s *service) Export(ctx context.Context, f ExportFilter, w io.Writer) error {
	filter := ListFilter{
		Search:   strings.TrimSpace(f.Search),
		PlanDays: f.PlanDays,
	}
	if name := strings.TrimSpace(f.State); name != "" {
		filter.States = []string{name}
	}

	rows, err := s.List(ctx, filter)
	if err != nil {
		return err
	}

	if err := WriteWorkbook(w, rows); err != nil {
		return err
	}
	metrics.RecordExport()
	return nil
}
