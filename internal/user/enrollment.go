package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/db"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/logger"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/membership"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/metrics"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/state"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("biofitness/user")

func (s *service) checkReceipt(ctx context.Context, repo membership.Repository, receipt string, excludeID int) error {
	taken, err := repo.ReceiptExists(ctx, receipt, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return membership.ErrReceiptTaken
	}
	return nil
}

// CreateWithMembership registers a member and their first membership as
// one unit. Phone, receipt, plan, method and manager are checked up front
// and again inside the transaction; any failure leaves no user row behind.
func (s *service) CreateWithMembership(ctx context.Context, req EnrollRequest, actorID int) (out *UserWithMembership, err error) {
	ctx, span := tracer.Start(ctx, "user.CreateWithMembership")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	receipt := strings.TrimSpace(req.ReceiptNumber)
	if receipt == "" {
		return nil, ErrReceiptRequired
	}

	managerID := req.ManagerID
	if managerID == 0 {
		managerID = actorID
	}

	if err := s.checkPhone(ctx, s.repo, req.Phone, 0); err != nil {
		return nil, err
	}
	if err := s.checkReceipt(ctx, s.memberships, receipt, 0); err != nil {
		return nil, err
	}
	days, err := membership.CheckReferences(ctx, s.memberships, 0, req.PlanID, req.MethodID, managerID)
	if err != nil {
		return nil, err
	}

	today := s.sync.Today()
	expiration := state.ExpirationFor(today, days)
	res, err := s.sync.Resolve(ctx, expiration, today)
	if err != nil {
		return nil, err
	}

	var u *User
	var membershipID int
	err = db.WithTx(ctx, s.conn, func(tx *sqlx.Tx) error {
		users := s.repo.WithTx(tx)
		memberships := s.memberships.WithTx(tx)

		if err := s.checkPhone(ctx, users, req.Phone, 0); err != nil {
			return err
		}
		if _, err := membership.CheckReferences(ctx, memberships, 0, req.PlanID, req.MethodID, managerID); err != nil {
			return err
		}

		var err error
		u, err = users.Create(ctx, name, req.Phone)
		if err != nil {
			return err
		}

		if err := s.checkReceipt(ctx, memberships, receipt, 0); err != nil {
			return err
		}

		m := &membership.Membership{
			LastPayment:    today,
			ExpirationDate: expiration,
			ReceiptNumber:  receipt,
			DaysArrears:    res.Arrears,
			UserID:         u.ID,
			PlanID:         req.PlanID,
			MethodID:       req.MethodID,
			StateID:        res.StateID,
		}
		if managerID != 0 {
			m.ManagerID = &managerID
		}
		membershipID, err = memberships.Insert(ctx, m)
		return err
	})
	switch {
	case db.IsUniqueViolation(err, PhoneConstraint):
		return nil, ErrPhoneTaken
	case db.IsUniqueViolation(err, membership.ReceiptConstraint):
		return nil, membership.ErrReceiptTaken
	case err != nil:
		return nil, membership.MissingReference(err)
	}

	span.SetAttributes(attribute.Int("user.id", u.ID), attribute.Int("membership.id", membershipID))
	metrics.RecordMembershipCreated("enrollment")
	logger.Info("user enrolled", "user_id", u.ID, "membership_id", membershipID, "receipt", receipt, "state", res.Name)

	detail, err := s.memberships.GetDetail(ctx, membershipID)
	if err != nil {
		return nil, err
	}
	return &UserWithMembership{User: *u, ActiveMembership: detail}, nil
}

// UpdateWithMembership rewrites the member and renews their most recent
// membership from today in one transaction. Without an explicit manager
// the membership keeps its current one, or takes the caller's when unset.
func (s *service) UpdateWithMembership(ctx context.Context, id int, req RenewRequest, actorID int) (out *User, err error) {
	ctx, span := tracer.Start(ctx, "user.UpdateWithMembership", trace.WithAttributes(attribute.Int("user.id", id)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	receipt := strings.TrimSpace(req.ReceiptNumber)
	if receipt == "" {
		return nil, ErrReceiptRequired
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkPhone(ctx, s.repo, req.Phone, id); err != nil {
		return nil, err
	}
	days, err := membership.CheckReferences(ctx, s.memberships, 0, req.PlanID, req.MethodID, req.ManagerID)
	if err != nil {
		return nil, err
	}

	today := s.sync.Today()
	expiration := state.ExpirationFor(today, days)
	res, err := s.sync.Resolve(ctx, expiration, today)
	if err != nil {
		return nil, err
	}

	var membershipID int
	err = db.WithTx(ctx, s.conn, func(tx *sqlx.Tx) error {
		users := s.repo.WithTx(tx)
		memberships := s.memberships.WithTx(tx)

		if err := s.checkPhone(ctx, users, req.Phone, id); err != nil {
			return err
		}
		var err error
		out, err = users.Update(ctx, id, &name, &req.Phone)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		if err != nil {
			return err
		}

		latest, err := memberships.LatestByUser(ctx, id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNoMembership
		}
		if err != nil {
			return err
		}
		membershipID = latest.ID

		if err := s.checkReceipt(ctx, memberships, receipt, latest.ID); err != nil {
			return err
		}

		managerID := req.ManagerID
		if managerID == 0 && latest.ManagerID != nil {
			managerID = *latest.ManagerID
		}
		if managerID == 0 {
			managerID = actorID
		}
		if _, err := membership.CheckReferences(ctx, memberships, 0, req.PlanID, req.MethodID, managerID); err != nil {
			return err
		}

		renewal := membership.Renewal{
			LastPayment:    today,
			ExpirationDate: expiration,
			ReceiptNumber:  receipt,
			PlanID:         req.PlanID,
			MethodID:       req.MethodID,
			StateID:        res.StateID,
			DaysArrears:    res.Arrears,
		}
		if managerID != 0 {
			renewal.ManagerID = &managerID
		}
		return memberships.Renew(ctx, latest.ID, renewal)
	})
	switch {
	case db.IsUniqueViolation(err, PhoneConstraint):
		return nil, ErrPhoneTaken
	case db.IsUniqueViolation(err, membership.ReceiptConstraint):
		return nil, membership.ErrReceiptTaken
	case err != nil:
		return nil, membership.MissingReference(err)
	}

	span.SetAttributes(attribute.Int("membership.id", membershipID))
	metrics.RecordMembershipCreated("renewal")
	logger.Info("membership renewed", "user_id", id, "membership_id", membershipID, "receipt", receipt, "state", res.Name)
	return out, nil
}
