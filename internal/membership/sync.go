package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/apperr"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/logger"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/metrics"
	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/state"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("biofitness/membership")

var ErrMembershipNotFound = apperr.NotFound("Membership")

// StateResolver maps a state name to its row id.
type StateResolver interface {
	ID(ctx context.Context, name string) (int, error)
}

// Synchronizer recomputes stored state and arrears from expiration dates.
// Interactive reads, the daily job and the update-states endpoint all go
// through it.
type Synchronizer struct {
	repo     Repository
	resolver StateResolver
	loc      *time.Location
	now      func() time.Time
}

func NewSynchronizer(repo Repository, resolver StateResolver, loc *time.Location) *Synchronizer {
	if loc == nil {
		loc = time.UTC
	}
	return &Synchronizer{
		repo:     repo,
		resolver: resolver,
		loc:      loc,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Intended for tests and one-off tools.
func (s *Synchronizer) WithClock(now func() time.Time) *Synchronizer {
	cp := *s
	cp.now = now
	return &cp
}

// Today is the current calendar date in the configured location.
func (s *Synchronizer) Today() time.Time {
	return state.Today(s.now(), s.loc)
}

// Resolve classifies expiration as of today and looks up the state id, for
// rows that are about to be written with their initial state.
func (s *Synchronizer) Resolve(ctx context.Context, expiration, today time.Time) (state.Resolution, error) {
	c := state.Classify(expiration, today)
	id, err := s.resolver.ID(ctx, c.Name)
	if err != nil {
		return state.Resolution{}, err
	}
	return state.Resolution{Classification: c, StateID: id}, nil
}

// stateIDs memoizes name lookups for the span of one sync call.
type stateIDs struct {
	resolver StateResolver
	ids      map[string]int
}

func (c *stateIDs) get(ctx context.Context, name string) (int, error) {
	if id, ok := c.ids[name]; ok {
		return id, nil
	}
	id, err := c.resolver.ID(ctx, name)
	if err != nil {
		return 0, err
	}
	c.ids[name] = id
	return id, nil
}

func (s *Synchronizer) newIDs() *stateIDs {
	return &stateIDs{resolver: s.resolver, ids: make(map[string]int, 3)}
}

// reconcile classifies row as of today and writes state and arrears when
// they differ from what is stored.
func (s *Synchronizer) reconcile(ctx context.Context, row SyncRow, today time.Time, ids *stateIDs) (state.Classification, bool, error) {
	c := state.Classify(row.ExpirationDate, today)
	stateID, err := ids.get(ctx, c.Name)
	if err != nil {
		return c, false, err
	}

	if row.StateID == stateID && row.DaysArrears == c.Arrears {
		return c, false, nil
	}

	changed, err := s.repo.UpdateState(ctx, row.ID, stateID, c.Arrears)
	if err != nil {
		return c, false, err
	}
	if changed {
		metrics.RecordStateChange(c.Name)
	}
	return c, changed, nil
}

// SyncOne reconciles a single membership and reports whether it was written.
func (s *Synchronizer) SyncOne(ctx context.Context, id int) (changed bool, err error) {
	ctx, span := tracer.Start(ctx, "membership.SyncOne", trace.WithAttributes(attribute.Int("membership.id", id)))
	defer func() {
		metrics.RecordStateSync("one", err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	row, err := s.repo.GetSyncRow(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrMembershipNotFound
	}
	if err != nil {
		return false, err
	}

	_, changed, err = s.reconcile(ctx, *row, s.Today(), s.newIDs())
	span.SetAttributes(attribute.Bool("membership.changed", changed))
	return changed, err
}

// SyncAll reconciles every membership and returns how many rows changed.
// Each row is its own read-classify-write; there is no transaction around
// the pass, so concurrent runs converge on the same values.
func (s *Synchronizer) SyncAll(ctx context.Context) (updated int, err error) {
	ctx, span := tracer.Start(ctx, "membership.SyncAll")
	defer func() {
		metrics.RecordStateSync("all", err)
		span.SetAttributes(attribute.Int("membership.updated", updated))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	rows, err := s.repo.ListSyncRows(ctx)
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int("membership.count", len(rows)))

	today := s.Today()
	ids := s.newIDs()
	counts := make(map[string]int, 3)

	for _, row := range rows {
		c, changed, err := s.reconcile(ctx, row, today, ids)
		if err != nil {
			logger.Error("state sync aborted", "membership_id", row.ID, "updated", updated, "error", err)
			return updated, err
		}
		counts[c.Name]++
		if changed {
			updated++
		}
	}

	metrics.SetMembershipsByState(counts)
	if updated > 0 {
		logger.Info("membership states synchronized", "updated", updated, "total", len(rows))
	}
	return updated, nil
}
