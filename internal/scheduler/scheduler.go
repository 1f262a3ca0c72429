package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/PaladinezUnicomfacauca/BackendBiofitness/internal/logger"

	"github.com/robfig/cron/v3"
)

const runTimeout = 5 * time.Minute

// Syncer is the batch state refresh run on every tick.
type Syncer interface {
	SyncAll(ctx context.Context) (int, error)
}

// Refresher runs the membership state refresh on a cron schedule evaluated
// in the business time zone. A tick that fires while the previous run is
// still going is skipped.
type Refresher struct {
	cron   *cron.Cron
	syncer Syncer
}

func New(spec string, loc *time.Location, syncer Syncer) (*Refresher, error) {
	log := cronLogger{}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(log),
		cron.WithChain(cron.Recover(log), cron.SkipIfStillRunning(log)),
	)

	r := &Refresher{cron: c, syncer: syncer}
	if _, err := c.AddFunc(spec, r.tick); err != nil {
		return nil, fmt.Errorf("invalid state sync schedule %q: %w", spec, err)
	}
	return r, nil
}

func (r *Refresher) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if _, err := r.RunOnce(ctx); err != nil {
		logger.WithError(err).Error("scheduled state sync failed")
	}
}

// RunOnce refreshes every membership now.
func (r *Refresher) RunOnce(ctx context.Context) (int, error) {
	start := time.Now()
	updated, err := r.syncer.SyncAll(ctx)
	if err != nil {
		return updated, err
	}
	logger.Info("scheduled state sync finished", "updated", updated, "duration_ms", time.Since(start).Milliseconds())
	return updated, nil
}

func (r *Refresher) Start() {
	r.cron.Start()
	for _, e := range r.cron.Entries() {
		logger.Info("state sync scheduled", "next_run", e.Next)
	}
}

// Stop prevents new runs and returns a context that is done once the
// running refresh, if any, has finished.
func (r *Refresher) Stop() context.Context {
	return r.cron.Stop()
}

type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
