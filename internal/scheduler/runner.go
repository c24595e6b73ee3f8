package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/certsentry/certsentry/internal/checker"
	"github.com/certsentry/certsentry/internal/store"
	"github.com/certsentry/certsentry/pkg/config"
)

// Runner drives the daily probe cycle. It runs one full cycle immediately at
// startup and thereafter once per day at the configured wall-clock time.
// A cycle is idle-or-checking: the mutex keeps at most one cycle in flight,
// and a cycle blocks until every site in the snapshot has been probed.
type Runner struct {
	store    *store.Store
	checker  *checker.Checker
	schedule string
	logger   *slog.Logger

	cron *cron.Cron
	mu   sync.Mutex
}

func NewRunner(st *store.Store, ch *checker.Checker, cfg *config.ServerConfig, logger *slog.Logger) *Runner {
	return &Runner{
		store:    st,
		checker:  ch,
		schedule: cfg.CheckSchedule,
		logger:   logger,
	}
}

// RunCycle executes one full pass: load the collection, probe every site
// sequentially, persist the merged results. Probe failures are absorbed into
// per-site error status; a persistence failure is logged and the next cycle
// retries from whatever was last durably saved. Never fatal.
func (r *Runner) RunCycle(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	r.logger.Info("Starting certificate check cycle")

	sites, err := r.store.Load()
	if err != nil {
		r.logger.Error("Failed to load websites", "error", err)
		return
	}
	if len(sites) == 0 {
		r.logger.Info("No websites to check")
		return
	}
	r.logger.Info("Checking websites", "count", len(sites))

	updated := r.checker.CheckAll(ctx, sites)

	if err := r.store.Save(updated); err != nil {
		r.logger.Error("Failed to persist check results", "error", err)
	}

	r.logger.Info("Certificate check cycle completed",
		"count", len(updated),
		"duration", time.Since(start).Round(time.Millisecond))
}

// Start kicks off the immediate startup cycle and the daily schedule.
func (r *Runner) Start(ctx context.Context) error {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc(r.schedule, func() {
		r.RunCycle(context.Background())
	}); err != nil {
		return err
	}

	go r.RunCycle(ctx)
	r.cron.Start()
	r.logger.Info("Scheduler started", "schedule", r.schedule)
	return nil
}

// Stop halts the schedule and waits for a running cycle to finish.
func (r *Runner) Stop(ctx context.Context) error {
	if r.cron == nil {
		return nil
	}
	stopped := r.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	r.logger.Info("Scheduler stopped")
	return nil
}
