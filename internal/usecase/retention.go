package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"NewsVerdict/internal/ports"
)

// Retention periodically prunes verdicts older than the retention window.
type Retention struct {
	driver     ports.Scheduler
	repository ports.VerdictRepository
	window     time.Duration
	logger     *slog.Logger
}

// NewRetention wires a scheduler with the verdict repository.
func NewRetention(driver ports.Scheduler, repository ports.VerdictRepository, window time.Duration, logger *slog.Logger) *Retention {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Retention{driver: driver, repository: repository, window: window, logger: logger}
}

// Start registers the prune job with the scheduler.
func (r *Retention) Start(ctx context.Context) error {
	if r.driver == nil || r.repository == nil || r.window <= 0 {
		return nil
	}

	job := func(trigger time.Time) {
		n, err := r.PruneOnce(ctx, trigger)
		if err != nil {
			r.logger.Warn("verdict retention failed", "error", err)
			return
		}
		if n > 0 {
			r.logger.Info("verdicts pruned", "count", n, "window", r.window.String())
		}
	}

	return r.driver.Start(ctx, job)
}

// PruneOnce deletes verdicts created before now minus the window.
func (r *Retention) PruneOnce(ctx context.Context, now time.Time) (int64, error) {
	if r.repository == nil {
		return 0, nil
	}
	n, err := r.repository.PruneBefore(ctx, now.Add(-r.window))
	if err != nil {
		return 0, fmt.Errorf("prune verdicts: %w", err)
	}
	return n, nil
}

// Stop tears down the underlying scheduler.
func (r *Retention) Stop(ctx context.Context) error {
	if r.driver == nil {
		return nil
	}
	return r.driver.Stop(ctx)
}
