package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	dErrors "pinguard/pkg/domain-errors"
)

const (
	defaultPurgeTimeout   = 30 * time.Second
	defaultPurgeBatchSize = 500
)

type attemptPurgeStore interface {
	Purge(ctx context.Context, before time.Time, batchSize int) (int, error)
}

// attemptPurger deletes attempt records that fell out of the throttle's daily
// window. Redis trims on write; Postgres and the in-memory fallback need this
// sweep.
type attemptPurger struct {
	stores    []attemptPurgeStore
	retention time.Duration
	timeout   time.Duration
	batchSize int
	logger    *slog.Logger
}

func newAttemptPurger(retention time.Duration, logger *slog.Logger, stores ...attemptPurgeStore) *attemptPurger {
	return &attemptPurger{stores: stores, retention: retention, logger: logger}
}

// RunOnce sweeps every store once, bounded by the purge timeout. A failing
// store does not stop the others; errors are joined.
func (p *attemptPurger) RunOnce(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeTimeout, "purge aborted: context cancelled")
	}

	timeout := p.timeout
	if timeout == 0 {
		timeout = defaultPurgeTimeout
	}
	batch := p.batchSize
	if batch == 0 {
		batch = defaultPurgeBatchSize
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cutoff := now.Add(-p.retention)
	total := 0
	var errs []error
	for _, store := range p.stores {
		n, err := store.Purge(ctx, cutoff, batch)
		total += n
		if err != nil {
			errs = append(errs, err)
		}
	}
	return total, errors.Join(errs...)
}

// Run sweeps every interval until ctx is done.
func (p *attemptPurger) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := p.RunOnce(ctx, now)
			if err != nil {
				p.logger.WarnContext(ctx, "attempt purge failed", "purged", n, "error", err)
				continue
			}
			if n > 0 {
				p.logger.InfoContext(ctx, "purged expired attempts", "purged", n)
			}
		}
	}
}
