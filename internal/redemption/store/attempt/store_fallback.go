package attempt

import (
	"context"
	"log/slog"
	"time"

	"pinguard/internal/pin/models"
	"pinguard/pkg/platform/circuit"
)

// Store is the contract shared by every attempt store.
type Store interface {
	Append(ctx context.Context, scope string, rec models.AttemptRecord) error
	ListSince(ctx context.Context, scope string, since time.Time) ([]models.AttemptRecord, error)
}

// FallbackMetrics is satisfied by *metrics.Metrics.
type FallbackMetrics interface {
	IncrementStoreFallback(op string)
	SetAttemptStoreCircuitOpen(open bool)
}

// FallbackStore fronts a remote primary with a local secondary. The primary
// is always tried so the breaker can observe recovery. Below the failure
// threshold a primary error is returned, which fails the redemption closed;
// once the breaker opens, the secondary serves reads and receives every write
// until the primary has succeeded enough times to close it again.
type FallbackStore struct {
	primary   Store
	secondary Store
	breaker   *circuit.Breaker
	logger    *slog.Logger
	metrics   FallbackMetrics
}

type FallbackOption func(*FallbackStore)

func WithFallbackLogger(logger *slog.Logger) FallbackOption {
	return func(s *FallbackStore) {
		s.logger = logger
	}
}

func WithFallbackMetrics(m FallbackMetrics) FallbackOption {
	return func(s *FallbackStore) {
		s.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) FallbackOption {
	return func(s *FallbackStore) {
		if b != nil {
			s.breaker = b
		}
	}
}

func NewFallback(primary, secondary Store, opts ...FallbackOption) *FallbackStore {
	s := &FallbackStore{
		primary:   primary,
		secondary: secondary,
		breaker:   circuit.New("attempt-store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FallbackStore) Append(ctx context.Context, scope string, rec models.AttemptRecord) error {
	if err := s.primary.Append(ctx, scope, rec); err != nil {
		if !s.onFailure(ctx, "append", err) {
			return err
		}
		return s.secondary.Append(ctx, scope, rec)
	}
	if !s.onSuccess(ctx) {
		// Keep the local history complete while reads still come from it.
		return s.secondary.Append(ctx, scope, rec)
	}
	return nil
}

func (s *FallbackStore) ListSince(ctx context.Context, scope string, since time.Time) ([]models.AttemptRecord, error) {
	primary, err := s.primary.ListSince(ctx, scope, since)
	if err != nil {
		if !s.onFailure(ctx, "list", err) {
			return nil, err
		}
		return s.secondary.ListSince(ctx, scope, since)
	}
	if s.onSuccess(ctx) {
		return primary, nil
	}
	local, err := s.secondary.ListSince(ctx, scope, since)
	if err != nil {
		return nil, err
	}
	return mergeByID(primary, local), nil
}

// onFailure records a primary failure and reports whether to use the secondary.
func (s *FallbackStore) onFailure(ctx context.Context, op string, err error) bool {
	useFallback, change := s.breaker.RecordFailure()
	if change.Opened {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "attempt store circuit opened, using in-memory fallback",
				"breaker", s.breaker.Name(),
				"error", err,
			)
		}
		if s.metrics != nil {
			s.metrics.SetAttemptStoreCircuitOpen(true)
		}
	}
	if useFallback && s.metrics != nil {
		s.metrics.IncrementStoreFallback(op)
	}
	return useFallback
}

// onSuccess records a primary success and reports whether the primary alone
// is authoritative again.
func (s *FallbackStore) onSuccess(ctx context.Context) bool {
	usePrimary, change := s.breaker.RecordSuccess()
	if change.Closed {
		if s.logger != nil {
			s.logger.InfoContext(ctx, "attempt store circuit closed", "breaker", s.breaker.Name())
		}
		if s.metrics != nil {
			s.metrics.SetAttemptStoreCircuitOpen(false)
		}
	}
	return usePrimary
}

func mergeByID(a, b []models.AttemptRecord) []models.AttemptRecord {
	seen := make(map[string]struct{}, len(a))
	out := make([]models.AttemptRecord, 0, len(a)+len(b))
	for _, r := range a {
		if r.ID != "" {
			seen[r.ID] = struct{}{}
		}
		out = append(out, r)
	}
	for _, r := range b {
		if _, dup := seen[r.ID]; dup && r.ID != "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
