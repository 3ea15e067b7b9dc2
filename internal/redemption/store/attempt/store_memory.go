// Package attempt persists PIN attempt history per scope key. Stores only
// append and list; deciding what the history means is the throttle's job.
package attempt

import (
	"context"
	"sync"
	"time"

	"pinguard/internal/pin/models"
)

// DefaultRetention covers the throttle's longest window.
const DefaultRetention = 24 * time.Hour

// InMemoryStore keeps a sliding window of records per scope. Records older
// than the retention, measured from the newest record appended, are pruned.
type InMemoryStore struct {
	mu        sync.RWMutex
	scopes    map[string][]models.AttemptRecord
	retention time.Duration
}

type MemoryOption func(*InMemoryStore)

func WithRetention(d time.Duration) MemoryOption {
	return func(s *InMemoryStore) {
		if d > 0 {
			s.retention = d
		}
	}
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		scopes:    make(map[string][]models.AttemptRecord),
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InMemoryStore) Append(_ context.Context, scope string, rec models.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := rec.AttemptedAt.Add(-s.retention)
	kept := s.scopes[scope][:0]
	for _, r := range s.scopes[scope] {
		if r.AttemptedAt.After(cutoff) {
			kept = append(kept, r)
		}
	}
	s.scopes[scope] = append(kept, rec)
	return nil
}

// ListSince returns records attempted strictly after since, in append order.
func (s *InMemoryStore) ListSince(_ context.Context, scope string, since time.Time) ([]models.AttemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.AttemptRecord
	for _, r := range s.scopes[scope] {
		if r.AttemptedAt.After(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Purge drops records attempted before `before` and deletes scopes left
// empty. Scopes are swept batchSize at a time so the write lock is released
// between batches. Returns the number of records removed.
func (s *InMemoryStore) Purge(ctx context.Context, before time.Time, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	s.mu.RLock()
	scopes := make([]string, 0, len(s.scopes))
	for scope := range s.scopes {
		scopes = append(scopes, scope)
	}
	s.mu.RUnlock()

	total := 0
	for start := 0; start < len(scopes); start += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		end := min(start+batchSize, len(scopes))
		s.mu.Lock()
		for _, scope := range scopes[start:end] {
			total += s.pruneLocked(scope, before)
		}
		s.mu.Unlock()
	}
	return total, nil
}

// pruneLocked removes records of scope attempted before cutoff and deletes the
// scope once it is empty. Callers hold s.mu.
func (s *InMemoryStore) pruneLocked(scope string, cutoff time.Time) int {
	recs, ok := s.scopes[scope]
	if !ok {
		return 0
	}
	kept := recs[:0]
	for _, r := range recs {
		if !r.AttemptedAt.Before(cutoff) {
			kept = append(kept, r)
		}
	}
	removed := len(recs) - len(kept)
	if len(kept) == 0 {
		delete(s.scopes, scope)
	} else {
		s.scopes[scope] = kept
	}
	return removed
}

// Reset drops a scope's history.
func (s *InMemoryStore) Reset(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scopes, scope)
	return nil
}
