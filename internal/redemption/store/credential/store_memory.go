// Package credential persists the hashed static PIN of each vendor.
package credential

import (
	"context"
	"sync"

	"pinguard/internal/pin/models"
	"pinguard/pkg/platform/sentinel"
)

// InMemoryStore keeps one credential per vendor; Save replaces.
type InMemoryStore struct {
	mu    sync.RWMutex
	creds map[int64]models.VendorCredential
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{creds: make(map[int64]models.VendorCredential)}
}

func (s *InMemoryStore) Save(_ context.Context, cred *models.VendorCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[cred.VendorID] = *cred
	return nil
}

func (s *InMemoryStore) FindByVendor(_ context.Context, vendorID int64) (*models.VendorCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cred, ok := s.creds[vendorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &cred, nil
}
