package credential

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"pinguard/internal/pin/models"
	"pinguard/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func (s *InMemoryStoreSuite) TestFindMissingVendor() {
	_, err := s.store.FindByVendor(context.Background(), 404)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestSaveReplacesPreviousCredential() {
	ctx := context.Background()
	first := &models.VendorCredential{VendorID: 7, Cred: models.PinCredential{HashedPin: "h1", Salt: "s1"}}
	second := &models.VendorCredential{VendorID: 7, Cred: models.PinCredential{HashedPin: "h2", Salt: "s2", ExpiresAt: time.Unix(1800000000, 0)}}

	s.Require().NoError(s.store.Save(ctx, first))
	s.Require().NoError(s.store.Save(ctx, second))

	got, err := s.store.FindByVendor(ctx, 7)
	s.Require().NoError(err)
	s.Equal("h2", got.Cred.HashedPin)
	s.Equal(second.Cred.ExpiresAt, got.Cred.ExpiresAt)
}

func (s *InMemoryStoreSuite) TestReturnedCredentialIsACopy() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, &models.VendorCredential{VendorID: 1, Cred: models.PinCredential{HashedPin: "h"}}))

	got, _ := s.store.FindByVendor(ctx, 1)
	got.Cred.HashedPin = "tampered"

	again, _ := s.store.FindByVendor(ctx, 1)
	s.Equal("h", again.Cred.HashedPin)
}
