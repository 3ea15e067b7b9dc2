package static

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"pinguard/internal/pin/config"
	"pinguard/internal/pin/format"
	"pinguard/internal/pin/models"
	dErrors "pinguard/pkg/domain-errors"
	"pinguard/pkg/requestcontext"
)

type HasherSuite struct {
	suite.Suite
	hasher *Hasher
	now    time.Time
	ctx    context.Context
}

func TestHasherSuite(t *testing.T) {
	suite.Run(t, new(HasherSuite))
}

func (s *HasherSuite) SetupTest() {
	s.hasher = New(WithCost(bcrypt.MinCost))
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func (s *HasherSuite) mustHash(pin string) *models.SecurityResult {
	res, err := s.hasher.Hash(s.ctx, pin)
	s.Require().NoError(err)
	s.Require().True(res.Success, res.Message)
	return res
}

func (s *HasherSuite) TestHash() {
	s.Run("valid PIN yields salted hash expiring in 90 days", func() {
		res := s.mustHash("1829")
		s.NotEmpty(res.HashedPin)
		s.Len(res.Salt, 32, "16 random bytes, hex encoded")
		s.Equal(s.now.Add(90*24*time.Hour), res.ExpiresAt)
		s.NotContains(res.HashedPin, "1829")
	})

	s.Run("same PIN hashes to distinct salts and hashes", func() {
		a := s.mustHash("5051")
		b := s.mustHash("5051")
		s.NotEqual(a.Salt, b.Salt)
		s.NotEqual(a.HashedPin, b.HashedPin)
	})

	s.Run("malformed PIN is rejected without hashing", func() {
		for _, pin := range []string{"123", "abcd", "1111", "1234"} {
			res, err := s.hasher.Hash(s.ctx, pin)
			s.NoError(err)
			s.False(res.Success)
			s.Equal(format.Validate(pin).Reason, res.Message)
			s.Empty(res.HashedPin)
			s.Empty(res.Salt)
		}
	})

	s.Run("salt source failure is an internal error", func() {
		h := New(WithCost(bcrypt.MinCost), WithRandom(errReader{}))
		_, err := h.Hash(s.ctx, "1829")
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *HasherSuite) TestDefaultCost() {
	h := New()
	res, err := h.Hash(s.ctx, "2468")
	s.Require().NoError(err)

	cost, err := bcrypt.Cost([]byte(res.HashedPin))
	s.Require().NoError(err)
	s.Equal(12, cost)
}

func (s *HasherSuite) TestVerify() {
	res := s.mustHash("1829")
	cred := res.Credential()

	s.Run("original PIN matches", func() {
		out := s.hasher.Verify(s.ctx, "1829", cred)
		s.True(out.Valid)
		s.Equal(MessageVerified, out.Message)
		s.NoError(out.Err)
	})

	s.Run("different well-formed PIN does not match", func() {
		for _, pin := range []string{"1828", "9281", "5051"} {
			out := s.hasher.Verify(s.ctx, pin, cred)
			s.False(out.Valid)
			s.Equal(MessageMismatch, out.Message)
			s.True(dErrors.HasCode(out.Err, dErrors.CodeUnauthorized))
		}
	})

	s.Run("malformed submission fails on format", func() {
		out := s.hasher.Verify(s.ctx, "18a9", cred)
		s.False(out.Valid)
		s.Equal(format.ReasonNumeric, out.Message)
		s.True(dErrors.HasCode(out.Err, dErrors.CodeValidation))
	})

	s.Run("credential without expiry never expires", func() {
		noExpiry := cred
		noExpiry.ExpiresAt = time.Time{}
		s.True(s.hasher.Verify(s.ctx, "1829", noExpiry).Valid)
	})
}

func (s *HasherSuite) TestVerifyExpired() {
	res := s.mustHash("1829")
	cred := res.Credential()
	cred.ExpiresAt = s.now.Add(-time.Minute)

	s.Run("correct PIN on expired credential is rejected", func() {
		out := s.hasher.Verify(s.ctx, "1829", cred)
		s.False(out.Valid)
		s.Equal(MessageExpired, out.Message)
		s.True(dErrors.HasCode(out.Err, dErrors.CodeExpired))
	})

	s.Run("expiry is decided before the hash is touched", func() {
		garbage := models.PinCredential{HashedPin: "not-a-bcrypt-hash", Salt: "x", ExpiresAt: s.now.Add(-time.Second)}
		out := s.hasher.Verify(s.ctx, "zz", garbage)
		s.Equal(MessageExpired, out.Message)
	})

	s.Run("credential is valid until its expiry instant", func() {
		atExpiry := requestcontext.WithTime(context.Background(), res.ExpiresAt)
		s.True(s.hasher.Verify(atExpiry, "1829", res.Credential()).Valid)
	})
}

func (s *HasherSuite) TestVerifyMalformedHash() {
	cred := models.PinCredential{HashedPin: "not-a-bcrypt-hash", Salt: "abcd"}
	out := s.hasher.Verify(s.ctx, "1829", cred)

	s.False(out.Valid)
	s.Equal(MessageFailed, out.Message)
	s.True(dErrors.HasCode(out.Err, dErrors.CodeInternal))
	s.NotContains(out.Message, "bcrypt")
}

func (s *HasherSuite) TestPoolHonoursCancellation() {
	cfg := config.DefaultConfig().Static
	cfg.BcryptCost = bcrypt.MinCost
	cfg.Concurrency = 1
	h := New(WithConfig(cfg))

	// Occupy the only worker slot.
	s.Require().NoError(h.sem.Acquire(context.Background(), 1))
	defer h.sem.Release(1)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()

	_, err := h.Hash(ctx, "1829")
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeTimeout))

	out := h.Verify(ctx, "1829", models.PinCredential{HashedPin: "x"})
	s.False(out.Valid)
	s.Equal(MessageFailed, out.Message)
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("no entropy")
}
