// Package static hashes vendor-chosen PINs for storage and verifies
// submissions against them.
//
// The PIN keyspace is tiny, so protection rests on per-guess cost: every PIN
// is salted and run through bcrypt at cost 12. bcrypt work is CPU bound and
// runs behind a semaphore so it cannot starve latency-sensitive requests.
package static

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/semaphore"

	"pinguard/internal/pin/config"
	"pinguard/internal/pin/format"
	"pinguard/internal/pin/models"
	dErrors "pinguard/pkg/domain-errors"
	"pinguard/pkg/requestcontext"
)

const (
	MessageVerified = "PIN verified successfully"
	MessageExpired  = "PIN has expired. Please request a new PIN from the vendor."
	MessageMismatch = "Invalid PIN"
	MessageFailed   = "PIN verification failed"
)

const tracerName = "pinguard/internal/pin/static"

type Hasher struct {
	cost      int
	saltBytes int
	cfg       config.StaticConfig
	sem       *semaphore.Weighted
	random    io.Reader
	logger    *slog.Logger
	tracer    trace.Tracer
}

type Option func(*Hasher)

// WithConfig replaces the hashing policy (cost, salt size, TTL, pool size).
func WithConfig(cfg config.StaticConfig) Option {
	return func(h *Hasher) {
		h.cfg = cfg
	}
}

// WithCost overrides only the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(h *Hasher) {
		h.cfg.BcryptCost = cost
	}
}

// WithRandom replaces the salt source.
func WithRandom(r io.Reader) Option {
	return func(h *Hasher) {
		if r != nil {
			h.random = r
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(h *Hasher) {
		h.logger = logger
	}
}

func New(opts ...Option) *Hasher {
	h := &Hasher{
		cfg:    config.DefaultConfig().Static,
		random: rand.Reader,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(h)
	}

	defaults := config.DefaultConfig().Static
	h.cost = h.cfg.BcryptCost
	if h.cost < bcrypt.MinCost || h.cost > bcrypt.MaxCost {
		h.cost = defaults.BcryptCost
	}
	if h.cfg.TTL <= 0 {
		h.cfg.TTL = defaults.TTL
	}
	h.saltBytes = max(h.cfg.SaltBytes, defaults.SaltBytes)
	workers := h.cfg.Concurrency
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	h.sem = semaphore.NewWeighted(int64(workers))
	return h
}

// Hash validates pin and, if well formed, returns a fresh salted bcrypt hash
// expiring after the configured TTL. A malformed PIN yields Success=false and
// a nil error; the error return is reserved for internal failures.
func (h *Hasher) Hash(ctx context.Context, pin string) (*models.SecurityResult, error) {
	ctx, span := h.tracer.Start(ctx, "pin.static.hash",
		trace.WithAttributes(attribute.Int("bcrypt.cost", h.cost)))
	defer span.End()

	if res := format.Validate(pin); !res.IsValid {
		return &models.SecurityResult{Success: false, Message: res.Reason}, nil
	}

	salt, err := h.newSalt()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "salt generation failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate PIN salt")
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "PIN hashing cancelled")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(pin+salt), h.cost)
	h.sem.Release(1)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bcrypt failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash PIN")
	}

	return &models.SecurityResult{
		Success:   true,
		HashedPin: string(hashed),
		Salt:      salt,
		ExpiresAt: requestcontext.Now(ctx).Add(h.cfg.TTL),
	}, nil
}

// Verify checks pin against cred. Expired credentials are rejected before any
// hashing. Failure results carry a typed error in Err; bcrypt internals are
// never surfaced in Message.
func (h *Hasher) Verify(ctx context.Context, pin string, cred models.PinCredential) models.VerifyResult {
	ctx, span := h.tracer.Start(ctx, "pin.static.verify")
	defer span.End()

	if cred.IsExpiredAt(requestcontext.Now(ctx)) {
		return failure(dErrors.CodeExpired, MessageExpired, nil)
	}

	if err := format.Check(pin); err != nil {
		return models.VerifyResult{Valid: false, Message: dErrors.From(err).Message, Err: err}
	}

	if err := h.sem.Acquire(ctx, 1); err != nil {
		return failure(dErrors.CodeTimeout, MessageFailed, err)
	}
	err := bcrypt.CompareHashAndPassword([]byte(cred.HashedPin), []byte(pin+cred.Salt))
	h.sem.Release(1)

	switch {
	case err == nil:
		return models.VerifyResult{Valid: true, Message: MessageVerified}
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return failure(dErrors.CodeUnauthorized, MessageMismatch, nil)
	default:
		span.RecordError(err)
		span.SetStatus(codes.Error, "bcrypt compare failed")
		if h.logger != nil {
			h.logger.ErrorContext(ctx, "static PIN comparison failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		return failure(dErrors.CodeInternal, MessageFailed, err)
	}
}

func (h *Hasher) newSalt() (string, error) {
	buf := make([]byte, h.saltBytes)
	if _, err := io.ReadFull(h.random, buf); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func failure(code dErrors.Code, msg string, cause error) models.VerifyResult {
	var err error
	if cause != nil {
		err = dErrors.Wrap(cause, code, msg)
	} else {
		err = dErrors.New(code, msg)
	}
	return models.VerifyResult{Valid: false, Message: msg, Err: err}
}
