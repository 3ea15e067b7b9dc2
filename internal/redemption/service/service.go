// Package service orchestrates vendor PIN issuance and customer redemption:
// throttle the scope, verify the PIN, record the attempt.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"pinguard/internal/pin/generator"
	"pinguard/internal/pin/models"
	"pinguard/internal/pin/rotating"
	"pinguard/internal/pin/static"
	"pinguard/internal/pin/throttle"
	"pinguard/internal/redemption/metrics"
	dErrors "pinguard/pkg/domain-errors"
	"pinguard/pkg/platform/audit"
	"pinguard/pkg/requestcontext"
)

type CredentialStore interface {
	Save(ctx context.Context, cred *models.VendorCredential) error
	// FindByVendor returns sentinel.ErrNotFound when the vendor has no PIN.
	FindByVendor(ctx context.Context, vendorID int64) (*models.VendorCredential, error)
}

type AttemptStore interface {
	Append(ctx context.Context, scope string, rec models.AttemptRecord) error
	ListSince(ctx context.Context, scope string, since time.Time) ([]models.AttemptRecord, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	credentials    CredentialStore
	attempts       AttemptStore
	hasher         *static.Hasher
	rotating       *rotating.Generator
	throttle       *throttle.Throttle
	generator      *generator.Generator
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
	locks          *scopeLocks
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithHasher(h *static.Hasher) Option {
	return func(s *Service) {
		if h != nil {
			s.hasher = h
		}
	}
}

func WithRotating(g *rotating.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.rotating = g
		}
	}
}

func WithThrottle(t *throttle.Throttle) Option {
	return func(s *Service) {
		if t != nil {
			s.throttle = t
		}
	}
}

func WithGenerator(g *generator.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

func New(credentials CredentialStore, attempts AttemptStore, opts ...Option) (*Service, error) {
	if credentials == nil {
		return nil, errors.New("credential store is required")
	}
	if attempts == nil {
		return nil, errors.New("attempt store is required")
	}
	s := &Service{
		credentials: credentials,
		attempts:    attempts,
		hasher:      static.New(),
		rotating:    rotating.New(),
		throttle:    throttle.New(),
		generator:   generator.New(),
		logger:      slog.Default(),
		locks:       newScopeLocks(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// IssueStaticPIN generates a fresh PIN for the vendor, stores its hash and
// returns the plaintext once.
func (s *Service) IssueStaticPIN(ctx context.Context, vendorID int64) (*IssuedPIN, error) {
	if vendorID <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "vendor_id must be positive")
	}
	pin, err := s.generator.Generate()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate PIN")
	}
	issued, err := s.storePIN(ctx, vendorID, pin, "generated")
	if err != nil {
		return nil, err
	}
	issued.PIN = pin
	return issued, nil
}

// SetStaticPIN stores a vendor-chosen PIN. A PIN failing the format rules is
// a validation error carrying the rule's reason.
func (s *Service) SetStaticPIN(ctx context.Context, vendorID int64, pin string) (*IssuedPIN, error) {
	if vendorID <= 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "vendor_id must be positive")
	}
	return s.storePIN(ctx, vendorID, pin, "vendor")
}

func (s *Service) storePIN(ctx context.Context, vendorID int64, pin, source string) (*IssuedPIN, error) {
	res, err := s.hasher.Hash(ctx, pin)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, dErrors.New(dErrors.CodeValidation, res.Message)
	}

	cred := &models.VendorCredential{
		VendorID:  vendorID,
		Cred:      res.Credential(),
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.credentials.Save(ctx, cred); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store PIN")
	}

	if s.metrics != nil {
		s.metrics.IncrementPINIssued(source)
	}
	s.logAudit(ctx, audit.Event{
		Action:   string(audit.EventPINIssued),
		Subject:  vendorSubject(vendorID),
		VendorID: vendorID,
		Decision: source,
	})
	return &IssuedPIN{VendorID: vendorID, ExpiresAt: cred.Cred.ExpiresAt}, nil
}

// RotatingPIN returns the PIN a vendor display should show for the deal now.
func (s *Service) RotatingPIN(ctx context.Context, dealID int64) models.RotatingPinResult {
	return s.rotating.GenerateAt(dealID, requestcontext.Now(ctx))
}

// logAudit writes an audit line to the structured log and emits the event to
// the publisher when one is configured.
func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	event.Category = audit.AuditEvent(event.Action).Category()
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.Device(ctx)
	}
	event.ClientIP = requestcontext.ClientIP(ctx)

	s.logger.InfoContext(ctx, event.Action,
		"event", event.Action,
		"log_type", "audit",
		"subject", event.Subject,
		"decision", event.Decision,
		"reason", event.Reason,
		"request_id", event.RequestID,
	)
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", event.Action, "error", err)
	}
}

func vendorSubject(vendorID int64) string {
	return "vendor:" + strconv.FormatInt(vendorID, 10)
}
