package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"pinguard/internal/pin/format"
	"pinguard/internal/pin/models"
	"pinguard/internal/pin/static"
	"pinguard/internal/pin/throttle"
	dErrors "pinguard/pkg/domain-errors"
	"pinguard/pkg/platform/audit"
	"pinguard/pkg/platform/sentinel"
	"pinguard/pkg/requestcontext"
)

// Redeem runs one redemption attempt for (deal, customer).
//
// The scope's last day of history is loaded and checked by the throttle;
// a refused attempt is not recorded. Otherwise the PIN is verified in the
// requested mode and the outcome is appended, except when verification failed
// for internal reasons. Decided outcomes return a non-nil result alongside
// any error so callers can read NextAttemptAt and Message.
func (s *Service) Redeem(ctx context.Context, req RedeemRequest) (*RedeemResult, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	scope := models.NewAttemptScopeKey(req.DealID, req.CustomerID).String()
	unlock := s.locks.Lock(scope)
	defer unlock()

	now := requestcontext.Now(ctx)
	history, err := s.attempts.ListSince(ctx, scope, now.Add(-s.throttle.Config().DailyWindow))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load attempt history")
	}

	if rl := s.throttle.CheckAt(history, now); !rl.Allowed {
		s.recordThrottled(ctx, req, scope, rl)
		return &RedeemResult{Message: rl.Message, NextAttemptAt: rl.NextAttemptAt},
			dErrors.New(dErrors.CodeRateLimited, rl.Message)
	}

	start := time.Now()
	vr, err := s.verify(ctx, req, now)
	if s.metrics != nil {
		s.metrics.ObserveVerify(string(req.Mode), start)
	}
	if err != nil {
		return nil, err
	}

	if isInternal(vr.Err) {
		s.logger.ErrorContext(ctx, "PIN verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"scope", scope,
			"mode", req.Mode,
			"error", vr.Err,
		)
		s.recordOutcome(ctx, req, scope, "error", "")
		return &RedeemResult{Message: vr.Message}, vr.Err
	}

	rec := models.AttemptRecord{
		ID:          uuid.NewString(),
		AttemptedAt: now,
		Success:     vr.Valid,
		Device:      requestcontext.Device(ctx),
	}
	if err := s.attempts.Append(ctx, scope, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record attempt")
	}

	if vr.Valid {
		s.recordOutcome(ctx, req, scope, "redeemed", "")
		return &RedeemResult{Redeemed: true, Message: vr.Message}, nil
	}
	s.recordOutcome(ctx, req, scope, failureOutcome(vr.Err), vr.Message)
	return &RedeemResult{Message: vr.Message}, vr.Err
}

// verify dispatches to the static or rotating verifier. The returned error is
// reserved for failures that happen before any PIN comparison.
func (s *Service) verify(ctx context.Context, req RedeemRequest, now time.Time) (models.VerifyResult, error) {
	switch req.Mode {
	case ModeStatic:
		cred, err := s.credentials.FindByVendor(ctx, req.VendorID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return models.VerifyResult{}, dErrors.New(dErrors.CodeNotFound, "vendor has no PIN configured")
			}
			return models.VerifyResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load vendor PIN")
		}
		return s.hasher.Verify(ctx, req.PIN, cred.Cred), nil

	default:
		if err := format.Check(req.PIN); err != nil {
			return models.VerifyResult{Message: dErrors.From(err).Message, Err: err}, nil
		}
		if s.rotating.VerifyAt(req.DealID, req.PIN, now) {
			return models.VerifyResult{Valid: true, Message: static.MessageVerified}, nil
		}
		return models.VerifyResult{
			Message: static.MessageMismatch,
			Err:     dErrors.New(dErrors.CodeUnauthorized, static.MessageMismatch),
		}, nil
	}
}

func (s *Service) recordThrottled(ctx context.Context, req RedeemRequest, scope string, rl models.RateLimitResult) {
	rule := "daily"
	if rl.Message == throttle.MessageHourlyLockout {
		rule = "hourly"
	}
	if s.metrics != nil {
		s.metrics.IncrementThrottled(rule)
		s.metrics.IncrementRedemption(string(req.Mode), "throttled")
	}
	s.logAudit(ctx, audit.Event{
		Action:     string(audit.EventPINRedemptionThrottled),
		Subject:    scope,
		VendorID:   req.VendorID,
		DealID:     req.DealID,
		CustomerID: req.CustomerID,
		Mode:       string(req.Mode),
		Decision:   "denied",
		Reason:     rule,
	})
}

func (s *Service) recordOutcome(ctx context.Context, req RedeemRequest, scope, outcome, reason string) {
	if s.metrics != nil {
		s.metrics.IncrementRedemption(string(req.Mode), outcome)
	}
	event := audit.Event{
		Action:     string(audit.EventPINRedemptionFailed),
		Subject:    scope,
		VendorID:   req.VendorID,
		DealID:     req.DealID,
		CustomerID: req.CustomerID,
		Mode:       string(req.Mode),
		Decision:   outcome,
		Reason:     reason,
	}
	if outcome == "redeemed" {
		event.Action = string(audit.EventPINRedeemed)
	}
	s.logAudit(ctx, event)
}

func isInternal(err error) bool {
	return dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodeTimeout)
}

func failureOutcome(err error) string {
	switch {
	case dErrors.HasCode(err, dErrors.CodeExpired):
		return "expired"
	case dErrors.HasCode(err, dErrors.CodeValidation):
		return "invalid_format"
	default:
		return "mismatch"
	}
}
