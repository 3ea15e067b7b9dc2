// Package handler exposes PIN issuance, rotating PIN display and redemption
// over HTTP.
package handler

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"pinguard/internal/pin/models"
	"pinguard/internal/redemption/service"
	"pinguard/pkg/domain"
	dErrors "pinguard/pkg/domain-errors"
	"pinguard/pkg/platform/httputil"
	"pinguard/pkg/requestcontext"
)

type Service interface {
	IssueStaticPIN(ctx context.Context, vendorID int64) (*service.IssuedPIN, error)
	SetStaticPIN(ctx context.Context, vendorID int64, pin string) (*service.IssuedPIN, error)
	RotatingPIN(ctx context.Context, dealID int64) models.RotatingPinResult
	Redeem(ctx context.Context, req service.RedeemRequest) (*service.RedeemResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(svc Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: svc, logger: logger}
}

// Register mounts the PIN endpoints on r.
func (h *Handler) Register(r chi.Router) {
	r.Post("/vendors/{vendorID}/pin", h.HandleSetPIN)
	r.Get("/deals/{dealID}/rotating-pin", h.HandleRotatingPIN)
	r.Post("/deals/{dealID}/redeem", h.HandleRedeem)
}

// HandleSetPIN stores a vendor PIN, generating one when the body carries none.
func (h *Handler) HandleSetPIN(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	vendorID, err := domain.ParseVendorID(chi.URLParam(r, "vendorID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetPINRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var issued *service.IssuedPIN
	if req.PIN == "" {
		issued, err = h.service.IssueStaticPIN(ctx, int64(vendorID))
	} else {
		issued, err = h.service.SetStaticPIN(ctx, int64(vendorID), req.PIN)
	}
	if err != nil {
		h.logFailure(ctx, "failed to set vendor PIN", err, "vendor_id", vendorID.String())
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, fromIssued(issued))
}

func (h *Handler) HandleRotatingPIN(w http.ResponseWriter, r *http.Request) {
	dealID, err := domain.ParseDealID(chi.URLParam(r, "dealID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	httputil.WriteJSON(w, http.StatusOK, h.service.RotatingPIN(r.Context(), int64(dealID)))
}

// HandleRedeem handles POST /deals/{dealID}/redeem. Throttled attempts get 429
// with Retry-After; other refusals map through their domain code.
func (h *Handler) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	dealID, err := domain.ParseDealID(chi.URLParam(r, "dealID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[RedeemRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Redeem(ctx, req.toService(dealID))
	if err != nil {
		if dErrors.Is(err, dErrors.CodeRateLimited) && result != nil {
			h.writeThrottled(ctx, w, result)
			return
		}
		h.logFailure(ctx, "redemption refused", err, "deal_id", dealID.String(), "mode", req.Mode)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "PIN redeemed",
		"request_id", requestID,
		"deal_id", dealID.String(),
		"mode", req.Mode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, RedeemResponse{Redeemed: result.Redeemed, Message: result.Message})
}

func (h *Handler) writeThrottled(ctx context.Context, w http.ResponseWriter, result *service.RedeemResult) {
	if result.NextAttemptAt != nil {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(*result.NextAttemptAt, requestcontext.Now(ctx))))
	}
	httputil.WriteJSON(w, http.StatusTooManyRequests, ThrottledResponse{
		Error:            string(dErrors.CodeRateLimited),
		ErrorDescription: result.Message,
		NextAttemptAt:    result.NextAttemptAt,
	})
}

// retryAfterSeconds rounds up and never returns less than one second.
func retryAfterSeconds(next, now time.Time) int {
	secs := int(math.Ceil(next.Sub(now).Seconds()))
	return max(secs, 1)
}

// logFailure logs client errors at warn and everything else at error.
func (h *Handler) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	attrs = append(attrs, "request_id", requestcontext.RequestID(ctx), "error", err)
	if de := dErrors.From(err); de != nil && httputil.StatusFor(de.Code) < http.StatusInternalServerError {
		h.logger.WarnContext(ctx, msg, attrs...)
		return
	}
	h.logger.ErrorContext(ctx, msg, attrs...)
}
