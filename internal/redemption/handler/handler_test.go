package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"pinguard/internal/pin/models"
	"pinguard/internal/pin/throttle"
	"pinguard/internal/redemption/handler/mocks"
	"pinguard/internal/redemption/service"
	dErrors "pinguard/pkg/domain-errors"
	"pinguard/pkg/platform/httputil"
	"pinguard/pkg/requestcontext"
	"pinguard/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	now     time.Time
	service *mocks.MockService
	router  chi.Router
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC)
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *HandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req = testutil.WithRequestTime(req, s.now)
	req = testutil.WithDevice(req, "Chrome on Android")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (s *HandlerSuite) TestSetPIN() {
	expires := s.now.Add(90 * 24 * time.Hour)

	s.Run("empty body generates a PIN", func() {
		s.service.EXPECT().IssueStaticPIN(gomock.Any(), int64(7)).
			Return(&service.IssuedPIN{VendorID: 7, PIN: "5829", ExpiresAt: expires}, nil)

		w := s.do(http.MethodPost, "/vendors/7/pin", "")
		s.Equal(http.StatusCreated, w.Code)
		resp := decode[IssuedPINResponse](s.T(), w)
		s.Equal("5829", resp.PIN)
		s.True(expires.Equal(resp.ExpiresAt))
	})

	s.Run("vendor chosen PIN is trimmed and not echoed", func() {
		s.service.EXPECT().SetStaticPIN(gomock.Any(), int64(7), "5829").
			Return(&service.IssuedPIN{VendorID: 7, ExpiresAt: expires}, nil)

		w := s.do(http.MethodPost, "/vendors/7/pin", `{"pin":" 5829 "}`)
		s.Equal(http.StatusCreated, w.Code)
		s.NotContains(w.Body.String(), "5829")
	})

	s.Run("weak PIN is a bad request", func() {
		s.service.EXPECT().SetStaticPIN(gomock.Any(), int64(7), "1111").
			Return(nil, dErrors.New(dErrors.CodeValidation, "PIN cannot be all the same digit"))

		w := s.do(http.MethodPost, "/vendors/7/pin", `{"pin":"1111"}`)
		s.Equal(http.StatusBadRequest, w.Code)
		resp := decode[httputil.ErrorResponse](s.T(), w)
		s.Equal("PIN cannot be all the same digit", resp.ErrorDescription)
	})

	s.Run("invalid vendor id", func() {
		w := s.do(http.MethodPost, "/vendors/abc/pin", "")
		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("malformed JSON", func() {
		w := s.do(http.MethodPost, "/vendors/7/pin", `{"pin":`)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *HandlerSuite) TestRotatingPIN() {
	s.service.EXPECT().RotatingPIN(gomock.Any(), int64(42)).
		DoAndReturn(func(ctx context.Context, _ int64) models.RotatingPinResult {
			s.Equal(s.now, requestcontext.Now(ctx))
			return models.RotatingPinResult{CurrentPin: "4534", RotationInterval: 30, IsActive: true}
		})

	w := s.do(http.MethodGet, "/deals/42/rotating-pin", "")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("no-store", w.Header().Get("Cache-Control"))
	resp := decode[models.RotatingPinResult](s.T(), w)
	s.Equal("4534", resp.CurrentPin)
}

func (s *HandlerSuite) TestRedeem() {
	s.Run("success", func() {
		s.service.EXPECT().Redeem(gomock.Any(), service.RedeemRequest{
			DealID: 42, CustomerID: "c-1", Mode: service.ModeRotating, PIN: "4534",
		}).Return(&service.RedeemResult{Redeemed: true, Message: "PIN verified successfully"}, nil)

		w := s.do(http.MethodPost, "/deals/42/redeem", `{"customer_id":"c-1","mode":"Rotating","pin":"4534"}`)
		s.Equal(http.StatusOK, w.Code)
		resp := decode[RedeemResponse](s.T(), w)
		s.True(resp.Redeemed)
	})

	s.Run("mode defaults to static", func() {
		s.service.EXPECT().Redeem(gomock.Any(), service.RedeemRequest{
			DealID: 42, VendorID: 3, CustomerID: "c-1", Mode: service.ModeStatic, PIN: "5829",
		}).Return(&service.RedeemResult{Redeemed: true}, nil)

		w := s.do(http.MethodPost, "/deals/42/redeem", `{"vendor_id":3,"customer_id":"c-1","pin":"5829"}`)
		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("mismatch is unauthorized", func() {
		s.service.EXPECT().Redeem(gomock.Any(), gomock.Any()).
			Return(&service.RedeemResult{Message: "Invalid PIN"}, dErrors.New(dErrors.CodeUnauthorized, "Invalid PIN"))

		w := s.do(http.MethodPost, "/deals/42/redeem", `{"vendor_id":3,"customer_id":"c-1","pin":"5830"}`)
		s.Equal(http.StatusUnauthorized, w.Code)
		s.Equal("Invalid PIN", decode[httputil.ErrorResponse](s.T(), w).ErrorDescription)
	})

	s.Run("throttled sets Retry-After", func() {
		next := s.now.Add(50 * time.Minute)
		s.service.EXPECT().Redeem(gomock.Any(), gomock.Any()).
			Return(&service.RedeemResult{Message: throttle.MessageHourlyLockout, NextAttemptAt: &next},
				dErrors.New(dErrors.CodeRateLimited, throttle.MessageHourlyLockout))

		w := s.do(http.MethodPost, "/deals/42/redeem", `{"vendor_id":3,"customer_id":"c-1","pin":"5829"}`)
		s.Equal(http.StatusTooManyRequests, w.Code)
		s.Equal("3000", w.Header().Get("Retry-After"))
		resp := decode[ThrottledResponse](s.T(), w)
		s.Equal("rate_limited", resp.Error)
		s.Require().NotNil(resp.NextAttemptAt)
		s.True(next.Equal(*resp.NextAttemptAt))
	})

	s.Run("internal errors hide details", func() {
		s.service.EXPECT().Redeem(gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeInternal, "failed to load attempt history"))

		w := s.do(http.MethodPost, "/deals/42/redeem", `{"vendor_id":3,"customer_id":"c-1","pin":"5829"}`)
		s.Equal(http.StatusInternalServerError, w.Code)
		s.Empty(decode[httputil.ErrorResponse](s.T(), w).ErrorDescription)
	})
}

func (s *HandlerSuite) TestRedeemRejectsBadBodies() {
	cases := map[string]string{
		"missing customer":      `{"vendor_id":3,"pin":"5829"}`,
		"missing pin":           `{"vendor_id":3,"customer_id":"c-1"}`,
		"static without vendor": `{"customer_id":"c-1","pin":"5829"}`,
		"unknown mode":          `{"customer_id":"c-1","mode":"sms","pin":"5829"}`,
		"empty body":            ``,
	}
	for name, body := range cases {
		s.Run(name, func() {
			w := s.do(http.MethodPost, "/deals/42/redeem", body)
			s.Equal(http.StatusBadRequest, w.Code)
		})
	}

	s.Run("non-numeric deal", func() {
		w := s.do(http.MethodPost, "/deals/x/redeem", `{"customer_id":"c-1","mode":"rotating","pin":"4534"}`)
		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func TestRetryAfterSeconds(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, 60, retryAfterSeconds(now.Add(time.Minute), now))
	assert.Equal(t, 2, retryAfterSeconds(now.Add(1500*time.Millisecond), now))
	assert.Equal(t, 1, retryAfterSeconds(now, now), "daily limit resolves to now")
}
