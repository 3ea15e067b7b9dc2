package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"pinguard/internal/pin/models"
	"pinguard/internal/pin/static"
	platformmetrics "pinguard/internal/platform/metrics"
	"pinguard/internal/redemption/handler"
	redemptionmetrics "pinguard/internal/redemption/metrics"
	"pinguard/internal/redemption/service"
	"pinguard/pkg/platform/middleware/request"
	"pinguard/pkg/testutil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	in := &infra{}
	credentials, attempts, _ := buildStores(in, log, redemptionmetrics.NewWithRegisterer(prometheus.NewRegistry()))

	svc, err := service.New(credentials, attempts,
		service.WithLogger(log),
		service.WithHasher(static.New(static.WithCost(bcrypt.MinCost))),
	)
	require.NoError(t, err)
	return newRouter(log, in, platformmetrics.NewWithRegisterer(prometheus.NewRegistry()), handler.New(svc, log))
}

func otherPIN(pin string) string {
	if pin == "5829" {
		return "5830"
	}
	return "5829"
}

func TestRouterScenarios(t *testing.T) {
	testutil.Given(t, "a server backed by in-memory stores", func(t *testing.T) {
		router := newTestRouter(t)

		testutil.When(t, "checking health", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/healthz", nil))

			testutil.Then(t, "it reports ok with a request id", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, rr.Code)
				assert.NotEmpty(t, rr.Header().Get(request.HeaderRequestID))
			})
		})

		testutil.When(t, "a vendor asks for a generated PIN and a customer redeems it", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/vendors/5/pin", nil))
			require.Equal(t, http.StatusCreated, rr.Code)
			issued := testutil.UnmarshalResponse[handler.IssuedPINResponse](t, rr)

			body := map[string]any{"vendor_id": 5, "customer_id": "c-1", "mode": "static", "pin": issued.PIN}
			rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/deals/100/redeem", body))

			testutil.Then(t, "the redemption succeeds", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, rr.Code)
				assert.True(t, testutil.UnmarshalResponse[handler.RedeemResponse](t, rr).Redeemed)
			})
		})

		testutil.When(t, "a customer keeps guessing a static PIN", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/vendors/6/pin", nil))
			require.Equal(t, http.StatusCreated, rr.Code)
			issued := testutil.UnmarshalResponse[handler.IssuedPINResponse](t, rr)

			wrong := map[string]any{"vendor_id": 6, "customer_id": "c-9", "pin": otherPIN(issued.PIN)}
			for i := range 5 {
				rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/deals/101/redeem", wrong))
				require.Equal(t, http.StatusUnauthorized, rr.Code, fmt.Sprintf("attempt %d", i+1))
			}

			right := map[string]any{"vendor_id": 6, "customer_id": "c-9", "pin": issued.PIN}
			rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/deals/101/redeem", right))

			testutil.Then(t, "even the right PIN is refused until the lockout ends", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusTooManyRequests, "rate_limited")
				assert.NotEmpty(t, rr.Header().Get("Retry-After"))
			})
		})

		testutil.When(t, "a display fetches the rotating PIN", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodGet, "/deals/77/rotating-pin", nil))
			require.Equal(t, http.StatusOK, rr.Code)
			current := testutil.UnmarshalResponse[models.RotatingPinResult](t, rr)

			body := map[string]any{"customer_id": "c-1", "mode": "rotating", "pin": current.CurrentPin}
			rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/deals/77/redeem", body))

			testutil.Then(t, "the shown PIN redeems", func(t *testing.T) {
				assert.Equal(t, http.StatusOK, rr.Code)
				assert.Equal(t, 30, current.RotationInterval)
			})
		})

		testutil.When(t, "the redeem body is malformed", func(t *testing.T) {
			rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/deals/77/redeem", "not an object"))

			testutil.Then(t, "it is a bad request", func(t *testing.T) {
				testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
			})
		})
	})
}
