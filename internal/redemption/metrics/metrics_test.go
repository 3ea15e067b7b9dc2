package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	m := NewWithRegisterer(prometheus.NewRegistry())

	m.IncrementRedemption("static", "redeemed")
	m.IncrementRedemption("static", "redeemed")
	m.IncrementThrottled("hourly")
	m.IncrementPINIssued("generated")
	m.ObserveVerify("rotating", time.Now())
	m.SetAttemptStoreCircuitOpen(true)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Redemptions.WithLabelValues("static", "redeemed")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Throttled.WithLabelValues("hourly")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PINsIssued.WithLabelValues("generated")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AttemptStoreOpen))
	assert.Equal(t, 1, testutil.CollectAndCount(m.VerifyDuration))

	m.SetAttemptStoreCircuitOpen(false)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.AttemptStoreOpen))
}
