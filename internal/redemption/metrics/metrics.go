package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for PIN issuance and redemption.
type Metrics struct {
	PINsIssued       *prometheus.CounterVec
	Redemptions      *prometheus.CounterVec
	Throttled        *prometheus.CounterVec
	VerifyDuration   *prometheus.HistogramVec
	StoreFallbacks   *prometheus.CounterVec
	AttemptStoreOpen prometheus.Gauge
}

// New registers metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		PINsIssued: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pinguard_pins_issued_total",
			Help: "Static PINs stored, by source (generated or vendor)",
		}, []string{"source"}),
		Redemptions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pinguard_redemptions_total",
			Help: "PIN redemption outcomes by mode",
		}, []string{"mode", "outcome"}),
		Throttled: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pinguard_redemptions_throttled_total",
			Help: "Redemptions refused by the attempt throttle, by rule",
		}, []string{"rule"}),
		VerifyDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pinguard_pin_verify_duration_seconds",
			Help:    "Duration of PIN verification, dominated by bcrypt for static PINs",
			Buckets: []float64{0.0005, 0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2},
		}, []string{"mode"}),
		StoreFallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pinguard_attempt_store_fallbacks_total",
			Help: "Attempt store operations served by the in-memory fallback",
		}, []string{"op"}),
		AttemptStoreOpen: f.NewGauge(prometheus.GaugeOpts{
			Name: "pinguard_attempt_store_circuit_open",
			Help: "1 while the attempt store circuit breaker is open",
		}),
	}
}

func (m *Metrics) IncrementPINIssued(source string) {
	m.PINsIssued.WithLabelValues(source).Inc()
}

func (m *Metrics) IncrementRedemption(mode, outcome string) {
	m.Redemptions.WithLabelValues(mode, outcome).Inc()
}

func (m *Metrics) IncrementThrottled(rule string) {
	m.Throttled.WithLabelValues(rule).Inc()
}

// ObserveVerify records verification latency. Call with time.Now() taken
// before verification started.
func (m *Metrics) ObserveVerify(mode string, start time.Time) {
	m.VerifyDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementStoreFallback(op string) {
	m.StoreFallbacks.WithLabelValues(op).Inc()
}

func (m *Metrics) SetAttemptStoreCircuitOpen(open bool) {
	if open {
		m.AttemptStoreOpen.Set(1)
		return
	}
	m.AttemptStoreOpen.Set(0)
}
