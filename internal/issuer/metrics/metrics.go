package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the issuer registry module.
type Metrics struct {
	IssuersGranted         prometheus.Counter
	IssuersRevoked         prometheus.Counter
	UnauthorizedAdminCalls prometheus.Counter
	AuthCheckDuration      prometheus.Histogram
}

// New creates a Metrics instance with all issuer module metrics registered.
func New() *Metrics {
	return &Metrics{
		IssuersGranted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certreg_issuers_granted_total",
			Help: "Total number of successful issuer grants",
		}),
		IssuersRevoked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certreg_issuers_revoked_total",
			Help: "Total number of successful issuer revocations",
		}),
		UnauthorizedAdminCalls: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certreg_unauthorized_admin_calls_total",
			Help: "Total number of admin operations rejected because the caller is not the owner",
		}),
		AuthCheckDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certreg_issuer_auth_check_duration_seconds",
			Help:    "Duration of issuer authorization checks (issuance critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveAuthCheck records the duration of an authorization check.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveAuthCheck(start time.Time) {
	m.AuthCheckDuration.Observe(time.Since(start).Seconds())
}
