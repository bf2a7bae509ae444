package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the certificate module.
type Metrics struct {
	CertificatesIssued   prometheus.Counter
	IssuanceRejected     *prometheus.CounterVec
	VerificationRequests *prometheus.CounterVec
	IssueDuration        prometheus.Histogram
	VerifyDuration       prometheus.Histogram
}

// New creates a Metrics instance with all certificate module metrics registered.
func New() *Metrics {
	return &Metrics{
		CertificatesIssued: promauto.NewCounter(prometheus.CounterOpts{
			Name: "certreg_certificates_issued_total",
			Help: "Total number of certificates issued",
		}),
		IssuanceRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certreg_issuance_rejected_total",
			Help: "Total number of rejected issuance attempts by reason",
		}, []string{"reason"}),
		VerificationRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "certreg_verification_requests_total",
			Help: "Total number of verification lookups by outcome",
		}, []string{"outcome"}),
		IssueDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certreg_issue_duration_seconds",
			Help:    "Duration of certificate issuance operations",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		VerifyDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "certreg_verify_duration_seconds",
			Help:    "Duration of certificate verification lookups",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveIssue records the duration of an issuance operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveIssue(start time.Time) {
	m.IssueDuration.Observe(time.Since(start).Seconds())
}

// ObserveVerify records the duration of a verification lookup.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveVerify(start time.Time) {
	m.VerifyDuration.Observe(time.Since(start).Seconds())
}
