package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "licensegate"

// LicenseMetrics counts validation, token issuance and authentication outcomes.
// Outcome labels are "success" or an error code from the closed taxonomy.
type LicenseMetrics struct {
	validations     *prometheus.CounterVec
	tokensIssued    *prometheus.CounterVec
	authentications *prometheus.CounterVec
}

// NewLicenseMetrics registers the license counters on reg. A nil registerer yields a
// collector whose methods do nothing.
func NewLicenseMetrics(reg prometheus.Registerer) *LicenseMetrics {
	if reg == nil {
		return &LicenseMetrics{}
	}
	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "license_validations_total",
		Help:      "License validation requests by outcome.",
	}, []string{"outcome"})
	tokensIssued := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "license_token_issued_total",
		Help:      "Site tokens minted, by reason.",
	}, []string{"reason"})
	authentications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "license_authentications_total",
		Help:      "Bearer token authentications by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(validations, tokensIssued, authentications)
	return &LicenseMetrics{
		validations:     validations,
		tokensIssued:    tokensIssued,
		authentications: authentications,
	}
}

func (m *LicenseMetrics) ObserveValidation(outcome string) {
	if m == nil || m.validations == nil {
		return
	}
	m.validations.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *LicenseMetrics) ObserveTokenIssued(reason string) {
	if m == nil || m.tokensIssued == nil {
		return
	}
	m.tokensIssued.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *LicenseMetrics) ObserveAuthentication(outcome string) {
	if m == nil || m.authentications == nil {
		return
	}
	m.authentications.WithLabelValues(normalizeLabel(outcome)).Inc()
}
