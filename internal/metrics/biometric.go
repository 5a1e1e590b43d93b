package metrics

import "github.com/prometheus/client_golang/prometheus"

// Biometric Prometheus metrics.
var (
	ValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "biogate",
			Name:      "validations_total",
			Help:      "Total number of validation attempts",
		},
		[]string{"modality", "outcome"}, // accepted / rejected / violation / error
	)

	EnrollmentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "biogate",
			Name:      "enrollments_total",
			Help:      "Total number of template enrollments",
		},
		[]string{"modality"},
	)

	ExtractionFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "biogate",
			Name:      "extraction_failures_total",
			Help:      "Total feature extraction failures",
		},
		[]string{"modality"},
	)

	SecurityViolationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "biogate",
			Name:      "security_violations_total",
			Help:      "Total cross-modal security violations",
		},
	)

	MatchConfidence = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "biogate",
			Name:      "match_confidence",
			Help:      "Best-candidate confidence per validation",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.65, 0.7, 0.77, 0.8, 0.9, 0.95, 1},
		},
		[]string{"modality"},
	)

	TemplatesScanned = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "biogate",
			Name:      "templates_scanned",
			Help:      "Enrolled templates scanned per validation",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250},
		},
		[]string{"modality"},
	)
)

var bioMetricsRegistered bool

// RegisterBiometricMetrics registers Prometheus biometric metrics. Must be called once from main.
func RegisterBiometricMetrics() {
	if bioMetricsRegistered {
		return
	}
	prometheus.MustRegister(ValidationsTotal)
	prometheus.MustRegister(EnrollmentsTotal)
	prometheus.MustRegister(ExtractionFailuresTotal)
	prometheus.MustRegister(SecurityViolationsTotal)
	prometheus.MustRegister(MatchConfidence)
	prometheus.MustRegister(TemplatesScanned)
	bioMetricsRegistered = true
}
