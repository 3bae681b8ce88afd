// Package metrics exposes Prometheus collectors for pmmlconv conversions.
//
// Collectors are registered with the default registry when the package is
// loaded:
//
//	timer := metrics.NewTimer("convert")
//	doc, err := conv.Assemble(ctx, est, tc)
//	metrics.RecordConversion("regression", err, timer.Stop())
//
// Serve publishes them over HTTP for the duration of a CLI run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConversionsTotal counts document assemblies by mode and outcome
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pmmlconv_conversions_total",
			Help: "Total number of PMML documents assembled",
		},
		[]string{"mode", "status"},
	)

	// ConversionDuration tracks how long assembly takes
	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pmmlconv_conversion_duration_seconds",
			Help:    "Document assembly latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"mode"},
	)

	// DerivedFieldsTotal counts derived numeric features by kind
	// ("lookup" for categorical encodings, "passthrough" for numeric inputs)
	DerivedFieldsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pmmlconv_derived_fields_total",
			Help: "Total number of derived numeric features produced",
		},
		[]string{"kind"},
	)

	// DocumentBytes tracks the size of encoded documents before compression
	DocumentBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pmmlconv_document_bytes",
			Help:    "Size of encoded PMML documents in bytes",
			Buckets: prometheus.ExponentialBuckets(512, 4, 10),
		},
	)
)

// Timer measures an operation's duration from creation
type Timer struct {
	start time.Time
	name  string
}

// NewTimer creates a new timer and starts timing immediately
func NewTimer(name string) *Timer {
	return &Timer{
		start: time.Now(),
		name:  name,
	}
}

// Name returns the operation the timer measures
func (t *Timer) Name() string {
	return t.name
}

// Stop returns the elapsed duration since creation. It may be called more
// than once.
func (t *Timer) Stop() time.Duration {
	return time.Since(t.start)
}

// RecordConversion counts one assembly and observes its duration
func RecordConversion(mode string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	ConversionsTotal.WithLabelValues(mode, status).Inc()
	ConversionDuration.WithLabelValues(mode).Observe(d.Seconds())
}

// RecordDerivedFields counts the derived features of one assembly
func RecordDerivedFields(lookups, passthrough int) {
	DerivedFieldsTotal.WithLabelValues("lookup").Add(float64(lookups))
	DerivedFieldsTotal.WithLabelValues("passthrough").Add(float64(passthrough))
}

// RecordDocumentSize observes the size of an encoded document
func RecordDocumentSize(n int64) {
	DocumentBytes.Observe(float64(n))
}
