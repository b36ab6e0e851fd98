package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	analyses    *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	lastScore   *prometheus.GaugeVec
	latency     *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		analyses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainsight_analyses_total",
				Help: "Total number of completed analyses by bias",
			},
			[]string{"symbol", "bias"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chainsight_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastScore: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "chainsight_last_score",
				Help: "Last computed signal score for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "chainsight_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordAnalysis records one completed analysis.
func (r *Recorder) RecordAnalysis(symbol, bias string) {
	r.analyses.WithLabelValues(symbol, bias).Inc()
}

// RecordScore records the latest score for a symbol.
func (r *Recorder) RecordScore(symbol string, score float64) {
	r.lastScore.WithLabelValues(symbol).Set(score)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
