// Package metrics records exchange and aggregation metrics in a Prometheus
// registry that can be written out as a node_exporter textfile.
package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"financehub/internal/coordinator"
)

const namespace = "financehub"

// Recorder owns a registry and the collectors registered with it.
type Recorder struct {
	registry *prometheus.Registry

	exchangeCount    *prometheus.CounterVec
	exchangeDuration *prometheus.HistogramVec
	responseBytes    *prometheus.HistogramVec
	sourceUp         *prometheus.GaugeVec
	sourceAccounts   *prometheus.GaugeVec
	categoryTotal    *prometheus.GaugeVec
	lastRun          prometheus.Gauge
}

// New creates a Recorder with a private registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		exchangeCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "exchanges_total",
				Help:      "How many exchanges were performed, partitioned by API and status code.",
			},
			[]string{"api", "code"},
		),
		exchangeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "exchange_duration_seconds",
				Help:      "Exchange latencies in seconds, including reading the body.",
			},
			[]string{"api"},
		),
		responseBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "response_bytes",
				Help:      "Size of response bodies delivered to the accumulator.",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 6),
			},
			[]string{"api"},
		),
		sourceUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "source_up",
				Help:      "Whether the last fetch of a source succeeded.",
			},
			[]string{"source", "institution"},
		),
		sourceAccounts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "source_accounts",
				Help:      "Accounts returned by a source in the last run.",
			},
			[]string{"source", "institution"},
		),
		categoryTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "category_balance",
				Help:      "Sum of balances per category in the last run.",
			},
			[]string{"category"},
		),
		lastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last aggregation finished.",
			},
		),
	}

	r.registry.MustRegister(
		r.exchangeCount,
		r.exchangeDuration,
		r.responseBytes,
		r.sourceUp,
		r.sourceAccounts,
		r.categoryTotal,
		r.lastRun,
	)
	return r
}

// ObserveExchange records one exchange. statusCode is zero when the exchange
// failed before a status was received.
func (r *Recorder) ObserveExchange(api string, statusCode int, elapsed time.Duration, bytes int) {
	code := "error"
	if statusCode > 0 {
		code = strconv.Itoa(statusCode)
	}
	r.exchangeCount.WithLabelValues(api, code).Inc()
	r.exchangeDuration.WithLabelValues(api).Observe(elapsed.Seconds())
	r.responseBytes.WithLabelValues(api).Observe(float64(bytes))
}

// ObserveSummary records per-source status and category totals of a run.
func (r *Recorder) ObserveSummary(s *coordinator.Summary) {
	for _, src := range s.Sources {
		up := 0.0
		if src.OK() {
			up = 1
		}
		r.sourceUp.WithLabelValues(src.Key, src.Institution).Set(up)
		r.sourceAccounts.WithLabelValues(src.Key, src.Institution).Set(float64(src.Entries))
	}
	for _, c := range s.Totals.Categories() {
		r.categoryTotal.WithLabelValues(string(c)).Set(s.Totals.Get(c))
	}
	r.lastRun.SetToCurrentTime()
}

// Registry returns the registry holding every collector.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteFile writes the metrics in text exposition format to path, replacing
// it atomically.
func (r *Recorder) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
