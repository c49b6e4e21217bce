package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for catalog retrieval.
type Metrics struct {
	FetchRequests *prometheus.CounterVec   // labels: operation={event,window}, outcome={success,empty,fetch_error,document_error}
	FetchDuration *prometheus.HistogramVec // labels: operation={event,window}

	EventsDecoded   prometheus.Counter
	EventsDropped   *prometheus.CounterVec // labels: reason
	RecordsReturned prometheus.Histogram

	RecordsPublished prometheus.Counter
	PublishErrors    prometheus.Counter
}

// NewMetrics creates and registers all catalog metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchDuration,
		m.EventsDecoded,
		m.EventsDropped,
		m.RecordsReturned,
		m.RecordsPublished,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_catalog",
			Name:      "fetch_requests_total",
			Help:      "FDSN catalog requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "quake_catalog",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of one FDSN round trip including decode.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		EventsDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_catalog",
			Name:      "events_decoded_total",
			Help:      "Event elements decoded into records.",
		}),
		EventsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "quake_catalog",
			Name:      "events_dropped_total",
			Help:      "Event elements skipped during decode, by reason.",
		}, []string{"reason"}),
		RecordsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "quake_catalog",
			Name:      "records_returned",
			Help:      "Records returned per accessor call.",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000, 5000, 20000},
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_catalog",
			Name:      "records_published_total",
			Help:      "Records written to the Kafka sink topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "quake_catalog",
			Name:      "publish_errors_total",
			Help:      "Failed Kafka batch writes.",
		}),
	}
}
