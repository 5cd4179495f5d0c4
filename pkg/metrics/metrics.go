// Package metrics declares the Prometheus collectors shared by the HTTP
// server, the generation workers and the game sessions. Collectors are
// registered with the default registry, which the server exposes.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const namespace = "radiomirchi"

// DefaultBuckets provides a common set of histogram buckets in seconds that can
// be reused across the application for latency metrics.
var DefaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10} //nolint: gochecknoglobals

// GenerationBuckets suit language model calls, which take seconds.
var GenerationBuckets = []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60, 120} //nolint: gochecknoglobals

//nolint:gochecknoglobals
var (
	// HTTPRequestDuration observes request latency by method and status code.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests.",
		Buckets:   DefaultBuckets,
	}, []string{"method", "code"})

	// GenerationJobs counts finished generation jobs by result
	// (succeeded, failed, dropped, interrupted).
	GenerationJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "jobs_total",
		Help:      "Finished mission generation jobs.",
	}, []string{"result"})

	// GenerationAttempts counts single generation attempts, retries included.
	GenerationAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "attempts_total",
		Help:      "Mission generation attempts including retries.",
	})

	// GenerationDuration observes the duration of whole generation jobs.
	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "job_duration_seconds",
		Help:      "Duration of mission generation jobs.",
		Buckets:   GenerationBuckets,
	})

	// QueueDepth is the number of missions waiting for a worker.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "worker",
		Name:      "queue_depth",
		Help:      "Missions waiting for generation.",
	})

	// ActiveSessions is the number of connected game sessions.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "game",
		Name:      "active_sessions",
		Help:      "Connected game sessions.",
	})

	// DialogueRounds counts dialogue generation rounds by result (ok, error).
	DialogueRounds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "game",
		Name:      "dialogue_rounds_total",
		Help:      "Dialogue generation rounds.",
	}, []string{"result"})
)

// NewMeterProvider returns an OpenTelemetry meter provider whose instruments
// are exported through registerer, next to the collectors above. A nil
// registerer means the default one.
func NewMeterProvider(registerer prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	exp, err := otelprom.New(otelprom.WithRegisterer(registerer))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}
