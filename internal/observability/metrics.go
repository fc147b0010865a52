package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for a run. Each Metrics value
// carries its own registry so parallel test runs never collide on
// registration.
type Metrics struct {
	registry *prometheus.Registry

	// Interaction metrics
	InteractionsTotal *prometheus.CounterVec
	RetriesTotal      *prometheus.CounterVec

	// Selector resolution metrics
	StrategyAttempts *prometheus.CounterVec
	StrategyHits     *prometheus.CounterVec

	// Wait metrics
	WaitTimeouts *prometheus.CounterVec

	// Scenario metrics
	ScenariosTotal   *prometheus.CounterVec
	ScenarioDuration *prometheus.HistogramVec

	// Diagnostics metrics
	CapturesTotal   prometheus.Counter
	CaptureFailures prometheus.Counter
}

// NewMetrics creates a metrics instance with all instruments registered
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "quoteforge"
	}

	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		InteractionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interactions_total",
				Help:      "Total interaction primitive invocations by verb",
			},
			[]string{"verb"},
		),
		RetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "interaction_retries_total",
				Help:      "Retry attempts inside interaction primitives by verb",
			},
			[]string{"verb"},
		),
		StrategyAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selector_strategy_attempts_total",
				Help:      "Selector strategies tried during resolution",
			},
			[]string{"strategy"},
		),
		StrategyHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "selector_strategy_hits_total",
				Help:      "Selector strategies that produced the winning match",
			},
			[]string{"strategy"},
		),
		WaitTimeouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wait_timeouts_total",
				Help:      "Wait conditions that expired before holding",
			},
			[]string{"condition"},
		),
		ScenariosTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "scenarios_total",
				Help:      "Scenarios completed by terminal status",
			},
			[]string{"status"},
		),
		ScenarioDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "scenario_duration_seconds",
				Help:      "Scenario wall-clock duration",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"scenario"},
		),
		CapturesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnostic_captures_total",
				Help:      "Diagnostics bundles captured",
			},
		),
		CaptureFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "diagnostic_capture_failures_total",
				Help:      "Diagnostics capture attempts that themselves failed",
			},
		),
	}

	reg.MustRegister(
		m.InteractionsTotal,
		m.RetriesTotal,
		m.StrategyAttempts,
		m.StrategyHits,
		m.WaitTimeouts,
		m.ScenariosTotal,
		m.ScenarioDuration,
		m.CapturesTotal,
		m.CaptureFailures,
	)

	return m
}

// Handler exposes the registry for scraping or end-of-run dumps
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
