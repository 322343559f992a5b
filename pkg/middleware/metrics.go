package middleware

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/pagenav/pkg/server"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "pagenav").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for event duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "pagenav",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

type metrics struct {
	eventsTotal      *prometheus.CounterVec
	eventDuration    *prometheus.HistogramVec
	eventErrors      *prometheus.CounterVec
	swipesTotal      *prometheus.CounterVec
	navigationsTotal *prometheus.CounterVec
	patchesSent      prometheus.Counter
	eventsDropped    prometheus.Counter
	activeSessions   prometheus.Gauge
}

// globalMetrics is created by the first call to Prometheus.
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)
	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}, labels)
	}

	return &metrics{
		eventsTotal: counter("events_total",
			"Client events handled, by page, event type and outcome",
			"path", "type", "outcome"),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Event handling duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"type"}),

		eventErrors: counter("event_errors_total",
			"Events whose handling returned an error",
			"type", "error_type"),

		swipesTotal: counter("swipes_total",
			"Recognized swipes by swipe direction",
			"direction"),

		navigationsTotal: counter("navigations_total",
			"Direction signals routed, by source, resolved direction and status",
			"source", "direction", "status"),

		patchesSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_sent_total",
			Help:        "Patches sent to clients over closed sessions",
			ConstLabels: config.ConstLabels,
		}),

		eventsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_dropped_total",
			Help:        "Client events dropped because a session queue was full",
			ConstLabels: config.ConstLabels,
		}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of open page sessions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Prometheus creates event middleware that records Prometheus metrics.
//
// Metrics collected:
//   - pagenav_events_total: events by path, type and outcome
//   - pagenav_event_duration_seconds: event handling duration by type
//   - pagenav_event_errors_total: handling errors by type and category
//   - pagenav_swipes_total: recognized swipes by direction
//   - pagenav_navigations_total: routed signals by source, direction and status
//   - pagenav_patches_sent_total, pagenav_events_dropped_total and
//     pagenav_active_sessions, fed by RecordSessionCreate and
//     RecordSessionDestroy
//
// Example:
//
//	srv.Use(middleware.Prometheus())
//	srv.Mount("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) server.EventMiddleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return server.EventMiddlewareFunc(func(ec *server.EventContext, next func() error) error {
		path := ec.Path()
		if path == "" {
			path = "/"
		}
		etype := "Unknown"
		if ev := ec.Event(); ev != nil {
			etype = ev.Type.String()
		}

		start := time.Now()
		err := next()
		m.eventDuration.WithLabelValues(etype).Observe(time.Since(start).Seconds())

		outcome := ec.Outcome
		if err != nil {
			outcome = server.OutcomeError
			m.eventErrors.WithLabelValues(etype, categorizeError(err)).Inc()
		}
		if outcome == "" {
			outcome = server.OutcomeIgnored
		}
		m.eventsTotal.WithLabelValues(path, etype, outcome).Inc()

		if ec.Swipe != nil && ec.Swipe.Swiped() {
			m.swipesTotal.WithLabelValues(ec.Swipe.Event.Direction.String()).Inc()
		}
		if d := ec.Decision; d != nil {
			m.navigationsTotal.WithLabelValues(d.Source.String(), d.Resolved.String(), navigationResult(d.Found(), d.Navigated)).Inc()
		}
		return err
	})
}

func navigationResult(found, navigated bool) string {
	switch {
	case navigated:
		return "navigated"
	case found:
		return "failed"
	default:
		return "no_target"
	}
}

// categorizeError maps an error to a low-cardinality label.
func categorizeError(err error) string {
	var hp *server.HandlerPanic
	switch {
	case errors.As(err, &hp):
		return "panic"
	case errors.Is(err, server.ErrSessionClosed):
		return "session_closed"
	case errors.Is(err, server.ErrNoConnection):
		return "no_connection"
	default:
		var se *server.SessionError
		if errors.As(err, &se) {
			return "websocket"
		}
		return "internal"
	}
}

// RecordSessionCreate records a new session.
func RecordSessionCreate() {
	if m := loadMetrics(); m != nil {
		m.activeSessions.Inc()
	}
}

// RecordSessionDestroy records a closed session and folds its counters into
// the totals.
func RecordSessionDestroy(stats server.SessionStats) {
	if m := loadMetrics(); m != nil {
		m.activeSessions.Dec()
		m.patchesSent.Add(float64(stats.PatchCount))
		m.eventsDropped.Add(float64(stats.Dropped))
	}
}

func loadMetrics() *metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}

// Collector exposes the metrics for custom registrations and tests.
type Collector struct {
	EventsTotal      *prometheus.CounterVec
	EventDuration    *prometheus.HistogramVec
	EventErrors      *prometheus.CounterVec
	SwipesTotal      *prometheus.CounterVec
	NavigationsTotal *prometheus.CounterVec
	PatchesSent      prometheus.Counter
	EventsDropped    prometheus.Counter
	ActiveSessions   prometheus.Gauge
}

// GetMetrics returns the global metrics, or nil before Prometheus is called.
func GetMetrics() *Collector {
	m := loadMetrics()
	if m == nil {
		return nil
	}
	return &Collector{
		EventsTotal:      m.eventsTotal,
		EventDuration:    m.eventDuration,
		EventErrors:      m.eventErrors,
		SwipesTotal:      m.swipesTotal,
		NavigationsTotal: m.navigationsTotal,
		PatchesSent:      m.patchesSent,
		EventsDropped:    m.eventsDropped,
		ActiveSessions:   m.activeSessions,
	}
}
