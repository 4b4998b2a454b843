package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/verleihernix/math-visualizer/pkg/domain"
)

// Cache results recorded by ObserveCache.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Metrics holds the collectors for one process.
type Metrics struct {
	registry *prometheus.Registry

	plots         prometheus.Counter
	parseErrors   *prometheus.CounterVec
	resamples     prometheus.Counter
	resampleTime  prometheus.Histogram
	pointsSampled prometheus.Counter
	cacheRequests *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		plots: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mathviz_plots_total",
			Help: "Functions successfully added to a session",
		}),
		parseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathviz_parse_errors_total",
			Help: "Expressions rejected by the parser",
		}, []string{"kind"}),
		resamples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mathviz_resamples_total",
			Help: "Full resampling passes",
		}),
		resampleTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mathviz_resample_duration_seconds",
			Help:    "Duration of resampling passes",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		pointsSampled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mathviz_points_sampled_total",
			Help: "Finite points produced by resampling",
		}),
		cacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mathviz_render_cache_requests_total",
			Help: "Render cache lookups by result",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.plots,
		m.parseErrors,
		m.resamples,
		m.resampleTime,
		m.pointsSampled,
		m.cacheRequests,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObservePlot counts one plotted function.
func (m *Metrics) ObservePlot() { m.plots.Inc() }

// ObserveParseError counts a rejected expression by error kind.
func (m *Metrics) ObserveParseError(kind string) {
	m.parseErrors.WithLabelValues(kind).Inc()
}

// ObserveResample records one resampling pass.
func (m *Metrics) ObserveResample(points int, seconds float64) {
	m.resamples.Inc()
	m.resampleTime.Observe(seconds)
	m.pointsSampled.Add(float64(points))
}

// ObserveCache records a render cache lookup; result is CacheHit or CacheMiss.
func (m *Metrics) ObserveCache(result string) {
	m.cacheRequests.WithLabelValues(result).Inc()
}

// Hooks returns session callbacks that feed these metrics.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnPlot: func(context.Context, *domain.PlotEvent) {
			m.ObservePlot()
		},
		OnParseError: func(_ context.Context, e *domain.ParseErrorEvent) {
			m.ObserveParseError(e.Kind)
		},
		OnResample: func(_ context.Context, e *domain.ResampleEvent) {
			m.ObserveResample(e.Points, e.Duration.Seconds())
		},
	}
}
