package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	registry        *prom.Registry
	composeDuration prom.Histogram
	buildDuration   prom.Histogram
	pageOutcomes    *prom.CounterVec
	warnings        prom.Counter
	pagesTotal      prom.Gauge
}

// NewPrometheusRecorder constructs and registers the unify metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.once.Do(func() {
		pr.composeDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "unify",
			Name:      "compose_duration_seconds",
			Help:      "Duration of single-page composition",
			Buckets:   prom.DefBuckets,
		})
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "unify",
			Name:      "build_duration_seconds",
			Help:      "Total site build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.pageOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "unify",
			Name:      "page_outcomes_total",
			Help:      "Composed page counts by outcome",
		}, []string{"outcome"})
		pr.warnings = prom.NewCounter(prom.CounterOpts{
			Namespace: "unify",
			Name:      "compose_warnings_total",
			Help:      "Recoverable composition warnings across builds",
		})
		pr.pagesTotal = prom.NewGauge(prom.GaugeOpts{
			Namespace: "unify",
			Name:      "pages_total",
			Help:      "Number of pages discovered in the last build",
		})
		reg.MustRegister(pr.composeDuration, pr.buildDuration, pr.pageOutcomes, pr.warnings, pr.pagesTotal)
	})
	return pr
}

// HTTPHandler returns an http.Handler serving this recorder's registry.
func (p *PrometheusRecorder) HTTPHandler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (p *PrometheusRecorder) ObserveComposeDuration(d time.Duration) {
	if p == nil || p.composeDuration == nil {
		return
	}
	p.composeDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPageOutcome(outcome OutcomeLabel) {
	if p == nil || p.pageOutcomes == nil {
		return
	}
	p.pageOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddWarnings(n int) {
	if p == nil || p.warnings == nil || n <= 0 {
		return
	}
	p.warnings.Add(float64(n))
}

func (p *PrometheusRecorder) SetPagesTotal(n int) {
	if p == nil || p.pagesTotal == nil {
		return
	}
	p.pagesTotal.Set(float64(n))
}
