package gateway

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/loreweaver/loom/internal/weaver"
)

// Metrics exposes prompt measurements both as Prometheus collectors on a
// private registry and as an atomic snapshot for the status endpoint. It
// implements the weaver's prompt observer.
type Metrics struct {
	registry *prometheus.Registry

	prompts     *prometheus.CounterVec
	duration    prometheus.Histogram
	storyTokens *prometheus.GaugeVec

	completions  atomic.Int64
	failures     atomic.Int64
	totalLatency atomic.Int64 // nanoseconds
}

// Compile-time interface guard.
var _ weaver.Observer = (*Metrics)(nil)

// NewMetrics creates a Metrics with its collectors registered on a fresh
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		prompts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "loom_prompts_total",
			Help: "Prompt cycles by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "loom_prompt_duration_seconds",
			Help:    "End-to-end prompt cycle duration.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
		storyTokens: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "loom_story_context_tokens",
			Help: "Cumulative token count of the live story part per weaving.",
		}, []string{"weaving"}),
	}

	m.registry.MustRegister(m.prompts, m.duration, m.storyTokens)
	return m
}

// ObservePrompt implements weaver.Observer.
func (m *Metrics) ObservePrompt(weaving string, contextTokens int, d time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
		m.failures.Add(1)
	} else {
		m.completions.Add(1)
		m.totalLatency.Add(int64(d))
	}

	m.prompts.WithLabelValues(outcome).Inc()
	m.duration.Observe(d.Seconds())
	if contextTokens > 0 {
		m.storyTokens.WithLabelValues(weaving).Set(float64(contextTokens))
	}
}

// Handler returns the Prometheus scrape handler for the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Snapshot returns a consistent point-in-time view of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	completions := m.completions.Load()
	snap := MetricsSnapshot{
		Completions: completions,
		Failures:    m.failures.Load(),
	}
	if completions > 0 {
		snap.AvgLatency = time.Duration(m.totalLatency.Load() / completions)
	}
	return snap
}

// MetricsSnapshot is a serializable point-in-time metrics view.
type MetricsSnapshot struct {
	Completions int64         `json:"completions"`
	Failures    int64         `json:"failures"`
	AvgLatency  time.Duration `json:"avg_latency_ns"`
}
