package metrics

import (
	"net/http"

	"autism-diet-planner/internal/shared"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a generate attempt.
const (
	OutcomeGenerated = "generated"
	OutcomeFallback  = "fallback"
)

const namespace = "diet_planner"

// Collectors exposes generate outcomes, latency and token counts.
type Collectors struct {
	registry    *prometheus.Registry
	generations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	tokens      *prometheus.CounterVec
}

// NewCollectors registers the collectors on a private registry, together with
// the Go runtime and process collectors.
func NewCollectors() *Collectors {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collectors{
		registry: reg,
		generations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Generate attempts by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Time spent waiting for the text-generation service",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
			},
			[]string{"provider", "outcome"},
		),
		tokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "tokens_total",
				Help:      "Tokens consumed by kind",
			},
			[]string{"provider", "kind"},
		),
	}
}

// Observe records one generate attempt.
func (c *Collectors) Observe(meta shared.GenerationMeta) {
	c.generations.WithLabelValues(meta.Provider, meta.Outcome).Inc()
	c.latency.WithLabelValues(meta.Provider, meta.Outcome).Observe(meta.Latency.Seconds())
	if meta.Usage.PromptTokens > 0 {
		c.tokens.WithLabelValues(meta.Provider, "prompt").Add(float64(meta.Usage.PromptTokens))
	}
	if meta.Usage.CompletionTokens > 0 {
		c.tokens.WithLabelValues(meta.Provider, "completion").Add(float64(meta.Usage.CompletionTokens))
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// Generations exposes the outcome counter.
func (c *Collectors) Generations() *prometheus.CounterVec {
	return c.generations
}
