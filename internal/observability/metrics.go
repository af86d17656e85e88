package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service exports. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	llmRequests      *prometheus.CounterVec
	llmLatency       *prometheus.HistogramVec
	llmResponseBytes *prometheus.HistogramVec
	llmPromptTokens  *prometheus.HistogramVec

	generatedArtifacts *prometheus.CounterVec
	parseEmpty         *prometheus.CounterVec

	backlogRefresh        *prometheus.CounterVec
	backlogRefreshLatency prometheus.Histogram
	backlogItems          prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "productforge_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "productforge_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "productforge_http_inflight_requests",
			Help: "Requests currently being served.",
		}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "productforge_llm_requests_total",
			Help: "Text-generation calls by operation, model and status.",
		}, []string{"operation", "model", "status"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "productforge_llm_request_duration_seconds",
			Help:    "Text-generation call latency.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"operation", "model"}),
		llmResponseBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "productforge_llm_response_bytes",
			Help:    "Size of generated text.",
			Buckets: prometheus.ExponentialBuckets(64, 2, 10),
		}, []string{"operation"}),
		llmPromptTokens: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "productforge_llm_prompt_tokens",
			Help:    "Estimated prompt tokens per call.",
			Buckets: prometheus.ExponentialBuckets(32, 2, 10),
		}, []string{"operation"}),
		generatedArtifacts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "productforge_generated_artifacts_total",
			Help: "Artifacts persisted from model output.",
		}, []string{"kind"}),
		parseEmpty: f.NewCounterVec(prometheus.CounterOpts{
			Name: "productforge_generation_empty_parse_total",
			Help: "Non-empty model responses that yielded no candidates.",
		}, []string{"kind"}),
		backlogRefresh: f.NewCounterVec(prometheus.CounterOpts{
			Name: "productforge_backlog_refresh_total",
			Help: "Backlog refreshes by outcome.",
		}, []string{"status"}),
		backlogRefreshLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "productforge_backlog_refresh_duration_seconds",
			Help:    "Backlog refresh latency.",
			Buckets: prometheus.DefBuckets,
		}),
		backlogItems: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "productforge_backlog_items",
			Help:    "Entries per refreshed backlog.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
}

// Handler serves the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(method, route, status).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) ApiInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

func (m *Metrics) ObserveLLMRequest(operation, model, status string, dur time.Duration, promptTokens, responseBytes int) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(operation, model, status).Inc()
	m.llmLatency.WithLabelValues(operation, model).Observe(dur.Seconds())
	if promptTokens > 0 {
		m.llmPromptTokens.WithLabelValues(operation).Observe(float64(promptTokens))
	}
	if responseBytes > 0 {
		m.llmResponseBytes.WithLabelValues(operation).Observe(float64(responseBytes))
	}
}

func (m *Metrics) AddGenerated(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.generatedArtifacts.WithLabelValues(kind).Add(float64(n))
}

func (m *Metrics) IncEmptyParse(kind string) {
	if m != nil {
		m.parseEmpty.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) ObserveBacklogRefresh(status string, dur time.Duration, items int) {
	if m == nil {
		return
	}
	m.backlogRefresh.WithLabelValues(status).Inc()
	m.backlogRefreshLatency.Observe(dur.Seconds())
	if status == "ok" {
		m.backlogItems.Observe(float64(items))
	}
}
