// Package metrics holds the Prometheus collectors shared across AeroMind.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeromind_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "aeromind_http_request_duration_seconds",
			Help: "Duration of HTTP requests",
		},
		[]string{"method", "endpoint"},
	)
	LLMCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeromind_llm_calls_total",
			Help: "Total number of generation provider calls",
		},
		[]string{"status"},
	)
	LLMCallDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aeromind_llm_call_duration_seconds",
			Help:    "Duration of generation provider calls",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
	)
	RoutesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeromind_routes_total",
			Help: "Total number of routed questions by route",
		},
		[]string{"route"},
	)
	VerificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeromind_verifications_total",
			Help: "Total number of verifier outcomes by status",
		},
		[]string{"status"},
	)
	RetrievalCacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aeromind_retrieval_cache_hits_total",
			Help: "Total number of retrieval cache hits",
		},
	)
	RetrievalCacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "aeromind_retrieval_cache_misses_total",
			Help: "Total number of retrieval cache misses",
		},
	)
	IndexChunks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aeromind_index_chunks",
			Help: "Number of chunks in the current vector index",
		},
	)
	IndexRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aeromind_index_rebuilds_total",
			Help: "Total number of index rebuilds by outcome",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(LLMCallsTotal)
	prometheus.MustRegister(LLMCallDuration)
	prometheus.MustRegister(RoutesTotal)
	prometheus.MustRegister(VerificationsTotal)
	prometheus.MustRegister(RetrievalCacheHits)
	prometheus.MustRegister(RetrievalCacheMisses)
	prometheus.MustRegister(IndexChunks)
	prometheus.MustRegister(IndexRebuildsTotal)
}
