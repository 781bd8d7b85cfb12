package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// Weather endpoint call rate. Watch for: error vs success ratio.
	WeatherFetchesTotal *prometheus.CounterVec

	// Weather endpoint latency per request. Watch for: upstream degradation.
	WeatherFetchDuration *prometheus.HistogramVec

	// Geocoding endpoint call rate. Suggestion failures are silent to the
	// user, so this counter is the only place they surface besides logs.
	SuggestionFetchesTotal *prometheus.CounterVec

	// Geocoding endpoint latency per request.
	SuggestionFetchDuration *prometheus.HistogramVec

	// Suggestion cache hits. Misses = suggestionFetchesTotal.
	SuggestionCacheHitsTotal prometheus.Counter

	// Suggestion fetches skipped by the outbound rate limiter.
	SuggestionRateLimitedTotal prometheus.Counter

	// Suggestion fetches skipped while the geocoding circuit is open.
	SuggestionBreakerSkippedTotal prometheus.Counter

	// Geocoding circuit breaker transitions, by resulting state.
	SuggestionBreakerTransitionsTotal *prometheus.CounterVec

	// Responses discarded because a newer request superseded them, by kind
	// (suggestion, weather).
	StaleResponsesDroppedTotal *prometheus.CounterVec

	// Search actions by trigger (submit, coords, suggestion, retry, unit_toggle).
	SearchesTotal *prometheus.CounterVec
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	WeatherFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherFetchesTotal",
			Help: "Total number of weather endpoint calls",
		},
		[]string{"status"},
	)
	WeatherFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherFetchDurationSeconds",
			Help:    "Weather endpoint latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	SuggestionFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestionFetchesTotal",
			Help: "Total number of geocoding endpoint calls",
		},
		[]string{"status"},
	)
	SuggestionFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "suggestionFetchDurationSeconds",
			Help:    "Geocoding endpoint latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)
	SuggestionCacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestionCacheHitsTotal",
			Help: "Suggestion lists served from cache",
		},
	)
	SuggestionRateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestionRateLimitedTotal",
			Help: "Suggestion fetches skipped by the outbound rate limiter",
		},
	)
	SuggestionBreakerSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "suggestionBreakerSkippedTotal",
			Help: "Suggestion fetches skipped while the geocoding circuit is open",
		},
	)
	SuggestionBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "suggestionBreakerTransitionsTotal",
			Help: "Geocoding circuit breaker state transitions",
		},
		[]string{"to"},
	)
	StaleResponsesDroppedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "staleResponsesDroppedTotal",
			Help: "Responses discarded because a newer request superseded them",
		},
		[]string{"kind"},
	)
	SearchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "searchesTotal",
			Help: "Weather search actions by trigger",
		},
		[]string{"trigger"},
	)

	registry.MustRegister(
		WeatherFetchesTotal,
		WeatherFetchDuration,
		SuggestionFetchesTotal,
		SuggestionFetchDuration,
		SuggestionCacheHitsTotal,
		SuggestionRateLimitedTotal,
		SuggestionBreakerSkippedTotal,
		SuggestionBreakerTransitionsTotal,
		StaleResponsesDroppedTotal,
		SearchesTotal,
	)
}

// MetricsHandler returns the /metrics handler for the debug server.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// StatusLabel buckets an HTTP status code into a stable metric label.
func StatusLabel(statusCode int) string {
	if statusCode >= 200 && statusCode < 300 {
		return "success"
	}
	if statusCode == 429 {
		return "rate_limited"
	}
	if statusCode >= 400 && statusCode < 500 {
		return "client_error"
	}
	if statusCode >= 500 {
		return "server_error"
	}
	return "error"
}
