package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service.
	Registry = prometheus.NewRegistry()

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// TravelEstimates counts resolved estimates by source (api, cache, haversine, unknown).
	TravelEstimates = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "travel_estimates_total", Help: "Travel estimates by resolution source."},
		[]string{"source"},
	)
	// TravelCacheErrors counts swallowed cache read/write failures.
	TravelCacheErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "travel_cache_errors_total", Help: "Travel cache failures by operation."},
		[]string{"op"},
	)
	SimulationRuns = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "simulation_runs_total", Help: "Completed simulation runs."},
	)
	// DecisionOutcomes counts decision lifecycle attempts by action and result.
	DecisionOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "decision_outcomes_total", Help: "Decision operations by action and result."},
		[]string{"action", "result"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(TravelEstimates)
		Registry.MustRegister(TravelCacheErrors)
		Registry.MustRegister(SimulationRuns)
		Registry.MustRegister(DecisionOutcomes)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
