package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"crew-assignment-service/internal/api/handlers"
	"crew-assignment-service/internal/platform/metrics"
	"crew-assignment-service/internal/services"
)

// Deps are the services the HTTP layer depends on.
type Deps struct {
	Simulations handlers.SimulationService
	Decisions   handlers.DecisionService
	Estimator   services.Estimator
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	simHandler := &handlers.SimulationHandler{Service: deps.Simulations}
	decisionHandler := &handlers.DecisionHandler{Service: deps.Decisions}
	travelHandler := &handlers.TravelHandler{Estimator: deps.Estimator}

	mux.HandleFunc("GET /health", handlers.Health)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /job-requests/{id}/simulations", simHandler.Run)
	mux.HandleFunc("GET /job-requests/{id}/simulations", simHandler.List)
	mux.HandleFunc("POST /job-requests/{id}/decisions", decisionHandler.Create)
	mux.HandleFunc("GET /job-requests/{id}/decisions", decisionHandler.List)

	mux.HandleFunc("GET /decisions/{id}", decisionHandler.Get)
	mux.HandleFunc("POST /decisions/{id}/approve", decisionHandler.Approve)
	mux.HandleFunc("POST /decisions/{id}/reject", decisionHandler.Reject)

	mux.HandleFunc("POST /travel-estimates", travelHandler.Estimate)

	return requestIDMiddleware(loggingMiddleware(mux))
}
