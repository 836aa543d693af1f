package handlers

import (
	"net/http"

	"crew-assignment-service/internal/api/dto"
	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/services"
)

type TravelHandler struct {
	Estimator services.Estimator
}

// Estimate returns the travel estimate between two points and where it came from.
func (h *TravelHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req dto.TravelEstimateRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	origin := domain.GeoPointFrom(domain.FromPtr(req.Origin.Lat), domain.FromPtr(req.Origin.Lng))
	dest := domain.GeoPointFrom(domain.FromPtr(req.Destination.Lat), domain.FromPtr(req.Destination.Lng))

	est, ok := h.Estimator.Estimate(r.Context(), origin, dest)
	if !ok {
		writeError(w, r, http.StatusUnprocessableEntity, "cannot compute travel: origin or destination location unknown")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.TravelEstimateResponse{
		Minutes:        est.Minutes,
		DistanceMeters: est.DistanceMeters,
		Source:         string(est.Source),
	})
}
