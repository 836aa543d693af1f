package handlers

import (
	"context"
	"net/http"
	"time"

	"crew-assignment-service/internal/api/dto"
	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/services"
)

type SimulationService interface {
	Simulate(ctx context.Context, req services.SimulateRequest) ([]*domain.Simulation, error)
	ListSimulations(ctx context.Context, jobRequestID string) ([]*domain.Simulation, error)
}

type SimulationHandler struct {
	Service SimulationService
}

// Run scores candidate crews for the job request and returns them ranked best first.
func (h *SimulationHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req dto.SimulateRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	svcReq := services.SimulateRequest{
		JobRequestID: r.PathValue("id"),
		CrewIDs:      req.CrewIDs,
	}
	if req.ProposedDate != "" {
		// format already checked by validation
		d, _ := time.Parse(time.DateOnly, req.ProposedDate)
		svcReq.ProposedDate = domain.Some(d)
	}

	sims, err := h.Service.Simulate(r.Context(), svcReq)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toSimulationList(sims))
}

// List returns stored simulations; an empty list means none have been generated yet.
func (h *SimulationHandler) List(w http.ResponseWriter, r *http.Request) {
	sims, err := h.Service.ListSimulations(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toSimulationList(sims))
}

func toSimulationList(sims []*domain.Simulation) dto.ListSimulationsResponse {
	res := dto.ListSimulationsResponse{Simulations: make([]dto.SimulationResponse, 0, len(sims))}
	for _, s := range sims {
		e := s.Explanation
		res.Simulations = append(res.Simulations, dto.SimulationResponse{
			ID:                 s.ID,
			JobRequestID:       s.JobRequestID,
			CrewID:             s.CrewID,
			ProposedDate:       s.ProposedDate.Format(time.DateOnly),
			TravelMinutesDelta: s.TravelMinutesDelta,
			MarginScore:        s.MarginScore,
			RiskScore:          s.RiskScore,
			TotalScore:         s.TotalScore,
			CreatedAt:          s.CreatedAt,
			Explanation: dto.ExplanationResponse{
				TravelSource:         string(e.TravelSource),
				TravelMinutes:        e.TravelMinutes,
				TravelDistanceMeters: e.TravelDistanceMeters,
				BurnMinutes:          e.BurnMinutes,
				EstTotalCost:         e.EstTotalCost,
				RevenueEstimate:      e.RevenueEstimate,
				MarginNotes:          e.MarginNotes,
				RiskFlags:            e.RiskFlags,
				Components: dto.ScoreComponentsResponse{
					Travel: e.Components.Travel,
					Margin: e.Components.Margin,
					Risk:   e.Components.Risk,
				},
				RawScore: e.RawScore,
			},
		})
	}
	return res
}
