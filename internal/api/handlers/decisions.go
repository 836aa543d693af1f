package handlers

import (
	"context"
	"net/http"

	"crew-assignment-service/internal/api/dto"
	"crew-assignment-service/internal/domain"
)

type DecisionService interface {
	CreateDecision(ctx context.Context, actor domain.Actor, jobRequestID, simulationID string) (*domain.Decision, error)
	ApproveDecision(ctx context.Context, actor domain.Actor, decisionID string) (*domain.Decision, error)
	RejectDecision(ctx context.Context, actor domain.Actor, decisionID, reason string) (*domain.Decision, error)
	GetDecision(ctx context.Context, id string) (*domain.Decision, error)
	ListDecisions(ctx context.Context, jobRequestID string) ([]*domain.Decision, error)
}

type DecisionHandler struct {
	Service DecisionService
}

func (h *DecisionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.CreateDecisionRequest
	if !decodeBody(w, r, &req, false) {
		return
	}

	d, err := h.Service.CreateDecision(r.Context(), actor, r.PathValue("id"), req.SimulationID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusCreated, toDecision(d))
}

func (h *DecisionHandler) List(w http.ResponseWriter, r *http.Request) {
	ds, err := h.Service.ListDecisions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res := dto.ListDecisionsResponse{Decisions: make([]dto.DecisionResponse, 0, len(ds))}
	for _, d := range ds {
		res.Decisions = append(res.Decisions, toDecision(d))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *DecisionHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.GetDecision(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toDecision(d))
}

func (h *DecisionHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	d, err := h.Service.ApproveDecision(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toDecision(d))
}

func (h *DecisionHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(w, r)
	if !ok {
		return
	}

	var req dto.RejectDecisionRequest
	if !decodeBody(w, r, &req, true) {
		return
	}

	d, err := h.Service.RejectDecision(r.Context(), actor, r.PathValue("id"), req.Reason)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, toDecision(d))
}

func toDecision(d *domain.Decision) dto.DecisionResponse {
	return dto.DecisionResponse{
		ID:                   d.ID,
		JobRequestID:         d.JobRequestID,
		SelectedSimulationID: d.SelectedSimulationID,
		Status:               string(d.Status),
		CreatedBy:            d.CreatedBy,
		ApprovedBy:           d.ApprovedBy,
		RejectedBy:           d.RejectedBy,
		RejectReason:         d.RejectReason,
		CreatedAt:            d.CreatedAt,
		DecidedAt:            d.DecidedAt,
	}
}
