package handlers

import (
	"errors"
	"log"
	"net/http"

	"crew-assignment-service/internal/platform/obs"
	"crew-assignment-service/internal/services"
)

type errorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Detail string `json:"detail,omitempty"`
}

// writeServiceError maps service error kinds to responses. Authorization failures
// and generic failures are distinct codes so clients can message them differently.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		authErr  *services.AuthorizationError
		stateErr *services.StateError
	)

	switch {
	case errors.As(err, &authErr):
		writeJSON(w, r, http.StatusForbidden, errorResponse{Error: "not authorized", Code: "forbidden", Detail: authErr.Rule})
	case errors.As(err, &stateErr):
		writeJSON(w, r, http.StatusConflict, errorResponse{Error: stateErr.Error(), Code: "invalid_state"})
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, r, http.StatusNotFound, errorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, services.ErrConflict):
		writeJSON(w, r, http.StatusConflict, errorResponse{Error: err.Error(), Code: "conflict"})
	default:
		log.Printf("req_id=%s method=%s path=%s failed: %v", obs.RequestID(r.Context()), r.Method, r.URL.Path, err)
		writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error", Code: "internal"})
	}
}
