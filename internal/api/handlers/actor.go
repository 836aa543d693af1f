package handlers

import (
	"errors"
	"net/http"
	"strings"

	"crew-assignment-service/internal/domain"
)

// Identity headers set by the upstream authentication proxy.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

var errMissingActor = errors.New("missing actor identity")

func actorFromRequest(r *http.Request) (domain.Actor, error) {
	id := strings.TrimSpace(r.Header.Get(HeaderActorID))
	rawRole := r.Header.Get(HeaderActorRole)
	if id == "" || strings.TrimSpace(rawRole) == "" {
		return domain.Actor{}, errMissingActor
	}

	role, err := domain.ParseRole(rawRole)
	if err != nil {
		return domain.Actor{}, err
	}

	return domain.Actor{ID: id, Role: role}, nil
}

// requireActor writes 401 for missing identity and 403 for an unknown role.
func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, err := actorFromRequest(r)
	if errors.Is(err, errMissingActor) {
		writeError(w, r, http.StatusUnauthorized, "actor identity headers are required")
		return domain.Actor{}, false
	}
	if err != nil {
		writeError(w, r, http.StatusForbidden, err.Error())
		return domain.Actor{}, false
	}
	return actor, true
}
