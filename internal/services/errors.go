package services

import (
	"errors"
	"fmt"

	"crew-assignment-service/internal/domain"
	"crew-assignment-service/internal/ports"
)

var (
	// ErrNotAuthorized marks an action refused by a role check.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidState marks a lifecycle transition from the wrong status.
	ErrInvalidState = errors.New("invalid state")

	ErrNotFound = ports.ErrNotFound
	ErrConflict = ports.ErrConflict
)

// AuthorizationError names the action and the rule that refused it.
type AuthorizationError struct {
	Action string
	Role   domain.UserRole
	Rule   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: role %q not authorized: %s", e.Action, e.Role, e.Rule)
}

func (e *AuthorizationError) Unwrap() error { return ErrNotAuthorized }

// StateError reports a decision that is not in a status the action accepts.
type StateError struct {
	Action     string
	DecisionID string
	Status     domain.DecisionStatus
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: decision %s is %s, want %s", e.Action, e.DecisionID, e.Status, domain.DecisionDraft)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }
