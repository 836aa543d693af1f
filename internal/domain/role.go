package domain

import (
	"fmt"
	"strings"
)

// UserRole is supplied per request by the authentication collaborator.
type UserRole string

const (
	RoleOwner    UserRole = "owner"
	RoleAdmin    UserRole = "admin"
	RoleCrewLead UserRole = "crew_lead"
	RoleStaff    UserRole = "staff"
)

// ParseRole converts a raw role string. Unknown roles are an error, never a default.
func ParseRole(s string) (UserRole, error) {
	r := UserRole(strings.ToLower(strings.TrimSpace(s)))
	switch r {
	case RoleOwner, RoleAdmin, RoleCrewLead, RoleStaff:
		return r, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Actor is the authenticated caller of a mutating operation.
type Actor struct {
	ID   string
	Role UserRole
}
