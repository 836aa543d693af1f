package services

import "crew-assignment-service/internal/domain"

// ApprovalConfig tunes who may approve decisions.
type ApprovalConfig struct {
	AllowCrewLeadApprove bool
}

const (
	ruleCreate  = "requires owner, admin or crew_lead"
	ruleApprove = "requires owner or admin"
	// used when crew lead approval is enabled
	ruleApproveWithLeads = "requires owner, admin or crew_lead"
)

// CanCreateDecision reports whether role may create (or reject) a decision.
func CanCreateDecision(role domain.UserRole) bool {
	switch role {
	case domain.RoleOwner, domain.RoleAdmin, domain.RoleCrewLead:
		return true
	case domain.RoleStaff:
		return false
	}
	return false
}

// CanApproveDecision reports whether role may approve a decision. Staff never may,
// whatever the config says.
func CanApproveDecision(role domain.UserRole, cfg ApprovalConfig) bool {
	switch role {
	case domain.RoleOwner, domain.RoleAdmin:
		return true
	case domain.RoleCrewLead:
		return cfg.AllowCrewLeadApprove
	case domain.RoleStaff:
		return false
	}
	return false
}

func approveRule(cfg ApprovalConfig) string {
	if cfg.AllowCrewLeadApprove {
		return ruleApproveWithLeads
	}
	return ruleApprove
}
