package authz

import (
	"github.com/ketan-bobby/skillpulse/internal/models"
)

// Capability names one guarded operation on the assessment core. The set is
// closed: handlers and services check capabilities, never role strings.
type Capability string

const (
	CapAssignTest        Capability = "assignment:create"
	CapManageAssignment  Capability = "assignment:manage"
	CapTakeTest          Capability = "session:take"
	CapViewOwnResults    Capability = "result:view_own"
	CapViewAllResults    Capability = "result:view_all"
	CapRecomputeAnalysis Capability = "result:recompute_analysis"
	CapViewReports       Capability = "report:view"
	CapExportReports     Capability = "report:export"
)

// matrix is the single source of truth for role permissions.
var matrix = map[models.UserRole]map[Capability]bool{
	models.RoleCandidate: {
		CapTakeTest:       true,
		CapViewOwnResults: true,
	},
	models.RoleManager: {
		CapAssignTest:     true,
		CapViewOwnResults: true,
		CapViewAllResults: true,
		CapViewReports:    true,
	},
	models.RoleHRAdmin: {
		CapAssignTest:        true,
		CapManageAssignment:  true,
		CapViewOwnResults:    true,
		CapViewAllResults:    true,
		CapRecomputeAnalysis: true,
		CapViewReports:       true,
		CapExportReports:     true,
	},
	models.RoleSuperAdmin: {
		CapAssignTest:        true,
		CapManageAssignment:  true,
		CapTakeTest:          true,
		CapViewOwnResults:    true,
		CapViewAllResults:    true,
		CapRecomputeAnalysis: true,
		CapViewReports:       true,
		CapExportReports:     true,
	},
}

// Can reports whether a role holds a capability.
func Can(role models.UserRole, cap Capability) bool {
	caps, ok := matrix[role]
	if !ok {
		return false
	}
	return caps[cap]
}

// RolesWith returns every role holding the capability. Used by the router
// to express route guards in terms of capabilities.
func RolesWith(cap Capability) []models.UserRole {
	var roles []models.UserRole
	for _, role := range []models.UserRole{
		models.RoleCandidate,
		models.RoleManager,
		models.RoleHRAdmin,
		models.RoleSuperAdmin,
	} {
		if Can(role, cap) {
			roles = append(roles, role)
		}
	}
	return roles
}
