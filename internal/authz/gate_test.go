package authz

import (
	"testing"

	"github.com/ketan-bobby/skillpulse/internal/models"
)

func TestCan(t *testing.T) {
	tests := []struct {
		name string
		role models.UserRole
		cap  Capability
		want bool
	}{
		{name: "candidate can take tests", role: models.RoleCandidate, cap: CapTakeTest, want: true},
		{name: "candidate cannot view all results", role: models.RoleCandidate, cap: CapViewAllResults, want: false},
		{name: "candidate cannot recompute analysis", role: models.RoleCandidate, cap: CapRecomputeAnalysis, want: false},
		{name: "manager can assign", role: models.RoleManager, cap: CapAssignTest, want: true},
		{name: "manager cannot export reports", role: models.RoleManager, cap: CapExportReports, want: false},
		{name: "hr admin can recompute analysis", role: models.RoleHRAdmin, cap: CapRecomputeAnalysis, want: true},
		{name: "super admin can export reports", role: models.RoleSuperAdmin, cap: CapExportReports, want: true},
		{name: "unknown role has nothing", role: models.UserRole("intern"), cap: CapTakeTest, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Can(tt.role, tt.cap); got != tt.want {
				t.Errorf("Can(%s, %s) = %v, want %v", tt.role, tt.cap, got, tt.want)
			}
		})
	}
}

func TestRolesWith(t *testing.T) {
	roles := RolesWith(CapRecomputeAnalysis)
	if len(roles) != 2 {
		t.Fatalf("expected 2 roles with recompute capability, got %d", len(roles))
	}
	for _, r := range roles {
		if r != models.RoleHRAdmin && r != models.RoleSuperAdmin {
			t.Errorf("unexpected role %s with recompute capability", r)
		}
	}
}
