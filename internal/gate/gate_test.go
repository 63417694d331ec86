package gate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/niaxtu/niaxtu-admin/internal/gate"
	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
	"github.com/niaxtu/niaxtu-admin/internal/session"
	_ "github.com/niaxtu/niaxtu-admin/testing"
)

func snapshotFor(role registry.Role, perms []registry.Permission, active bool) session.Snapshot {
	return session.Snapshot{
		User: &niaxtu.User{
			ID:          "u1",
			Email:       "who@niaxtu.sn",
			Role:        role,
			Permissions: perms,
			IsActive:    active,
		},
	}
}

func TestLoadingShortCircuits(t *testing.T) {
	result := gate.Decide(session.Snapshot{Loading: true}, gate.Requirement{Permission: registry.PermViewUsers})
	assert.Equal(t, gate.DecisionLoading, result.Decision)
}

func TestAnonymousGetsLogin(t *testing.T) {
	result := gate.Decide(session.Snapshot{}, gate.Requirement{})
	assert.Equal(t, gate.DecisionLogin, result.Decision)
}

// A disabled super admin missing the required permission from its
// stored set still gets through: the bypass is checked before the
// permission and active-account steps. Precedence regression guard.
func TestDisabledSuperAdminStillGranted(t *testing.T) {
	snap := snapshotFor(registry.RoleSuperAdmin, nil, false)
	result := gate.Decide(snap, gate.Requirement{Permission: registry.PermDeleteUsers})
	assert.Equal(t, gate.DecisionGrant, result.Decision)
	assert.True(t, result.SuperAdmin)
}

func TestModeratorMayManageComplaintStatus(t *testing.T) {
	snap := snapshotFor(registry.RoleModerator, registry.PermissionsForRole(registry.RoleModerator), true)
	result := gate.Decide(snap, gate.Requirement{Permission: registry.PermManageComplaintStatus})
	assert.Equal(t, gate.DecisionGrant, result.Decision)
	assert.False(t, result.SuperAdmin)
}

func TestAnalystDeniedUserDeletion(t *testing.T) {
	snap := snapshotFor(registry.RoleAnalyst, registry.PermissionsForRole(registry.RoleAnalyst), true)
	result := gate.Decide(snap, gate.Requirement{Permission: registry.PermDeleteUsers})
	assert.Equal(t, gate.DecisionDeniedPermission, result.Decision)
	assert.Equal(t, registry.RoleAnalyst, result.UserRole)
	assert.Equal(t, registry.PermDeleteUsers, result.MissingPermission)
}

// The stored per-account set decides, not the role default: an admin
// whose delete_users grant was revoked is denied even though the role
// default includes it.
func TestStoredSetOverridesRoleDefault(t *testing.T) {
	snap := snapshotFor(registry.RoleAdmin, []registry.Permission{registry.PermViewUsers}, true)
	result := gate.Decide(snap, gate.Requirement{Permission: registry.PermDeleteUsers})
	assert.Equal(t, gate.DecisionDeniedPermission, result.Decision)
}

func TestRoleRequirement(t *testing.T) {
	snap := snapshotFor(registry.RoleModerator, nil, true)

	result := gate.Decide(snap, gate.Requirement{Roles: []registry.Role{registry.RoleAdmin}})
	assert.Equal(t, gate.DecisionDeniedRole, result.Decision)
	assert.Equal(t, []registry.Role{registry.RoleAdmin}, result.RequiredRoles)

	result = gate.Decide(snap, gate.Requirement{Roles: []registry.Role{registry.RoleAdmin, registry.RoleModerator}})
	assert.Equal(t, gate.DecisionGrant, result.Decision)
}

// Permission denial outranks the disabled check, and the disabled
// check fires only after permission and role checks pass.
func TestDisabledAccountBlockedLast(t *testing.T) {
	snap := snapshotFor(registry.RoleModerator, registry.PermissionsForRole(registry.RoleModerator), false)

	result := gate.Decide(snap, gate.Requirement{Permission: registry.PermDeleteUsers})
	assert.Equal(t, gate.DecisionDeniedPermission, result.Decision)

	result = gate.Decide(snap, gate.Requirement{Permission: registry.PermManageComplaintStatus})
	assert.Equal(t, gate.DecisionDisabled, result.Decision)
}

func TestNoRequirementStillChecksAccountState(t *testing.T) {
	active := snapshotFor(registry.RoleAnalyst, nil, true)
	assert.Equal(t, gate.DecisionGrant, gate.Decide(active, gate.Requirement{}).Decision)

	disabled := snapshotFor(registry.RoleAnalyst, nil, false)
	assert.Equal(t, gate.DecisionDisabled, gate.Decide(disabled, gate.Requirement{}).Decision)
}
