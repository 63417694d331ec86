package console

import (
	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
	"github.com/niaxtu/niaxtu-admin/internal/session"
)

// Record-level policy for the administrator screens. The gate
// middleware decides whether a screen opens at all; these predicates
// decide what the operator may do to one specific account row.

// CanEditAdmin reports whether the current operator may edit the target
// account. A super-admin record is off limits to everyone but another
// super-admin.
func CanEditAdmin(sessions *session.Manager, target niaxtu.User) bool {
	if sessions.IsSuperAdmin() {
		return true
	}
	if target.Role == registry.RoleSuperAdmin {
		return false
	}
	return sessions.HasPermission(registry.PermEditUsers)
}

// CanDeleteAdmin reports whether the current operator may delete the
// target account. Self-deletion is always refused, and a non
// super-admin may only delete accounts strictly below their own role.
func CanDeleteAdmin(sessions *session.Manager, target niaxtu.User) bool {
	snap := sessions.Snapshot()
	if snap.User == nil || snap.User.ID == target.ID {
		return false
	}
	if sessions.IsSuperAdmin() {
		return true
	}
	if target.Role == registry.RoleSuperAdmin {
		return false
	}
	if !registry.IsHigherRole(snap.User.Role, target.Role) {
		return false
	}
	return sessions.HasPermission(registry.PermDeleteUsers)
}
