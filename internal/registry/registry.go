// Package registry holds the static role and permission tables for the
// Niaxtu platform and the pure lookups over them.
package registry

// Role identifies a privilege tier assigned to an account.
type Role string

// Platform roles, lowest to highest privilege.
const (
	RoleUser             Role = "user"
	RoleAnalyst          Role = "analyst"
	RoleModerator        Role = "moderator"
	RoleStructureManager Role = "structure_manager"
	RoleSectorManager    Role = "sector_manager"
	RoleAdmin            Role = "admin"
	RoleSuperAdmin       Role = "super_admin"
)

// Permission identifies a single grantable capability.
type Permission string

// Platform permissions.
const (
	PermViewUsers             Permission = "view_users"
	PermCreateUsers           Permission = "create_users"
	PermEditUsers             Permission = "edit_users"
	PermDeleteUsers           Permission = "delete_users"
	PermViewComplaints        Permission = "view_complaints"
	PermManageComplaintStatus Permission = "manage_complaint_status"
	PermDeleteComplaints      Permission = "delete_complaints"
	PermViewStructures        Permission = "view_structures"
	PermManageStructures      Permission = "manage_structures"
	PermViewSectors           Permission = "view_sectors"
	PermManageSectors         Permission = "manage_sectors"
	PermViewStats             Permission = "view_stats"
	PermViewHistory           Permission = "view_history"
	PermExportData            Permission = "export_data"
)

// roleOrdinal fixes the total order over roles. Comparisons go through
// this map rather than slice indexes so reordering declarations cannot
// silently change relative privilege.
var roleOrdinal = map[Role]int{
	RoleUser:             0,
	RoleAnalyst:          1,
	RoleModerator:        2,
	RoleStructureManager: 3,
	RoleSectorManager:    4,
	RoleAdmin:            5,
	RoleSuperAdmin:       6,
}

// allPermissions is the permission universe, used for the super admin
// short-circuit and for enumerations in forms.
var allPermissions = []Permission{
	PermViewUsers,
	PermCreateUsers,
	PermEditUsers,
	PermDeleteUsers,
	PermViewComplaints,
	PermManageComplaintStatus,
	PermDeleteComplaints,
	PermViewStructures,
	PermManageStructures,
	PermViewSectors,
	PermManageSectors,
	PermViewStats,
	PermViewHistory,
	PermExportData,
}

// rolePermissions maps each role to the permissions it grants by
// default. The per-account permission set returned by the API is
// authoritative for access checks; this table seeds registration forms
// and backs the role detail screens. RoleSuperAdmin is intentionally
// absent: every check short-circuits on that role.
var rolePermissions = map[Role][]Permission{
	RoleUser: {},
	RoleAnalyst: {
		PermViewComplaints,
		PermViewStats,
		PermViewStructures,
		PermViewSectors,
		PermExportData,
	},
	RoleModerator: {
		PermViewComplaints,
		PermManageComplaintStatus,
		PermViewStats,
		PermViewStructures,
		PermViewSectors,
	},
	RoleStructureManager: {
		PermViewComplaints,
		PermManageComplaintStatus,
		PermViewStructures,
		PermManageStructures,
		PermViewSectors,
		PermViewStats,
	},
	RoleSectorManager: {
		PermViewComplaints,
		PermManageComplaintStatus,
		PermViewStructures,
		PermViewSectors,
		PermManageSectors,
		PermViewStats,
	},
	RoleAdmin: {
		PermViewUsers,
		PermCreateUsers,
		PermEditUsers,
		PermDeleteUsers,
		PermViewComplaints,
		PermManageComplaintStatus,
		PermDeleteComplaints,
		PermViewStructures,
		PermManageStructures,
		PermViewSectors,
		PermManageSectors,
		PermViewStats,
		PermViewHistory,
		PermExportData,
	},
}

// AllRoles returns the hierarchy, lowest privilege first.
func AllRoles() []Role {
	return []Role{
		RoleUser,
		RoleAnalyst,
		RoleModerator,
		RoleStructureManager,
		RoleSectorManager,
		RoleAdmin,
		RoleSuperAdmin,
	}
}

// AllPermissions returns the full permission universe.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// Known reports whether the role appears in the hierarchy.
func Known(role Role) bool {
	_, ok := roleOrdinal[role]
	return ok
}

// PermissionsForRole returns the default permission set for a role.
// RoleSuperAdmin yields the full universe.
func PermissionsForRole(role Role) []Permission {
	if role == RoleSuperAdmin {
		return AllPermissions()
	}
	perms, ok := rolePermissions[role]
	if !ok {
		return nil
	}
	out := make([]Permission, len(perms))
	copy(out, perms)
	return out
}

// RoleGrants reports whether the role's default set includes the
// permission. RoleSuperAdmin grants everything.
func RoleGrants(role Role, perm Permission) bool {
	if role == RoleSuperAdmin {
		return true
	}
	for _, p := range rolePermissions[role] {
		if p == perm {
			return true
		}
	}
	return false
}

// IsHigherRole reports whether a outranks b. Unknown roles never
// outrank anything.
func IsHigherRole(a, b Role) bool {
	oa, ok := roleOrdinal[a]
	if !ok {
		return false
	}
	ob, ok := roleOrdinal[b]
	if !ok {
		return false
	}
	return oa > ob
}

// IsAdministrative reports whether the role may sign in to the console.
// Every hierarchy role except the citizen-facing RoleUser qualifies.
func IsAdministrative(role Role) bool {
	if !Known(role) {
		return false
	}
	return role != RoleUser
}
