// Package gate decides whether protected content may render for the
// current session. The decision table is ordered: the super-admin
// bypass is evaluated before permission and role checks, and the
// active-account check comes last, so a disabled account with
// sufficient permissions is only stopped at the final step.
package gate

import (
	"github.com/niaxtu/niaxtu-admin/internal/registry"
	"github.com/niaxtu/niaxtu-admin/internal/session"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	// DecisionLoading defers rendering while an auth operation runs.
	DecisionLoading Decision = iota
	// DecisionLogin sends the visitor to the login form.
	DecisionLogin
	// DecisionGrant renders the protected content.
	DecisionGrant
	// DecisionDeniedPermission renders the missing-permission view.
	DecisionDeniedPermission
	// DecisionDeniedRole renders the missing-role view.
	DecisionDeniedRole
	// DecisionDisabled renders the account-disabled view.
	DecisionDisabled
)

// Requirement declares what a screen needs. Zero values mean no
// permission and no role constraint.
type Requirement struct {
	Permission registry.Permission
	Roles      []registry.Role
}

// Result carries the decision plus the naming details the denial views
// display.
type Result struct {
	Decision Decision

	// SuperAdmin marks a grant that came from the role bypass; the
	// layout shows the super-admin mode banner.
	SuperAdmin bool

	UserRole          registry.Role
	MissingPermission registry.Permission
	RequiredRoles     []registry.Role
}

// Decide evaluates the ordered decision table against a session
// snapshot.
func Decide(snap session.Snapshot, req Requirement) Result {
	if snap.Loading {
		return Result{Decision: DecisionLoading}
	}
	if snap.User == nil {
		return Result{Decision: DecisionLogin}
	}

	result := Result{UserRole: snap.User.Role}

	if snap.User.Role == registry.RoleSuperAdmin {
		result.Decision = DecisionGrant
		result.SuperAdmin = true
		return result
	}

	if req.Permission != "" && !snap.User.HasPermission(req.Permission) {
		result.Decision = DecisionDeniedPermission
		result.MissingPermission = req.Permission
		return result
	}

	if len(req.Roles) > 0 && !roleIn(snap.User.Role, req.Roles) {
		result.Decision = DecisionDeniedRole
		result.RequiredRoles = req.Roles
		return result
	}

	if !snap.User.IsActive {
		result.Decision = DecisionDisabled
		return result
	}

	result.Decision = DecisionGrant
	return result
}

func roleIn(role registry.Role, roles []registry.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
