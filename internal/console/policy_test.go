package console_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niaxtu/niaxtu-admin/internal/console"
	"github.com/niaxtu/niaxtu-admin/internal/credstore"
	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
	"github.com/niaxtu/niaxtu-admin/internal/session"
)

func operatorSession(t *testing.T, user niaxtu.User) *session.Manager {
	t.Helper()
	store := credstore.NewMemory()
	payload, err := json.Marshal(user)
	require.NoError(t, err)
	require.NoError(t, credstore.Save(context.Background(), store, credstore.Credentials{
		Token:    "tok-test",
		UserJSON: string(payload),
	}))
	mgr := session.NewManager(nil, store, nil, session.Options{TrustCachedSession: true})
	require.NoError(t, mgr.Initialize(context.Background()))
	return mgr
}

func account(id string, role registry.Role, perms ...registry.Permission) niaxtu.User {
	return niaxtu.User{ID: id, Email: id + "@niaxtu.sn", FullName: "Compte " + id, Role: role, Permissions: perms, IsActive: true}
}

func TestSuperAdminMayTouchEveryRecordButNotDeleteSelf(t *testing.T) {
	mgr := operatorSession(t, account("root", registry.RoleSuperAdmin))

	other := account("a1", registry.RoleSuperAdmin)
	assert.True(t, console.CanEditAdmin(mgr, other))
	assert.True(t, console.CanDeleteAdmin(mgr, other))

	self := account("root", registry.RoleSuperAdmin)
	assert.True(t, console.CanEditAdmin(mgr, self))
	assert.False(t, console.CanDeleteAdmin(mgr, self), "self-deletion must be refused")
}

func TestSuperAdminRecordIsOffLimitsToLowerRoles(t *testing.T) {
	mgr := operatorSession(t, account("a1", registry.RoleAdmin,
		registry.PermEditUsers, registry.PermDeleteUsers))

	target := account("root", registry.RoleSuperAdmin)
	assert.False(t, console.CanEditAdmin(mgr, target))
	assert.False(t, console.CanDeleteAdmin(mgr, target))
}

func TestDeleteNeedsStrictlyHigherRole(t *testing.T) {
	mgr := operatorSession(t, account("a1", registry.RoleAdmin,
		registry.PermEditUsers, registry.PermDeleteUsers))

	peer := account("a2", registry.RoleAdmin)
	assert.True(t, console.CanEditAdmin(mgr, peer))
	assert.False(t, console.CanDeleteAdmin(mgr, peer), "equal role may not be deleted")

	below := account("m1", registry.RoleModerator)
	assert.True(t, console.CanDeleteAdmin(mgr, below))
}

func TestPolicyFollowsStoredPermissions(t *testing.T) {
	// The operator's stored permission set decides, not the role default.
	mgr := operatorSession(t, account("m1", registry.RoleModerator))

	target := account("u9", registry.RoleAnalyst)
	assert.False(t, console.CanEditAdmin(mgr, target))
	assert.False(t, console.CanDeleteAdmin(mgr, target))

	granted := operatorSession(t, account("m2", registry.RoleModerator, registry.PermEditUsers))
	assert.True(t, console.CanEditAdmin(granted, target))
}
