package session_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niaxtu/niaxtu-admin/internal/credstore"
	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
	"github.com/niaxtu/niaxtu-admin/internal/session"
	_ "github.com/niaxtu/niaxtu-admin/testing"
)

type stubAPI struct {
	loginResult   niaxtu.LoginResult
	loginErr      error
	loginCalls    int
	loginStarted  chan struct{}
	loginRelease  chan struct{}
	logoutErr     error
	logoutCalls   int
	profileRaw    json.RawMessage
	profileErr    error
	profileCalls  int
	registerUser  niaxtu.User
	registerErr   error
	registerCalls int
}

func (s *stubAPI) Login(ctx context.Context, email, password string) (niaxtu.LoginResult, error) {
	s.loginCalls++
	if s.loginStarted != nil {
		close(s.loginStarted)
		s.loginStarted = nil
	}
	if s.loginRelease != nil {
		<-s.loginRelease
	}
	return s.loginResult, s.loginErr
}

func (s *stubAPI) Logout(ctx context.Context, token string) error {
	s.logoutCalls++
	return s.logoutErr
}

func (s *stubAPI) Register(ctx context.Context, token string, admin niaxtu.NewAdmin) (niaxtu.User, error) {
	s.registerCalls++
	return s.registerUser, s.registerErr
}

func (s *stubAPI) GetProfile(ctx context.Context, token string) (json.RawMessage, error) {
	s.profileCalls++
	return s.profileRaw, s.profileErr
}

func (s *stubAPI) UpdateProfile(ctx context.Context, token string, update niaxtu.ProfileUpdate) (json.RawMessage, error) {
	return s.profileRaw, s.profileErr
}

func adminResult() niaxtu.LoginResult {
	userJSON := `{"id":"u1","email":"admin@niaxtu.sn","fullName":"Awa Ndiaye","role":"admin","permissions":["view_users","view_complaints"],"isActive":true}`
	var user niaxtu.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil {
		panic(err)
	}
	return niaxtu.LoginResult{Token: "tok-1", User: user, UserJSON: json.RawMessage(userJSON)}
}

func newManager(api session.API, opts session.Options) (*session.Manager, *credstore.Memory) {
	store := credstore.NewMemory()
	return session.NewManager(api, store, nil, opts), store
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	ctx := context.Background()
	api := &stubAPI{loginResult: adminResult()}
	mgr, store := newManager(api, session.Options{TrustCachedSession: true})

	user, err := mgr.Login(ctx, "admin@niaxtu.sn", "longenough")
	require.NoError(t, err)
	assert.Equal(t, registry.RoleAdmin, user.Role)
	assert.True(t, mgr.IsAuthenticated())

	creds, err := credstore.Load(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", creds.Token)
	assert.NotEmpty(t, creds.UserJSON)

	require.NoError(t, mgr.Logout(ctx))
	assert.False(t, mgr.IsAuthenticated())
	assert.Equal(t, 1, api.logoutCalls)

	creds, err = credstore.Load(ctx, store)
	require.NoError(t, err)
	assert.True(t, creds.IsEmpty())

	// A second logout leaves the same empty state.
	require.NoError(t, mgr.Logout(ctx))
	assert.False(t, mgr.IsAuthenticated())
	creds, err = credstore.Load(ctx, store)
	require.NoError(t, err)
	assert.True(t, creds.IsEmpty())
}

func TestLoginValidationNeverReachesNetwork(t *testing.T) {
	ctx := context.Background()
	api := &stubAPI{loginResult: adminResult()}
	mgr, _ := newManager(api, session.Options{})

	var validationErr *session.ValidationError

	_, err := mgr.Login(ctx, "a@b.com", "short")
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "password", validationErr.Field)

	_, err = mgr.Login(ctx, "", "longenough")
	require.ErrorAs(t, err, &validationErr)

	assert.Zero(t, api.loginCalls)
	assert.False(t, mgr.Snapshot().Loading)
}

func TestLoginRejectedStoresServerMessage(t *testing.T) {
	ctx := context.Background()
	api := &stubAPI{loginErr: &niaxtu.AuthenticationError{Message: "Email ou mot de passe incorrect"}}
	mgr, _ := newManager(api, session.Options{})

	_, err := mgr.Login(ctx, "admin@niaxtu.sn", "wrongpass8")
	var authErr *niaxtu.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "Email ou mot de passe incorrect", mgr.LastError())
	assert.False(t, mgr.IsAuthenticated())
}

func TestLoginRefusesNonAdministrativeAccounts(t *testing.T) {
	ctx := context.Background()
	result := adminResult()
	result.User.Role = registry.RoleUser
	api := &stubAPI{loginResult: result}
	mgr, store := newManager(api, session.Options{})

	_, err := mgr.Login(ctx, "citizen@niaxtu.sn", "longenough")
	require.ErrorIs(t, err, session.ErrNotAdministrator)
	assert.False(t, mgr.IsAuthenticated())

	creds, err := credstore.Load(ctx, store)
	require.NoError(t, err)
	assert.True(t, creds.IsEmpty())
}

func TestLogoutSwallowsRemoteFailure(t *testing.T) {
	ctx := context.Background()
	api := &stubAPI{loginResult: adminResult(), logoutErr: &niaxtu.NetworkError{Op: "POST /auth/logout", Err: errors.New("boom")}}
	mgr, store := newManager(api, session.Options{})

	_, err := mgr.Login(ctx, "admin@niaxtu.sn", "longenough")
	require.NoError(t, err)

	require.NoError(t, mgr.Logout(ctx))
	assert.False(t, mgr.IsAuthenticated())
	creds, err := credstore.Load(ctx, store)
	require.NoError(t, err)
	assert.True(t, creds.IsEmpty())
}

func TestSuperAdminBypassesStoredPermissions(t *testing.T) {
	ctx := context.Background()
	result := adminResult()
	result.User.Role = registry.RoleSuperAdmin
	result.User.Permissions = nil
	raw, err := json.Marshal(result.User)
	require.NoError(t, err)
	result.UserJSON = raw
	api := &stubAPI{loginResult: result}
	mgr, _ := newManager(api, session.Options{})

	_, err = mgr.Login(ctx, "root@niaxtu.sn", "longenough")
	require.NoError(t, err)

	assert.True(t, mgr.IsSuperAdmin())
	for _, perm := range registry.AllPermissions() {
		assert.True(t, mgr.HasPermission(perm), "permission %s", perm)
	}
	assert.True(t, mgr.HasPermission(registry.Permission("never_declared")))
}

func TestRegisterRequiresSuperAdmin(t *testing.T) {
	ctx := context.Background()
	api := &stubAPI{loginResult: adminResult(), registerUser: adminResult().User}
	mgr, _ := newManager(api, session.Options{})

	_, err := mgr.Login(ctx, "admin@niaxtu.sn", "longenough")
	require.NoError(t, err)

	_, err = mgr.Register(ctx, niaxtu.NewAdmin{Email: "new@niaxtu.sn", Password: "longenough", Role: registry.RoleModerator})
	var authzErr *niaxtu.AuthorizationError
	require.ErrorAs(t, err, &authzErr)
	assert.Zero(t, api.registerCalls)
}

func TestRegisterDoesNotMutateSession(t *testing.T) {
	ctx := context.Background()
	result := adminResult()
	result.User.Role = registry.RoleSuperAdmin
	api := &stubAPI{loginResult: result, registerUser: adminResult().User}
	mgr, _ := newManager(api, session.Options{})

	_, err := mgr.Login(ctx, "root@niaxtu.sn", "longenough")
	require.NoError(t, err)

	created, err := mgr.Register(ctx, niaxtu.NewAdmin{Email: "new@niaxtu.sn", Password: "longenough", Role: registry.RoleModerator})
	require.NoError(t, err)
	assert.Equal(t, "admin@niaxtu.sn", created.Email)

	// The session still belongs to the super admin who registered.
	snap := mgr.Snapshot()
	require.NotNil(t, snap.User)
	assert.Equal(t, registry.RoleSuperAdmin, snap.User.Role)
}

func TestVerifyTokenTrustsCachedPair(t *testing.T) {
	ctx := context.Background()
	api := &stubAPI{loginResult: adminResult()}
	mgr, store := newManager(api, session.Options{TrustCachedSession: true})

	_, err := mgr.Login(ctx, "admin@niaxtu.sn", "longenough")
	require.NoError(t, err)

	// Simulate a restart: a fresh manager over the same store.
	mgr2 := session.NewManager(api, store, nil, session.Options{TrustCachedSession: true})
	require.NoError(t, mgr2.Initialize(ctx))

	ok, err := mgr2.VerifyToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, api.profileCalls)
}

func TestVerifyTokenStrictModeHitsTheAPI(t *testing.T) {
	ctx := context.Background()
	result := adminResult()
	api := &stubAPI{loginResult: result, profileRaw: result.UserJSON}
	mgr, store := newManager(api, session.Options{TrustCachedSession: false})

	_, err := mgr.Login(ctx, "admin@niaxtu.sn", "longenough")
	require.NoError(t, err)

	ok, err := mgr.VerifyToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, api.profileCalls)

	// A dead token clears the session.
	api.profileErr = niaxtu.ErrSessionExpired
	api.profileRaw = nil
	ok, err = mgr.VerifyToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mgr.IsAuthenticated())
	creds, err := credstore.Load(ctx, store)
	require.NoError(t, err)
	assert.True(t, creds.IsEmpty())
}

func TestSessionExpiryDuringProfileClearsSession(t *testing.T) {
	ctx := context.Background()
	api := &stubAPI{loginResult: adminResult()}
	mgr, _ := newManager(api, session.Options{})

	_, err := mgr.Login(ctx, "admin@niaxtu.sn", "longenough")
	require.NoError(t, err)

	api.profileErr = niaxtu.ErrSessionExpired
	_, err = mgr.Profile(ctx)
	require.ErrorIs(t, err, niaxtu.ErrSessionExpired)
	assert.False(t, mgr.IsAuthenticated())
}

func TestProfileShallowMergePreservesAbsentFields(t *testing.T) {
	ctx := context.Background()
	api := &stubAPI{loginResult: adminResult()}
	mgr, _ := newManager(api, session.Options{})

	_, err := mgr.Login(ctx, "admin@niaxtu.sn", "longenough")
	require.NoError(t, err)

	// The response only carries the new display name.
	api.profileRaw = json.RawMessage(`{"fullName":"Awa Ba"}`)
	user, err := mgr.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Awa Ba", user.FullName)
	assert.Equal(t, "admin@niaxtu.sn", user.Email)
	assert.Equal(t, registry.RoleAdmin, user.Role)
	assert.True(t, user.HasPermission(registry.PermViewUsers))
}

func TestConcurrentLoginRejected(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	api := &stubAPI{loginResult: adminResult(), loginStarted: started, loginRelease: release}
	mgr, _ := newManager(api, session.Options{})

	done := make(chan error, 1)
	go func() {
		_, err := mgr.Login(ctx, "admin@niaxtu.sn", "longenough")
		done <- err
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("first login never started")
	}

	_, err := mgr.Login(ctx, "admin@niaxtu.sn", "longenough")
	require.ErrorIs(t, err, session.ErrOperationInFlight)
	assert.True(t, mgr.Snapshot().Loading)

	close(release)
	require.NoError(t, <-done)
	assert.False(t, mgr.Snapshot().Loading)
}
