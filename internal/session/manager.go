// Package session owns the console's single authentication session:
// the current user record, the API token, and every permission query
// the screens rely on. One Manager is built at startup and injected;
// tests build isolated instances around stub clients.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/niaxtu/niaxtu-admin/internal/credstore"
	"github.com/niaxtu/niaxtu-admin/internal/niaxtu"
	"github.com/niaxtu/niaxtu-admin/internal/registry"
)

// API is the slice of the Niaxtu client the manager needs.
type API interface {
	Login(ctx context.Context, email, password string) (niaxtu.LoginResult, error)
	Logout(ctx context.Context, token string) error
	Register(ctx context.Context, token string, admin niaxtu.NewAdmin) (niaxtu.User, error)
	GetProfile(ctx context.Context, token string) (json.RawMessage, error)
	UpdateProfile(ctx context.Context, token string, update niaxtu.ProfileUpdate) (json.RawMessage, error)
}

// Options tunes session behaviour.
type Options struct {
	// TrustCachedSession treats a cached token+user pair as a valid
	// session without a server round-trip. Matches the original
	// console behaviour; the worker's periodic re-verification
	// compensates. Set false for strict verification on startup.
	TrustCachedSession bool

	// MinPasswordLength is checked client-side before login reaches
	// the network. Zero means the default of 8.
	MinPasswordLength int
}

// Snapshot is a point-in-time copy of the session state, consumed by
// the authorization gate and the templates.
type Snapshot struct {
	User      *niaxtu.User
	Loading   bool
	LastError string
}

// Manager is the process-wide authentication session.
type Manager struct {
	api    API
	store  credstore.Store
	logger *slog.Logger
	opts   Options

	// op is the single-slot in-flight guard over login/logout/register.
	op sync.Mutex

	mu        sync.RWMutex
	user      *niaxtu.User
	token     string
	loading   bool
	lastError string
}

// NewManager constructs a Manager. It does not touch the store; call
// Initialize to pick up cached credentials.
func NewManager(api API, store credstore.Store, logger *slog.Logger, opts Options) *Manager {
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = 8
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{api: api, store: store, logger: logger, opts: opts}
}

// Initialize loads cached credentials into memory. A half-written pair
// is ignored; the pair invariant says both halves or neither.
func (m *Manager) Initialize(ctx context.Context) error {
	creds, err := credstore.Load(ctx, m.store)
	if err != nil {
		return fmt.Errorf("session: load cached credentials: %w", err)
	}
	if creds.IsEmpty() {
		return nil
	}
	var user niaxtu.User
	if err := json.Unmarshal([]byte(creds.UserJSON), &user); err != nil {
		m.logger.Warn("discarding unreadable cached user record", slog.Any("error", err))
		return credstore.Clear(ctx, m.store)
	}
	m.mu.Lock()
	m.user = &user
	m.token = creds.Token
	m.mu.Unlock()
	return nil
}

// Login authenticates against the remote API. Input checks fail before
// the loading flag is set and before any network call. On success the
// credentials are persisted before the in-memory state changes, so an
// observer never sees a logged-in session without a stored token.
func (m *Manager) Login(ctx context.Context, email, password string) (*niaxtu.User, error) {
	if email == "" {
		return nil, &ValidationError{Field: "email", Message: "l'adresse e-mail est requise"}
	}
	if password == "" {
		return nil, &ValidationError{Field: "password", Message: "le mot de passe est requis"}
	}
	if len(password) < m.opts.MinPasswordLength {
		return nil, &ValidationError{
			Field:   "password",
			Message: fmt.Sprintf("le mot de passe doit contenir au moins %d caractères", m.opts.MinPasswordLength),
		}
	}

	if !m.op.TryLock() {
		return nil, ErrOperationInFlight
	}
	defer m.op.Unlock()

	m.beginOp()
	defer m.endOp()

	result, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.setLastError(messageOf(err))
		return nil, err
	}

	if !registry.IsAdministrative(result.User.Role) {
		m.setLastError("seuls les comptes administrateurs peuvent accéder à cette interface")
		return nil, ErrNotAdministrator
	}

	if err := credstore.Save(ctx, m.store, credstore.Credentials{
		Token:    result.Token,
		UserJSON: string(result.UserJSON),
	}); err != nil {
		m.setLastError("impossible d'enregistrer la session")
		return nil, fmt.Errorf("session: persist credentials: %w", err)
	}

	user := result.User
	m.mu.Lock()
	m.user = &user
	m.token = result.Token
	m.lastError = ""
	m.mu.Unlock()

	out := user
	return &out, nil
}

// Logout invalidates the session. The remote call is best effort; the
// local session is always cleared, and clearing twice is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	if !m.op.TryLock() {
		return ErrOperationInFlight
	}
	defer m.op.Unlock()

	m.beginOp()
	defer m.endOp()

	if token := m.Token(); token != "" {
		if err := m.api.Logout(ctx, token); err != nil {
			m.logger.Warn("remote logout failed", slog.Any("error", err))
		}
	}
	m.clear(ctx)
	return nil
}

// VerifyToken decides whether the cached session is usable. Under the
// local-trust policy a cached token+user pair is accepted without a
// round-trip. A failed verification clears the session; a transport
// failure leaves it untouched.
func (m *Manager) VerifyToken(ctx context.Context) (bool, error) {
	token := m.Token()
	if token == "" {
		m.clear(ctx)
		return false, nil
	}

	if m.opts.TrustCachedSession && m.currentUser() != nil {
		return true, nil
	}

	raw, err := m.api.GetProfile(ctx, token)
	if err != nil {
		var netErr *niaxtu.NetworkError
		if errors.As(err, &netErr) {
			return false, err
		}
		m.clear(ctx)
		return false, nil
	}
	if err := m.mergeUser(ctx, raw); err != nil {
		return false, err
	}
	return true, nil
}

// Register creates a new administrator account. Restricted to super
// administrators; never mutates the local session.
func (m *Manager) Register(ctx context.Context, admin niaxtu.NewAdmin) (*niaxtu.User, error) {
	if !m.IsSuperAdmin() {
		return nil, &niaxtu.AuthorizationError{Message: "seuls les super administrateurs peuvent créer des comptes"}
	}

	if !m.op.TryLock() {
		return nil, ErrOperationInFlight
	}
	defer m.op.Unlock()

	m.beginOp()
	defer m.endOp()

	user, err := m.api.Register(ctx, m.Token(), admin)
	if err != nil {
		m.setLastError(messageOf(err))
		m.invalidateOnExpiry(ctx, err)
		return nil, err
	}
	m.setLastError("")
	return &user, nil
}

// Profile refreshes the user record from the API and shallow-merges
// the response over the cached record: fields absent from the response
// keep their previous value.
func (m *Manager) Profile(ctx context.Context) (*niaxtu.User, error) {
	raw, err := m.api.GetProfile(ctx, m.Token())
	if err != nil {
		m.invalidateOnExpiry(ctx, err)
		return nil, err
	}
	if err := m.mergeUser(ctx, raw); err != nil {
		return nil, err
	}
	return m.currentUser(), nil
}

// UpdateProfile applies a partial update remotely and merges the
// result the same way Profile does.
func (m *Manager) UpdateProfile(ctx context.Context, update niaxtu.ProfileUpdate) (*niaxtu.User, error) {
	raw, err := m.api.UpdateProfile(ctx, m.Token(), update)
	if err != nil {
		m.invalidateOnExpiry(ctx, err)
		return nil, err
	}
	if err := m.mergeUser(ctx, raw); err != nil {
		return nil, err
	}
	return m.currentUser(), nil
}

// HasPermission checks the user's stored permission set. super_admin
// passes every check regardless of the stored set.
func (m *Manager) HasPermission(perm registry.Permission) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return false
	}
	if m.user.Role == registry.RoleSuperAdmin {
		return true
	}
	return m.user.HasPermission(perm)
}

// HasRole reports whether the user's role is one of the given roles.
func (m *Manager) HasRole(roles ...registry.Role) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return false
	}
	for _, role := range roles {
		if m.user.Role == role {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether the session belongs to a super
// administrator.
func (m *Manager) IsSuperAdmin() bool {
	return m.HasRole(registry.RoleSuperAdmin)
}

// IsAuthenticated reports whether a user record and token are live.
func (m *Manager) IsAuthenticated() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user != nil && m.token != ""
}

// Token returns the current API token, empty when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// Snapshot returns a copy of the session state for rendering.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap := Snapshot{Loading: m.loading, LastError: m.lastError}
	if m.user != nil {
		user := *m.user
		snap.User = &user
	}
	return snap
}

// LastError returns the stored human-readable failure message.
func (m *Manager) LastError() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

// HandleAPIError reacts to an error from any authenticated call made
// outside the manager: an expired session is cleared so the next
// request lands on the login form. Reports whether the session died.
func (m *Manager) HandleAPIError(ctx context.Context, err error) bool {
	if errors.Is(err, niaxtu.ErrSessionExpired) {
		m.clear(ctx)
		return true
	}
	return false
}

func (m *Manager) invalidateOnExpiry(ctx context.Context, err error) {
	if errors.Is(err, niaxtu.ErrSessionExpired) {
		m.clear(ctx)
	}
}

// mergeUser decodes raw user JSON over a copy of the current record so
// absent fields are preserved, then persists store-first.
func (m *Manager) mergeUser(ctx context.Context, raw json.RawMessage) error {
	m.mu.RLock()
	merged := niaxtu.User{}
	if m.user != nil {
		merged = *m.user
	}
	token := m.token
	m.mu.RUnlock()

	if err := json.Unmarshal(raw, &merged); err != nil {
		return fmt.Errorf("session: decode user record: %w", err)
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("session: encode user record: %w", err)
	}
	if err := credstore.Save(ctx, m.store, credstore.Credentials{Token: token, UserJSON: string(data)}); err != nil {
		return fmt.Errorf("session: persist user record: %w", err)
	}

	m.mu.Lock()
	m.user = &merged
	m.mu.Unlock()
	return nil
}

func (m *Manager) clear(ctx context.Context) {
	if err := credstore.Clear(ctx, m.store); err != nil {
		m.logger.Warn("clear credential store", slog.Any("error", err))
	}
	m.mu.Lock()
	m.user = nil
	m.token = ""
	m.mu.Unlock()
}

func (m *Manager) currentUser() *niaxtu.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	user := *m.user
	return &user
}

func (m *Manager) beginOp() {
	m.mu.Lock()
	m.loading = true
	m.lastError = ""
	m.mu.Unlock()
}

func (m *Manager) endOp() {
	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()
}

func (m *Manager) setLastError(msg string) {
	m.mu.Lock()
	m.lastError = msg
	m.mu.Unlock()
}

// messageOf extracts the human-readable part of a client error.
func messageOf(err error) string {
	var authErr *niaxtu.AuthenticationError
	if errors.As(err, &authErr) && authErr.Message != "" {
		return authErr.Message
	}
	var authzErr *niaxtu.AuthorizationError
	if errors.As(err, &authzErr) && authzErr.Message != "" {
		return authzErr.Message
	}
	var netErr *niaxtu.NetworkError
	if errors.As(err, &netErr) {
		return "le serveur est injoignable, veuillez réessayer"
	}
	return err.Error()
}
