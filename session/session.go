// Package session owns the client-side session lifecycle for the SchoolMed
// API: who is logged in, the durable credential store backing it, and the
// login/register/logout transitions. It is the single source of truth a UI or
// CLI consults before rendering anything role-gated.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/DinhTQSE/schoolmed-client/authapi"
	"github.com/DinhTQSE/schoolmed-client/token"
	"github.com/DinhTQSE/schoolmed-client/users"
	"github.com/rs/zerolog"
)

// AuthAPI is the slice of the SchoolMed API the session manager depends on.
// *authapi.Client satisfies it.
type AuthAPI interface {
	Me(ctx context.Context, token string) (*users.User, error)
	SignIn(ctx context.Context, signIn authapi.SignInRequest) (*authapi.SignInResponse, error)
	SignUp(ctx context.Context, signUp authapi.SignUpRequest) (*authapi.SignUpResponse, error)
}

// Snapshot is a point-in-time view of the session, safe to hold across
// concurrent mutations.
type Snapshot struct {
	User    *users.User
	Token   string
	Loading bool
	Err     string
}

// Authenticated reports whether the snapshot holds a live session.
func (s Snapshot) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// LoginResult is the structured outcome of a Login call. Login never fails
// with a Go error; callers branch on Success.
type LoginResult struct {
	Success bool
	Message string
	User    *users.User
}

// RegisterResult is the structured outcome of a Register call.
type RegisterResult struct {
	Success bool
	Message string
}

// Manager owns the Session entity and its transitions. Token and user are set
// and cleared together; the in-memory state is rehydrated from the store once
// per process and kept in sync on every mutation.
type Manager struct {
	store            Store
	api              AuthAPI
	logger           zerolog.Logger
	nowTime          func() time.Time // nowTime function (injectable for testing)
	onSessionExpired func()

	initOnce sync.Once

	mu      sync.RWMutex
	user    *users.User
	token   string
	loading bool
	lastErr string
}

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(m *Manager) {
		m.nowTime = nowFunc
	}
}

// WithOnSessionExpired installs the hook invoked when the session is ended by
// an authorization failure rather than an explicit logout. A UI would bind
// this to its login navigation; the hook must tolerate being called more than
// once.
func WithOnSessionExpired(fn func()) Option {
	return func(m *Manager) {
		m.onSessionExpired = fn
	}
}

// NewManager initializes a Manager with its required dependencies.
func NewManager(store Store, api AuthAPI, options ...Option) (*Manager, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if api == nil {
		return nil, ErrAuthAPIRequired
	}

	m := &Manager{
		store:   store,
		api:     api,
		logger:  zerolog.Nop(),
		nowTime: time.Now,
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Initialize rehydrates the session from the durable store and validates the
// stored token against the "who am I" endpoint. A cached user is made visible
// immediately, before the validation round trip resolves, so consumers can
// render without waiting on the network. Runs at most once per Manager;
// repeated calls return the current snapshot.
//
// Outcomes:
//   - no stored token: unauthenticated
//   - validation succeeds: authenticated with the authoritative server record
//   - validation fails with 401: session destroyed
//   - validation fails otherwise with a cached user: cached user kept
//   - validation fails otherwise without a cached user: unauthenticated
func (m *Manager) Initialize(ctx context.Context) Snapshot {
	m.initOnce.Do(func() {
		m.initialize(ctx)
	})
	return m.Snapshot()
}

func (m *Manager) initialize(ctx context.Context) {
	m.setLoading(true)
	defer m.setLoading(false)

	stored, err := m.store.Token()
	if err != nil {
		m.logger.Warn().Err(err).Msg("credential store unreadable, starting unauthenticated")
		return
	}
	if stored == "" {
		return
	}

	cached, err := m.store.User()
	if err != nil {
		m.logger.Warn().Err(err).Msg("cached user unreadable")
	}
	if cached != nil {
		// Optimistic: show the cached identity while validation is in flight.
		m.setSession(stored, cached)
	}

	if claims, err := token.Inspect(stored); err == nil && claims.Expired(m.nowTime()) {
		m.logger.Debug().Str("subject", claims.Subject).Msg("stored token is past its expiry, validation expected to fail")
	}

	authoritative, err := m.api.Me(ctx, stored)
	switch {
	case err == nil:
		authoritative.Token = stored
		if err := m.store.Save(stored, authoritative); err != nil {
			m.logger.Warn().Err(err).Msg("persisting refreshed user record failed")
		}
		m.setSession(stored, authoritative)

	case authapi.IsUnauthorized(err):
		m.logger.Info().Msg("stored token rejected, clearing session")
		m.clearSession()

	case cached != nil:
		// Transient failure with a cached identity: do not log the user out
		// just because the endpoint was briefly unreachable.
		m.logger.Warn().Err(err).Msg("session validation unreachable, keeping cached user")

	default:
		m.logger.Warn().Err(err).Msg("session validation unreachable and no cached user")
		m.clearSession()
	}
}

// Login submits credentials to the sign-in endpoint and, on success, persists
// and exposes the new session. On failure the previous session state is left
// untouched.
func (m *Manager) Login(ctx context.Context, username, password string) LoginResult {
	m.beginTransition()
	defer m.setLoading(false)

	resp, err := m.api.SignIn(ctx, authapi.SignInRequest{Username: username, Password: password})
	if err != nil {
		message := authapi.ServerMessage(err, loginFallbackMessage)
		m.logger.Info().Str("username", username).Msg("login rejected")
		m.setError(message)
		return LoginResult{Success: false, Message: message}
	}

	user := resp.User()
	if err := m.store.Save(resp.Token, user); err != nil {
		m.logger.Error().Err(err).Msg("persisting session failed")
		m.setError(loginFallbackMessage)
		return LoginResult{Success: false, Message: loginFallbackMessage}
	}
	m.setSession(resp.Token, user)

	m.logger.Info().Str("username", username).Msg("login succeeded")
	return LoginResult{Success: true, User: user}
}

// Register submits a sign-up request. It never establishes a session; a
// successful registration still requires a subsequent Login. Phone defaults
// to empty and role defaults to the student role when omitted.
func (m *Manager) Register(ctx context.Context, register RegisterRequest) RegisterResult {
	m.beginTransition()
	defer m.setLoading(false)

	register.applyDefaults()
	if err := register.Validate(); err != nil {
		m.setError(err.Error())
		return RegisterResult{Success: false, Message: err.Error()}
	}

	resp, err := m.api.SignUp(ctx, register.signUpRequest())
	if err != nil {
		message := authapi.ServerMessage(err, registerFallbackMessage)
		m.setError(message)
		return RegisterResult{Success: false, Message: message}
	}

	return RegisterResult{Success: true, Message: resp.Message}
}

// Logout clears the session from storage and memory immediately. No network
// call is made; logging out while already logged out is a no-op.
func (m *Manager) Logout() {
	m.clearSession()
}

// SessionExpired ends the session in response to an authorization failure and
// notifies the configured hook. Safe to call repeatedly, which happens when
// several in-flight requests each receive a 401.
func (m *Manager) SessionExpired() {
	m.clearSession()
	if m.onSessionExpired != nil {
		m.onSessionExpired()
	}
}

// IsAuthenticated reports whether a token currently exists in durable
// storage. It does not guarantee the token is still valid server-side; that
// is discovered lazily on the next authenticated request.
func (m *Manager) IsAuthenticated() bool {
	stored, err := m.store.Token()
	if err != nil {
		return false
	}
	return stored != ""
}

// CurrentUser returns the in-memory user, or false when unauthenticated.
func (m *Manager) CurrentUser() (*users.User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user, m.user != nil
}

// Snapshot returns a point-in-time view of the session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		User:    m.user,
		Token:   m.token,
		Loading: m.loading,
		Err:     m.lastErr,
	}
}

// Loading reports whether an initialize/login/register transition is in
// flight. Consumers must not render protected content while true.
func (m *Manager) Loading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading
}

// Err returns the last failure message, or "".
func (m *Manager) Err() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastErr
}

func (m *Manager) beginTransition() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = true
	m.lastErr = ""
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = loading
}

func (m *Manager) setError(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = message
}

func (m *Manager) setSession(tok string, user *users.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = tok
	m.user = user
}

func (m *Manager) clearSession() {
	if err := m.store.Clear(); err != nil {
		m.logger.Warn().Err(err).Msg("clearing credential store failed")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.user = nil
	m.lastErr = ""
}
