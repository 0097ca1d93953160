// Package session implements the client-side session controller: the single
// source of truth for the access token, the current user, and the loading
// and error state around them. The controller is the only writer of the
// token; the HTTP pipeline reads it through the SessionHooks view and
// requests mutations through HandleAuthFailure.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/voyago/voyago-go/httpclient"
	"github.com/voyago/voyago-go/tokenstore"
	"github.com/voyago/voyago-go/users"
)

// SessionExpiredMessage is surfaced as LastError when a token refresh fails
// and the session is forced out.
const SessionExpiredMessage = "Session expired. Please login again."

// fetchFailedMessage is surfaced when the current-user fetch fails for a
// held token.
const fetchFailedMessage = "Failed to fetch user data"

const defaultTokenTTL = 24 * time.Hour

var ErrEmptyToken = errors.New("empty access token")

var _ httpclient.SessionHooks = (*Manager)(nil)

// BackendAuth is the slice of the auth API the controller needs.
type BackendAuth interface {
	Me(ctx context.Context) (*users.User, error)
	Logout(ctx context.Context) error
	RefreshToken(ctx context.Context) (string, error)
}

// Manager orchestrates login, logout, and the user-fetch, and exposes the
// resulting state to observers. It implements httpclient.SessionHooks.
type Manager struct {
	backend  BackendAuth
	store    *tokenstore.Store
	logger   zerolog.Logger
	tokenTTL time.Duration

	// oauthSignOut, when set, is invoked best-effort on logout so an
	// external OAuth provider can clear its own session.
	oauthSignOut func(ctx context.Context) error

	mu        sync.Mutex
	token     string
	user      *users.User
	loading   bool
	lastError string
	status    Status
	epoch     uint64 // bumped on every token change; stale fetches check it
	observers []Observer

	// refreshMu serializes token refreshes so concurrent auth failures
	// share a single refresh call.
	refreshMu sync.Mutex
}

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithTokenTTL sets the persistence lifetime used when storing tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.tokenTTL = ttl
		}
	}
}

// WithOAuthSignOut registers a provider sign-out hook called on logout.
func WithOAuthSignOut(signOut func(ctx context.Context) error) Option {
	return func(m *Manager) {
		m.oauthSignOut = signOut
	}
}

// NewManager initializes a Manager with required dependencies. The manager
// starts in the loading state, mirroring an application boot before the
// persisted token has been examined; Start resolves it.
func NewManager(backend BackendAuth, store *tokenstore.Store, options ...Option) (*Manager, error) {
	if backend == nil {
		return nil, errors.New("[NewManager] backend auth API is required")
	}
	if store == nil {
		return nil, errors.New("[NewManager] token store is required")
	}

	m := &Manager{
		backend:  backend,
		store:    store,
		logger:   zerolog.Nop(),
		tokenTTL: defaultTokenTTL,
		loading:  true,
		status:   StatusUnauthenticated,
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Start reads any persisted token and runs the initial user-fetch. With no
// usable token the session resolves immediately to unauthenticated.
func (m *Manager) Start(ctx context.Context) error {
	token, ok := m.store.Get()
	if !ok {
		m.update(func() {
			m.loading = false
			m.status = StatusUnauthenticated
		})
		return nil
	}

	var epoch uint64
	m.update(func() {
		m.token = token
		m.loading = true
		m.status = StatusAuthenticating
		m.epoch++
		epoch = m.epoch
	})
	return m.fetchUser(ctx, epoch)
}

// Login adopts a freshly issued access token: persists it, updates the
// in-memory state, and fetches the current user. Re-login with the token
// already held only clears the last error; it does not re-trigger the
// user-fetch.
func (m *Manager) Login(ctx context.Context, token string) error {
	if token == "" {
		return errors.Wrap(ErrEmptyToken, "[Manager.Login]")
	}

	var (
		epoch     uint64
		unchanged bool
	)
	m.update(func() {
		if token == m.token {
			unchanged = true
			m.lastError = ""
			return
		}
		m.store.Set(token, m.tokenTTL)
		m.token = token
		m.lastError = ""
		m.loading = true
		m.status = StatusAuthenticating
		m.epoch++
		epoch = m.epoch
	})
	if unchanged {
		return nil
	}

	m.logger.Info().Msg("session: logged in, fetching user")
	return m.fetchUser(ctx, epoch)
}

// Logout calls the backend logout endpoint best-effort, then unconditionally
// clears the token store, the in-memory token, the user, and the error.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.backend.Logout(ctx); err != nil {
		m.logger.Warn().Err(err).Msg("session: backend logout failed")
	}
	if m.oauthSignOut != nil {
		if err := m.oauthSignOut(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("session: oauth provider sign-out failed")
		}
	}

	m.update(func() {
		m.store.Clear()
		m.token = ""
		m.user = nil
		m.lastError = ""
		m.loading = false
		m.status = StatusUnauthenticated
		m.epoch++ // any in-flight fetch becomes stale
	})
	m.logger.Info().Msg("session: logged out")
	return nil
}

// RefreshUser re-runs the user-fetch on demand, e.g. after a profile edit.
func (m *Manager) RefreshUser(ctx context.Context) error {
	var (
		epoch     uint64
		anonymous bool
	)
	m.update(func() {
		if m.token == "" {
			anonymous = true
			m.user = nil
			m.loading = false
			m.status = StatusUnauthenticated
			return
		}
		m.loading = true
		m.status = StatusAuthenticating
		m.epoch++
		epoch = m.epoch
	})
	if anonymous {
		return nil
	}
	return m.fetchUser(ctx, epoch)
}

// Token implements httpclient.SessionHooks. An empty string means the next
// request goes out anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// HandleAuthFailure implements httpclient.SessionHooks: the single-retry
// refresh protocol. Refreshes are serialized; when several requests fail on
// the same stale token at once, the first performs the refresh and the rest
// adopt its result. On refresh failure the session is forced out and the
// caller's original failure propagates.
func (m *Manager) HandleAuthFailure(ctx context.Context, staleToken string) (string, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	// A refresh that completed while this caller waited already replaced
	// the stale token; reuse it instead of refreshing again.
	if current := m.Token(); current != "" && current != staleToken {
		return current, nil
	}

	// The refresh call (and everything below) must never re-enter this
	// stage, so the whole recovery runs with the retry stage disabled.
	ctx = httpclient.WithoutAuthRetry(ctx)

	newToken, err := m.backend.RefreshToken(ctx)
	if err != nil {
		m.logger.Warn().Err(err).Msg("session: token refresh failed, forcing logout")
		m.expire(ctx)
		return "", errors.Wrap(err, "[Manager.HandleAuthFailure] refresh token")
	}

	var epoch uint64
	m.update(func() {
		m.store.Set(newToken, m.tokenTTL)
		m.token = newToken
		m.loading = true
		m.status = StatusAuthenticating
		m.epoch++
		epoch = m.epoch
	})
	m.logger.Info().Msg("session: access token refreshed")

	// The token value changed, so the user-fetch runs again before the
	// original request is replayed. Write ordering matters: the token is
	// already updated above, so the replay cannot observe the stale one.
	if err := m.fetchUser(ctx, epoch); err != nil {
		m.logger.Warn().Err(err).Msg("session: user fetch after refresh failed")
	}

	return newToken, nil
}

// Snapshot returns the current state for guards and observers.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// IsAuthenticated reports whether the session is fully established.
func (m *Manager) IsAuthenticated() bool {
	return m.Snapshot().Authenticated()
}

// Subscribe registers an observer notified after every state change.
func (m *Manager) Subscribe(observer Observer) {
	if observer == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, observer)
}

// fetchUser resolves the current user for the token adopted at epoch. A
// result arriving after the token changed again is discarded, so a stale
// fetch can never clobber newer state.
func (m *Manager) fetchUser(ctx context.Context, epoch uint64) error {
	user, err := m.backend.Me(ctx)

	var stale bool
	m.update(func() {
		if m.epoch != epoch {
			stale = true
			return
		}
		m.loading = false
		if err != nil {
			m.user = nil
			m.lastError = fetchFailedMessage
			m.status = StatusUnauthenticated
			return
		}
		m.user = user
		m.status = StatusAuthenticated
	})

	if stale {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "[Manager.fetchUser] get current user")
	}
	return nil
}

// expire clears the session after a failed refresh and records the
// session-expired error. The logout call runs with the retry stage already
// disabled by the caller.
func (m *Manager) expire(ctx context.Context) {
	_ = m.Logout(ctx)
	m.update(func() {
		m.lastError = SessionExpiredMessage
	})
}

// update applies a state mutation under the lock, then notifies observers
// outside it so an observer may call back into the manager.
func (m *Manager) update(mutate func()) {
	m.mu.Lock()
	mutate()
	snapshot := m.snapshotLocked()
	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, observer := range observers {
		observer(snapshot)
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		Token:     m.token,
		User:      m.user,
		Loading:   m.loading,
		LastError: m.lastError,
		Status:    m.status,
	}
}
