package session_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/voyago/voyago-go/session"
	"github.com/voyago/voyago-go/tokenstore"
	"github.com/voyago/voyago-go/users"
)

const (
	testUserEmail = "a@b.com"
	firstToken    = "token-1"
	secondToken   = "token-2"
)

// fakeBackend is a controllable BackendAuth with call counters.
type fakeBackend struct {
	mu sync.Mutex

	user      *users.User
	meErr     error
	meCalls   int
	meStarted chan struct{} // closed-once signal that Me was entered
	meGate    chan struct{} // when non-nil, Me blocks until closed

	logoutErr   error
	logoutCalls int

	nextToken    string
	refreshErr   error
	refreshCalls int
}

func (b *fakeBackend) Me(ctx context.Context) (*users.User, error) {
	b.mu.Lock()
	b.meCalls++
	started := b.meStarted
	gate := b.meGate
	b.mu.Unlock()

	if started != nil {
		select {
		case <-started:
		default:
			close(started)
		}
	}
	if gate != nil {
		<-gate
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.meErr != nil {
		return nil, b.meErr
	}
	return b.user, nil
}

func (b *fakeBackend) Logout(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.logoutCalls++
	return b.logoutErr
}

func (b *fakeBackend) RefreshToken(ctx context.Context) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshCalls++
	if b.refreshErr != nil {
		return "", b.refreshErr
	}
	return b.nextToken, nil
}

func (b *fakeBackend) calls() (me, logout, refresh int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.meCalls, b.logoutCalls, b.refreshCalls
}

type fixture struct {
	backend *fakeBackend
	store   *tokenstore.Store
	manager *session.Manager
}

func setup(t *testing.T) *fixture {
	t.Helper()

	backend := &fakeBackend{
		user: &users.User{ID: "user-1", Email: testUserEmail, FirstName: "Ada", LastName: "Lovelace"},
	}
	store := tokenstore.New(filepath.Join(t.TempDir(), "token.json"))

	manager, err := session.NewManager(backend, store)
	require.NoError(t, err)

	return &fixture{backend: backend, store: store, manager: manager}
}

func TestLoginFetchesUserExactlyOnce(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.manager.Login(context.Background(), firstToken))

	me, _, _ := f.backend.calls()
	require.Equal(t, 1, me)

	snapshot := f.manager.Snapshot()
	require.True(t, snapshot.Authenticated())
	require.Equal(t, session.StatusAuthenticated, snapshot.Status)
	require.Equal(t, testUserEmail, snapshot.User.Email)
}

func TestReLoginWithSameTokenSkipsFetch(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.manager.Login(context.Background(), firstToken))
	require.NoError(t, f.manager.Login(context.Background(), firstToken))

	me, _, _ := f.backend.calls()
	require.Equal(t, 1, me, "identical token must not re-trigger the user-fetch")
}

func TestLoginWithNewTokenRefetches(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.manager.Login(context.Background(), firstToken))
	require.NoError(t, f.manager.Login(context.Background(), secondToken))

	me, _, _ := f.backend.calls()
	require.Equal(t, 2, me)
	require.Equal(t, secondToken, f.manager.Token())
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	f := setup(t)

	err := f.manager.Login(context.Background(), "")
	require.ErrorIs(t, err, session.ErrEmptyToken)
	require.False(t, f.manager.IsAuthenticated())
}

func TestLogoutClearsStateEvenWhenBackendFails(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.manager.Login(context.Background(), firstToken))

	f.backend.mu.Lock()
	f.backend.logoutErr = errors.New("backend unreachable")
	f.backend.mu.Unlock()

	require.NoError(t, f.manager.Logout(context.Background()))

	snapshot := f.manager.Snapshot()
	require.Empty(t, snapshot.Token)
	require.Nil(t, snapshot.User)
	require.Empty(t, snapshot.LastError)
	require.False(t, snapshot.Authenticated())

	_, ok := f.store.Get()
	require.False(t, ok, "token store must be cleared")
}

func TestStartRestoresPersistedSession(t *testing.T) {
	f := setup(t)
	f.store.Set(firstToken, time.Hour)

	require.NoError(t, f.manager.Start(context.Background()))

	me, _, _ := f.backend.calls()
	require.Equal(t, 1, me)
	require.True(t, f.manager.IsAuthenticated())
	require.Equal(t, firstToken, f.manager.Token())
}

func TestStartWithoutTokenResolvesImmediately(t *testing.T) {
	f := setup(t)

	require.True(t, f.manager.Snapshot().Loading, "session starts unresolved")
	require.NoError(t, f.manager.Start(context.Background()))

	snapshot := f.manager.Snapshot()
	require.False(t, snapshot.Loading)
	require.Equal(t, session.StatusUnauthenticated, snapshot.Status)

	me, _, _ := f.backend.calls()
	require.Zero(t, me)
}

func TestUserFetchFailureSurfacesError(t *testing.T) {
	f := setup(t)
	f.backend.mu.Lock()
	f.backend.meErr = errors.New("boom")
	f.backend.mu.Unlock()

	err := f.manager.Login(context.Background(), firstToken)
	require.Error(t, err)

	snapshot := f.manager.Snapshot()
	require.Nil(t, snapshot.User)
	require.Equal(t, "Failed to fetch user data", snapshot.LastError)
	require.False(t, snapshot.Authenticated())
}

func TestHandleAuthFailureRefreshesAndRefetches(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.manager.Login(context.Background(), firstToken))

	f.backend.mu.Lock()
	f.backend.nextToken = secondToken
	f.backend.mu.Unlock()

	got, err := f.manager.HandleAuthFailure(context.Background(), firstToken)
	require.NoError(t, err)
	require.Equal(t, secondToken, got)
	require.Equal(t, secondToken, f.manager.Token())

	me, _, refresh := f.backend.calls()
	require.Equal(t, 1, refresh)
	require.Equal(t, 2, me, "token change triggers a user refetch")

	persisted, ok := f.store.Get()
	require.True(t, ok)
	require.Equal(t, secondToken, persisted)
}

func TestConcurrentAuthFailuresShareOneRefresh(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.manager.Login(context.Background(), firstToken))

	f.backend.mu.Lock()
	f.backend.nextToken = secondToken
	f.backend.mu.Unlock()

	const concurrency = 5
	type outcome struct {
		token string
		err   error
	}
	results := make(chan outcome, concurrency)
	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := f.manager.HandleAuthFailure(context.Background(), firstToken)
			results <- outcome{token: token, err: err}
		}()
	}
	wg.Wait()
	close(results)

	for result := range results {
		require.NoError(t, result.err)
		require.Equal(t, secondToken, result.token)
	}
	_, _, refresh := f.backend.calls()
	require.Equal(t, 1, refresh, "concurrent failures must coalesce into one refresh")
}

func TestRefreshFailureExpiresSession(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.manager.Login(context.Background(), firstToken))

	f.backend.mu.Lock()
	f.backend.refreshErr = errors.New("refresh token expired")
	f.backend.mu.Unlock()

	_, err := f.manager.HandleAuthFailure(context.Background(), firstToken)
	require.Error(t, err)

	snapshot := f.manager.Snapshot()
	require.Empty(t, snapshot.Token)
	require.Nil(t, snapshot.User)
	require.Equal(t, session.SessionExpiredMessage, snapshot.LastError)
	require.False(t, snapshot.Authenticated())

	_, logout, _ := f.backend.calls()
	require.Equal(t, 1, logout, "expiry escalates through logout")
}

func TestObserverSeesAuthenticatingBeforeAuthenticated(t *testing.T) {
	f := setup(t)

	var mu sync.Mutex
	var seen []session.Snapshot
	f.manager.Subscribe(func(s session.Snapshot) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	require.NoError(t, f.manager.Login(context.Background(), firstToken))

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(seen), 2)

	intermediate := seen[0]
	require.Equal(t, session.StatusAuthenticating, intermediate.Status)
	require.True(t, intermediate.Loading)
	require.False(t, intermediate.Authenticated(), "never authenticated while loading")

	final := seen[len(seen)-1]
	require.Equal(t, session.StatusAuthenticated, final.Status)
	require.True(t, final.Authenticated())
}

func TestStaleFetchCannotClobberLogout(t *testing.T) {
	f := setup(t)
	started := make(chan struct{})
	gate := make(chan struct{})
	f.backend.mu.Lock()
	f.backend.meStarted = started
	f.backend.meGate = gate
	f.backend.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- f.manager.Login(context.Background(), firstToken)
	}()

	// Wait until the user-fetch is in flight, then log out underneath it.
	<-started
	require.NoError(t, f.manager.Logout(context.Background()))

	close(gate)
	require.NoError(t, <-done)

	snapshot := f.manager.Snapshot()
	require.Empty(t, snapshot.Token)
	require.Nil(t, snapshot.User, "stale fetch result must be discarded")
}

func TestLogoutInvokesOAuthSignOut(t *testing.T) {
	backend := &fakeBackend{
		user: &users.User{ID: "user-1", Email: testUserEmail},
	}
	store := tokenstore.New(filepath.Join(t.TempDir(), "token.json"))

	var signOutCalls int
	manager, err := session.NewManager(backend, store,
		session.WithOAuthSignOut(func(ctx context.Context) error {
			signOutCalls++
			return errors.New("provider unreachable")
		}),
	)
	require.NoError(t, err)

	require.NoError(t, manager.Login(context.Background(), firstToken))
	require.NoError(t, manager.Logout(context.Background()), "provider sign-out failure is non-fatal")

	require.Equal(t, 1, signOutCalls)
	require.False(t, manager.IsAuthenticated())
	require.Empty(t, manager.Token())
}

func TestRefreshUserWithoutTokenIsNoop(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.manager.Start(context.Background()))

	require.NoError(t, f.manager.RefreshUser(context.Background()))

	me, _, _ := f.backend.calls()
	require.Zero(t, me)
	require.Equal(t, session.StatusUnauthenticated, f.manager.Snapshot().Status)
}

func TestRefreshUserRefetchesProfile(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.manager.Login(context.Background(), firstToken))

	f.backend.mu.Lock()
	f.backend.user = &users.User{ID: "user-1", Email: testUserEmail, FirstName: "Augusta"}
	f.backend.mu.Unlock()

	require.NoError(t, f.manager.RefreshUser(context.Background()))

	me, _, _ := f.backend.calls()
	require.Equal(t, 2, me)
	require.Equal(t, "Augusta", f.manager.Snapshot().User.FirstName)
}
