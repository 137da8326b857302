package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofleet/skybook/internal/api"
	"github.com/astrofleet/skybook/internal/models"
)

// fakeAuthAPI is a scriptable AuthAPI with per-call counters.
type fakeAuthAPI struct {
	signInFn  func(ctx context.Context, email, password string) (*api.SignInResponse, error)
	signUpFn  func(ctx context.Context, req api.SignUpRequest) (*models.User, error)
	refreshFn func(ctx context.Context, refreshToken string) (*api.TokenPair, error)
	profileFn func(ctx context.Context) (*models.User, error)
	signOutFn func(ctx context.Context) error

	signInCalls  atomic.Int64
	refreshCalls atomic.Int64
	signOutCalls atomic.Int64
}

func (f *fakeAuthAPI) SignIn(ctx context.Context, email, password string) (*api.SignInResponse, error) {
	f.signInCalls.Add(1)
	return f.signInFn(ctx, email, password)
}

func (f *fakeAuthAPI) SignUp(ctx context.Context, req api.SignUpRequest) (*models.User, error) {
	return f.signUpFn(ctx, req)
}

func (f *fakeAuthAPI) RefreshToken(ctx context.Context, refreshToken string) (*api.TokenPair, error) {
	f.refreshCalls.Add(1)
	return f.refreshFn(ctx, refreshToken)
}

func (f *fakeAuthAPI) Profile(ctx context.Context) (*models.User, error) {
	if f.profileFn == nil {
		return &models.User{ID: "u1", Email: "amy@example.com", FullName: "Amy Tester"}, nil
	}
	return f.profileFn(ctx)
}

func (f *fakeAuthAPI) SignOut(ctx context.Context) error {
	f.signOutCalls.Add(1)
	if f.signOutFn == nil {
		return nil
	}
	return f.signOutFn(ctx)
}

func testToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestManager_LoginSuccess(t *testing.T) {
	accessToken := testToken(t, time.Hour)

	backend := &fakeAuthAPI{
		signInFn: func(ctx context.Context, email, password string) (*api.SignInResponse, error) {
			return &api.SignInResponse{
				Token:        accessToken,
				RefreshToken: "refresh-1",
				User:         models.User{ID: "u1", Email: email},
			}, nil
		},
	}
	store := newTestStore(t)
	manager := NewManager(backend, store)

	var states []State
	manager.Subscribe(func(s State) { states = append(states, s) })

	user, err := manager.Login(context.Background(), "amy@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "Amy Tester", user.FullName)
	assert.True(t, manager.IsAuthenticated())
	assert.Equal(t, accessToken, manager.AccessToken())

	// Token pair survives a process restart.
	access, refresh, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, accessToken, access)
	assert.Equal(t, "refresh-1", refresh)

	require.NotEmpty(t, states)
	assert.True(t, states[len(states)-1].Authenticated)
}

func TestManager_LoginValidation(t *testing.T) {
	backend := &fakeAuthAPI{}
	manager := NewManager(backend, newTestStore(t))

	tests := []struct {
		name     string
		email    string
		password string
		field    string
	}{
		{"missing email", "", "hunter22", "email"},
		{"malformed email", "not-an-email", "hunter22", "email"},
		{"missing password", "amy@example.com", "", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manager.Login(context.Background(), tt.email, tt.password)

			var validation *api.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.field, validation.Field)
		})
	}

	// Validation failures never reach the network.
	assert.Equal(t, int64(0), backend.signInCalls.Load())
}

func TestManager_SignupValidation(t *testing.T) {
	manager := NewManager(&fakeAuthAPI{}, newTestStore(t))

	_, err := manager.Signup(context.Background(), api.SignUpRequest{
		Email:    "amy@example.com",
		Password: "short",
		FullName: "Amy Tester",
	})

	var validation *api.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "password", validation.Field)
}

func TestManager_SignupSignInFailure(t *testing.T) {
	backend := &fakeAuthAPI{
		signUpFn: func(ctx context.Context, req api.SignUpRequest) (*models.User, error) {
			return &models.User{ID: "u1", Email: req.Email}, nil
		},
		signInFn: func(ctx context.Context, email, password string) (*api.SignInResponse, error) {
			return nil, &api.ServerError{StatusCode: 503}
		},
	}
	manager := NewManager(backend, newTestStore(t))

	_, err := manager.Signup(context.Background(), api.SignUpRequest{
		Email:    "amy@example.com",
		Password: "hunter2222",
		FullName: "Amy Tester",
	})

	require.ErrorIs(t, err, ErrAccountCreatedSignInFailed)
	assert.False(t, manager.IsAuthenticated())
}

func TestManager_LogoutClearsDespiteRemoteFailure(t *testing.T) {
	accessToken := testToken(t, time.Hour)
	backend := &fakeAuthAPI{
		signInFn: func(ctx context.Context, email, password string) (*api.SignInResponse, error) {
			return &api.SignInResponse{Token: accessToken, RefreshToken: "refresh-1"}, nil
		},
		signOutFn: func(ctx context.Context) error {
			return &api.NetworkError{URL: "http://x", Err: errors.New("connection refused")}
		},
	}
	store := newTestStore(t)
	manager := NewManager(backend, store)

	_, err := manager.Login(context.Background(), "amy@example.com", "hunter22")
	require.NoError(t, err)

	err = manager.Logout(context.Background())
	require.NoError(t, err)
	assert.False(t, manager.IsAuthenticated())
	assert.Equal(t, int64(1), backend.signOutCalls.Load())

	_, _, err = store.Load()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestManager_ResumesStoredSession(t *testing.T) {
	store := newTestStore(t)
	accessToken := testToken(t, time.Hour)
	require.NoError(t, store.Save(accessToken, "refresh-1"))

	manager := NewManager(&fakeAuthAPI{}, store)

	assert.True(t, manager.IsAuthenticated())
	assert.Equal(t, accessToken, manager.AccessToken())
	assert.Nil(t, manager.CurrentUser())
}

func TestManager_LoadUserNoSession(t *testing.T) {
	backend := &fakeAuthAPI{
		profileFn: func(ctx context.Context) (*models.User, error) {
			t.Fatal("profile must not be fetched without a session")
			return nil, nil
		},
	}
	manager := NewManager(backend, newTestStore(t))

	require.NoError(t, manager.LoadUser(context.Background()))
	assert.False(t, manager.IsAuthenticated())
}

func TestManager_LoadUserRefreshesExpiredToken(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testToken(t, -time.Minute), "refresh-1"))

	freshToken := testToken(t, time.Hour)
	backend := &fakeAuthAPI{
		refreshFn: func(ctx context.Context, refreshToken string) (*api.TokenPair, error) {
			assert.Equal(t, "refresh-1", refreshToken)
			return &api.TokenPair{AccessToken: freshToken, RefreshToken: "refresh-2"}, nil
		},
	}
	manager := NewManager(backend, store)

	require.NoError(t, manager.LoadUser(context.Background()))

	assert.Equal(t, int64(1), backend.refreshCalls.Load())
	assert.Equal(t, freshToken, manager.AccessToken())
	require.NotNil(t, manager.CurrentUser())
	assert.Equal(t, "amy@example.com", manager.CurrentUser().Email)

	// Rotated pair replaced the stored one.
	access, refresh, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, freshToken, access)
	assert.Equal(t, "refresh-2", refresh)
}

func TestManager_LoadUserExpiredWithoutRefreshToken(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testToken(t, -time.Minute), ""))

	manager := NewManager(&fakeAuthAPI{}, store)

	require.NoError(t, manager.LoadUser(context.Background()))
	assert.False(t, manager.IsAuthenticated())

	_, _, err := store.Load()
	require.ErrorIs(t, err, ErrNoSession)
}

func TestManager_LoadUserRejectedTokenClearsSession(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Save(testToken(t, time.Hour), "refresh-1"))

	backend := &fakeAuthAPI{
		profileFn: func(ctx context.Context) (*models.User, error) {
			return nil, &api.AuthError{StatusCode: 401, Reason: "token revoked"}
		},
	}
	manager := NewManager(backend, store)

	require.NoError(t, manager.LoadUser(context.Background()))
	assert.False(t, manager.IsAuthenticated())
}

func TestManager_RefreshSingleFlight(t *testing.T) {
	store := newTestStore(t)
	staleToken := testToken(t, -time.Minute)
	require.NoError(t, store.Save(staleToken, "refresh-1"))

	freshToken := testToken(t, time.Hour)
	release := make(chan struct{})
	backend := &fakeAuthAPI{
		refreshFn: func(ctx context.Context, refreshToken string) (*api.TokenPair, error) {
			<-release
			return &api.TokenPair{AccessToken: freshToken, RefreshToken: "refresh-2"}, nil
		},
	}
	manager := NewManager(backend, store)

	const goroutines = 10

	var wg sync.WaitGroup
	results := make([]string, goroutines)
	errs := make([]error, goroutines)

	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = manager.Refresh(context.Background(), staleToken)
		}()
	}

	// Let the callers pile up on the in-flight refresh before it completes.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for i := range goroutines {
		require.NoError(t, errs[i])
		assert.Equal(t, freshToken, results[i])
	}

	assert.Equal(t, int64(1), backend.refreshCalls.Load())
}

func TestManager_RefreshStaleTokenAlreadyReplaced(t *testing.T) {
	store := newTestStore(t)
	currentToken := testToken(t, time.Hour)
	require.NoError(t, store.Save(currentToken, "refresh-1"))

	backend := &fakeAuthAPI{
		refreshFn: func(ctx context.Context, refreshToken string) (*api.TokenPair, error) {
			t.Fatal("refresh must not be performed for an already-replaced token")
			return nil, nil
		},
	}
	manager := NewManager(backend, store)

	token, err := manager.Refresh(context.Background(), "some-older-token")
	require.NoError(t, err)
	assert.Equal(t, currentToken, token)
}

func TestManager_RefreshWithoutRefreshToken(t *testing.T) {
	store := newTestStore(t)
	staleToken := testToken(t, -time.Minute)
	require.NoError(t, store.Save(staleToken, ""))

	manager := NewManager(&fakeAuthAPI{}, store)

	_, err := manager.Refresh(context.Background(), staleToken)
	require.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, manager.IsAuthenticated())
}

func TestManager_RefreshFailureClearsSession(t *testing.T) {
	store := newTestStore(t)
	staleToken := testToken(t, -time.Minute)
	require.NoError(t, store.Save(staleToken, "refresh-1"))

	backend := &fakeAuthAPI{
		refreshFn: func(ctx context.Context, refreshToken string) (*api.TokenPair, error) {
			return nil, &api.AuthError{StatusCode: 401, Reason: "refresh token revoked"}
		},
	}
	manager := NewManager(backend, store)

	var states []State
	manager.Subscribe(func(s State) { states = append(states, s) })

	_, err := manager.Refresh(context.Background(), staleToken)
	require.ErrorIs(t, err, ErrSessionExpired)

	// Revoked refresh tokens are permanent, no retries.
	assert.Equal(t, int64(1), backend.refreshCalls.Load())
	assert.False(t, manager.IsAuthenticated())

	_, _, err = store.Load()
	require.ErrorIs(t, err, ErrNoSession)

	require.NotEmpty(t, states)
	assert.False(t, states[len(states)-1].Authenticated)
}

func TestManager_RefreshRetriesTransientFailure(t *testing.T) {
	store := newTestStore(t)
	staleToken := testToken(t, -time.Minute)
	require.NoError(t, store.Save(staleToken, "refresh-1"))

	freshToken := testToken(t, time.Hour)
	backend := &fakeAuthAPI{}
	backend.refreshFn = func(ctx context.Context, refreshToken string) (*api.TokenPair, error) {
		if backend.refreshCalls.Load() == 1 {
			return nil, &api.ServerError{StatusCode: 503}
		}
		return &api.TokenPair{AccessToken: freshToken, RefreshToken: "refresh-2"}, nil
	}
	manager := NewManager(backend, store)

	token, err := manager.Refresh(context.Background(), staleToken)
	require.NoError(t, err)
	assert.Equal(t, freshToken, token)
	assert.Equal(t, int64(2), backend.refreshCalls.Load())
}
