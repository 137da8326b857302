package session

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/astrofleet/skybook/internal/api"
	"github.com/astrofleet/skybook/internal/models"
)

var (
	// ErrSessionExpired is returned when the refresh token is missing or the
	// refresh call failed. The session has been cleared; the user must sign
	// in again.
	ErrSessionExpired = errors.New("session expired, sign in again")

	// ErrAccountCreatedSignInFailed is returned when signup created the
	// account but the follow-up sign-in failed. The account exists; the user
	// should sign in manually rather than retry signup.
	ErrAccountCreatedSignInFailed = errors.New("account created but sign-in failed")
)

const (
	refreshTimeout  = 15 * time.Second
	signOutTimeout  = 5 * time.Second
	minPasswordLen  = 8
	maxRefreshTries = 3
)

// AuthAPI is the slice of the backend client the manager needs. Satisfied by
// *api.Client.
type AuthAPI interface {
	SignIn(ctx context.Context, email, password string) (*api.SignInResponse, error)
	SignUp(ctx context.Context, req api.SignUpRequest) (*models.User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*api.TokenPair, error)
	Profile(ctx context.Context) (*models.User, error)
	SignOut(ctx context.Context) error
}

// State is a snapshot of the session published to subscribers.
type State struct {
	Authenticated bool
	User          *models.User
}

// refreshCall is the shared record of an in-flight token refresh. Concurrent
// callers wait on done instead of starting a second refresh.
type refreshCall struct {
	done  chan struct{}
	token string
	err   error
}

// Manager owns the token pair and the authenticated user profile. It is the
// single source of session truth: components subscribe to state changes
// instead of reading ambient globals, and the HTTP transport obtains tokens
// and coordinated refreshes through it (api.CredentialSource).
type Manager struct {
	api   AuthAPI
	store *Store

	mu       sync.Mutex
	session  models.Session
	user     *models.User
	inflight *refreshCall

	subMu sync.Mutex
	subs  []func(State)
}

// NewManager creates a manager, resuming any token pair the store holds.
// A stored token is only "possibly authenticated": LoadUser decides whether
// it is still usable.
func NewManager(authAPI AuthAPI, store *Store) *Manager {
	m := &Manager{api: authAPI, store: store}

	access, refresh, err := store.Load()
	if err != nil {
		if !errors.Is(err, ErrNoSession) {
			log.Warn().Err(err).Msg("failed to load stored session")
		}
		return m
	}

	m.session = models.Session{AccessToken: access, RefreshToken: refresh}
	if exp, err := TokenExpiry(access); err == nil {
		m.session.ExpiresAt = exp
	}

	log.Debug().Time("expiresAt", m.session.ExpiresAt).Msg("resumed stored session")

	return m
}

// Subscribe registers fn to be called on every session state change.
func (m *Manager) Subscribe(fn func(State)) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	m.subs = append(m.subs, fn)
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Authenticated: m.session.AccessToken != "", User: m.user}
}

// IsAuthenticated reports whether a token pair is held. It does not imply
// the access token is still valid.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.AccessToken != ""
}

// CurrentUser returns the loaded profile, or nil before LoadUser/Login.
func (m *Manager) CurrentUser() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user
}

// AccessToken implements api.CredentialSource.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.AccessToken
}

// Login validates credentials locally, exchanges them for a token pair,
// persists the pair, and fetches the full profile in a follow-up call.
func (m *Manager) Login(ctx context.Context, email, password string) (*models.User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if password == "" {
		return nil, &api.ValidationError{Field: "password", Message: "password is required"}
	}

	resp, err := m.api.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	sess := models.Session{AccessToken: resp.Token, RefreshToken: resp.RefreshToken}
	if exp, derr := TokenExpiry(resp.Token); derr == nil {
		sess.ExpiresAt = exp
	} else {
		log.Warn().Err(derr).Msg("access token expiry not decodable")
	}

	m.mu.Lock()
	m.session = sess
	user := resp.User
	m.user = &user
	m.mu.Unlock()

	if err := m.store.Save(sess.AccessToken, sess.RefreshToken); err != nil {
		return nil, err
	}

	// Follow-up profile fetch. The sign-in response carries a partial user;
	// the profile endpoint is authoritative. Failure here does not undo the
	// login.
	if profile, perr := m.api.Profile(ctx); perr == nil {
		m.mu.Lock()
		m.user = profile
		m.mu.Unlock()
	} else {
		log.Warn().Err(perr).Msg("profile fetch after sign-in failed")
	}

	m.notify()

	log.Info().Str("email", email).Msg("signed in")

	return m.CurrentUser(), nil
}

// Signup creates the account, then performs an internal Login to obtain
// tokens. The two steps are not atomic: a signup that succeeds but whose
// sign-in fails surfaces ErrAccountCreatedSignInFailed.
func (m *Manager) Signup(ctx context.Context, profile api.SignUpRequest) (*models.User, error) {
	if err := validateEmail(profile.Email); err != nil {
		return nil, err
	}
	if len(profile.Password) < minPasswordLen {
		return nil, &api.ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLen)}
	}
	if profile.FullName == "" {
		return nil, &api.ValidationError{Field: "full_name", Message: "full name is required"}
	}

	if _, err := m.api.SignUp(ctx, profile); err != nil {
		return nil, err
	}

	user, err := m.Login(ctx, profile.Email, profile.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccountCreatedSignInFailed, err)
	}
	return user, nil
}

// Logout invalidates the session server-side on a best-effort basis. Local
// token and state clearing is unconditional and happens even if the remote
// call fails or times out.
func (m *Manager) Logout(ctx context.Context) error {
	if m.IsAuthenticated() {
		sctx, cancel := context.WithTimeout(ctx, signOutTimeout)
		defer cancel()
		if err := m.api.SignOut(sctx); err != nil {
			log.Warn().Err(err).Msg("remote sign-out failed, clearing local session anyway")
		}
	}
	return m.clear()
}

// LoadUser resumes the session at application start or when a protected view
// needs a profile that is not loaded. An unusable session (no tokens,
// refresh failed) is cleared and reported as unauthenticated, not as an
// error.
func (m *Manager) LoadUser(ctx context.Context) error {
	m.mu.Lock()
	sess := m.session
	m.mu.Unlock()

	if sess.AccessToken == "" {
		return nil
	}

	if sess.IsExpired(time.Now()) {
		if sess.RefreshToken == "" {
			log.Debug().Msg("stored token expired with no refresh token")
			return m.clear()
		}
		if _, err := m.Refresh(ctx, sess.AccessToken); err != nil {
			// Refresh already cleared the session and notified.
			log.Debug().Err(err).Msg("stored token refresh failed")
			return nil
		}
	}

	profile, err := m.api.Profile(ctx)
	if err != nil {
		var authErr *api.AuthError
		var loginErr *api.LoginRequiredError
		if errors.As(err, &authErr) || errors.As(err, &loginErr) {
			return m.clear()
		}
		return err
	}

	m.mu.Lock()
	m.user = profile
	m.mu.Unlock()
	m.notify()

	return nil
}

// Refresh implements api.CredentialSource. It guarantees single-flight: any
// number of concurrent callers rejected with the same stale token share one
// refresh call. A caller whose stale token has already been replaced gets
// the current token without any network activity.
func (m *Manager) Refresh(ctx context.Context, stale string) (string, error) {
	m.mu.Lock()

	if m.session.AccessToken != "" && m.session.AccessToken != stale {
		token := m.session.AccessToken
		m.mu.Unlock()
		return token, nil
	}

	if call := m.inflight; call != nil {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.token, call.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	if m.session.RefreshToken == "" {
		m.mu.Unlock()
		_ = m.clear()
		return "", ErrSessionExpired
	}

	call := &refreshCall{done: make(chan struct{})}
	m.inflight = call
	refreshToken := m.session.RefreshToken
	m.mu.Unlock()

	pair, err := m.exchangeRefreshToken(ctx, refreshToken)

	m.mu.Lock()
	m.inflight = nil
	if err != nil {
		m.session = models.Session{}
		m.user = nil
		m.mu.Unlock()

		call.err = fmt.Errorf("%w: %v", ErrSessionExpired, err)
		close(call.done)

		if cerr := m.store.Clear(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to clear stored session")
		}
		m.notify()

		log.Info().Err(err).Msg("token refresh failed, session cleared")

		return "", call.err
	}

	m.session = models.Session{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}
	if exp, derr := TokenExpiry(pair.AccessToken); derr == nil {
		m.session.ExpiresAt = exp
	}
	m.mu.Unlock()

	call.token = pair.AccessToken
	close(call.done)

	if serr := m.store.Save(pair.AccessToken, pair.RefreshToken); serr != nil {
		log.Warn().Err(serr).Msg("failed to persist refreshed tokens")
	}

	log.Debug().Msg("access token refreshed")

	return pair.AccessToken, nil
}

// exchangeRefreshToken performs the refresh-token grant, retrying transport
// and 5xx failures with bounded exponential backoff. Auth failures (revoked
// or expired refresh token) are permanent.
func (m *Manager) exchangeRefreshToken(ctx context.Context, refreshToken string) (*api.TokenPair, error) {
	rctx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	return backoff.Retry(rctx, func() (*api.TokenPair, error) {
		pair, err := m.api.RefreshToken(rctx, refreshToken)
		if err != nil {
			if api.IsRetryable(err) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return pair, nil
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(maxRefreshTries))
}

// clear drops the in-memory session, removes the persisted token pair, and
// notifies subscribers.
func (m *Manager) clear() error {
	m.mu.Lock()
	m.session = models.Session{}
	m.user = nil
	m.mu.Unlock()

	err := m.store.Clear()
	m.notify()
	return err
}

func (m *Manager) notify() {
	state := m.Snapshot()

	m.subMu.Lock()
	subs := slices.Clone(m.subs)
	m.subMu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func validateEmail(email string) error {
	if email == "" {
		return &api.ValidationError{Field: "email", Message: "email is required"}
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return &api.ValidationError{Field: "email", Message: "email address is not valid"}
	}
	return nil
}
