package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofleet/skybook/internal/models"
)

// fakeCreds is a scriptable credential source.
type fakeCreds struct {
	token        string
	refreshed    string
	refreshErr   error
	refreshCalls atomic.Int64
}

func (f *fakeCreds) AccessToken() string { return f.token }

func (f *fakeCreds) Refresh(ctx context.Context, stale string) (string, error) {
	f.refreshCalls.Add(1)
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	f.token = f.refreshed
	return f.refreshed, nil
}

func newTestClient(t *testing.T, handler http.Handler, creds CredentialSource) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Config{BaseURL: server.URL, Timeout: 5 * time.Second})
	if creds != nil {
		client.SetCredentialSource(creds)
	}
	return client, server
}

func TestAuthTransport_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(models.User{ID: "u1", Email: "amy@example.com"})
	})

	creds := &fakeCreds{token: "valid-token"}
	client, _ := newTestClient(t, handler, creds)

	user, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "Bearer valid-token", gotAuth)
	assert.Equal(t, int64(0), creds.refreshCalls.Load())
}

func TestAuthTransport_RefreshAndRetryOn401(t *testing.T) {
	var requests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "token expired"})
			return
		}
		_ = json.NewEncoder(w).Encode(models.User{ID: "u1"})
	})

	creds := &fakeCreds{token: "stale-token", refreshed: "fresh-token"}
	client, _ := newTestClient(t, handler, creds)

	user, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, int64(1), creds.refreshCalls.Load())
	assert.Equal(t, int64(2), requests.Load())
}

func TestAuthTransport_ReplaysRequestBody(t *testing.T) {
	var bodies []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		bodies = append(bodies, req.FlightID)
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(models.Booking{ID: "b1", FlightID: req.FlightID})
	})

	creds := &fakeCreds{token: "stale-token", refreshed: "fresh-token"}
	client, _ := newTestClient(t, handler, creds)

	booking, err := client.CreateBooking(context.Background(), CreateBookingRequest{FlightID: "FL-1001", Seats: 2})
	require.NoError(t, err)
	assert.Equal(t, "b1", booking.ID)

	// The replay carried the same body as the original attempt.
	require.Len(t, bodies, 2)
	assert.Equal(t, "FL-1001", bodies[0])
	assert.Equal(t, "FL-1001", bodies[1])
}

func TestAuthTransport_SecondUnauthorizedIsPermanent(t *testing.T) {
	var requests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "token revoked"})
	})

	creds := &fakeCreds{token: "stale-token", refreshed: "still-bad-token"}
	client, _ := newTestClient(t, handler, creds)

	_, err := client.Profile(context.Background())

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "token revoked", authErr.Reason)

	// Exactly one refresh and one replay, never a loop.
	assert.Equal(t, int64(1), creds.refreshCalls.Load())
	assert.Equal(t, int64(2), requests.Load())
}

func TestAuthTransport_RefreshFailureForcesSignIn(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	creds := &fakeCreds{token: "stale-token", refreshErr: assert.AnError}
	client, _ := newTestClient(t, handler, creds)

	_, err := client.GetBooking(context.Background(), "b1")

	var loginErr *LoginRequiredError
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, "/bookings/b1", loginErr.Destination)
}

func TestAuthTransport_NoSessionFailsWithoutNetwork(t *testing.T) {
	var requests atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
	})

	creds := &fakeCreds{token: ""}
	client, _ := newTestClient(t, handler, creds)

	_, err := client.ListBookings(context.Background())

	var loginErr *LoginRequiredError
	require.ErrorAs(t, err, &loginErr)
	assert.Equal(t, "/bookings", loginErr.Destination)
	assert.Equal(t, int64(0), requests.Load())
}

func TestAuthTransport_NetworkErrorDoesNotRefresh(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	creds := &fakeCreds{token: "valid-token"}
	client, server := newTestClient(t, handler, creds)

	// Kill the server so the request fails at the transport level.
	server.Close()

	_, err := client.Profile(context.Background())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, int64(0), creds.refreshCalls.Load())
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(Config{BaseURL: server.URL, Timeout: 20 * time.Millisecond})
	client.SetCredentialSource(&fakeCreds{token: "valid-token"})

	_, err := client.Profile(context.Background())

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)

	var authErr *AuthError
	assert.False(t, errors.As(err, &authErr))
}
