package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/astrofleet/skybook/internal/logger"
)

// Config holds common client configuration.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Debug   bool
}

// DefaultConfig returns a default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
		Debug:   false,
	}
}

// CredentialSource supplies bearer tokens for protected requests and
// coordinates the single-flight token refresh. Implemented by
// session.Manager.
type CredentialSource interface {
	// AccessToken returns the current access token, or "" when there is no
	// stored session.
	AccessToken() string

	// Refresh exchanges the refresh token for a new access token. stale is
	// the token the caller just saw rejected; if another caller already
	// refreshed, the fresh token is returned without a second refresh call.
	Refresh(ctx context.Context, stale string) (string, error)
}

// Client is the REST client for the booking backend. Protected endpoints go
// through an auth transport that attaches the bearer token and performs the
// refresh-and-retry protocol on 401. Flight inventory reads additionally go
// through an in-memory HTTP cache, since the inventory service marks them
// cacheable.
type Client struct {
	baseURL string

	plain   *http.Client // unauthenticated: signin, signup, token refresh
	authed  *http.Client // bearer-authenticated, refresh-and-retry on 401
	flights *http.Client // unauthenticated + response caching
}

// New creates a client. Protected calls fail with LoginRequiredError until
// SetCredentialSource is called with a session manager.
func New(cfg Config) *Client {
	base := logger.NewHTTPTransport(http.DefaultTransport, cfg.Debug)

	cachingTransport := httpcache.NewTransport(httpcache.NewMemoryCache())
	cachingTransport.Transport = base

	return &Client{
		baseURL: cfg.BaseURL,
		plain:   &http.Client{Timeout: cfg.Timeout, Transport: base},
		authed:  &http.Client{Timeout: cfg.Timeout, Transport: &authTransport{base: base}},
		flights: &http.Client{Timeout: cfg.Timeout, Transport: cachingTransport},
	}
}

// SetCredentialSource wires the session manager into the auth transport.
// The manager itself performs signin and refresh calls through this client,
// so the two are constructed first and bound here.
func (c *Client) SetCredentialSource(src CredentialSource) {
	c.authed.Transport.(*authTransport).creds = src
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) do(ctx context.Context, httpc *http.Client, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpc.Do(req)
	if err != nil {
		// Errors produced by the auth transport (forced logout, refresh
		// failure) pass through untouched; anything else means no response
		// arrived.
		var loginErr *LoginRequiredError
		if errors.As(err, &loginErr) {
			return loginErr
		}
		var authErr *AuthError
		if errors.As(err, &authErr) {
			return authErr
		}
		return &NetworkError{URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return FromResponse(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// get/post/put over the bearer-authenticated client.
func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, c.authed, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, c.authed, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, c.authed, http.MethodPut, path, body, out)
}
