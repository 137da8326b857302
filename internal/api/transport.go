package api

import (
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
)

// authTransport attaches the current access token as a bearer credential and
// implements the refresh-and-retry protocol: on 401 it asks the credential
// source for a refreshed token (a single-flight operation shared with any
// concurrent request that hit the same expired token) and replays the
// request exactly once. A second 401 is returned as-is and classified as a
// permanent AuthError by the caller. Transport errors never trigger a
// refresh.
type authTransport struct {
	base  http.RoundTripper
	creds CredentialSource
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.creds == nil {
		return nil, &LoginRequiredError{Destination: req.URL.RequestURI()}
	}

	token := t.creds.AccessToken()
	if token == "" {
		return nil, &LoginRequiredError{Destination: req.URL.RequestURI()}
	}

	resp, err := t.send(req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Drain so the connection can be reused before the replay.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	resp.Body.Close()

	fresh, err := t.creds.Refresh(req.Context(), token)
	if err != nil {
		log.Debug().
			Str("url", req.URL.String()).
			Err(err).
			Msg("token refresh failed, forcing sign-in")
		return nil, &LoginRequiredError{Destination: req.URL.RequestURI(), Err: err}
	}

	return t.send(req, fresh)
}

// send replays req with the given bearer token. The original request body is
// recovered through GetBody, which net/http populates for buffered bodies.
func (t *authTransport) send(req *http.Request, token string) (*http.Response, error) {
	attempt := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		attempt.Body = body
	}
	attempt.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(attempt)
}
