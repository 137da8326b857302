package api

import (
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrofleet/skybook/internal/models"
)

func makeResponse(status int, body string, headers map[string]string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

func TestFromResponse_Unauthorized(t *testing.T) {
	resp := makeResponse(http.StatusUnauthorized, `{"message":"invalid credentials"}`, nil)

	err := FromResponse(resp)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Equal(t, "invalid credentials", authErr.Reason)
}

func TestFromResponse_Forbidden(t *testing.T) {
	resp := makeResponse(http.StatusForbidden, ``, nil)

	err := FromResponse(resp)

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid or expired credentials", authErr.Reason)
}

func TestFromResponse_NotFound(t *testing.T) {
	resp := makeResponse(http.StatusNotFound, `{"error":"flight","message":"flight not found"}`, nil)

	err := FromResponse(resp)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "flight", notFound.Resource)
}

func TestFromResponse_RateLimited(t *testing.T) {
	resp := makeResponse(http.StatusTooManyRequests, ``, map[string]string{"Retry-After": "30"})

	err := FromResponse(resp)

	var rateLimited *RateLimitedError
	require.ErrorAs(t, err, &rateLimited)
	assert.Equal(t, 30*time.Second, rateLimited.RetryAfter)
}

func TestFromResponse_InvalidTransition(t *testing.T) {
	resp := makeResponse(http.StatusConflict,
		`{"error":"invalid_transition","field":"booking","from":"confirmed","to":"confirmed"}`, nil)

	err := FromResponse(resp)

	var transition *models.InvalidTransitionError
	require.ErrorAs(t, err, &transition)
	assert.Equal(t, "booking", transition.Entity)
	assert.Equal(t, "confirmed", transition.From)
	assert.Equal(t, "confirmed", transition.To)
}

func TestFromResponse_ServerError(t *testing.T) {
	resp := makeResponse(http.StatusBadGateway, `{"message":"upstream unavailable"}`, nil)

	err := FromResponse(resp)

	var srvErr *ServerError
	require.ErrorAs(t, err, &srvErr)
	assert.Equal(t, http.StatusBadGateway, srvErr.StatusCode)
	assert.Equal(t, "upstream unavailable", srvErr.Message)
}

func TestFromResponse_Validation(t *testing.T) {
	resp := makeResponse(http.StatusBadRequest, `{"error":"validation","field":"number_of_seats","message":"at least one seat is required"}`, nil)

	err := FromResponse(resp)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "number_of_seats", validation.Field)
	assert.Equal(t, "at least one seat is required", validation.Message)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&NetworkError{URL: "http://x", Err: io.ErrUnexpectedEOF}))
	assert.True(t, IsRetryable(&ServerError{StatusCode: 503}))
	assert.False(t, IsRetryable(&AuthError{StatusCode: 401, Reason: "expired"}))
	assert.False(t, IsRetryable(&ValidationError{Message: "bad input"}))
	assert.False(t, IsRetryable(&models.InvalidTransitionError{Entity: "booking"}))
	assert.False(t, IsRetryable(&LoginRequiredError{}))
}
