package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestIssueAndVerifyToken(t *testing.T) {
	token, err := IssueToken(testSecret, "u1", "amy@example.com", TokenUseAccess, time.Minute)
	require.NoError(t, err)

	claims, err := VerifyToken(testSecret, token, TokenUseAccess)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "amy@example.com", claims.Email)
	assert.Equal(t, TokenUseAccess, claims.TokenUse)
	assert.Equal(t, Issuer, claims.Issuer)
}

func TestVerifyToken_WrongUse(t *testing.T) {
	refresh, err := IssueToken(testSecret, "u1", "amy@example.com", TokenUseRefresh, time.Hour)
	require.NoError(t, err)

	// A refresh token is never accepted as a bearer credential.
	_, err = VerifyToken(testSecret, refresh, TokenUseAccess)
	require.ErrorIs(t, err, ErrWrongTokenUse)
}

func TestVerifyToken_Expired(t *testing.T) {
	token, err := IssueToken(testSecret, "u1", "amy@example.com", TokenUseAccess, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, token, TokenUseAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, "u1", "amy@example.com", TokenUseAccess, time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken([]byte("another-secret-another-secret-xx"), token, TokenUseAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Garbage(t *testing.T) {
	_, err := VerifyToken(testSecret, "not-a-token", TokenUseAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}
