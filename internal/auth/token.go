package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer identifies tokens minted by this server.
	Issuer = "skybook"

	// TokenUseAccess and TokenUseRefresh distinguish the two token kinds.
	// A refresh token is never accepted as a bearer credential and vice
	// versa.
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrWrongTokenUse = errors.New("wrong token use")
)

// Claims carries the subject (user id) plus the email and token kind.
type Claims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	TokenUse string `json:"token_use"`
}

// IssueToken creates a signed HS256 JWT for the given user.
func IssueToken(secret []byte, userID, email, tokenUse string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:    email,
		TokenUse: tokenUse,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// VerifyToken parses and validates a token, checking the signature, expiry
// and issuer, and that the token is of the expected kind.
func VerifyToken(secret []byte, tokenString, expectedUse string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.TokenUse != expectedUse {
		return nil, ErrWrongTokenUse
	}

	return claims, nil
}
