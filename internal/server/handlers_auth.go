package server

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/astrofleet/skybook/internal/auth"
	"github.com/astrofleet/skybook/internal/models"
	"github.com/astrofleet/skybook/internal/store"
)

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
}

func (s *Server) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		respondError(c, http.StatusBadRequest, "validation", "email address is not valid")
		return
	}
	if len(req.Password) < 8 {
		respondError(c, http.StatusBadRequest, "validation", "password must be at least 8 characters")
		return
	}
	if req.FullName == "" {
		respondError(c, http.StatusBadRequest, "validation", "full name is required")
		return
	}

	salt, err := newSalt()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to create account")
		return
	}

	rec := &store.UserRecord{
		User: models.User{
			ID:          uuid.NewString(),
			Email:       req.Email,
			FullName:    req.FullName,
			PhoneNumber: req.PhoneNumber,
			CreatedAt:   time.Now().UTC(),
		},
		PasswordHash: hashPassword(salt, req.Password),
		Salt:         salt,
	}

	if err := s.users.Create(c.Request.Context(), rec); err != nil {
		if errors.Is(err, store.ErrUserExists) {
			respondError(c, http.StatusBadRequest, "validation", "email is already registered")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal", "failed to create account")
		return
	}

	s.logger.Info().Str("email", req.Email).Msg("account created")

	c.JSON(http.StatusCreated, gin.H{"user": rec.User})
}

func (s *Server) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	rec, err := s.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || !checkPassword(rec, req.Password) {
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		return
	}

	now := time.Now().UTC()
	_ = s.users.TouchSignIn(c.Request.Context(), rec.User.ID, now)
	rec.User.LastSignInAt = now

	access, refresh, err := s.issueTokenPair(rec.User.ID, rec.User.Email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to issue tokens")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":         access,
		"refresh_token": refresh,
		"user":          rec.User,
	})
}

func (s *Server) refreshToken(c *gin.Context) {
	if c.Query("grant_type") != "refresh_token" {
		respondError(c, http.StatusBadRequest, "unsupported_grant_type", "grant_type must be refresh_token")
		return
	}

	var req struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		respondError(c, http.StatusBadRequest, "invalid_request", "refresh_token is required")
		return
	}

	claims, err := auth.VerifyToken(s.cfg.JWTSecret, req.RefreshToken, auth.TokenUseRefresh)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid_grant", "refresh token is invalid or expired")
		return
	}

	if _, err := s.users.GetByID(c.Request.Context(), claims.Subject); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid_grant", "account no longer exists")
		return
	}

	// Rotate both tokens on every refresh.
	access, refresh, err := s.issueTokenPair(claims.Subject, claims.Email)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to issue tokens")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
	})
}

func (s *Server) profile(c *gin.Context) {
	rec, err := s.users.GetByID(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, http.StatusNotFound, "user", "user not found")
		return
	}
	c.JSON(http.StatusOK, rec.User)
}

// signOut exists for the client's best-effort remote invalidation. Tokens
// are stateless, so there is nothing to revoke server-side.
func (s *Server) signOut(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

func (s *Server) issueTokenPair(userID, email string) (access, refresh string, err error) {
	access, err = auth.IssueToken(s.cfg.JWTSecret, userID, email, auth.TokenUseAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", "", err
	}
	refresh, err = auth.IssueToken(s.cfg.JWTSecret, userID, email, auth.TokenUseRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return "", "", err
	}
	return access, refresh, nil
}

func newSalt() (string, error) {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

func hashPassword(salt, password string) string {
	sum := sha256.Sum256([]byte(salt + ":" + password))
	return hex.EncodeToString(sum[:])
}

func checkPassword(rec *store.UserRecord, password string) bool {
	expected := hashPassword(rec.Salt, password)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(rec.PasswordHash)) == 1
}
