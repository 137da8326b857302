package api

import (
	"context"
	"net/http"

	"github.com/astrofleet/skybook/internal/models"
)

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
}

// SignInResponse carries the token pair plus the account profile embedded in
// the sign-in response. The full profile is still fetched separately via
// Profile after sign-in.
type SignInResponse struct {
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// TokenPair is the result of a refresh-token grant.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// SignIn exchanges credentials for a token pair. Unauthenticated.
func (c *Client) SignIn(ctx context.Context, email, password string) (*SignInResponse, error) {
	var out SignInResponse
	err := c.do(ctx, c.plain, http.MethodPost, "/auth/signin", SignInRequest{Email: email, Password: password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// SignUp creates a new account. The backend also returns a token pair, but
// the session manager performs a separate sign-in afterwards so account
// creation and session establishment fail independently.
func (c *Client) SignUp(ctx context.Context, req SignUpRequest) (*models.User, error) {
	var out struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, c.plain, http.MethodPost, "/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// RefreshToken exchanges the refresh token for a new token pair.
// Unauthenticated: the expired access token plays no part here.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	body := struct {
		RefreshToken string `json:"refresh_token"`
	}{RefreshToken: refreshToken}

	var out TokenPair
	err := c.do(ctx, c.plain, http.MethodPost, "/auth/token?grant_type=refresh_token", body, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := c.get(ctx, "/auth/profile", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignOut invalidates the session server-side. Best-effort: callers clear
// local state regardless of the outcome.
func (c *Client) SignOut(ctx context.Context) error {
	return c.post(ctx, "/auth/signout", nil, nil)
}
