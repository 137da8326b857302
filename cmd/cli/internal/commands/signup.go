package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/astrofleet/skybook/internal/api"
	"github.com/astrofleet/skybook/internal/session"
)

type SignupCmd struct {
	Email    string `help:"Account email address" required:""`
	Password string `help:"Account password (minimum 8 characters)" required:"" env:"SKYBOOK_PASSWORD"`
	FullName string `help:"Full name" required:""`
}

func (s *SignupCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	user, err := app.sessions.Signup(ctx, api.SignUpRequest{
		Email:    s.Email,
		Password: s.Password,
		FullName: s.FullName,
	})
	if err != nil {
		if errors.Is(err, session.ErrAccountCreatedSignInFailed) {
			return fmt.Errorf("your account was created but sign-in failed: %v\nrun `skybook-cli login` to sign in", err)
		}
		return err
	}

	fmt.Printf("Account created. Signed in as %s (%s)\n", user.FullName, user.Email)
	return nil
}
