package commands

import (
	"context"
	"fmt"
)

type LoginCmd struct {
	Email    string `help:"Account email address" required:""`
	Password string `help:"Account password" required:"" env:"SKYBOOK_PASSWORD"`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	user, err := app.sessions.Login(ctx, l.Email, l.Password)
	if err != nil {
		return err
	}

	fmt.Printf("Signed in as %s (%s)\n", user.FullName, user.Email)
	return nil
}
