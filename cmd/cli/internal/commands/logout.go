package commands

import (
	"context"
	"fmt"
)

type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	if err := app.sessions.Logout(ctx); err != nil {
		return err
	}

	fmt.Println("Signed out")
	return nil
}
