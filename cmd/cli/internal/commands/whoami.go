package commands

import (
	"context"
	"fmt"
)

type WhoamiCmd struct{}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	if err := app.sessions.LoadUser(ctx); err != nil {
		return friendly(err)
	}

	state := app.sessions.Snapshot()
	if !state.Authenticated || state.User == nil {
		fmt.Println("Not signed in")
		return nil
	}

	fmt.Printf("%s (%s)\n", state.User.FullName, state.User.Email)
	if !state.User.LastSignInAt.IsZero() {
		fmt.Printf("Last sign-in: %s\n", state.User.LastSignInAt.Format("2006-01-02 15:04:05 MST"))
	}
	return nil
}
