package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/astrofleet/skybook/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Login    commands.LoginCmd    `cmd:"" help:"Sign in to your account"`
		Signup   commands.SignupCmd   `cmd:"" help:"Create an account and sign in"`
		Logout   commands.LogoutCmd   `cmd:"" help:"Sign out"`
		Whoami   commands.WhoamiCmd   `cmd:"" help:"Show the signed-in user"`
		Flights  commands.FlightsCmd  `cmd:"" help:"Search and inspect flights"`
		Bookings commands.BookingsCmd `cmd:"" help:"Manage bookings"`
		Checkout commands.CheckoutCmd `cmd:"" help:"Pay for a booking and confirm it"`
		Payments commands.PaymentsCmd `cmd:"" help:"Inspect and refund payments"`

		Server  string `help:"Booking API base URL (overrides config)."`
		Config  string `help:"Config file path." type:"path"`
		Debug   bool   `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{
		Debug:      cli.Debug,
		Version:    version,
		ServerURL:  cli.Server,
		ConfigPath: cli.Config,
	})
	cmd.FatalIfErrorf(err)
}
