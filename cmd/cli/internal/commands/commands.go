package commands

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/astrofleet/skybook/internal/api"
	"github.com/astrofleet/skybook/internal/booking"
	"github.com/astrofleet/skybook/internal/config"
	"github.com/astrofleet/skybook/internal/flights"
	"github.com/astrofleet/skybook/internal/logger"
	"github.com/astrofleet/skybook/internal/payment"
	"github.com/astrofleet/skybook/internal/session"
)

type Globals struct {
	Debug      bool
	Version    string
	ServerURL  string
	ConfigPath string
}

// app wires the SDK: one API client, one session manager bound to it as the
// credential source, and the domain services on top.
type app struct {
	cfg      config.Config
	client   *api.Client
	sessions *session.Manager
	flights  *flights.Service
	bookings *booking.Service
	payments *payment.Orchestrator
}

func setup(g *Globals) (*app, error) {
	log.Logger = logger.Setup(g.Debug)

	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	if g.ServerURL != "" {
		cfg.ServerURL = g.ServerURL
	}

	store, err := session.NewStore(cfg.SessionDir)
	if err != nil {
		return nil, err
	}

	client := api.New(api.Config{BaseURL: cfg.ServerURL, Timeout: cfg.Timeout, Debug: g.Debug})
	sessions := session.NewManager(client, store)
	client.SetCredentialSource(sessions)

	flightSvc := flights.NewService(client)
	bookingSvc := booking.NewService(client, flightSvc)
	paymentSvc := payment.NewOrchestrator(client, bookingSvc)

	return &app{
		cfg:      cfg,
		client:   client,
		sessions: sessions,
		flights:  flightSvc,
		bookings: bookingSvc,
		payments: paymentSvc,
	}, nil
}

// friendly rewrites SDK errors into actionable CLI messages.
func friendly(err error) error {
	if err == nil {
		return nil
	}

	var loginErr *api.LoginRequiredError
	if errors.As(err, &loginErr) {
		return fmt.Errorf("sign in required: run `skybook-cli login` and retry")
	}

	var partial *payment.PartialFailureError
	if errors.As(err, &partial) {
		return fmt.Errorf("payment completed, but confirmation is still pending.\n"+
			"Your card was charged once. To finish without paying again, run:\n"+
			"  skybook-cli bookings confirm %s", partial.BookingID)
	}

	return err
}

func dollars(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
