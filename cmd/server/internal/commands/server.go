package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/astrofleet/skybook/internal/logger"
	"github.com/astrofleet/skybook/internal/server"
	memorystore "github.com/astrofleet/skybook/internal/store/memory"
)

type ServerCmd struct {
	Listen          string        `help:"HTTP server listen address" default:"0.0.0.0:8080" env:"SKYBOOK_LISTEN"`
	JWTSecret       string        `help:"HMAC secret used to sign tokens" required:"" env:"SKYBOOK_JWT_SECRET"`
	AccessTokenTTL  time.Duration `help:"access token lifetime" default:"15m" env:"SKYBOOK_ACCESS_TOKEN_TTL"`
	RefreshTokenTTL time.Duration `help:"refresh token lifetime" default:"168h" env:"SKYBOOK_REFRESH_TOKEN_TTL"`
	NoSeed          bool          `help:"skip seeding the demo flight inventory" default:"false"`
}

func (s *ServerCmd) Validate() error {
	if len(s.JWTSecret) < 32 {
		return errors.New("JWT secret must be at least 32 bytes for HMAC-SHA256")
	}
	return nil
}

func (s *ServerCmd) Run(ctx context.Context, globals *Globals) error {
	_ = godotenv.Load()

	log := logger.Setup(globals.Debug)

	log.Info().Str("version", globals.Version).Bool("debug", globals.Debug).Msg("Starting server")

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users := memorystore.NewUserStore()
	flights := memorystore.NewFlightStore()
	bookings := memorystore.NewBookingStore()
	payments := memorystore.NewPaymentStore()

	if !s.NoSeed {
		if err := server.SeedFlights(ctx, flights, time.Now().UTC().AddDate(0, 0, 7)); err != nil {
			return err
		}
		log.Info().Msg("Seeded demo flight inventory")
	}

	cfg := server.Config{
		JWTSecret:       []byte(s.JWTSecret),
		AccessTokenTTL:  s.AccessTokenTTL,
		RefreshTokenTTL: s.RefreshTokenTTL,
		Dev:             globals.Debug,
	}

	svc := server.New(cfg, log, users, flights, bookings, payments)
	httpServer := configureHTTPServer(s.Listen, svc.Router())

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.Listen).Msg("Listening")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
