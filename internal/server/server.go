package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/astrofleet/skybook/internal/auth"
	"github.com/astrofleet/skybook/internal/logger"
	"github.com/astrofleet/skybook/internal/store"
)

// Config holds the dev server configuration.
type Config struct {
	JWTSecret       []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Dev             bool
}

// DefaultConfig returns the default token lifetimes: a short-lived access
// token so the refresh path is exercised, and a week-long refresh token.
func DefaultConfig(secret []byte) Config {
	return Config{
		JWTSecret:       secret,
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	}
}

// Server is the reference booking backend: auth, flight inventory, bookings
// and payments over in-memory stores. It enforces the invariants the client
// must be able to rely on: totalAmount is recomputed from price and seats, a
// booking confirms only with a completed payment, cancelled is terminal, and
// refunds require completed.
type Server struct {
	cfg      Config
	logger   zerolog.Logger
	users    store.UserStore
	flights  store.FlightStore
	bookings store.BookingStore
	payments store.PaymentStore
}

func New(cfg Config, log zerolog.Logger, users store.UserStore, flights store.FlightStore, bookings store.BookingStore, payments store.PaymentStore) *Server {
	return &Server{
		cfg:      cfg,
		logger:   log,
		users:    users,
		flights:  flights,
		bookings: bookings,
		payments: payments,
	}
}

// Router builds the gin engine with all routes mounted.
func (s *Server) Router() *gin.Engine {
	if !s.cfg.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinRequests(s.logger))

	r.POST("/auth/signin", s.signIn)
	r.POST("/auth/signup", s.signUp)
	r.POST("/auth/token", s.refreshToken)

	r.GET("/flights", s.searchFlights)
	r.GET("/flights/:id", s.getFlight)

	authed := r.Group("/", auth.Middleware(s.cfg.JWTSecret))
	authed.GET("/auth/profile", s.profile)
	authed.POST("/auth/signout", s.signOut)

	authed.POST("/bookings", s.createBooking)
	authed.GET("/bookings", s.listBookings)
	authed.GET("/bookings/:id", s.getBooking)
	authed.PUT("/bookings/:id/confirm", s.confirmBooking)
	authed.PUT("/bookings/:id/cancel", s.cancelBooking)

	authed.POST("/payments", s.createPayment)
	authed.GET("/payments/booking/:bookingId", s.paymentForBooking)
	authed.POST("/payments/:id/process", s.processPayment)
	authed.POST("/payments/:id/refund", s.refundPayment)

	return r
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"error": code, "message": message})
}

// respondInvalidTransition emits the wire shape the client maps back onto
// models.InvalidTransitionError.
func respondInvalidTransition(c *gin.Context, entity, from, to string) {
	c.JSON(http.StatusConflict, gin.H{
		"error": "invalid_transition",
		"field": entity,
		"from":  from,
		"to":    to,
	})
}
