package server

import (
	"crypto/rand"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mr-tron/base58"

	"github.com/astrofleet/skybook/internal/auth"
	"github.com/astrofleet/skybook/internal/models"
	"github.com/astrofleet/skybook/internal/store"
)

type createBookingRequest struct {
	FlightID      string `json:"flight_id"`
	Seats         int    `json:"number_of_seats"`
	PaymentMethod string `json:"payment_method"`
}

func (s *Server) createBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.Seats < 1 {
		respondError(c, http.StatusBadRequest, "validation", "at least one seat is required")
		return
	}

	ctx := c.Request.Context()

	flight, err := s.flights.GetByID(ctx, req.FlightID)
	if err != nil {
		respondError(c, http.StatusNotFound, "flight", "flight not found")
		return
	}

	// Reserve the seats up front; cancellation releases them.
	if err := s.flights.AdjustSeats(ctx, flight.ID, -req.Seats); err != nil {
		if errors.Is(err, store.ErrNotEnoughSeats) {
			respondError(c, http.StatusBadRequest, "validation", "not enough seats available")
			return
		}
		respondError(c, http.StatusInternalServerError, "internal", "failed to reserve seats")
		return
	}

	reference, err := newBookingReference()
	if err != nil {
		_ = s.flights.AdjustSeats(ctx, flight.ID, req.Seats)
		respondError(c, http.StatusInternalServerError, "internal", "failed to create booking")
		return
	}

	now := time.Now().UTC()
	booking := &models.Booking{
		ID:               uuid.NewString(),
		UserID:           auth.UserID(c),
		FlightID:         flight.ID,
		BookingReference: reference,
		Seats:            req.Seats,
		// Always recomputed from the flight price; any client-supplied
		// amount is ignored.
		TotalAmountCents: flight.PriceCents * int64(req.Seats),
		Status:           models.BookingStatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		_ = s.flights.AdjustSeats(ctx, flight.ID, req.Seats)
		respondError(c, http.StatusInternalServerError, "internal", "failed to create booking")
		return
	}

	s.logger.Info().
		Str("bookingId", booking.ID).
		Str("reference", booking.BookingReference).
		Str("flightId", flight.ID).
		Int("seats", req.Seats).
		Msg("booking created")

	c.JSON(http.StatusCreated, booking)
}

func (s *Server) listBookings(c *gin.Context) {
	bookings, err := s.bookings.ListByUser(c.Request.Context(), auth.UserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to list bookings")
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

func (s *Server) getBooking(c *gin.Context) {
	booking, ok := s.ownedBooking(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (s *Server) confirmBooking(c *gin.Context) {
	booking, ok := s.ownedBooking(c, c.Param("id"))
	if !ok {
		return
	}

	if !booking.Status.CanTransitionTo(models.BookingStatusConfirmed) {
		respondInvalidTransition(c, "booking", string(booking.Status), string(models.BookingStatusConfirmed))
		return
	}

	// A booking confirms only against a completed payment.
	payment, err := s.payments.GetByBooking(c.Request.Context(), booking.ID)
	if err != nil || payment.Status != models.PaymentStatusCompleted {
		respondError(c, http.StatusBadRequest, "payment_incomplete", "booking payment is not completed")
		return
	}

	updated, err := s.bookings.UpdateStatus(c.Request.Context(), booking.ID, models.BookingStatusConfirmed)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to confirm booking")
		return
	}

	s.logger.Info().Str("bookingId", booking.ID).Msg("booking confirmed")

	c.JSON(http.StatusOK, updated)
}

func (s *Server) cancelBooking(c *gin.Context) {
	booking, ok := s.ownedBooking(c, c.Param("id"))
	if !ok {
		return
	}

	if !booking.Status.CanTransitionTo(models.BookingStatusCancelled) {
		respondInvalidTransition(c, "booking", string(booking.Status), string(models.BookingStatusCancelled))
		return
	}

	updated, err := s.bookings.UpdateStatus(c.Request.Context(), booking.ID, models.BookingStatusCancelled)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to cancel booking")
		return
	}

	// Release the reserved seats.
	_ = s.flights.AdjustSeats(c.Request.Context(), booking.FlightID, booking.Seats)

	s.logger.Info().Str("bookingId", booking.ID).Msg("booking cancelled")

	c.JSON(http.StatusOK, updated)
}

// ownedBooking loads a booking and enforces ownership. Foreign bookings are
// reported as not found rather than forbidden so ids are not probeable.
func (s *Server) ownedBooking(c *gin.Context, id string) (*models.Booking, bool) {
	booking, err := s.bookings.GetByID(c.Request.Context(), id)
	if err != nil || booking.UserID != auth.UserID(c) {
		respondError(c, http.StatusNotFound, "booking", "booking not found")
		return nil, false
	}
	return booking, true
}

// newBookingReference generates a short human-friendly reference like
// SB-4FrX9p2.
func newBookingReference() (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return "SB-" + base58.Encode(b[:]), nil
}
