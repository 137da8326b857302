package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/astrofleet/skybook/internal/api"
	"github.com/astrofleet/skybook/internal/models"
)

// API is the slice of the backend client the lifecycle needs. Satisfied by
// *api.Client.
type API interface {
	CreateBooking(ctx context.Context, req api.CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	ListBookings(ctx context.Context) ([]models.Booking, error)
	ConfirmBooking(ctx context.Context, id string) (*models.Booking, error)
	CancelBooking(ctx context.Context, id string) (*models.Booking, error)
}

// Inventory is the flight-inventory collaborator contract.
type Inventory interface {
	GetByID(ctx context.Context, id string) (*models.Flight, error)
}

// Service drives the booking state machine: pending (initial) -> confirmed,
// and pending/confirmed -> cancelled (terminal). Transitions are validated
// locally before the call so misuse is reported without a round-trip; the
// server enforces the same rules authoritatively.
type Service struct {
	api       API
	inventory Inventory
}

func NewService(backend API, inventory Inventory) *Service {
	return &Service{api: backend, inventory: inventory}
}

// Create reserves seats on a flight and returns the pending booking. The
// seat-availability check against the advertised inventory is best-effort;
// final availability is enforced server-side.
func (s *Service) Create(ctx context.Context, flightID string, seats int, paymentMethod string) (*models.Booking, error) {
	if flightID == "" {
		return nil, &api.ValidationError{Field: "flight_id", Message: "flight id is required"}
	}
	if seats < 1 {
		return nil, &api.ValidationError{Field: "number_of_seats", Message: "at least one seat is required"}
	}

	flight, err := s.inventory.GetByID(ctx, flightID)
	switch {
	case err == nil:
		if seats > flight.AvailableSeats {
			return nil, &api.ValidationError{
				Field:   "number_of_seats",
				Message: fmt.Sprintf("only %d seats available on flight %s", flight.AvailableSeats, flight.FlightNumber),
			}
		}
	case isNotFound(err):
		return nil, err
	default:
		// Advisory check only; the reservation call decides.
		log.Warn().Err(err).Str("flightId", flightID).Msg("flight availability check failed, proceeding")
	}

	return s.api.CreateBooking(ctx, api.CreateBookingRequest{
		FlightID:      flightID,
		Seats:         seats,
		PaymentMethod: paymentMethod,
	})
}

// Get fetches a booking by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Booking, error) {
	return s.api.GetBooking(ctx, id)
}

// List returns the caller's bookings.
func (s *Service) List(ctx context.Context) ([]models.Booking, error) {
	return s.api.ListBookings(ctx)
}

// Confirm moves a pending booking to confirmed. The server only permits this
// when the booking's payment is completed. Confirming an already-confirmed
// or cancelled booking returns InvalidTransitionError.
func (s *Service) Confirm(ctx context.Context, id string) (*models.Booking, error) {
	current, err := s.api.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(models.BookingStatusConfirmed) {
		return nil, &models.InvalidTransitionError{
			Entity: "booking",
			From:   string(current.Status),
			To:     string(models.BookingStatusConfirmed),
		}
	}
	return s.api.ConfirmBooking(ctx, id)
}

// Cancel moves a pending or confirmed booking to cancelled. Cancelling an
// already-cancelled booking returns InvalidTransitionError.
func (s *Service) Cancel(ctx context.Context, id string) (*models.Booking, error) {
	current, err := s.api.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(models.BookingStatusCancelled) {
		return nil, &models.InvalidTransitionError{
			Entity: "booking",
			From:   string(current.Status),
			To:     string(models.BookingStatusCancelled),
		}
	}
	return s.api.CancelBooking(ctx, id)
}

func isNotFound(err error) bool {
	var notFound *api.NotFoundError
	return errors.As(err, &notFound)
}
