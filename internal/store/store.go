package store

import (
	"context"
	"errors"
	"time"

	"github.com/astrofleet/skybook/internal/models"
)

// Sentinel errors
var (
	ErrUserExists      = errors.New("user already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrFlightNotFound  = errors.New("flight not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrPaymentExists   = errors.New("payment already exists for booking")
	ErrNotEnoughSeats  = errors.New("not enough seats available")
)

// UserRecord is the stored account: the public profile plus the salted
// password hash, which never leaves the store layer.
type UserRecord struct {
	User         models.User
	PasswordHash string
	Salt         string
}

type UserStore interface {
	Create(ctx context.Context, rec *UserRecord) error
	GetByEmail(ctx context.Context, email string) (*UserRecord, error)
	GetByID(ctx context.Context, id string) (*UserRecord, error)
	TouchSignIn(ctx context.Context, id string, at time.Time) error
}

type FlightStore interface {
	List(ctx context.Context) ([]models.Flight, error)
	GetByID(ctx context.Context, id string) (*models.Flight, error)
	Put(ctx context.Context, flight *models.Flight) error

	// AdjustSeats changes available seats by delta (negative reserves).
	// Returns ErrNotEnoughSeats when the result would be negative.
	AdjustSeats(ctx context.Context, id string, delta int) error
}

type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error)
}

type PaymentStore interface {
	// Create registers a payment for a booking. A booking carries at most
	// one live payment: creating over a non-refunded payment returns
	// ErrPaymentExists.
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id string) (*models.Payment, error)
	GetByBooking(ctx context.Context, bookingID string) (*models.Payment, error)
	Update(ctx context.Context, payment *models.Payment) error
}
