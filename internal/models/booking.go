package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// CanTransitionTo reports whether the booking state machine permits moving
// from s to next. Cancelled is terminal.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled
	default:
		return false
	}
}

// Booking is a seat reservation on a flight. TotalAmountCents is always
// recomputed server-side from the flight price and seat count, never taken
// from client input.
type Booking struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id"`
	FlightID         string        `json:"flight_id"`
	BookingReference string        `json:"booking_reference"`
	Seats            int           `json:"number_of_seats"`
	TotalAmountCents int64         `json:"total_amount_cents"`
	Status           BookingStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// InvalidTransitionError reports a state-machine misuse, such as confirming
// an already-confirmed booking or cancelling a cancelled one. It is always
// surfaced to the caller, never silently swallowed.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid %s transition: %s -> %s", e.Entity, e.From, e.To)
}
