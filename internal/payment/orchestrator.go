package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"

	"github.com/astrofleet/skybook/internal/api"
	"github.com/astrofleet/skybook/internal/models"
)

// ErrPaymentDeclined is returned when the gateway processed the payment and
// reported it failed. The payment record stays in failed state and is reused
// on the next checkout attempt.
var ErrPaymentDeclined = errors.New("payment was declined")

// confirmMaxElapsed bounds the confirm retry window inside checkout before
// the partial failure is surfaced to the caller.
const confirmMaxElapsed = 10 * time.Second

// API is the payments slice of the backend client. Satisfied by *api.Client.
type API interface {
	PaymentForBooking(ctx context.Context, bookingID string) (*models.Payment, error)
	CreatePayment(ctx context.Context, bookingID string) (*models.Payment, error)
	ProcessPayment(ctx context.Context, id string, details api.PaymentDetails) (*models.Payment, error)
	RefundPayment(ctx context.Context, id string) (*models.Payment, error)
}

// Bookings is the booking-lifecycle slice the orchestrator sequences with.
type Bookings interface {
	Get(ctx context.Context, id string) (*models.Booking, error)
	Confirm(ctx context.Context, id string) (*models.Booking, error)
}

// PartialFailureError reports the inconsistent-but-recoverable state where
// the payment completed but the booking confirmation did not. The caller can
// safely retry Confirm alone; the completed payment is never re-charged.
type PartialFailureError struct {
	BookingID string
	PaymentID string
	Err       error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("payment completed but confirmation of booking %s is pending, retry confirm", e.BookingID)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }

// Orchestrator creates and advances payments and sequences payment
// completion with booking confirmation. There is no distributed transaction
// across the payment and booking services: checkout is an explicit two-step
// client-driven sequence whose intermediate state is a first-class outcome.
type Orchestrator struct {
	api      API
	bookings Bookings
}

func NewOrchestrator(backend API, bookings Bookings) *Orchestrator {
	return &Orchestrator{api: backend, bookings: bookings}
}

// EnsurePayment returns the booking's payment, creating one lazily on the
// first checkout attempt. An existing pending, failed or completed payment
// is reused; only a refunded payment (the booking was un-paid again) gets a
// fresh record.
func (o *Orchestrator) EnsurePayment(ctx context.Context, booking *models.Booking) (*models.Payment, error) {
	existing, err := o.api.PaymentForBooking(ctx, booking.ID)
	switch {
	case err == nil:
		if existing.Status != models.PaymentStatusRefunded {
			return existing, nil
		}
	case !isNotFound(err):
		return nil, err
	}

	return o.api.CreatePayment(ctx, booking.ID)
}

// Process submits payment details to the gateway. It never mutates booking
// state. A gateway decline is reported as ErrPaymentDeclined with the failed
// payment attached for inspection.
func (o *Orchestrator) Process(ctx context.Context, payment *models.Payment, details api.PaymentDetails) (*models.Payment, error) {
	if details.PaymentMethod == "" {
		return nil, &api.ValidationError{Field: "paymentMethod", Message: "payment method is required"}
	}

	processed, err := o.api.ProcessPayment(ctx, payment.ID, details)
	if err != nil {
		return nil, err
	}
	if processed.Status == models.PaymentStatusFailed {
		return processed, ErrPaymentDeclined
	}
	return processed, nil
}

// Refund reverses a completed payment. Any other state is a state-machine
// misuse.
func (o *Orchestrator) Refund(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	if payment.Status != models.PaymentStatusCompleted {
		return nil, &models.InvalidTransitionError{
			Entity: "payment",
			From:   string(payment.Status),
			To:     string(models.PaymentStatusRefunded),
		}
	}
	return o.api.RefundPayment(ctx, payment.ID)
}

// Checkout is the orchestration entry point: ensure the payment exists,
// process it, and only then confirm the booking, strictly in that order.
// If processing succeeds but confirmation does not, the checkout returns
// PartialFailureError so the caller can retry Confirm alone without
// re-charging.
func (o *Orchestrator) Checkout(ctx context.Context, booking *models.Booking, details api.PaymentDetails) (*models.Booking, *models.Payment, error) {
	payment, err := o.EnsurePayment(ctx, booking)
	if err != nil {
		return nil, nil, err
	}

	// A completed payment means a previous checkout got as far as the
	// charge. Skip processing and go straight to confirmation.
	if payment.Status != models.PaymentStatusCompleted {
		payment, err = o.Process(ctx, payment, details)
		if err != nil {
			return nil, payment, err
		}
	}

	confirmed, err := o.confirmWithRetry(ctx, booking.ID)
	if err != nil {
		log.Warn().
			Str("bookingId", booking.ID).
			Str("paymentId", payment.ID).
			Err(err).
			Msg("payment completed but booking confirmation failed")
		return booking, payment, &PartialFailureError{BookingID: booking.ID, PaymentID: payment.ID, Err: err}
	}

	return confirmed, payment, nil
}

// confirmWithRetry retries transient confirmation failures with bounded
// exponential backoff. An InvalidTransition response is re-checked against
// the booking's current state: when a previous attempt landed server-side
// after timing out client-side, the booking is already confirmed and the
// checkout has in fact succeeded.
func (o *Orchestrator) confirmWithRetry(ctx context.Context, bookingID string) (*models.Booking, error) {
	cctx, cancel := context.WithTimeout(ctx, confirmMaxElapsed)
	defer cancel()

	return backoff.Retry(cctx, func() (*models.Booking, error) {
		confirmed, err := o.bookings.Confirm(cctx, bookingID)
		if err == nil {
			return confirmed, nil
		}

		var transition *models.InvalidTransitionError
		if errors.As(err, &transition) {
			current, gerr := o.bookings.Get(cctx, bookingID)
			if gerr == nil && current.Status == models.BookingStatusConfirmed {
				return current, nil
			}
			return nil, backoff.Permanent(err)
		}

		if api.IsRetryable(err) {
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, backoff.WithBackOff(backoff.NewExponentialBackOff()), backoff.WithMaxTries(3))
}

func isNotFound(err error) bool {
	var notFound *api.NotFoundError
	return errors.As(err, &notFound)
}
