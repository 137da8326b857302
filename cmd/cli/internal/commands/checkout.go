package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/astrofleet/skybook/internal/api"
	"github.com/astrofleet/skybook/internal/payment"
)

type CheckoutCmd struct {
	Booking string `arg:"" help:"Booking id to pay for"`

	Method      string `help:"Payment method" default:"credit_card"`
	CardNumber  string `help:"Card number" required:""`
	CardBrand   string `help:"Card brand (visa, mastercard, ...)" default:"visa"`
	ExpiryMonth int    `help:"Card expiry month" required:""`
	ExpiryYear  int    `help:"Card expiry year" required:""`
	CVC         string `help:"Card CVC" required:""`
}

func (c *CheckoutCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	booking, err := app.bookings.Get(ctx, c.Booking)
	if err != nil {
		return friendly(err)
	}

	fmt.Printf("Paying %s for booking %s (%d seat(s))\n",
		dollars(booking.TotalAmountCents), booking.BookingReference, booking.Seats)

	confirmed, paid, err := app.payments.Checkout(ctx, booking, api.PaymentDetails{
		PaymentMethod: c.Method,
		CardNumber:    c.CardNumber,
		CardBrand:     c.CardBrand,
		ExpiryMonth:   c.ExpiryMonth,
		ExpiryYear:    c.ExpiryYear,
		CVC:           c.CVC,
	})
	if err != nil {
		if errors.Is(err, payment.ErrPaymentDeclined) {
			return fmt.Errorf("your card was declined. No seats were confirmed; retry checkout with a different card")
		}
		return friendly(err)
	}

	fmt.Printf("Payment %s completed (%s ending %s)\n", paid.ID, paid.CardBrand, paid.Last4)
	fmt.Printf("Booking %s confirmed\n", confirmed.BookingReference)
	return nil
}
