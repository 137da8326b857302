package commands

import (
	"context"
	"fmt"

	"github.com/astrofleet/skybook/internal/models"
)

type PaymentsCmd struct {
	Get    PaymentsGetCmd    `cmd:"" help:"Show the payment for a booking"`
	Refund PaymentsRefundCmd `cmd:"" help:"Refund a completed payment"`
}

type PaymentsGetCmd struct {
	Booking string `arg:"" help:"Booking id"`
}

func (p *PaymentsGetCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	pay, err := app.client.PaymentForBooking(ctx, p.Booking)
	if err != nil {
		return friendly(err)
	}

	printPayment(pay)
	return nil
}

type PaymentsRefundCmd struct {
	Booking string `arg:"" help:"Booking id whose payment to refund"`
}

func (p *PaymentsRefundCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	pay, err := app.client.PaymentForBooking(ctx, p.Booking)
	if err != nil {
		return friendly(err)
	}

	refunded, err := app.payments.Refund(ctx, pay)
	if err != nil {
		return friendly(err)
	}

	fmt.Printf("Payment %s refunded (%s)\n", refunded.ID, dollars(refunded.AmountCents))
	return nil
}

func printPayment(pay *models.Payment) {
	fmt.Printf("Payment:   %s\n", pay.ID)
	fmt.Printf("Booking:   %s\n", pay.BookingID)
	fmt.Printf("Amount:    %s %s\n", dollars(pay.AmountCents), pay.Currency)
	fmt.Printf("Status:    %s\n", pay.Status)
	if pay.PaymentMethod != "" {
		fmt.Printf("Method:    %s\n", pay.PaymentMethod)
	}
	if pay.Last4 != "" {
		fmt.Printf("Card:      %s ending %s\n", pay.CardBrand, pay.Last4)
	}
	if !pay.ProcessedAt.IsZero() {
		fmt.Printf("Processed: %s\n", pay.ProcessedAt.Format("2006-01-02 15:04:05 MST"))
	}
}
