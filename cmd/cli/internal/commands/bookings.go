package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/astrofleet/skybook/internal/models"
)

type BookingsCmd struct {
	Create  BookingsCreateCmd  `cmd:"" help:"Reserve seats on a flight (payment happens at checkout)"`
	List    BookingsListCmd    `cmd:"" help:"List your bookings"`
	Get     BookingsGetCmd     `cmd:"" help:"Show one booking"`
	Confirm BookingsConfirmCmd `cmd:"" help:"Confirm a paid booking"`
	Cancel  BookingsCancelCmd  `cmd:"" help:"Cancel a booking"`
}

type BookingsCreateCmd struct {
	Flight string `arg:"" help:"Flight id"`
	Seats  int    `help:"Number of seats" default:"1"`
	Method string `help:"Intended payment method" default:"credit_card"`
}

func (b *BookingsCreateCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	booking, err := app.bookings.Create(ctx, b.Flight, b.Seats, b.Method)
	if err != nil {
		return friendly(err)
	}

	fmt.Printf("Booking %s created (reference %s)\n", booking.ID, booking.BookingReference)
	fmt.Printf("Seats:  %d\n", booking.Seats)
	fmt.Printf("Total:  %s\n", dollars(booking.TotalAmountCents))
	fmt.Printf("Status: %s\n", booking.Status)
	fmt.Printf("\nRun `skybook-cli checkout %s` to pay and confirm.\n", booking.ID)
	return nil
}

type BookingsListCmd struct{}

func (b *BookingsListCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	bookings, err := app.bookings.List(ctx)
	if err != nil {
		return friendly(err)
	}

	if len(bookings) == 0 {
		fmt.Println("No bookings.")
		return nil
	}

	fmt.Printf("%-36s %-10s %-10s %-6s %-10s %-10s\n",
		"Booking ID", "Reference", "Flight", "Seats", "Total", "Status")
	fmt.Println(strings.Repeat("─", 90))

	for _, booking := range bookings {
		fmt.Printf("%-36s %-10s %-10s %-6d %-10s %-10s\n",
			booking.ID,
			booking.BookingReference,
			booking.FlightID,
			booking.Seats,
			dollars(booking.TotalAmountCents),
			booking.Status)
	}
	return nil
}

type BookingsGetCmd struct {
	ID string `arg:"" help:"Booking id"`
}

func (b *BookingsGetCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	booking, err := app.bookings.Get(ctx, b.ID)
	if err != nil {
		return friendly(err)
	}

	printBooking(booking)
	return nil
}

type BookingsConfirmCmd struct {
	ID string `arg:"" help:"Booking id"`
}

func (b *BookingsConfirmCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	booking, err := app.bookings.Confirm(ctx, b.ID)
	if err != nil {
		return friendly(err)
	}

	fmt.Printf("Booking %s confirmed (reference %s)\n", booking.ID, booking.BookingReference)
	return nil
}

type BookingsCancelCmd struct {
	ID string `arg:"" help:"Booking id"`
}

func (b *BookingsCancelCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	booking, err := app.bookings.Cancel(ctx, b.ID)
	if err != nil {
		return friendly(err)
	}

	fmt.Printf("Booking %s cancelled\n", booking.ID)
	return nil
}

func printBooking(booking *models.Booking) {
	fmt.Printf("Booking:    %s\n", booking.ID)
	fmt.Printf("Reference:  %s\n", booking.BookingReference)
	fmt.Printf("Flight:     %s\n", booking.FlightID)
	fmt.Printf("Seats:      %d\n", booking.Seats)
	fmt.Printf("Total:      %s\n", dollars(booking.TotalAmountCents))
	fmt.Printf("Status:     %s\n", booking.Status)
	fmt.Printf("Created:    %s\n", booking.CreatedAt.Format("2006-01-02 15:04:05 MST"))
}
