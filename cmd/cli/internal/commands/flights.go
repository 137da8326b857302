package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/astrofleet/skybook/internal/api"
	"github.com/astrofleet/skybook/internal/models"
)

type FlightsCmd struct {
	Search FlightsSearchCmd `cmd:"" help:"Search flights by route, date and seats"`
	Get    FlightsGetCmd    `cmd:"" help:"Show one flight"`
}

type FlightsSearchCmd struct {
	Origin      string `help:"Origin airport code"`
	Destination string `help:"Destination airport code"`
	Date        string `help:"Departure date (YYYY-MM-DD)"`
	Seats       int    `help:"Minimum available seats" default:"1"`
}

func (f *FlightsSearchCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	results, err := app.flights.Search(ctx, api.FlightSearchCriteria{
		Origin:        f.Origin,
		Destination:   f.Destination,
		DepartureDate: f.Date,
		Seats:         f.Seats,
	})
	if err != nil {
		return friendly(err)
	}

	if len(results) == 0 {
		fmt.Println("No flights found.")
		return nil
	}

	fmt.Printf("%-10s %-8s %-18s %-5s %-5s %-18s %-10s %-6s\n",
		"Flight ID", "Number", "Airline", "From", "To", "Departs", "Price", "Seats")
	fmt.Println(strings.Repeat("─", 90))

	for _, flight := range results {
		printFlightRow(flight)
	}

	fmt.Printf("\n%d flight(s)\n", len(results))
	return nil
}

type FlightsGetCmd struct {
	ID string `arg:"" help:"Flight id"`
}

func (f *FlightsGetCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := setup(globals)
	if err != nil {
		return err
	}

	flight, err := app.flights.GetByID(ctx, f.ID)
	if err != nil {
		return friendly(err)
	}

	fmt.Printf("Flight:      %s (%s)\n", flight.FlightNumber, flight.Airline)
	fmt.Printf("Route:       %s -> %s\n", flight.Origin, flight.Destination)
	fmt.Printf("Departs:     %s\n", flight.DepartureTime.Format("2006-01-02 15:04 MST"))
	fmt.Printf("Arrives:     %s\n", flight.ArrivalTime.Format("2006-01-02 15:04 MST"))
	fmt.Printf("Price:       %s per seat\n", dollars(flight.PriceCents))
	fmt.Printf("Available:   %d seats\n", flight.AvailableSeats)
	return nil
}

func printFlightRow(flight models.Flight) {
	fmt.Printf("%-10s %-8s %-18s %-5s %-5s %-18s %-10s %-6d\n",
		flight.ID,
		flight.FlightNumber,
		flight.Airline,
		flight.Origin,
		flight.Destination,
		flight.DepartureTime.Format("2006-01-02 15:04"),
		dollars(flight.PriceCents),
		flight.AvailableSeats)
}
