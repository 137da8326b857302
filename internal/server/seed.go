package server

import (
	"context"
	"time"

	"github.com/astrofleet/skybook/internal/models"
	"github.com/astrofleet/skybook/internal/store"
)

// SeedFlights loads a small inventory so the dev server is usable out of the
// box.
func SeedFlights(ctx context.Context, flights store.FlightStore, day time.Time) error {
	depart := func(hour, minute int) time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.UTC)
	}

	seed := []models.Flight{
		{ID: "FL-1001", FlightNumber: "CS101", Airline: "Cosmic Airways", Origin: "NYC", Destination: "LAX", DepartureTime: depart(6, 30), ArrivalTime: depart(12, 15), PriceCents: 25000, AvailableSeats: 42},
		{ID: "FL-1002", FlightNumber: "CS205", Airline: "Cosmic Airways", Origin: "LAX", Destination: "NYC", DepartureTime: depart(9, 0), ArrivalTime: depart(17, 5), PriceCents: 27500, AvailableSeats: 18},
		{ID: "FL-1003", FlightNumber: "ST340", Airline: "Stellar Airlines", Origin: "NYC", Destination: "MIA", DepartureTime: depart(7, 45), ArrivalTime: depart(10, 55), PriceCents: 14900, AvailableSeats: 64},
		{ID: "FL-1004", FlightNumber: "QJ512", Airline: "Quantum Jets", Origin: "SFO", Destination: "SEA", DepartureTime: depart(11, 20), ArrivalTime: depart(13, 30), PriceCents: 9900, AvailableSeats: 30},
		{ID: "FL-1005", FlightNumber: "NB777", Airline: "Nebula Air", Origin: "CHI", Destination: "DFW", DepartureTime: depart(14, 10), ArrivalTime: depart(16, 40), PriceCents: 18400, AvailableSeats: 8},
		{ID: "FL-1006", FlightNumber: "ST881", Airline: "Stellar Airlines", Origin: "BOS", Destination: "SFO", DepartureTime: depart(16, 0), ArrivalTime: depart(22, 35), PriceCents: 32900, AvailableSeats: 51},
	}

	for i := range seed {
		if err := flights.Put(ctx, &seed[i]); err != nil {
			return err
		}
	}
	return nil
}
