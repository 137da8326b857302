package models

import "time"

// Flight is inventory data owned by the flight-inventory service. The client
// treats it as read-only; AvailableSeats is advisory and final availability
// is enforced server-side at booking time.
type Flight struct {
	ID             string    `json:"id"`
	FlightNumber   string    `json:"flight_number"`
	Airline        string    `json:"airline"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	DepartureTime  time.Time `json:"departure_time"`
	ArrivalTime    time.Time `json:"arrival_time"`
	PriceCents     int64     `json:"price_cents"`
	AvailableSeats int       `json:"available_seats"`
}
