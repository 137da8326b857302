package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/astrofleet/skybook/internal/models"
)

// FlightSearchCriteria filters the inventory search. Zero-value fields are
// omitted from the query.
type FlightSearchCriteria struct {
	Origin        string
	Destination   string
	DepartureDate string // YYYY-MM-DD
	Seats         int
}

func (fc FlightSearchCriteria) query() string {
	q := url.Values{}
	if fc.Origin != "" {
		q.Set("origin", fc.Origin)
	}
	if fc.Destination != "" {
		q.Set("destination", fc.Destination)
	}
	if fc.DepartureDate != "" {
		q.Set("departure_date", fc.DepartureDate)
	}
	if fc.Seats > 0 {
		q.Set("seats", strconv.Itoa(fc.Seats))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// SearchFlights queries the flight-inventory service. Responses are served
// through the caching transport, honoring the inventory service's
// Cache-Control headers.
func (c *Client) SearchFlights(ctx context.Context, criteria FlightSearchCriteria) ([]models.Flight, error) {
	var out []models.Flight
	if err := c.do(ctx, c.flights, http.MethodGet, "/flights"+criteria.query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFlight(ctx context.Context, id string) (*models.Flight, error) {
	var out models.Flight
	if err := c.do(ctx, c.flights, http.MethodGet, "/flights/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
