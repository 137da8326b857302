package api

import (
	"context"

	"github.com/astrofleet/skybook/internal/models"
)

type CreateBookingRequest struct {
	FlightID      string `json:"flight_id"`
	Seats         int    `json:"number_of_seats"`
	PaymentMethod string `json:"payment_method"`
}

func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*models.Booking, error) {
	var out models.Booking
	if err := c.post(ctx, "/bookings", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListBookings(ctx context.Context) ([]models.Booking, error) {
	var out []models.Booking
	if err := c.get(ctx, "/bookings", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	var out models.Booking
	if err := c.get(ctx, "/bookings/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CancelBooking(ctx context.Context, id string) (*models.Booking, error) {
	var out models.Booking
	if err := c.put(ctx, "/bookings/"+id+"/cancel", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ConfirmBooking(ctx context.Context, id string) (*models.Booking, error) {
	var out models.Booking
	if err := c.put(ctx, "/bookings/"+id+"/confirm", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
