package api

import (
	"context"

	"github.com/astrofleet/skybook/internal/models"
)

// PaymentDetails is the payment-method payload submitted to the gateway.
type PaymentDetails struct {
	PaymentMethod string `json:"paymentMethod"`
	CardNumber    string `json:"card_number,omitempty"`
	CardBrand     string `json:"cardBrand,omitempty"`
	ExpiryMonth   int    `json:"expiry_month,omitempty"`
	ExpiryYear    int    `json:"expiry_year,omitempty"`
	CVC           string `json:"cvc,omitempty"`
}

func (c *Client) PaymentForBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	var out models.Payment
	if err := c.get(ctx, "/payments/booking/"+bookingID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreatePayment(ctx context.Context, bookingID string) (*models.Payment, error) {
	body := struct {
		BookingID string `json:"booking_id"`
	}{BookingID: bookingID}

	var out models.Payment
	if err := c.post(ctx, "/payments", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProcessPayment(ctx context.Context, id string, details PaymentDetails) (*models.Payment, error) {
	var out models.Payment
	if err := c.post(ctx, "/payments/"+id+"/process", details, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RefundPayment(ctx context.Context, id string) (*models.Payment, error) {
	var out models.Payment
	if err := c.post(ctx, "/payments/"+id+"/refund", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
