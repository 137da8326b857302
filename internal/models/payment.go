package models

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// Payment is the monetary transaction for exactly one booking. It is created
// lazily on the first checkout attempt and reused on retry while it remains
// pending or failed. Refunded requires prior completed status.
type Payment struct {
	ID            string        `json:"id"`
	BookingID     string        `json:"booking_id"`
	AmountCents   int64         `json:"amount_cents"`
	Currency      string        `json:"currency"`
	Status        PaymentStatus `json:"status"`
	PaymentMethod string        `json:"payment_method,omitempty"`
	CardBrand     string        `json:"card_brand,omitempty"`
	Last4         string        `json:"last4,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	ProcessedAt   time.Time     `json:"processed_at,omitzero"`
}
