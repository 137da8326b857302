package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/astrofleet/skybook/internal/models"
	"github.com/astrofleet/skybook/internal/store"
)

// declineSuffix marks test cards that the simulated gateway declines,
// mirroring the common gateway test-card convention.
const declineSuffix = "0002"

type createPaymentRequest struct {
	BookingID string `json:"booking_id"`
}

type processPaymentRequest struct {
	PaymentMethod string `json:"paymentMethod"`
	CardNumber    string `json:"card_number"`
	CardBrand     string `json:"cardBrand"`
	ExpiryMonth   int    `json:"expiry_month"`
	ExpiryYear    int    `json:"expiry_year"`
	CVC           string `json:"cvc"`
}

// createPayment lazily creates the booking's payment. Amount and currency
// come from the booking, never from the request. Creating a payment for a
// booking that already has a live one returns the existing record, keeping
// the operation idempotent for checkout retries.
func (s *Server) createPayment(c *gin.Context) {
	var req createPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookingID == "" {
		respondError(c, http.StatusBadRequest, "bad_request", "booking_id is required")
		return
	}

	booking, ok := s.ownedBooking(c, req.BookingID)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	if existing, err := s.payments.GetByBooking(ctx, booking.ID); err == nil &&
		existing.Status != models.PaymentStatusRefunded {
		c.JSON(http.StatusOK, existing)
		return
	}

	payment := &models.Payment{
		ID:          uuid.NewString(),
		BookingID:   booking.ID,
		AmountCents: booking.TotalAmountCents,
		Currency:    "USD",
		Status:      models.PaymentStatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		if errors.Is(err, store.ErrPaymentExists) {
			existing, gerr := s.payments.GetByBooking(ctx, booking.ID)
			if gerr == nil {
				c.JSON(http.StatusOK, existing)
				return
			}
		}
		respondError(c, http.StatusInternalServerError, "internal", "failed to create payment")
		return
	}

	s.logger.Info().
		Str("paymentId", payment.ID).
		Str("bookingId", booking.ID).
		Int64("amountCents", payment.AmountCents).
		Msg("payment created")

	c.JSON(http.StatusCreated, payment)
}

func (s *Server) paymentForBooking(c *gin.Context) {
	booking, ok := s.ownedBooking(c, c.Param("bookingId"))
	if !ok {
		return
	}

	payment, err := s.payments.GetByBooking(c.Request.Context(), booking.ID)
	if err != nil {
		respondError(c, http.StatusNotFound, "payment", "no payment for booking")
		return
	}

	c.JSON(http.StatusOK, payment)
}

// processPayment submits the payment to the simulated gateway. It advances
// the payment to completed or failed and never touches booking state; the
// client sequences confirmation separately.
func (s *Server) processPayment(c *gin.Context) {
	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	if req.PaymentMethod == "" {
		respondError(c, http.StatusBadRequest, "validation", "payment method is required")
		return
	}

	payment, ok := s.ownedPayment(c, c.Param("id"))
	if !ok {
		return
	}

	if payment.Status != models.PaymentStatusPending && payment.Status != models.PaymentStatusFailed {
		respondInvalidTransition(c, "payment", string(payment.Status), string(models.PaymentStatusCompleted))
		return
	}

	payment.PaymentMethod = req.PaymentMethod
	payment.CardBrand = req.CardBrand
	payment.Last4 = last4(req.CardNumber)
	payment.ProcessedAt = time.Now().UTC()

	if strings.HasSuffix(req.CardNumber, declineSuffix) {
		payment.Status = models.PaymentStatusFailed
	} else {
		payment.Status = models.PaymentStatusCompleted
	}

	if err := s.payments.Update(c.Request.Context(), payment); err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to update payment")
		return
	}

	s.logger.Info().
		Str("paymentId", payment.ID).
		Str("status", string(payment.Status)).
		Msg("payment processed")

	c.JSON(http.StatusOK, payment)
}

func (s *Server) refundPayment(c *gin.Context) {
	payment, ok := s.ownedPayment(c, c.Param("id"))
	if !ok {
		return
	}

	if payment.Status != models.PaymentStatusCompleted {
		respondInvalidTransition(c, "payment", string(payment.Status), string(models.PaymentStatusRefunded))
		return
	}

	payment.Status = models.PaymentStatusRefunded
	if err := s.payments.Update(c.Request.Context(), payment); err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to update payment")
		return
	}

	s.logger.Info().Str("paymentId", payment.ID).Msg("payment refunded")

	c.JSON(http.StatusOK, payment)
}

func (s *Server) ownedPayment(c *gin.Context, id string) (*models.Payment, bool) {
	payment, err := s.payments.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, http.StatusNotFound, "payment", "payment not found")
		return nil, false
	}
	if _, ok := s.ownedBooking(c, payment.BookingID); !ok {
		return nil, false
	}
	return payment, true
}

func last4(cardNumber string) string {
	if len(cardNumber) < 4 {
		return ""
	}
	return cardNumber[len(cardNumber)-4:]
}
