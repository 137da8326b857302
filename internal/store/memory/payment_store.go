package memory

import (
	"context"
	"sync"

	"github.com/astrofleet/skybook/internal/models"
	"github.com/astrofleet/skybook/internal/store"
)

// PaymentStore implements store.PaymentStore using in-memory storage.
// The byBooking index points at the booking's live payment; superseded
// refunded payments stay reachable by id.
type PaymentStore struct {
	mu        sync.RWMutex
	payments  map[string]*models.Payment // payment_id -> payment
	byBooking map[string]string          // booking_id -> live payment_id
}

// NewPaymentStore creates a new in-memory payment store.
func NewPaymentStore() *PaymentStore {
	return &PaymentStore{
		payments:  make(map[string]*models.Payment),
		byBooking: make(map[string]string),
	}
}

func (s *PaymentStore) Create(ctx context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if liveID, ok := s.byBooking[payment.BookingID]; ok {
		if live := s.payments[liveID]; live != nil && live.Status != models.PaymentStatusRefunded {
			return store.ErrPaymentExists
		}
	}

	clone := *payment
	s.payments[payment.ID] = &clone
	s.byBooking[payment.BookingID] = payment.ID

	return nil
}

func (s *PaymentStore) GetByID(ctx context.Context, id string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payments[id]
	if !ok {
		return nil, store.ErrPaymentNotFound
	}

	clone := *p
	return &clone, nil
}

func (s *PaymentStore) GetByBooking(ctx context.Context, bookingID string) (*models.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byBooking[bookingID]
	if !ok {
		return nil, store.ErrPaymentNotFound
	}

	clone := *s.payments[id]
	return &clone, nil
}

func (s *PaymentStore) Update(ctx context.Context, payment *models.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payments[payment.ID]; !ok {
		return store.ErrPaymentNotFound
	}

	clone := *payment
	s.payments[payment.ID] = &clone

	return nil
}
