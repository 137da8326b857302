package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/astrofleet/skybook/internal/models"
	"github.com/astrofleet/skybook/internal/store"
)

// BookingStore implements store.BookingStore using in-memory storage.
// Bookings are never deleted; cancellation is a status change.
type BookingStore struct {
	mu       sync.RWMutex
	bookings map[string]*models.Booking
}

// NewBookingStore creates a new in-memory booking store.
func NewBookingStore() *BookingStore {
	return &BookingStore{bookings: make(map[string]*models.Booking)}
}

func (s *BookingStore) Create(ctx context.Context, booking *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *booking
	s.bookings[booking.ID] = &clone

	return nil
}

func (s *BookingStore) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, store.ErrBookingNotFound
	}

	clone := *b
	return &clone, nil
}

func (s *BookingStore) ListByUser(ctx context.Context, userID string) ([]models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			bookings = append(bookings, *b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	return bookings, nil
}

func (s *BookingStore) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) (*models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, store.ErrBookingNotFound
	}
	b.Status = status
	b.UpdatedAt = time.Now().UTC()

	clone := *b
	return &clone, nil
}
