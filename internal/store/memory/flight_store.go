package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/astrofleet/skybook/internal/models"
	"github.com/astrofleet/skybook/internal/store"
)

// FlightStore implements store.FlightStore using in-memory storage.
type FlightStore struct {
	mu      sync.RWMutex
	flights map[string]*models.Flight
}

// NewFlightStore creates a new in-memory flight store.
func NewFlightStore() *FlightStore {
	return &FlightStore{flights: make(map[string]*models.Flight)}
}

func (s *FlightStore) List(ctx context.Context) ([]models.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	flights := make([]models.Flight, 0, len(s.flights))
	for _, f := range s.flights {
		flights = append(flights, *f)
	}
	sort.Slice(flights, func(i, j int) bool {
		return flights[i].DepartureTime.Before(flights[j].DepartureTime)
	})

	return flights, nil
}

func (s *FlightStore) GetByID(ctx context.Context, id string) (*models.Flight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.flights[id]
	if !ok {
		return nil, store.ErrFlightNotFound
	}

	clone := *f
	return &clone, nil
}

func (s *FlightStore) Put(ctx context.Context, flight *models.Flight) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *flight
	s.flights[flight.ID] = &clone

	return nil
}

func (s *FlightStore) AdjustSeats(ctx context.Context, id string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.flights[id]
	if !ok {
		return store.ErrFlightNotFound
	}
	if f.AvailableSeats+delta < 0 {
		return store.ErrNotEnoughSeats
	}
	f.AvailableSeats += delta

	return nil
}
