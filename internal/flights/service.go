package flights

import (
	"context"

	"github.com/astrofleet/skybook/internal/api"
	"github.com/astrofleet/skybook/internal/models"
)

// API is the flight-inventory slice of the backend client.
type API interface {
	SearchFlights(ctx context.Context, criteria api.FlightSearchCriteria) ([]models.Flight, error)
	GetFlight(ctx context.Context, id string) (*models.Flight, error)
}

// Service is the flight-inventory collaborator: search(criteria) and
// getById(id). Presentation concerns (sorting, filtering widgets) live with
// the caller.
type Service struct {
	api API
}

func NewService(backend API) *Service {
	return &Service{api: backend}
}

func (s *Service) Search(ctx context.Context, criteria api.FlightSearchCriteria) ([]models.Flight, error) {
	return s.api.SearchFlights(ctx, criteria)
}

func (s *Service) GetByID(ctx context.Context, id string) (*models.Flight, error) {
	if id == "" {
		return nil, &api.ValidationError{Field: "id", Message: "flight id is required"}
	}
	return s.api.GetFlight(ctx, id)
}
