package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/astrofleet/skybook/internal/models"
)

// searchFlights filters the inventory by the supported criteria. Responses
// are marked cacheable so the client's caching transport can serve repeat
// searches without a round-trip.
func (s *Server) searchFlights(c *gin.Context) {
	flights, err := s.flights.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal", "failed to list flights")
		return
	}

	origin := c.Query("origin")
	destination := c.Query("destination")
	departureDate := c.Query("departure_date")
	seats, _ := strconv.Atoi(c.Query("seats"))

	matched := make([]models.Flight, 0, len(flights))
	for _, f := range flights {
		if origin != "" && f.Origin != origin {
			continue
		}
		if destination != "" && f.Destination != destination {
			continue
		}
		if departureDate != "" && f.DepartureTime.Format("2006-01-02") != departureDate {
			continue
		}
		if seats > 0 && f.AvailableSeats < seats {
			continue
		}
		matched = append(matched, f)
	}

	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, matched)
}

func (s *Server) getFlight(c *gin.Context) {
	flight, err := s.flights.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusNotFound, "flight", "flight not found")
		return
	}

	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, flight)
}
