package api

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/onboardtransit/onboard/pkg/journey"
	"github.com/onboardtransit/onboard/pkg/planner"
)

func (server *Server) getPlan(c *fiber.Ctx) error {
	index := server.store.Index()
	if index == nil {
		c.SendStatus(fiber.StatusServiceUnavailable)
		return c.JSON(fiber.Map{
			"error": "Timetable not loaded yet",
		})
	}

	originLat, originLon, err := parseCoordinates(c.Query("from"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter from should be lat,lon",
		})
	}

	destinationLat, destinationLon, err := parseCoordinates(c.Query("to"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter to should be lat,lon",
		})
	}

	when := time.Now()
	if datetime := c.Query("datetime"); datetime != "" {
		when, err = time.Parse(time.RFC3339, datetime)
		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter datetime should be an RFC3339 datetime",
			})
		}
	}

	request := planner.Request{
		OriginLat:      originLat,
		OriginLon:      originLon,
		DestinationLat: destinationLat,
		DestinationLon: destinationLon,
		When:           when,
		ArriveBy:       c.QueryBool("arriveBy"),
	}

	results, err := server.planner.Plan(index, request)
	if err != nil {
		status, message := planErrorResponse(err)
		c.SendStatus(status)
		return c.JSON(fiber.Map{
			"error": message,
		})
	}

	itineraries := make([]journey.Itinerary, 0, len(results))
	for _, result := range results {
		itineraries = append(itineraries, journey.Assemble(index, result, request))
	}

	itineraries = journey.ApplyDelays(itineraries, server.store.TripUpdates().Updates)

	groups := []string{"basic"}
	if c.QueryBool("detailed") {
		groups = append(groups, "detailed")
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, itineraries)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not reduce itineraries",
		})
	}

	return c.JSON(reduced)
}

// planErrorResponse maps the planner's error kinds onto HTTP statuses and the
// user-facing wording. Missing nearby stops surface as the service area
// message rather than a routing failure.
func planErrorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, planner.ErrNoNearbyStops):
		return fiber.StatusNotFound, planner.ErrOutsideServiceArea.Error()
	case errors.Is(err, planner.ErrNoService):
		return fiber.StatusNotFound, planner.ErrNoService.Error()
	case errors.Is(err, planner.ErrNoRouteFound):
		return fiber.StatusNotFound, planner.ErrNoRouteFound.Error()
	default:
		return fiber.StatusInternalServerError, err.Error()
	}
}

func parseCoordinates(value string) (float64, float64, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 2 {
		return 0, 0, errors.New("coordinates must contain 2 values")
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, err
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, err
	}

	return lat, lon, nil
}
