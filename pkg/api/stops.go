package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/onboardtransit/onboard/pkg/journey"
)

func (server *Server) getDepartures(c *fiber.Ctx) error {
	index := server.store.Index()
	if index == nil {
		c.SendStatus(fiber.StatusServiceUnavailable)
		return c.JSON(fiber.Map{
			"error": "Timetable not loaded yet",
		})
	}

	stopID := c.Params("stop")
	stop, exists := index.Stops[stopID]
	if !exists {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Unknown stop",
		})
	}

	count, err := strconv.Atoi(c.Query("count", "10"))
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter count should be an integer",
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

	board := journey.DepartureBoard(index, server.store.TripUpdates().Updates, stopID, when, count)

	groups := []string{"basic"}
	if c.QueryBool("detailed") {
		groups = append(groups, "detailed")
	}

	reduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: groups,
	}, board)
	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not reduce departure board",
		})
	}

	return c.JSON(fiber.Map{
		"stop": fiber.Map{
			"id":   stop.ID,
			"code": stop.Code,
			"name": stop.Name,
		},
		"departures": reduced,
	})
}

func (server *Server) getNearbyStops(c *fiber.Ctx) error {
	index := server.store.Index()
	if index == nil {
		c.SendStatus(fiber.StatusServiceUnavailable)
		return c.JSON(fiber.Map{
			"error": "Timetable not loaded yet",
		})
	}

	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter lat should be a float",
		})
	}

	lon, err := strconv.ParseFloat(c.Query("lon"), 64)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter lon should be a float",
		})
	}

	radius, err := strconv.ParseFloat(c.Query("radius", "600"), 64)
	if err != nil {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter radius should be a float",
		})
	}

	var stops []fiber.Map
	for _, nearby := range index.NearbyStops(lat, lon, radius) {
		stop := index.Stops[nearby.StopID]
		if stop == nil {
			continue
		}

		stops = append(stops, fiber.Map{
			"id":        stop.ID,
			"code":      stop.Code,
			"name":      stop.Name,
			"latitude":  stop.Latitude,
			"longitude": stop.Longitude,
			"distance":  nearby.Meters,
			"routes":    index.StopRoutes[stop.ID],
		})
	}

	return c.JSON(fiber.Map{
		"stops": stops,
	})
}
