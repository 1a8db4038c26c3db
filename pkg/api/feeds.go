package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onboardtransit/onboard/pkg/gtfsrt"
)

func (server *Server) getVehicles(c *fiber.Ctx) error {
	snapshot := server.store.Vehicles()

	return c.JSON(fiber.Map{
		"fetchedAt": snapshot.FetchedAt,
		"vehicles":  snapshot.Vehicles,
	})
}

func (server *Server) getAlerts(c *fiber.Ctx) error {
	snapshot := server.store.Alerts()
	alerts := snapshot.Alerts

	if route := c.Query("route"); route != "" {
		alerts = filterAlerts(alerts, func(alert gtfsrt.Alert) bool {
			normalized := gtfsrt.NormalizeRouteID(route)
			for _, entity := range alert.InformedEntities {
				if entity.NormalizedRouteID == normalized {
					return true
				}
			}
			return false
		})
	}

	if stop := c.Query("stop"); stop != "" {
		alerts = filterAlerts(alerts, func(alert gtfsrt.Alert) bool {
			for _, entity := range alert.InformedEntities {
				if entity.StopID == stop {
					return true
				}
			}
			return false
		})
	}

	return c.JSON(fiber.Map{
		"fetchedAt": snapshot.FetchedAt,
		"alerts":    alerts,
	})
}

func filterAlerts(alerts []gtfsrt.Alert, keep func(gtfsrt.Alert) bool) []gtfsrt.Alert {
	filtered := make([]gtfsrt.Alert, 0, len(alerts))
	for _, alert := range alerts {
		if keep(alert) {
			filtered = append(filtered, alert)
		}
	}
	return filtered
}
