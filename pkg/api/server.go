// Package api exposes the engine to collaborators over HTTP. The routes are
// thin: they read the current snapshots, call the planner, and reduce the
// response with sheriff groups.
package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/onboardtransit/onboard/pkg/planner"
	"github.com/onboardtransit/onboard/pkg/realtime"
)

const Version = "1.0"

type Server struct {
	store   *realtime.Store
	planner *planner.Planner
}

func NewServer(store *realtime.Store, options planner.Options) *Server {
	return &Server{
		store:   store,
		planner: planner.New(options),
	}
}

func (server *Server) SetupServer(listen string) error {
	return server.newApp().Listen(listen)
}

func (server *Server) newApp() *fiber.App {
	webApp := fiber.New()
	webApp.Use(NewLogger())

	group := webApp.Group("/engine")

	group.Get("version", server.apiVersion)

	group.Get("/plan", server.getPlan)
	group.Get("/vehicles", server.getVehicles)
	group.Get("/alerts", server.getAlerts)
	group.Get("/departures/:stop", server.getDepartures)
	group.Get("/stops/nearby", server.getNearbyStops)

	return webApp
}

func (server *Server) apiVersion(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": Version,
	})
}
