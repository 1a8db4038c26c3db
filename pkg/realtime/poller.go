package realtime

import (
	"context"
	"time"

	"github.com/onboardtransit/onboard/pkg/config"
	"github.com/onboardtransit/onboard/pkg/dataset"
	"github.com/onboardtransit/onboard/pkg/gtfsrt"
	"github.com/onboardtransit/onboard/pkg/timetable"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
)

// Manager owns the polling loops. Each feed refreshes on its own interval
// and failures keep the previous snapshot in place.
type Manager struct {
	Store *Store

	config  config.Config
	fetcher *fetcher
	dataset *dataset.Manager
}

func NewManager(cfg config.Config) *Manager {
	return &Manager{
		Store:   &Store{},
		config:  cfg,
		fetcher: newFetcher(cfg.Realtime.FetchTimeout),
		dataset: dataset.NewManager(cfg.Static),
	}
}

// Run performs one parallel refresh of everything, then polls until the
// context is cancelled. The static bundle load must succeed at least once
// before Run returns control to the pollers.
func (manager *Manager) Run(ctx context.Context) error {
	if err := manager.reloadStatic(ctx); err != nil {
		return err
	}

	p := pool.New()
	p.Go(func() { manager.refreshVehicles(ctx) })
	p.Go(func() { manager.refreshTripUpdates(ctx) })
	p.Go(func() { manager.refreshAlerts(ctx) })
	p.Wait()

	loops := pool.New()
	loops.Go(func() {
		manager.poll(ctx, manager.config.Realtime.VehicleInterval, manager.refreshVehicles)
	})
	loops.Go(func() {
		manager.poll(ctx, manager.config.Realtime.TripUpdateInterval, manager.refreshTripUpdates)
	})
	loops.Go(func() {
		manager.poll(ctx, manager.config.Realtime.AlertInterval, manager.refreshAlerts)
	})
	loops.Go(func() {
		manager.poll(ctx, manager.config.Static.RefreshInterval, func(ctx context.Context) {
			if err := manager.reloadStatic(ctx); err != nil {
				log.Warn().Err(err).Msg("Static reload failed, keeping previous index")
			}
		})
	})
	loops.Wait()

	return ctx.Err()
}

func (manager *Manager) poll(ctx context.Context, interval time.Duration, refresh func(context.Context)) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			refresh(ctx)
		}
	}
}

func (manager *Manager) reloadStatic(ctx context.Context) error {
	schedule, err := manager.dataset.Load(ctx)
	if err != nil {
		return err
	}

	index := timetable.BuildIndex(schedule, manager.config.Planner.IndexOptions(), time.Now())
	manager.Store.SetIndex(index)

	return nil
}

func (manager *Manager) refreshVehicles(ctx context.Context) {
	url := manager.config.Realtime.VehiclePositionsURL
	if url == "" {
		return
	}

	body, err := manager.fetcher.fetch(ctx, url)
	if err != nil {
		log.Warn().Err(err).Msg("Vehicle positions fetch failed, keeping previous snapshot")
		return
	}

	vehicles, err := gtfsrt.ParseVehiclePositions(body)
	if err != nil {
		log.Warn().Err(err).Msg("Vehicle positions decode failed, keeping previous snapshot")
		return
	}

	manager.Store.SetVehicles(vehicles)
	log.Debug().Int("vehicles", len(vehicles)).Msg("Refreshed vehicle positions")
}

func (manager *Manager) refreshTripUpdates(ctx context.Context) {
	url := manager.config.Realtime.TripUpdatesURL
	if url == "" {
		return
	}

	body, err := manager.fetcher.fetch(ctx, url)
	if err != nil {
		log.Warn().Err(err).Msg("Trip updates fetch failed, keeping previous snapshot")
		return
	}

	updates, err := gtfsrt.ParseTripUpdates(body)
	if err != nil {
		log.Warn().Err(err).Msg("Trip updates decode failed, keeping previous snapshot")
		return
	}

	manager.Store.SetTripUpdates(updates)
	log.Debug().Int("updates", len(updates)).Msg("Refreshed trip updates")
}

func (manager *Manager) refreshAlerts(ctx context.Context) {
	url := manager.config.Realtime.ServiceAlertsURL
	if url == "" {
		return
	}

	body, err := manager.fetcher.fetch(ctx, url)
	if err != nil {
		log.Warn().Err(err).Msg("Service alerts fetch failed, keeping previous snapshot")
		return
	}

	alerts, err := gtfsrt.ParseAlerts(body, time.Now())
	if err != nil {
		log.Warn().Err(err).Msg("Service alerts decode failed, keeping previous snapshot")
		return
	}

	manager.Store.SetAlerts(alerts)
	log.Debug().Int("alerts", len(alerts)).Msg("Refreshed service alerts")
}
