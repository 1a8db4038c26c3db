// Package realtime runs the feed polling loops and exposes the latest
// complete snapshot of each feed. Every structure is replaced wholesale on a
// successful refresh, so readers always see either the old or the new
// snapshot, never a partial mix.
package realtime

import (
	"sync/atomic"
	"time"

	"github.com/onboardtransit/onboard/pkg/gtfsrt"
	"github.com/onboardtransit/onboard/pkg/timetable"
)

type VehicleSnapshot struct {
	Vehicles  []gtfsrt.VehiclePosition
	FetchedAt time.Time
}

type TripUpdateSnapshot struct {
	Updates   []gtfsrt.TripUpdate
	FetchedAt time.Time
}

type AlertSnapshot struct {
	Alerts    []gtfsrt.Alert
	FetchedAt time.Time
}

// Store holds the swappable references. The zero value is usable: accessors
// return empty snapshots until the first refresh lands.
type Store struct {
	vehicles    atomic.Pointer[VehicleSnapshot]
	tripUpdates atomic.Pointer[TripUpdateSnapshot]
	alerts      atomic.Pointer[AlertSnapshot]
	index       atomic.Pointer[timetable.Index]
}

func (store *Store) Vehicles() VehicleSnapshot {
	if snapshot := store.vehicles.Load(); snapshot != nil {
		return *snapshot
	}
	return VehicleSnapshot{}
}

func (store *Store) TripUpdates() TripUpdateSnapshot {
	if snapshot := store.tripUpdates.Load(); snapshot != nil {
		return *snapshot
	}
	return TripUpdateSnapshot{}
}

func (store *Store) Alerts() AlertSnapshot {
	if snapshot := store.alerts.Load(); snapshot != nil {
		return *snapshot
	}
	return AlertSnapshot{}
}

// Index returns the current timetable index, or nil before the first static
// load completes.
func (store *Store) Index() *timetable.Index {
	return store.index.Load()
}

func (store *Store) SetVehicles(vehicles []gtfsrt.VehiclePosition) {
	store.vehicles.Store(&VehicleSnapshot{Vehicles: vehicles, FetchedAt: time.Now()})
}

func (store *Store) SetTripUpdates(updates []gtfsrt.TripUpdate) {
	store.tripUpdates.Store(&TripUpdateSnapshot{Updates: updates, FetchedAt: time.Now()})
}

func (store *Store) SetAlerts(alerts []gtfsrt.Alert) {
	store.alerts.Store(&AlertSnapshot{Alerts: alerts, FetchedAt: time.Now()})
}

func (store *Store) SetIndex(index *timetable.Index) {
	store.index.Store(index)
}
