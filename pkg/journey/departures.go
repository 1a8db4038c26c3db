package journey

import (
	"time"

	"github.com/onboardtransit/onboard/pkg/gtfsrt"
	"github.com/onboardtransit/onboard/pkg/timetable"
)

// DepartureBoardItem is one upcoming departure from a stop, with realtime
// delay applied when a matching trip update exists.
type DepartureBoardItem struct {
	Time time.Time `groups:"basic" json:"time"`

	RouteID        string `groups:"detailed" json:"routeId"`
	RouteShortName string `groups:"basic" json:"routeShortName"`
	Headsign       string `groups:"basic" json:"headsign,omitempty"`
	TripID         string `groups:"detailed" json:"tripId"`

	RealTime     bool `groups:"basic" json:"realTime"`
	DelaySeconds int  `groups:"basic" json:"delaySeconds"`
}

// DepartureBoard lists the next count departures from a stop on the current
// service day, skipping trips whose service is not active.
func DepartureBoard(index *timetable.Index, updates []gtfsrt.TripUpdate, stopID string, now time.Time, count int) []DepartureBoardItem {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	nowSeconds := int(now.Sub(midnight).Seconds())

	active := index.Resolver.ActiveServices(now)

	byTrip := map[string]*gtfsrt.TripUpdate{}
	for i := range updates {
		byTrip[updates[i].Trip.TripID] = &updates[i]
	}

	var board []DepartureBoardItem

	for _, departure := range index.DeparturesAfter(stopID, nowSeconds) {
		if !active[departure.ServiceID] {
			continue
		}

		item := DepartureBoardItem{
			Time:    timeAt(midnight, departure.DepartureSeconds),
			RouteID: departure.RouteID,
			TripID:  departure.TripID,
		}

		if route, exists := index.Routes[departure.RouteID]; exists {
			item.RouteShortName = route.ShortName
		}
		if trip, exists := index.Trips[departure.TripID]; exists {
			item.Headsign = trip.Headsign
		}

		if update, exists := byTrip[departure.TripID]; exists {
			if delay, found := boardingDelay(update, stopID); found {
				item.RealTime = true
				item.DelaySeconds = delay
				item.Time = item.Time.Add(time.Duration(delay) * time.Second)
			}
		}

		board = append(board, item)

		if len(board) == count {
			break
		}
	}

	return board
}
