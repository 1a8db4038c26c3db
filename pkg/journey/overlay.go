package journey

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/onboardtransit/onboard/pkg/gtfsrt"
	"github.com/rs/zerolog/log"
)

// ApplyDelays overlays trip-update delays onto already-built itineraries
// without re-running the search. Callers keep their originals: the input is
// deep-copied before any mutation. A missing or empty update set is not an
// error, the itineraries come back with realtime flags cleared.
func ApplyDelays(itineraries []Itinerary, updates []gtfsrt.TripUpdate) []Itinerary {
	var result []Itinerary
	if err := copier.CopyWithOption(&result, &itineraries, copier.Option{DeepCopy: true}); err != nil {
		log.Warn().Err(err).Msg("Failed to copy itineraries for delay overlay")
		return itineraries
	}

	byTrip := map[string]*gtfsrt.TripUpdate{}
	for i := range updates {
		byTrip[updates[i].Trip.TripID] = &updates[i]
	}

	for i := range result {
		itinerary := &result[i]
		itinerary.HasRealTime = false
		itinerary.TotalDelaySeconds = 0

		for j := range itinerary.Legs {
			leg := &itinerary.Legs[j]
			if leg.Mode != ModeTransit {
				continue
			}

			leg.RealTime = false
			leg.DelaySeconds = 0

			update, exists := byTrip[leg.TripID]
			if !exists {
				continue
			}

			delay, found := boardingDelay(update, leg.From.StopID)
			if !found {
				continue
			}

			leg.RealTime = true
			leg.DelaySeconds = delay
			leg.StartTime = leg.StartTime.Add(time.Duration(delay) * time.Second)
			leg.EndTime = leg.EndTime.Add(time.Duration(delay) * time.Second)

			if !itinerary.HasRealTime {
				itinerary.HasRealTime = true
				itinerary.TotalDelaySeconds = delay
			}
		}
	}

	return result
}

// boardingDelay finds the delay for a leg's boarding stop. Departure events
// win over arrival events when both are present.
func boardingDelay(update *gtfsrt.TripUpdate, stopID string) (int, bool) {
	for _, stopTimeUpdate := range update.StopTimeUpdates {
		if stopTimeUpdate.StopID != stopID {
			continue
		}

		if stopTimeUpdate.Departure != nil {
			return stopTimeUpdate.Departure.Delay, true
		}
		if stopTimeUpdate.Arrival != nil {
			return stopTimeUpdate.Arrival.Delay, true
		}

		return 0, false
	}

	return 0, false
}
