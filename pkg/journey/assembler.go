package journey

import (
	"time"

	"github.com/onboardtransit/onboard/pkg/planner"
	"github.com/onboardtransit/onboard/pkg/timetable"
)

// minimumWalkSpeed guards the walk durations coming out of the search
// against feeds with bad stop coordinates. A leg is never reported slower
// than this, in metres per second.
const minimumWalkSpeed = 0.7

// Assemble converts one raw search result into the itinerary handed to
// collaborators. Timestamps are absolute, derived from the request date's
// midnight plus the timetable's seconds offsets, which keeps trips running
// past midnight on the correct service day.
func Assemble(index *timetable.Index, result planner.Result, request planner.Request) Itinerary {
	midnight := time.Date(request.When.Year(), request.When.Month(), request.When.Day(), 0, 0, 0, 0, request.When.Location())

	origin := Place{Name: "Origin", Latitude: request.OriginLat, Longitude: request.OriginLon}
	destination := Place{Name: "Destination", Latitude: request.DestinationLat, Longitude: request.DestinationLon}

	var legs []Leg

	for _, segment := range result.Segments {
		switch segment.Kind {
		case planner.SegmentOriginWalk:
			to := stopPlace(index, segment.ToStopID)
			legs = append(legs, walkLeg(midnight, origin, to, segment.DepartSeconds, segment.ArriveSeconds, segment.WalkMeters))
		case planner.SegmentTransfer:
			from := stopPlace(index, segment.FromStopID)
			to := stopPlace(index, segment.ToStopID)
			legs = append(legs, walkLeg(midnight, from, to, segment.DepartSeconds, segment.ArriveSeconds, segment.WalkMeters))
		case planner.SegmentTransit:
			legs = append(legs, transitLeg(index, midnight, segment))
		}
	}

	lastStop := result.Segments[len(result.Segments)-1].ToStopID
	arrivalAtStop := result.ArrivalSeconds - result.DestWalkSeconds
	legs = append(legs, walkLeg(midnight, stopPlace(index, lastStop), destination, arrivalAtStop, result.ArrivalSeconds, result.DestWalkMeters))

	legs = mergeSameRoute(legs)

	itinerary := Itinerary{Legs: legs}
	recomputeTotals(&itinerary)

	return itinerary
}

func stopPlace(index *timetable.Index, stopID string) Place {
	stop, exists := index.Stops[stopID]
	if !exists {
		return Place{StopID: stopID}
	}

	return Place{
		Name:      stop.Name,
		StopID:    stop.ID,
		StopCode:  stop.Code,
		Latitude:  stop.Latitude,
		Longitude: stop.Longitude,
	}
}

func walkLeg(midnight time.Time, from, to Place, departSeconds, arriveSeconds int, meters float64) Leg {
	duration := arriveSeconds - departSeconds

	if limit := int(meters / minimumWalkSpeed); duration > limit {
		duration = limit
		departSeconds = arriveSeconds - duration
	}

	return Leg{
		Mode:            ModeWalk,
		StartTime:       timeAt(midnight, departSeconds),
		EndTime:         timeAt(midnight, arriveSeconds),
		DurationSeconds: duration,
		DistanceMeters:  meters,
		From:            from,
		To:              to,
	}
}

func transitLeg(index *timetable.Index, midnight time.Time, segment planner.Segment) Leg {
	leg := Leg{
		Mode:            ModeTransit,
		StartTime:       timeAt(midnight, segment.DepartSeconds),
		EndTime:         timeAt(midnight, segment.ArriveSeconds),
		DurationSeconds: segment.ArriveSeconds - segment.DepartSeconds,
		From:            stopPlace(index, segment.FromStopID),
		To:              stopPlace(index, segment.ToStopID),
		RouteID:         segment.RouteID,
		TripID:          segment.TripID,
	}

	if route, exists := index.Routes[segment.RouteID]; exists {
		leg.RouteShortName = route.ShortName
		leg.RouteLongName = route.LongName
	}

	// Walk the trip's stop sequence to collect intermediate stops and
	// accumulate riding distance between consecutive stops.
	stopTimes := index.TripStopTimes[segment.TripID]
	inside := false
	var previous *timetable.Stop

	for _, stopTime := range stopTimes {
		if stopTime.StopID == segment.FromStopID {
			inside = true
			previous = index.Stops[stopTime.StopID]
			continue
		}
		if !inside {
			continue
		}

		stop := index.Stops[stopTime.StopID]
		if previous != nil && stop != nil {
			leg.DistanceMeters += timetable.DistanceMeters(previous.Latitude, previous.Longitude, stop.Latitude, stop.Longitude)
		}
		previous = stop

		if stopTime.StopID == segment.ToStopID {
			break
		}

		leg.IntermediateStops = append(leg.IntermediateStops, stopPlace(index, stopTime.StopID))
	}

	return leg
}

// mergeSameRoute collapses consecutive transit legs on the same route into a
// single leg. Feeds sometimes split one physical ride into multiple trip ids
// at a hub, which surfaces as a spurious transfer the rider never makes.
func mergeSameRoute(legs []Leg) []Leg {
	var merged []Leg

	for i := 0; i < len(legs); i++ {
		leg := legs[i]

		if leg.Mode != ModeTransit || len(merged) == 0 {
			merged = append(merged, leg)
			continue
		}

		previous := &merged[len(merged)-1]

		// A walk between two stops directly ahead of a same-route
		// continuation is the split artifact, not a real transfer.
		if previous.Mode == ModeWalk && previous.From.StopID != "" && previous.To.StopID != "" && len(merged) >= 2 {
			beforeWalk := &merged[len(merged)-2]
			if beforeWalk.Mode == ModeTransit && beforeWalk.RouteID == leg.RouteID {
				merged = merged[:len(merged)-1]
				previous = beforeWalk
			}
		}

		if previous.Mode == ModeTransit && previous.RouteID == leg.RouteID {
			previous.IntermediateStops = append(previous.IntermediateStops, previous.To)
			// The split can land at two distinct stops, keep both.
			if leg.From.StopID != previous.To.StopID {
				previous.IntermediateStops = append(previous.IntermediateStops, leg.From)
			}
			previous.IntermediateStops = append(previous.IntermediateStops, leg.IntermediateStops...)
			previous.To = leg.To
			previous.EndTime = leg.EndTime
			previous.DurationSeconds = int(previous.EndTime.Sub(previous.StartTime).Seconds())
			previous.DistanceMeters += leg.DistanceMeters
			continue
		}

		merged = append(merged, leg)
	}

	return merged
}

func recomputeTotals(itinerary *Itinerary) {
	legs := itinerary.Legs
	if len(legs) == 0 {
		return
	}

	itinerary.StartTime = legs[0].StartTime
	itinerary.EndTime = legs[len(legs)-1].EndTime
	itinerary.DurationSeconds = int(itinerary.EndTime.Sub(itinerary.StartTime).Seconds())

	itinerary.WalkSeconds = 0
	itinerary.TransitSeconds = 0
	itinerary.WalkMeters = 0
	transitLegs := 0

	for _, leg := range legs {
		switch leg.Mode {
		case ModeWalk:
			itinerary.WalkSeconds += leg.DurationSeconds
			itinerary.WalkMeters += leg.DistanceMeters
		case ModeTransit:
			itinerary.TransitSeconds += leg.DurationSeconds
			transitLegs++
		}
	}

	itinerary.WaitSeconds = itinerary.DurationSeconds - itinerary.WalkSeconds - itinerary.TransitSeconds
	if itinerary.WaitSeconds < 0 {
		itinerary.WaitSeconds = 0
	}

	itinerary.Transfers = transitLegs - 1
	if itinerary.Transfers < 0 {
		itinerary.Transfers = 0
	}
}

func timeAt(midnight time.Time, seconds int) time.Time {
	return midnight.Add(time.Duration(seconds) * time.Second)
}
