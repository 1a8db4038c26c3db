package timetable

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"
)

// IndexOptions tune the derived structures built at load time.
type IndexOptions struct {
	// WalkSpeed in metres per second for transfer edge walk times.
	WalkSpeed float64
	// TransferRadius in metres for the walking-transfer graph.
	TransferRadius float64
}

func DefaultIndexOptions() IndexOptions {
	return IndexOptions{
		WalkSpeed:      1.25,
		TransferRadius: 400,
	}
}

// Departure is one boardable departure at a stop.
type Departure struct {
	StopID           string
	RouteID          string
	Direction        int
	TripID           string
	ServiceID        string
	DepartureSeconds int
}

// Transfer is a walk link between two nearby stops.
type Transfer struct {
	FromStopID  string
	ToStopID    string
	WalkSeconds int
	WalkMeters  float64
}

type tripStopKey struct {
	tripID string
	stopID string
}

// Index is the queryable form of a loaded static feed. It is immutable once
// built; reloads replace the whole structure.
type Index struct {
	Agency *Agency
	Stops  map[string]*Stop
	Routes map[string]*Route
	Trips  map[string]*Trip

	// StopRoutes maps a stop to the ids of routes serving it.
	StopRoutes map[string][]string

	// RoutePatterns maps route id and direction (0/1) to the ordered stop
	// sequence of the longest trip in that direction.
	RoutePatterns map[string][2][]string

	// TripStopTimes holds each trip's stop visits ordered by sequence.
	TripStopTimes map[string][]StopTime

	// StopDepartures holds each stop's boardable departures sorted
	// ascending by departure time. No-pickup visits are excluded.
	StopDepartures map[string][]Departure

	// Transfers holds the walking-transfer graph.
	Transfers map[string][]Transfer

	Resolver *CalendarResolver

	BuiltAt time.Time

	tripArrivals   map[tripStopKey]int
	tripDepartures map[tripStopKey]int
	grid           *stopGrid
}

// BuildIndex derives all lookup structures from a parsed schedule. The
// calendar horizon starts at now.
func BuildIndex(schedule *Schedule, options IndexOptions, now time.Time) *Index {
	start := time.Now()

	index := &Index{
		Stops:          map[string]*Stop{},
		Routes:         map[string]*Route{},
		Trips:          map[string]*Trip{},
		StopRoutes:     map[string][]string{},
		RoutePatterns:  map[string][2][]string{},
		TripStopTimes:  map[string][]StopTime{},
		StopDepartures: map[string][]Departure{},
		Transfers:      map[string][]Transfer{},
		BuiltAt:        time.Now(),
		tripArrivals:   map[tripStopKey]int{},
		tripDepartures: map[tripStopKey]int{},
	}

	if len(schedule.Agencies) > 0 {
		index.Agency = &schedule.Agencies[0]
	}

	for i := range schedule.Stops {
		stop := &schedule.Stops[i]
		index.Stops[stop.ID] = stop
	}
	for i := range schedule.Routes {
		route := &schedule.Routes[i]
		index.Routes[route.ID] = route
	}
	for i := range schedule.Trips {
		trip := &schedule.Trips[i]
		index.Trips[trip.ID] = trip
	}

	index.buildStopTimes(schedule)
	index.buildPatterns()
	index.buildDepartures()
	index.buildTransfers(options)

	index.grid = newStopGrid(index.Stops)
	index.Resolver = NewCalendarResolver(schedule.Calendars, schedule.CalendarDates, now, DefaultHorizonDays)

	log.Info().
		Int("stops", len(index.Stops)).
		Int("routes", len(index.Routes)).
		Int("trips", len(index.Trips)).
		Str("took", time.Since(start).String()).
		Msg("Built timetable index")

	return index
}

func (index *Index) buildStopTimes(schedule *Schedule) {
	for _, stopTime := range schedule.StopTimes {
		if _, exists := index.Trips[stopTime.TripID]; !exists {
			continue
		}

		index.TripStopTimes[stopTime.TripID] = append(index.TripStopTimes[stopTime.TripID], stopTime)
	}

	for tripID, stopTimes := range index.TripStopTimes {
		sort.Slice(stopTimes, func(i, j int) bool {
			return stopTimes[i].StopSequence < stopTimes[j].StopSequence
		})

		for i, stopTime := range stopTimes {
			if i > 0 && stopTimes[i-1].StopSequence == stopTime.StopSequence {
				log.Warn().Str("trip", tripID).Int("sequence", stopTime.StopSequence).Msg("Duplicate stop sequence in trip")
			}

			key := tripStopKey{tripID: tripID, stopID: stopTime.StopID}
			index.tripArrivals[key] = stopTime.ArrivalSeconds
			index.tripDepartures[key] = stopTime.DepartureSeconds
		}
	}
}

func (index *Index) buildPatterns() {
	for tripID, stopTimes := range index.TripStopTimes {
		trip := index.Trips[tripID]
		direction := trip.DirectionID
		if direction != 0 && direction != 1 {
			direction = 0
		}

		patterns := index.RoutePatterns[trip.RouteID]
		if len(stopTimes) > len(patterns[direction]) {
			sequence := make([]string, len(stopTimes))
			for i, stopTime := range stopTimes {
				sequence[i] = stopTime.StopID
			}
			patterns[direction] = sequence
			index.RoutePatterns[trip.RouteID] = patterns
		}

		for _, stopTime := range stopTimes {
			if !slices.Contains(index.StopRoutes[stopTime.StopID], trip.RouteID) {
				index.StopRoutes[stopTime.StopID] = append(index.StopRoutes[stopTime.StopID], trip.RouteID)
			}
		}
	}
}

func (index *Index) buildDepartures() {
	for tripID, stopTimes := range index.TripStopTimes {
		trip := index.Trips[tripID]

		for i, stopTime := range stopTimes {
			// The final stop of a trip is never boardable, and neither
			// is a visit flagged as no-pickup.
			if i == len(stopTimes)-1 || stopTime.PickupType == PickupNone {
				continue
			}
			if stopTime.DepartureSeconds < 0 {
				continue
			}

			index.StopDepartures[stopTime.StopID] = append(index.StopDepartures[stopTime.StopID], Departure{
				StopID:           stopTime.StopID,
				RouteID:          trip.RouteID,
				Direction:        trip.DirectionID,
				TripID:           tripID,
				ServiceID:        trip.ServiceID,
				DepartureSeconds: stopTime.DepartureSeconds,
			})
		}
	}

	for _, departures := range index.StopDepartures {
		sort.Slice(departures, func(i, j int) bool {
			return departures[i].DepartureSeconds < departures[j].DepartureSeconds
		})
	}
}

func (index *Index) buildTransfers(options IndexOptions) {
	grid := newStopGrid(index.Stops)

	for stopID, stop := range index.Stops {
		for _, nearby := range grid.Near(stop.Latitude, stop.Longitude, options.TransferRadius) {
			if nearby.StopID == stopID {
				continue
			}

			index.Transfers[stopID] = append(index.Transfers[stopID], Transfer{
				FromStopID:  stopID,
				ToStopID:    nearby.StopID,
				WalkSeconds: int(nearby.Meters / options.WalkSpeed),
				WalkMeters:  nearby.Meters,
			})
		}
	}
}

// NearbyStops returns stops within maxMeters of a point, closest first.
func (index *Index) NearbyStops(lat, lon, maxMeters float64) []StopDistance {
	results := index.grid.Near(lat, lon, maxMeters)

	sort.Slice(results, func(i, j int) bool {
		return results[i].Meters < results[j].Meters
	})

	return results
}

// TripArrival returns a trip's arrival time at a stop in seconds since
// midnight, in O(1).
func (index *Index) TripArrival(tripID, stopID string) (int, bool) {
	seconds, exists := index.tripArrivals[tripStopKey{tripID: tripID, stopID: stopID}]
	return seconds, exists
}

// TripDeparture is TripArrival for the departure time.
func (index *Index) TripDeparture(tripID, stopID string) (int, bool) {
	seconds, exists := index.tripDepartures[tripStopKey{tripID: tripID, stopID: stopID}]
	return seconds, exists
}

// DeparturesAfter returns the departures at a stop leaving at or after the
// given time, relying on the sorted departure list.
func (index *Index) DeparturesAfter(stopID string, seconds int) []Departure {
	departures := index.StopDepartures[stopID]

	first := sort.Search(len(departures), func(i int) bool {
		return departures[i].DepartureSeconds >= seconds
	})

	return departures[first:]
}
