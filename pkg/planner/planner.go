// Package planner computes earliest-arrival journeys over a timetable index
// using a round-based search: round 0 walks from the origin, every later
// round adds one transit boarding plus an optional transfer.
package planner

import (
	"errors"
	"time"
)

var (
	// ErrNoNearbyStops means no stop is within walking distance of the
	// origin or the destination.
	ErrNoNearbyStops = errors.New("no stops within walking distance")

	// ErrOutsideServiceArea carries the user-facing distinction for "this
	// point is not somewhere the network goes at all".
	ErrOutsideServiceArea = errors.New("location outside the service area")

	// ErrNoService means the date has an empty active-service set.
	ErrNoService = errors.New("no service runs on the requested date")

	// ErrNoRouteFound means the search exhausted without a qualifying
	// journey, or the trip is too short to warrant transit.
	ErrNoRouteFound = errors.New("no route found")
)

// Options bound the search cost and tune its heuristics.
type Options struct {
	// MaxRounds is the configured maximum transfers plus one.
	MaxRounds int

	// WalkRadius bounds origin and destination walking, in metres.
	WalkRadius float64

	// WalkSpeed in metres per second.
	WalkSpeed float64

	// WalkMultiplier weights walking against riding when choosing between
	// boarding candidates on the same route. Values above 1 make the
	// planner prefer a farther stop only when it saves proportionally
	// more ride time than the extra walk costs.
	WalkMultiplier float64

	// MinTransferSeconds is added to every walking transfer.
	MinTransferSeconds int

	// MinTripMeters is the distance below which transit is not warranted.
	MinTripMeters float64

	// WindowSeconds bounds how far past the requested departure a
	// boarding may leave.
	WindowSeconds int

	// MaxItineraries and MaxDiversityPasses bound the time-diversity
	// loop.
	MaxItineraries     int
	MaxDiversityPasses int

	// ArriveByOffsets are the fixed earlier-departure probes, in minutes,
	// used to approximate arrive-by planning.
	ArriveByOffsets []int

	// ArrivalTieSeconds is the window within which two results count as
	// arriving together, letting destination walk break the tie.
	ArrivalTieSeconds int
}

func DefaultOptions() Options {
	return Options{
		MaxRounds:          4,
		WalkRadius:         600,
		WalkSpeed:          1.25,
		WalkMultiplier:     1.5,
		MinTransferSeconds: 60,
		MinTripMeters:      50,
		WindowSeconds:      2 * 3600,
		MaxItineraries:     3,
		MaxDiversityPasses: 5,
		ArriveByOffsets:    []int{20, 30, 40, 60},
		ArrivalTieSeconds:  120,
	}
}

// Request is one planning call.
type Request struct {
	OriginLat      float64
	OriginLon      float64
	DestinationLat float64
	DestinationLon float64

	// When is the requested departure time, or the arrival target when
	// ArriveBy is set.
	When     time.Time
	ArriveBy bool
}

// SegmentKind distinguishes the planner's internal path segments.
type SegmentKind int

const (
	SegmentOriginWalk SegmentKind = iota
	SegmentTransit
	SegmentTransfer
)

// Segment is one hop of a reconstructed path. Times are seconds since
// midnight of the travel date.
type Segment struct {
	Kind SegmentKind

	FromStopID string
	ToStopID   string

	TripID  string
	RouteID string

	DepartSeconds int
	ArriveSeconds int

	WalkSeconds int
	WalkMeters  float64
}

// Result is one journey as the search produced it, before itinerary
// assembly.
type Result struct {
	Segments []Segment

	DestWalkSeconds int
	DestWalkMeters  float64

	DepartureSeconds int
	ArrivalSeconds   int

	// TripIDs is the ordered transit trip signature used for
	// deduplication across diversity passes.
	TripIDs []string
}

// Planner owns the search configuration. The index is passed per call so a
// reloaded timetable takes effect without rebuilding the planner.
type Planner struct {
	options Options
}

func New(options Options) *Planner {
	return &Planner{options: options}
}

func (p *Planner) Options() Options {
	return p.options
}

func walkSeconds(meters, speed float64) int {
	return int(meters / speed)
}

func secondsSinceMidnight(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}
