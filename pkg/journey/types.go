// Package journey turns raw planner paths into the itinerary shape handed to
// collaborators, and overlays realtime delays onto already-built itineraries.
package journey

import "time"

type LegMode string

const (
	ModeWalk    LegMode = "walk"
	ModeTransit LegMode = "transit"
)

// Place is one endpoint of a leg. Stop fields are empty for raw
// origin/destination coordinates.
type Place struct {
	Name      string  `groups:"basic" json:"name"`
	StopID    string  `groups:"basic" json:"stopId,omitempty"`
	StopCode  string  `groups:"detailed" json:"stopCode,omitempty"`
	Latitude  float64 `groups:"basic" json:"latitude"`
	Longitude float64 `groups:"basic" json:"longitude"`
}

type Leg struct {
	Mode LegMode `groups:"basic" json:"mode"`

	StartTime time.Time `groups:"basic" json:"startTime"`
	EndTime   time.Time `groups:"basic" json:"endTime"`

	// DurationSeconds covers the leg itself; boarding wait is tracked at
	// the itinerary level.
	DurationSeconds int     `groups:"basic" json:"durationSeconds"`
	DistanceMeters  float64 `groups:"basic" json:"distanceMeters"`

	From Place `groups:"basic" json:"from"`
	To   Place `groups:"basic" json:"to"`

	RouteID        string `groups:"basic" json:"routeId,omitempty"`
	RouteShortName string `groups:"basic" json:"routeShortName,omitempty"`
	RouteLongName  string `groups:"detailed" json:"routeLongName,omitempty"`
	TripID         string `groups:"detailed" json:"tripId,omitempty"`

	IntermediateStops []Place `groups:"detailed" json:"intermediateStops,omitempty"`

	// Realtime enrichment, populated by the delay overlay.
	RealTime     bool `groups:"basic" json:"realTime"`
	DelaySeconds int  `groups:"basic" json:"delaySeconds"`
}

type Itinerary struct {
	StartTime time.Time `groups:"basic" json:"startTime"`
	EndTime   time.Time `groups:"basic" json:"endTime"`

	DurationSeconds int `groups:"basic" json:"durationSeconds"`
	WalkSeconds     int `groups:"basic" json:"walkSeconds"`
	TransitSeconds  int `groups:"basic" json:"transitSeconds"`
	WaitSeconds     int `groups:"basic" json:"waitSeconds"`

	WalkMeters float64 `groups:"basic" json:"walkMeters"`
	Transfers  int     `groups:"basic" json:"transfers"`

	Legs []Leg `groups:"basic" json:"legs"`

	HasRealTime       bool `groups:"basic" json:"hasRealTime"`
	TotalDelaySeconds int  `groups:"basic" json:"totalDelaySeconds"`
}
