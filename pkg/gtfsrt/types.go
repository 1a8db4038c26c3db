// Package gtfsrt decodes the three realtime feeds (vehicle positions, trip
// updates, service alerts) from their length-prefixed binary form. The field
// numbers are fixed by the upstream feed schema and must not change.
package gtfsrt

// TripDescriptor identifies the scheduled trip a realtime record refers to.
type TripDescriptor struct {
	TripID    string `json:"tripId"`
	RouteID   string `json:"routeId"`
	StartTime string `json:"startTime,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	Direction int    `json:"directionId"`
}

// VehicleDescriptor identifies the physical vehicle.
type VehicleDescriptor struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// VehiclePosition is one live vehicle snapshot.
type VehiclePosition struct {
	Trip      TripDescriptor    `json:"trip"`
	Vehicle   VehicleDescriptor `json:"vehicle"`
	Latitude  float64           `json:"latitude"`
	Longitude float64           `json:"longitude"`
	Bearing   float64           `json:"bearing"`
	Speed     float64           `json:"speed"`

	StopSequence int    `json:"currentStopSequence"`
	StopID       string `json:"stopId,omitempty"`
	Status       string `json:"currentStatus,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// StopTimeEvent carries a signed delay in seconds and an absolute epoch time
// for either an arrival or a departure.
type StopTimeEvent struct {
	Delay int   `json:"delay"`
	Time  int64 `json:"time"`
}

// StopTimeUpdate is one per-stop delay entry within a trip update.
type StopTimeUpdate struct {
	StopSequence int            `json:"stopSequence"`
	StopID       string         `json:"stopId"`
	Arrival      *StopTimeEvent `json:"arrival,omitempty"`
	Departure    *StopTimeEvent `json:"departure,omitempty"`
}

// TripUpdate is the live per-stop delay set for one trip.
type TripUpdate struct {
	Trip            TripDescriptor    `json:"trip"`
	Vehicle         VehicleDescriptor `json:"vehicle"`
	StopTimeUpdates []StopTimeUpdate  `json:"stopTimeUpdates"`
	Timestamp       int64             `json:"timestamp"`
}

// ActivePeriod is one validity window of an alert, in epoch milliseconds.
type ActivePeriod struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

// EntitySelector names one route/stop/trip an alert applies to. RouteID
// retains the feed's raw value; NormalizedRouteID carries the digit-run form
// used for matching against timetable routes.
type EntitySelector struct {
	AgencyID          string `json:"agencyId,omitempty"`
	RouteID           string `json:"routeId,omitempty"`
	NormalizedRouteID string `json:"normalizedRouteId,omitempty"`
	StopID            string `json:"stopId,omitempty"`
	TripID            string `json:"tripId,omitempty"`
}

// Alert is one active service disruption.
type Alert struct {
	ID               string           `json:"id"`
	Cause            string           `json:"cause"`
	Effect           string           `json:"effect"`
	HeaderText       string           `json:"headerText"`
	DescriptionText  string           `json:"descriptionText"`
	URL              string           `json:"url,omitempty"`
	ActivePeriods    []ActivePeriod   `json:"activePeriods"`
	InformedEntities []EntitySelector `json:"informedEntities"`
}

var vehicleStatusNames = map[uint64]string{
	0: "INCOMING_AT",
	1: "STOPPED_AT",
	2: "IN_TRANSIT_TO",
}

var alertCauseNames = map[uint64]string{
	1:  "UNKNOWN_CAUSE",
	2:  "OTHER_CAUSE",
	3:  "TECHNICAL_PROBLEM",
	4:  "STRIKE",
	5:  "DEMONSTRATION",
	6:  "ACCIDENT",
	7:  "HOLIDAY",
	8:  "WEATHER",
	9:  "MAINTENANCE",
	10: "CONSTRUCTION",
	11: "POLICE_ACTIVITY",
	12: "MEDICAL_EMERGENCY",
}

var alertEffectNames = map[uint64]string{
	1:  "NO_SERVICE",
	2:  "REDUCED_SERVICE",
	3:  "SIGNIFICANT_DELAYS",
	4:  "DETOUR",
	5:  "ADDITIONAL_SERVICE",
	6:  "MODIFIED_SERVICE",
	7:  "OTHER_EFFECT",
	8:  "UNKNOWN_EFFECT",
	9:  "STOP_MOVED",
	10: "NO_EFFECT",
	11: "ACCESSIBILITY_ISSUE",
}
