package timetable

import (
	"archive/zip"
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildBundle(t *testing.T, files map[string]string) *bytes.Reader {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	for name, content := range files {
		file, err := writer.Create(name)
		require.NoError(t, err)
		_, err = file.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, writer.Close())

	return bytes.NewReader(buf.Bytes())
}

func TestParseBundle(t *testing.T) {
	bundle := buildBundle(t, map[string]string{
		"agency.txt": "agency_id,agency_name,agency_url,agency_timezone\n" +
			"1,Metro Transit,https://example.org,America/Halifax\n",
		"stops.txt": "stop_id,stop_code,stop_name,stop_lat,stop_lon\n" +
			"S1,8100,\"Main St, at Oak\",44.6488,-63.5752\n" +
			"S2,8101,Elm St,44.6500,-63.5700\n",
		"routes.txt": "route_id,route_short_name,route_long_name,route_color\n" +
			"R1,10,Crosstown,FF0000\n",
		"trips.txt": "route_id,service_id,trip_id,trip_headsign,direction_id\n" +
			"R1,WEEK,T1,Downtown,0\n",
		"stop_times.txt": "trip_id,arrival_time,departure_time,stop_id,stop_sequence\n" +
			"T1,08:00:00,08:00:00,S1,1\n" +
			"T1,08:10:00,08:10:00,S2,2\n",
		"calendar.txt": "service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date\n" +
			"WEEK,1,1,1,1,1,0,0,20260101,20261231\n",
	})

	schedule, err := ParseBundle(bundle)
	require.NoError(t, err)

	require.Len(t, schedule.Stops, 2)
	assert.Equal(t, "Main St, at Oak", schedule.Stops[0].Name)
	assert.InDelta(t, 44.6488, schedule.Stops[0].Latitude, 0.0001)

	require.Len(t, schedule.StopTimes, 2)
	assert.Equal(t, 8*3600, schedule.StopTimes[0].DepartureSeconds)
	assert.Equal(t, 8*3600+600, schedule.StopTimes[1].ArrivalSeconds)
}

func TestParseFeedTime(t *testing.T) {
	tests := []struct {
		in       string
		expected int
	}{
		{"00:00:00", 0},
		{"08:15:30", 29730},
		{"23:59:59", 86399},
		{"25:30:00", 91800}, // overnight trips keep running past 24h
		{"bogus", -1},
		{"", -1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, parseFeedTime(tt.in), tt.in)
	}
}

func testSchedule() *Schedule {
	return &Schedule{
		Agencies: []Agency{{ID: "1", Name: "Metro Transit", Timezone: "America/Halifax"}},
		Stops: []Stop{
			{ID: "S1", Code: "8100", Name: "Main & Oak", Latitude: 44.6400, Longitude: -63.5752},
			{ID: "S2", Code: "8101", Name: "Elm St", Latitude: 44.6450, Longitude: -63.5752},
			{ID: "S3", Code: "8102", Name: "Pine St", Latitude: 44.6500, Longitude: -63.5752},
			// ~120m north of S3, transfer distance
			{ID: "S4", Code: "8103", Name: "Pine North", Latitude: 44.6511, Longitude: -63.5752},
		},
		Routes: []Route{
			{ID: "R1", ShortName: "10", LongName: "Crosstown"},
			{ID: "R2", ShortName: "61", LongName: "Express"},
		},
		Trips: []Trip{
			{ID: "T1", RouteID: "R1", ServiceID: "WEEK", DirectionID: 0, Headsign: "Downtown"},
			{ID: "T2", RouteID: "R1", ServiceID: "WEEK", DirectionID: 0, Headsign: "Downtown"},
			{ID: "T3", RouteID: "R2", ServiceID: "WEEK", DirectionID: 0, Headsign: "Airport"},
		},
		StopTimes: []StopTime{
			{TripID: "T1", StopID: "S1", StopSequence: 1, ArrivalSeconds: 28800, DepartureSeconds: 28800},
			{TripID: "T1", StopID: "S2", StopSequence: 2, ArrivalSeconds: 29100, DepartureSeconds: 29160},
			{TripID: "T1", StopID: "S3", StopSequence: 3, ArrivalSeconds: 29400, DepartureSeconds: 29400},
			{TripID: "T2", StopID: "S1", StopSequence: 1, ArrivalSeconds: 32400, DepartureSeconds: 32400},
			{TripID: "T2", StopID: "S2", StopSequence: 2, ArrivalSeconds: 32700, DepartureSeconds: 32700, PickupType: PickupNone},
			{TripID: "T2", StopID: "S3", StopSequence: 3, ArrivalSeconds: 33000, DepartureSeconds: 33000},
			{TripID: "T3", StopID: "S4", StopSequence: 1, ArrivalSeconds: 30000, DepartureSeconds: 30000},
			{TripID: "T3", StopID: "S3", StopSequence: 2, ArrivalSeconds: 30300, DepartureSeconds: 30300},
		},
		Calendars: []Calendar{
			{ServiceID: "WEEK", Monday: 1, Tuesday: 1, Wednesday: 1, Thursday: 1, Friday: 1, Start: "20260101", End: "20261231"},
		},
		CalendarDates: []CalendarDate{
			// A Wednesday inside the range with service pulled.
			{ServiceID: "WEEK", Date: "20260902", ExceptionType: ExceptionRemoved},
		},
	}
}

func testIndex(t *testing.T) *Index {
	t.Helper()

	// Monday 31 Aug 2026
	now := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)

	return BuildIndex(testSchedule(), DefaultIndexOptions(), now)
}

func TestIndexStopRoutes(t *testing.T) {
	index := testIndex(t)

	assert.ElementsMatch(t, []string{"R1"}, index.StopRoutes["S1"])
	assert.ElementsMatch(t, []string{"R1", "R2"}, index.StopRoutes["S3"])
	assert.ElementsMatch(t, []string{"R2"}, index.StopRoutes["S4"])
}

func TestIndexRoutePatterns(t *testing.T) {
	index := testIndex(t)

	patterns := index.RoutePatterns["R1"]
	assert.Equal(t, []string{"S1", "S2", "S3"}, patterns[0])
	assert.Empty(t, patterns[1])
}

func TestIndexTripArrival(t *testing.T) {
	index := testIndex(t)

	arrival, exists := index.TripArrival("T1", "S3")
	require.True(t, exists)
	assert.Equal(t, 29400, arrival)

	departure, exists := index.TripDeparture("T1", "S2")
	require.True(t, exists)
	assert.Equal(t, 29160, departure)

	_, exists = index.TripArrival("T1", "S4")
	assert.False(t, exists)
}

func TestIndexDepartures(t *testing.T) {
	index := testIndex(t)

	departures := index.StopDepartures["S2"]
	require.Len(t, departures, 1, "no-pickup visit must not be boardable")
	assert.Equal(t, "T1", departures[0].TripID)

	// Last stop of a trip is never boardable.
	for _, departure := range index.StopDepartures["S3"] {
		assert.NotEqual(t, "T1", departure.TripID)
		assert.NotEqual(t, "T2", departure.TripID)
	}

	after := index.DeparturesAfter("S1", 29000)
	require.Len(t, after, 1)
	assert.Equal(t, "T2", after[0].TripID)

	all := index.DeparturesAfter("S1", 0)
	require.Len(t, all, 2)
	assert.True(t, all[0].DepartureSeconds <= all[1].DepartureSeconds)
}

func TestIndexTransfers(t *testing.T) {
	index := testIndex(t)

	var found *Transfer
	for i, transfer := range index.Transfers["S3"] {
		if transfer.ToStopID == "S4" {
			found = &index.Transfers["S3"][i]
		}
	}

	require.NotNil(t, found, "S3 and S4 are ~120m apart and must be linked")
	assert.InDelta(t, 122, found.WalkMeters, 15)
	assert.Greater(t, found.WalkSeconds, 0)

	// S1 and S4 are over a kilometre apart.
	for _, transfer := range index.Transfers["S1"] {
		assert.NotEqual(t, "S4", transfer.ToStopID)
	}
}

func TestNearbyStops(t *testing.T) {
	index := testIndex(t)

	nearby := index.NearbyStops(44.6402, -63.5752, 300)
	require.NotEmpty(t, nearby)
	assert.Equal(t, "S1", nearby[0].StopID)

	for i := 1; i < len(nearby); i++ {
		assert.LessOrEqual(t, nearby[i-1].Meters, nearby[i].Meters)
	}
}

func TestNearbyStopsHighLatitude(t *testing.T) {
	stops := map[string]*Stop{
		"N1": {ID: "N1", Name: "North", Latitude: 80.0, Longitude: 20.025},
	}
	grid := newStopGrid(stops)

	// At 80 degrees north 0.025 degrees of longitude is under 500m of
	// ground distance yet several grid cells east of the query point.
	nearby := grid.Near(80.0, 20.0, 600)
	require.Len(t, nearby, 1)
	assert.Equal(t, "N1", nearby[0].StopID)
	assert.InDelta(t, 483, nearby[0].Meters, 10)
}

func TestCalendarResolver(t *testing.T) {
	index := testIndex(t)
	resolver := index.Resolver

	// Wednesday 2 Sep 2026 has the removal exception.
	wednesday := time.Date(2026, 9, 2, 12, 0, 0, 0, time.UTC)
	assert.True(t, resolver.WithinHorizon(wednesday))
	assert.Empty(t, resolver.ActiveServices(wednesday))

	// The following Monday runs normally.
	monday := time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)
	assert.True(t, resolver.ActiveServices(monday)["WEEK"])

	// Saturday is outside the weekly pattern.
	saturday := time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC)
	assert.Empty(t, resolver.ActiveServices(saturday))

	// Outside the 30 day horizon.
	far := time.Date(2026, 12, 1, 12, 0, 0, 0, time.UTC)
	assert.False(t, resolver.WithinHorizon(far))
	assert.Empty(t, resolver.ActiveServices(far))
}

func TestDistanceMeters(t *testing.T) {
	// Halifax ferry terminal to Alderney Landing, roughly a kilometre.
	distance := DistanceMeters(44.6476, -63.5683, 44.6654, -63.5693)
	assert.InDelta(t, 1980, distance, 100)
}
