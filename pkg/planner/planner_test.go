package planner

import (
	"testing"
	"time"

	"github.com/onboardtransit/onboard/pkg/timetable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The fixture network sits on a north-south line near 44°N. Route R1 runs
// S1..S5; route R2 runs S3X..S6 where S3X is a 120m walk from S3.
func testSchedule() *timetable.Schedule {
	return &timetable.Schedule{
		Agencies: []timetable.Agency{{ID: "1", Name: "Metro Transit", Timezone: "UTC"}},
		Stops: []timetable.Stop{
			{ID: "S1", Name: "First", Latitude: 44.00337, Longitude: -63.0},
			{ID: "S2", Name: "Second", Latitude: 44.02, Longitude: -63.0},
			{ID: "S3", Name: "Third", Latitude: 44.04, Longitude: -63.0},
			{ID: "S4", Name: "Fourth", Latitude: 44.06, Longitude: -63.0},
			{ID: "S5", Name: "Fifth", Latitude: 44.08, Longitude: -63.0},
			{ID: "S3X", Name: "Third Crossing", Latitude: 44.04, Longitude: -63.0015},
			{ID: "S6", Name: "Sixth", Latitude: 44.10, Longitude: -63.0015},
		},
		Routes: []timetable.Route{
			{ID: "R1", ShortName: "10", LongName: "Mainline"},
			{ID: "R2", ShortName: "61", LongName: "Crossing"},
		},
		Trips: []timetable.Trip{
			{ID: "T1", RouteID: "R1", ServiceID: "WEEK", DirectionID: 0},
			{ID: "T1b", RouteID: "R1", ServiceID: "WEEK", DirectionID: 0},
			{ID: "T2", RouteID: "R2", ServiceID: "WEEK", DirectionID: 0},
		},
		StopTimes: []timetable.StopTime{
			// T1: 08:00 from S1, 20 minutes to S5.
			{TripID: "T1", StopID: "S1", StopSequence: 1, ArrivalSeconds: 28800, DepartureSeconds: 28800},
			{TripID: "T1", StopID: "S2", StopSequence: 2, ArrivalSeconds: 29100, DepartureSeconds: 29100},
			{TripID: "T1", StopID: "S3", StopSequence: 3, ArrivalSeconds: 29400, DepartureSeconds: 29400},
			{TripID: "T1", StopID: "S4", StopSequence: 4, ArrivalSeconds: 29700, DepartureSeconds: 29700},
			{TripID: "T1", StopID: "S5", StopSequence: 5, ArrivalSeconds: 30000, DepartureSeconds: 30000},
			// T1b: same run half an hour later.
			{TripID: "T1b", StopID: "S1", StopSequence: 1, ArrivalSeconds: 30600, DepartureSeconds: 30600},
			{TripID: "T1b", StopID: "S2", StopSequence: 2, ArrivalSeconds: 30900, DepartureSeconds: 30900},
			{TripID: "T1b", StopID: "S3", StopSequence: 3, ArrivalSeconds: 31200, DepartureSeconds: 31200},
			{TripID: "T1b", StopID: "S4", StopSequence: 4, ArrivalSeconds: 31500, DepartureSeconds: 31500},
			{TripID: "T1b", StopID: "S5", StopSequence: 5, ArrivalSeconds: 31800, DepartureSeconds: 31800},
			// T2: crossing route, reachable from S3 by a short walk.
			{TripID: "T2", StopID: "S3X", StopSequence: 1, ArrivalSeconds: 29700, DepartureSeconds: 29700},
			{TripID: "T2", StopID: "S6", StopSequence: 2, ArrivalSeconds: 30300, DepartureSeconds: 30300},
		},
		Calendars: []timetable.Calendar{
			{ServiceID: "WEEK", Monday: 1, Tuesday: 1, Wednesday: 1, Thursday: 1, Friday: 1, Start: "20260101", End: "20261231"},
		},
	}
}

func testIndex(t *testing.T) *timetable.Index {
	t.Helper()

	// Monday 31 Aug 2026.
	now := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)

	return timetable.BuildIndex(testSchedule(), timetable.DefaultIndexOptions(), now)
}

func testRequest(when time.Time) Request {
	return Request{
		OriginLat:      44.0,
		OriginLon:      -63.0,
		DestinationLat: 44.08202,
		DestinationLon: -63.0,
		When:           when,
	}
}

func monday(hour, minute int) time.Time {
	return time.Date(2026, 8, 31, hour, minute, 0, 0, time.UTC)
}

func TestPlanSimpleJourney(t *testing.T) {
	index := testIndex(t)
	p := New(DefaultOptions())

	results, err := p.Plan(index, testRequest(monday(7, 50)))
	require.NoError(t, err)
	require.NotEmpty(t, results)

	best := results[0]
	assert.Equal(t, []string{"T1"}, best.TripIDs)

	transitCount := 0
	transferCount := 0
	for _, segment := range best.Segments {
		switch segment.Kind {
		case SegmentTransit:
			transitCount++
		case SegmentTransfer:
			transferCount++
		}
	}
	assert.Equal(t, 1, transitCount)
	assert.Equal(t, 0, transferCount)

	// 5 minute walk + 20 minute ride + 3 minute walk, give or take the
	// haversine rounding.
	duration := best.ArrivalSeconds - best.DepartureSeconds
	assert.InDelta(t, 28*60, duration, 60)

	// Origin walk leaves just in time for the 08:00 boarding.
	assert.InDelta(t, 28800, best.Segments[0].ArriveSeconds, 1)
}

func TestPlanWithTransfer(t *testing.T) {
	index := testIndex(t)
	p := New(DefaultOptions())

	request := testRequest(monday(7, 50))
	request.DestinationLat = 44.1018
	request.DestinationLon = -63.0015

	results, err := p.Plan(index, request)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	best := results[0]
	assert.Equal(t, []string{"T1", "T2"}, best.TripIDs)

	var kinds []SegmentKind
	for _, segment := range best.Segments {
		kinds = append(kinds, segment.Kind)
	}
	assert.Equal(t, []SegmentKind{SegmentOriginWalk, SegmentTransit, SegmentTransfer, SegmentTransit}, kinds)

	// Trip T2 arrives S6 at 08:25, then a 200m walk.
	assert.InDelta(t, 30300+160, best.ArrivalSeconds, 10)
}

func TestPlanTooClose(t *testing.T) {
	index := testIndex(t)
	p := New(DefaultOptions())

	request := testRequest(monday(7, 50))
	request.DestinationLat = 44.0002
	request.DestinationLon = -63.0

	_, err := p.Plan(index, request)
	assert.ErrorIs(t, err, ErrNoRouteFound)
}

func TestPlanNoNearbyStops(t *testing.T) {
	index := testIndex(t)
	p := New(DefaultOptions())

	request := testRequest(monday(7, 50))
	request.OriginLat = 45.5
	request.OriginLon = -60.0

	_, err := p.Plan(index, request)
	assert.ErrorIs(t, err, ErrNoNearbyStops)
}

func TestPlanNoService(t *testing.T) {
	index := testIndex(t)
	p := New(DefaultOptions())

	// Saturday 5 Sep 2026: no weekly service.
	saturday := time.Date(2026, 9, 5, 7, 50, 0, 0, time.UTC)

	_, err := p.Plan(index, testRequest(saturday))
	assert.ErrorIs(t, err, ErrNoService)
}

func TestPlanDiversity(t *testing.T) {
	index := testIndex(t)
	p := New(DefaultOptions())

	results, err := p.Plan(index, testRequest(monday(7, 50)))
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(results), 2)

	// The exclusion set forces the second itinerary onto the later run.
	signatures := map[string]bool{}
	for _, result := range results {
		signature := ""
		for _, tripID := range result.TripIDs {
			signature += tripID + ","
		}
		assert.False(t, signatures[signature], "duplicate trip signature %s", signature)
		signatures[signature] = true
	}

	assert.Equal(t, []string{"T1"}, results[0].TripIDs)

	// Results are ordered by arrival.
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i-1].ArrivalSeconds, results[i].ArrivalSeconds+DefaultOptions().ArrivalTieSeconds)
	}
}

func TestPlanArriveBy(t *testing.T) {
	index := testIndex(t)
	p := New(DefaultOptions())

	request := testRequest(monday(8, 30))
	request.ArriveBy = true

	results, err := p.Plan(index, request)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	target := 8*3600 + 30*60
	for _, result := range results {
		assert.LessOrEqual(t, result.ArrivalSeconds, target)
		assert.NotEmpty(t, result.TripIDs)
	}
}

func TestEarliestArrivalNeverWorsens(t *testing.T) {
	index := testIndex(t)
	p := New(DefaultOptions())

	origin := index.NearbyStops(44.0, -63.0, p.options.WalkRadius)
	dest := index.NearbyStops(44.08202, -63.0, p.options.WalkRadius)
	active := index.Resolver.ActiveServices(monday(7, 50))

	results := p.forwardRun(index, origin, dest, 7*3600+50*60, active, nil)
	require.NotEmpty(t, results)

	// A later round may add results but never a worse arrival for the
	// same journey shape: the best result arrives no later than any
	// other result reaching the same destination stop.
	best := results[0]
	for _, result := range results[1:] {
		if result.Segments[len(result.Segments)-1].ToStopID == best.Segments[len(best.Segments)-1].ToStopID {
			assert.GreaterOrEqual(t, result.ArrivalSeconds, best.ArrivalSeconds)
		}
	}
}
