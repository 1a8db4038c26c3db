package planner

import (
	"strings"
	"time"

	"github.com/onboardtransit/onboard/pkg/timetable"
	"github.com/rs/zerolog/log"
)

// Plan runs the search for a request and returns the qualifying journeys,
// best first. It never retries; callers own any retry policy.
func (p *Planner) Plan(index *timetable.Index, request Request) ([]Result, error) {
	if request.ArriveBy {
		return p.planArriveBy(index, request)
	}

	return p.planForward(index, request)
}

func (p *Planner) planForward(index *timetable.Index, request Request) ([]Result, error) {
	opts := p.options

	crowFlies := timetable.DistanceMeters(request.OriginLat, request.OriginLon, request.DestinationLat, request.DestinationLon)
	if crowFlies < opts.MinTripMeters {
		return nil, ErrNoRouteFound
	}

	originStops := index.NearbyStops(request.OriginLat, request.OriginLon, opts.WalkRadius)
	if len(originStops) == 0 {
		return nil, ErrNoNearbyStops
	}

	destStops := index.NearbyStops(request.DestinationLat, request.DestinationLon, opts.WalkRadius)
	if len(destStops) == 0 {
		return nil, ErrNoNearbyStops
	}

	active := index.Resolver.ActiveServices(request.When)
	if len(active) == 0 {
		return nil, ErrNoService
	}

	departSeconds := secondsSinceMidnight(request.When)

	results := p.diversityPasses(index, originStops, destStops, departSeconds, active)
	if len(results) == 0 {
		return nil, ErrNoRouteFound
	}

	return results, nil
}

// diversityPasses repeats the forward search, excluding every trip already
// used, until enough distinct journeys exist or a pass finds nothing new.
func (p *Planner) diversityPasses(
	index *timetable.Index,
	originStops []timetable.StopDistance,
	destStops []timetable.StopDistance,
	departSeconds int,
	active map[string]bool,
) []Result {
	opts := p.options

	excluded := map[string]bool{}
	seen := map[string]bool{}
	var kept []Result

	for pass := 0; pass < opts.MaxDiversityPasses && len(kept) < opts.MaxItineraries; pass++ {
		passResults := p.forwardRun(index, originStops, destStops, departSeconds, active, excluded)

		added := 0
		for _, result := range passResults {
			signature := strings.Join(result.TripIDs, ",")
			if seen[signature] {
				continue
			}
			seen[signature] = true

			kept = append(kept, result)
			added++

			for _, tripID := range result.TripIDs {
				excluded[tripID] = true
			}

			if len(kept) >= opts.MaxItineraries {
				break
			}
		}

		if added == 0 {
			break
		}
	}

	sortResults(kept, opts.ArrivalTieSeconds)

	if len(kept) > opts.MaxItineraries {
		kept = kept[:opts.MaxItineraries]
	}

	return kept
}

// planArriveBy approximates latest-workable-departure planning by probing
// the forward planner at fixed earlier offsets and keeping the probe whose
// arrival lands latest without passing the target. This is intentionally a
// bounded heuristic, not a true backward search.
func (p *Planner) planArriveBy(index *timetable.Index, request Request) ([]Result, error) {
	target := request.When
	targetSeconds := secondsSinceMidnight(target)

	var bestResults []Result
	bestArrival := -1
	var lastErr error

	for _, offsetMinutes := range p.options.ArriveByOffsets {
		probe := request
		probe.ArriveBy = false
		probe.When = target.Add(-time.Duration(offsetMinutes) * time.Minute)

		results, err := p.planForward(index, probe)
		if err != nil {
			lastErr = err
			continue
		}

		for _, result := range results {
			if result.ArrivalSeconds > targetSeconds {
				continue
			}

			if result.ArrivalSeconds > bestArrival {
				bestArrival = result.ArrivalSeconds
				bestResults = probeResultsWithin(results, targetSeconds)
			}
		}
	}

	if len(bestResults) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, ErrNoRouteFound
	}

	log.Debug().
		Int("results", len(bestResults)).
		Int("targetSeconds", targetSeconds).
		Msg("Arrive-by probe selected")

	return bestResults, nil
}

func probeResultsWithin(results []Result, targetSeconds int) []Result {
	var within []Result

	for _, result := range results {
		if result.ArrivalSeconds <= targetSeconds {
			within = append(within, result)
		}
	}

	return within
}
