package planner

import (
	"math"
	"sort"

	"github.com/onboardtransit/onboard/pkg/timetable"
	"golang.org/x/exp/maps"
)

// label records how a stop was reached within a round.
type label struct {
	arrival int
	kind    SegmentKind

	// transit fields
	tripID       string
	routeID      string
	boardStopID  string
	boardSeconds int

	// walk fields (origin walk and transfers)
	fromStopID  string
	walkSeconds int
	walkMeters  float64
}

// roundLabels keeps the route-scanning labels separate from the merged view
// so a transfer label can never alias the transit label it was relaxed from.
type roundLabels struct {
	transit map[string]label
	all     map[string]label
}

func newRoundLabels() roundLabels {
	return roundLabels{
		transit: map[string]label{},
		all:     map[string]label{},
	}
}

type boardingState struct {
	tripID    string
	stopID    string
	departure int
	score     float64
}

// forwardRun executes one full round-based search from fixed origin stops.
// excluded trips are skipped when boarding, which later passes use to force
// time diversity.
func (p *Planner) forwardRun(
	index *timetable.Index,
	originStops []timetable.StopDistance,
	destStops []timetable.StopDistance,
	departSeconds int,
	active map[string]bool,
	excluded map[string]bool,
) []Result {
	opts := p.options

	rounds := make([]roundLabels, opts.MaxRounds+1)
	rounds[0] = newRoundLabels()

	best := map[string]int{}

	marked := map[string]bool{}
	for _, origin := range originStops {
		walk := walkSeconds(origin.Meters, opts.WalkSpeed)
		arrival := departSeconds + walk

		if existing, seen := best[origin.StopID]; seen && existing <= arrival {
			continue
		}

		best[origin.StopID] = arrival
		rounds[0].all[origin.StopID] = label{
			arrival:     arrival,
			kind:        SegmentOriginWalk,
			walkSeconds: walk,
			walkMeters:  origin.Meters,
		}
		marked[origin.StopID] = true
	}

	windowEnd := departSeconds + opts.WindowSeconds

	for round := 1; round <= opts.MaxRounds; round++ {
		rounds[round] = newRoundLabels()
		markedNext := map[string]bool{}

		for _, scan := range routesToScan(index, marked) {
			pattern := index.RoutePatterns[scan.routeID][scan.direction]
			var boarding *boardingState

			for _, stopID := range pattern {
				if boarding != nil {
					arrival, exists := index.TripArrival(boarding.tripID, stopID)
					if exists && arrival > boarding.departure {
						if existing, seen := best[stopID]; !seen || arrival < existing {
							best[stopID] = arrival
							rounds[round].transit[stopID] = label{
								arrival:      arrival,
								kind:         SegmentTransit,
								tripID:       boarding.tripID,
								routeID:      scan.routeID,
								boardStopID:  boarding.stopID,
								boardSeconds: boarding.departure,
							}
							markedNext[stopID] = true
						}
					}
				}

				previous, wasMarked := rounds[round-1].all[stopID]
				if !wasMarked || !marked[stopID] {
					continue
				}

				candidate, found := p.earliestBoarding(index, stopID, scan.routeID, scan.direction, previous.arrival, windowEnd, active, excluded)
				if !found {
					continue
				}

				// Boarding tie-break: walking further is only worth it
				// when the penalised walk still beats the later
				// departure at the nearer stop.
				score := float64(previous.walkSeconds)*(opts.WalkMultiplier-1) + float64(candidate.DepartureSeconds)

				if boarding == nil || score < boarding.score {
					boarding = &boardingState{
						tripID:    candidate.TripID,
						stopID:    stopID,
						departure: candidate.DepartureSeconds,
						score:     score,
					}
				}
			}
		}

		// Merge the transit labels, then relax walking transfers off them.
		maps.Copy(rounds[round].all, rounds[round].transit)

		transitStops := maps.Keys(rounds[round].transit)
		sort.Strings(transitStops)

		for _, stopID := range transitStops {
			base := rounds[round].transit[stopID]

			for _, transfer := range index.Transfers[stopID] {
				arrival := base.arrival + opts.MinTransferSeconds + transfer.WalkSeconds

				if existing, seen := best[transfer.ToStopID]; seen && existing <= arrival {
					continue
				}
				if _, isTransit := rounds[round].transit[transfer.ToStopID]; isTransit {
					continue
				}

				best[transfer.ToStopID] = arrival
				rounds[round].all[transfer.ToStopID] = label{
					arrival:     arrival,
					kind:        SegmentTransfer,
					fromStopID:  stopID,
					walkSeconds: transfer.WalkSeconds,
					walkMeters:  transfer.WalkMeters,
				}
				markedNext[transfer.ToStopID] = true
			}
		}

		if len(markedNext) == 0 {
			rounds = rounds[:round+1]
			break
		}

		marked = markedNext
	}

	return p.extractResults(rounds, destStops, departSeconds)
}

type routeScan struct {
	routeID   string
	direction int
}

func routesToScan(index *timetable.Index, marked map[string]bool) []routeScan {
	seen := map[routeScan]bool{}
	var scans []routeScan

	stops := maps.Keys(marked)
	sort.Strings(stops)

	for _, stopID := range stops {
		for _, routeID := range index.StopRoutes[stopID] {
			patterns := index.RoutePatterns[routeID]

			for direction := 0; direction <= 1; direction++ {
				if len(patterns[direction]) == 0 {
					continue
				}

				scan := routeScan{routeID: routeID, direction: direction}
				if !seen[scan] {
					seen[scan] = true
					scans = append(scans, scan)
				}
			}
		}
	}

	return scans
}

// earliestBoarding finds the first usable departure of a route at a stop at
// or after the arrival time there.
func (p *Planner) earliestBoarding(
	index *timetable.Index,
	stopID, routeID string,
	direction int,
	after, windowEnd int,
	active map[string]bool,
	excluded map[string]bool,
) (timetable.Departure, bool) {
	for _, departure := range index.DeparturesAfter(stopID, after) {
		if departure.DepartureSeconds > windowEnd {
			break
		}
		if departure.RouteID != routeID || departure.Direction != direction {
			continue
		}
		if !active[departure.ServiceID] {
			continue
		}
		if excluded[departure.TripID] {
			continue
		}

		return departure, true
	}

	return timetable.Departure{}, false
}

func (p *Planner) extractResults(rounds []roundLabels, destStops []timetable.StopDistance, departSeconds int) []Result {
	var results []Result

	for _, dest := range destStops {
		destWalk := walkSeconds(dest.Meters, p.options.WalkSpeed)

		for round := 1; round < len(rounds); round++ {
			if _, exists := rounds[round].all[dest.StopID]; !exists {
				continue
			}

			result, ok := reconstruct(rounds, round, dest.StopID, departSeconds)
			if !ok {
				continue
			}

			result.DestWalkSeconds = destWalk
			result.DestWalkMeters = dest.Meters
			result.ArrivalSeconds += destWalk

			results = append(results, result)
		}
	}

	sortResults(results, p.options.ArrivalTieSeconds)

	return results
}

// reconstruct walks the per-round labels backwards from a destination stop
// until it reaches an origin-walk label. Paths without a transit segment are
// rejected.
func reconstruct(rounds []roundLabels, round int, stopID string, departSeconds int) (Result, bool) {
	var reversed []Segment

	current := stopID
	useTransit := false

	for {
		var entry label
		var exists bool

		if useTransit {
			entry, exists = rounds[round].transit[current]
		} else {
			entry, exists = rounds[round].all[current]
		}
		if !exists {
			return Result{}, false
		}

		switch entry.kind {
		case SegmentTransfer:
			reversed = append(reversed, Segment{
				Kind:          SegmentTransfer,
				FromStopID:    entry.fromStopID,
				ToStopID:      current,
				DepartSeconds: entry.arrival - entry.walkSeconds,
				ArriveSeconds: entry.arrival,
				WalkSeconds:   entry.walkSeconds,
				WalkMeters:    entry.walkMeters,
			})
			current = entry.fromStopID
			useTransit = true

		case SegmentTransit:
			reversed = append(reversed, Segment{
				Kind:          SegmentTransit,
				FromStopID:    entry.boardStopID,
				ToStopID:      current,
				TripID:        entry.tripID,
				RouteID:       entry.routeID,
				DepartSeconds: entry.boardSeconds,
				ArriveSeconds: entry.arrival,
			})
			current = entry.boardStopID
			round -= 1
			useTransit = false

		case SegmentOriginWalk:
			if round != 0 {
				return Result{}, false
			}

			walk := Segment{
				Kind:        SegmentOriginWalk,
				ToStopID:    current,
				WalkSeconds: entry.walkSeconds,
				WalkMeters:  entry.walkMeters,
			}

			// The walk leaves as late as still makes the first boarding.
			firstDeparture := departSeconds + entry.walkSeconds
			if len(reversed) > 0 {
				firstDeparture = reversed[len(reversed)-1].DepartSeconds
			}
			walk.ArriveSeconds = firstDeparture
			walk.DepartSeconds = firstDeparture - entry.walkSeconds

			reversed = append(reversed, walk)

			return finishResult(reversed)
		}

		if len(reversed) > 64 {
			// Label cycle; treat as unreachable.
			return Result{}, false
		}
	}
}

func finishResult(reversed []Segment) (Result, bool) {
	segments := make([]Segment, len(reversed))
	for i, segment := range reversed {
		segments[len(reversed)-1-i] = segment
	}

	result := Result{Segments: segments}

	for _, segment := range segments {
		if segment.Kind == SegmentTransit {
			result.TripIDs = append(result.TripIDs, segment.TripID)
		}
	}

	// Pure walk paths are not itineraries.
	if len(result.TripIDs) == 0 {
		return Result{}, false
	}

	result.DepartureSeconds = segments[0].DepartSeconds
	result.ArrivalSeconds = segments[len(segments)-1].ArriveSeconds

	return result, true
}

// sortResults orders by arrival time, falling back to destination walk when
// two arrivals land within the tie window.
func sortResults(results []Result, tieSeconds int) {
	sort.SliceStable(results, func(i, j int) bool {
		difference := results[i].ArrivalSeconds - results[j].ArrivalSeconds

		if int(math.Abs(float64(difference))) < tieSeconds {
			if results[i].DestWalkSeconds != results[j].DestWalkSeconds {
				return results[i].DestWalkSeconds < results[j].DestWalkSeconds
			}
		}

		return difference < 0
	})
}
