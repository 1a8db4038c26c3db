package timetable

import (
	"math"
)

const (
	earthRadiusMeters = 6371000.0

	// Ground distance of one degree of latitude.
	metersPerDegree = 111319.9
)

// DistanceMeters is the haversine great-circle distance between two points.
func DistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	la1 := lat1 * math.Pi / 180
	la2 := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(la1)*math.Cos(la2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// stopGrid buckets stops into ~500m cells so nearby-stop queries avoid a
// full scan of the stop table.
type stopGrid struct {
	cells map[gridCell][]string
	stops map[string]*Stop
}

type gridCell struct {
	latIndex int
	lonIndex int
}

const gridCellDegrees = 0.005

func cellFor(lat, lon float64) gridCell {
	return gridCell{
		latIndex: int(math.Floor(lat / gridCellDegrees)),
		lonIndex: int(math.Floor(lon / gridCellDegrees)),
	}
}

func newStopGrid(stops map[string]*Stop) *stopGrid {
	grid := &stopGrid{
		cells: map[gridCell][]string{},
		stops: stops,
	}

	for id, stop := range stops {
		cell := cellFor(stop.Latitude, stop.Longitude)
		grid.cells[cell] = append(grid.cells[cell], id)
	}

	return grid
}

// Near returns all stops within maxMeters of the point, unordered.
func (g *stopGrid) Near(lat, lon, maxMeters float64) []StopDistance {
	var results []StopDistance

	// Cells to scan either side of the centre cell. Longitude cells
	// shrink towards the poles, so that axis needs a wider reach.
	cellMeters := gridCellDegrees * metersPerDegree
	latReach := int(math.Ceil(maxMeters/cellMeters)) + 1

	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < 0.01 {
		cosLat = 0.01
	}
	lonReach := int(math.Ceil(maxMeters/(cellMeters*cosLat))) + 1

	centre := cellFor(lat, lon)

	for latIndex := centre.latIndex - latReach; latIndex <= centre.latIndex+latReach; latIndex++ {
		for lonIndex := centre.lonIndex - lonReach; lonIndex <= centre.lonIndex+lonReach; lonIndex++ {
			for _, stopID := range g.cells[gridCell{latIndex, lonIndex}] {
				stop := g.stops[stopID]

				distance := DistanceMeters(lat, lon, stop.Latitude, stop.Longitude)
				if distance <= maxMeters {
					results = append(results, StopDistance{StopID: stopID, Meters: distance})
				}
			}
		}
	}

	return results
}

// StopDistance pairs a stop with its straight-line distance from a point.
type StopDistance struct {
	StopID string
	Meters float64
}
