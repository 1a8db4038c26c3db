package timetable

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// Schedule holds the raw static feed tables before indexing.
type Schedule struct {
	Agencies      []Agency
	Stops         []Stop
	Routes        []Route
	Trips         []Trip
	StopTimes     []StopTime
	Calendars     []Calendar
	CalendarDates []CalendarDate
	Shapes        []Shape
}

// Row counts below these are treated as a sign of a truncated bundle. They
// produce warnings, not failures, so a degraded feed still loads.
const (
	saneMinimumStops  = 10
	saneMinimumRoutes = 1
	saneMinimumTrips  = 1
)

// ParseBundle reads a zipped static feed into typed records.
func ParseBundle(reader io.Reader) (*Schedule, error) {
	// Allow us to ignore those naughty records that have missing columns
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		return r
	})

	schedule := &Schedule{}

	fileMap := map[string]interface{}{
		"agency.txt":         &schedule.Agencies,
		"stops.txt":          &schedule.Stops,
		"routes.txt":         &schedule.Routes,
		"trips.txt":          &schedule.Trips,
		"stop_times.txt":     &schedule.StopTimes,
		"calendar.txt":       &schedule.Calendars,
		"calendar_dates.txt": &schedule.CalendarDates,
		"shapes.txt":         &schedule.Shapes,
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	archive, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}

	seen := map[string]bool{}

	for _, zipFile := range archive.File {
		destination, exists := fileMap[zipFile.Name]
		if !exists {
			log.Debug().Str("file", zipFile.Name).Msg("Unknown bundle file")
			continue
		}

		log.Info().Str("file", zipFile.Name).Msg("Loading file")

		fileReader, err := zipFile.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", zipFile.Name, err)
		}

		err = gocsv.Unmarshal(fileReader, destination)
		fileReader.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", zipFile.Name, err)
		}

		seen[zipFile.Name] = true
	}

	for name := range fileMap {
		if !seen[name] {
			log.Warn().Str("file", name).Msg("Bundle is missing a table")
		}
	}

	if len(schedule.Stops) < saneMinimumStops {
		log.Warn().Int("stops", len(schedule.Stops)).Msg("Implausibly few stops in bundle")
	}
	if len(schedule.Routes) < saneMinimumRoutes {
		log.Warn().Int("routes", len(schedule.Routes)).Msg("Implausibly few routes in bundle")
	}
	if len(schedule.Trips) < saneMinimumTrips {
		log.Warn().Int("trips", len(schedule.Trips)).Msg("Implausibly few trips in bundle")
	}

	for i := range schedule.StopTimes {
		stopTime := &schedule.StopTimes[i]
		stopTime.ArrivalSeconds = parseFeedTime(stopTime.ArrivalTime)
		stopTime.DepartureSeconds = parseFeedTime(stopTime.DepartureTime)
	}

	return schedule, nil
}

// parseFeedTime converts a HH:MM:SS timetable value into seconds since
// midnight. Hours of 24 and above are kept as-is so overnight trips remain
// strictly increasing. Unparseable values come back as -1.
func parseFeedTime(value string) int {
	parts := strings.Split(strings.TrimSpace(value), ":")
	if len(parts) != 3 {
		return -1
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return -1
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return -1
	}
	seconds, err := strconv.Atoi(parts[2])
	if err != nil {
		return -1
	}

	return hours*3600 + minutes*60 + seconds
}
