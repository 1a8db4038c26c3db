package timetable

import (
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultHorizonDays bounds the precomputed date range of the resolver.
const DefaultHorizonDays = 30

const dateFormat = "20060102"

// CalendarResolver answers "which services run on this date" for a bounded
// horizon starting at its build date.
type CalendarResolver struct {
	activeByDate map[string]map[string]bool
	horizonStart time.Time
	horizonDays  int
}

// NewCalendarResolver precomputes the active service set for every date in
// [start, start+horizonDays). Weekly patterns apply first, then dated
// exceptions add or remove single days.
func NewCalendarResolver(calendars []Calendar, calendarDates []CalendarDate, start time.Time, horizonDays int) *CalendarResolver {
	resolver := &CalendarResolver{
		activeByDate: map[string]map[string]bool{},
		horizonStart: startOfDay(start),
		horizonDays:  horizonDays,
	}

	exceptions := map[string][]CalendarDate{}
	for _, calendarDate := range calendarDates {
		exceptions[calendarDate.Date] = append(exceptions[calendarDate.Date], calendarDate)
	}

	for day := 0; day < horizonDays; day++ {
		date := resolver.horizonStart.AddDate(0, 0, day)
		dateKey := date.Format(dateFormat)

		active := map[string]bool{}

		for _, calendar := range calendars {
			if !calendar.RunsOn(int(date.Weekday())) {
				continue
			}

			rangeStart, err := time.ParseInLocation(dateFormat, calendar.Start, date.Location())
			if err != nil {
				log.Warn().Str("service", calendar.ServiceID).Str("date", calendar.Start).Msg("Bad calendar start date")
				continue
			}
			rangeEnd, err := time.ParseInLocation(dateFormat, calendar.End, date.Location())
			if err != nil {
				log.Warn().Str("service", calendar.ServiceID).Str("date", calendar.End).Msg("Bad calendar end date")
				continue
			}

			if date.Before(rangeStart) || date.After(rangeEnd) {
				continue
			}

			active[calendar.ServiceID] = true
		}

		for _, exception := range exceptions[dateKey] {
			switch exception.ExceptionType {
			case ExceptionAdded:
				active[exception.ServiceID] = true
			case ExceptionRemoved:
				delete(active, exception.ServiceID)
			}
		}

		resolver.activeByDate[dateKey] = active
	}

	return resolver
}

// ActiveServices returns the service ids running on a date. Dates outside
// the horizon return an empty set; use WithinHorizon to tell the two apart.
func (resolver *CalendarResolver) ActiveServices(date time.Time) map[string]bool {
	active, exists := resolver.activeByDate[date.Format(dateFormat)]
	if !exists {
		return map[string]bool{}
	}

	return active
}

// WithinHorizon reports whether a date falls inside the precomputed range.
// An empty active set for an in-horizon date means genuinely no service.
func (resolver *CalendarResolver) WithinHorizon(date time.Time) bool {
	day := startOfDay(date)

	return !day.Before(resolver.horizonStart) &&
		day.Before(resolver.horizonStart.AddDate(0, 0, resolver.horizonDays))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
