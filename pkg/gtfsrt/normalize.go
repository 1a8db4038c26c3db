package gtfsrt

// NormalizeRouteID reduces a decorated route identifier to its first
// contiguous digit run, so "10-825", "Route 10" and "10A" all match a
// timetable route with id "10". Identifiers without digits come back
// unchanged so non-numeric networks still match on the raw form.
func NormalizeRouteID(routeID string) string {
	start := -1

	for i := 0; i < len(routeID); i++ {
		digit := routeID[i] >= '0' && routeID[i] <= '9'

		if digit && start == -1 {
			start = i
		}
		if !digit && start != -1 {
			return routeID[start:i]
		}
	}

	if start != -1 {
		return routeID[start:]
	}

	return routeID
}
