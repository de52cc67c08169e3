package reservation

// MinutesPerDay is the length of one resource's occupancy row.
const MinutesPerDay = 24 * 60

// AvailabilityMatrix maps an upstream resource id to its minute-of-day
// occupancy for one date. The site reports occupancy per minute even though
// bookings are hour-granular; that mismatch is part of the upstream
// interface and is preserved here rather than papered over.
type AvailabilityMatrix map[string][]bool

// Occupied reports whether the given minute of day is taken. Minutes
// outside the matrix (unknown resource, short row) count as occupied.
func (m AvailabilityMatrix) Occupied(resourceID string, minute int) bool {
	row, ok := m[resourceID]
	if !ok || minute < 0 || minute >= len(row) {
		return true
	}
	return row[minute]
}

// HourFree reports whether a whole hour block is bookable. Conservative by
// construction: every one of the 60 constituent minutes must be free, since
// the booking grain is the hour.
func (m AvailabilityMatrix) HourFree(resourceID string, hour int) bool {
	if hour < 0 || hour > 23 {
		return false
	}
	start := hour * 60
	for min := start; min < start+60; min++ {
		if m.Occupied(resourceID, min) {
			return false
		}
	}
	return true
}

// FreeHours lists the bookable whole hours for a resource, ascending.
func (m AvailabilityMatrix) FreeHours(resourceID string) []int {
	var out []int
	for h := 0; h < 24; h++ {
		if m.HourFree(resourceID, h) {
			out = append(out, h)
		}
	}
	return out
}
