package reservation

import "time"

// Identity is one upstream account the booker may authenticate as.
// Identities are tried strictly in configured order.
type Identity struct {
	Username string
	Secret   string
}

// Slot describes the desired reservation. Date is midnight in the site's
// local timezone; Hour is a 24-hour-clock integer. Bookings are
// hour-granular even though the site reports availability per minute.
type Slot struct {
	Court    int
	Date     time.Time
	Hour     int
	Duration int // minutes
}

// StartMinutes is the slot start expressed as minutes since midnight,
// which is how the upstream stage endpoint wants it.
func (s Slot) StartMinutes() int { return s.Hour * 60 }

// Receipt is the terminal proof of a confirmed reservation.
type Receipt struct {
	Username     string
	Slot         Slot
	Confirmation string
	BookedAt     time.Time
}
