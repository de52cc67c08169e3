package reservation

import "time"

// Clock is injected wherever "today" matters so date resolution is
// testable. The zero source is the system clock.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// PlayDate resolves the requested date to midnight in the site's local
// timezone. daysAhead is 0 for today, 1 for tomorrow. The caller's timezone
// is irrelevant: the site interprets all dates in its own locale.
func PlayDate(clock Clock, site *time.Location, daysAhead int) time.Time {
	now := clock.Now().In(site)
	return time.Date(now.Year(), now.Month(), now.Day()+daysAhead, 0, 0, 0, 0, site)
}
