package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/example/squash-scheduler/internal/domain/reservation"
)

// CheckAvailability reduces the site's minute-granular occupancy matrix to
// bookable whole hours per court, the grain reservations are actually made
// at.
type CheckAvailability struct {
	Provider   reservation.BookingProvider
	CourtCount int
	ResourceID func(court int) string
}

// CourtHours is the hour-level view for one court.
type CourtHours struct {
	Court     int
	FreeHours []int
}

func (u CheckAvailability) Execute(ctx context.Context, date time.Time) ([]CourtHours, error) {
	if u.Provider == nil {
		return nil, fmt.Errorf("provider is nil")
	}
	if u.ResourceID == nil {
		return nil, fmt.Errorf("resource mapping is nil")
	}

	matrix, err := u.Provider.Availability(ctx, date)
	if err != nil {
		return nil, err
	}

	out := make([]CourtHours, 0, u.CourtCount)
	for court := 1; court <= u.CourtCount; court++ {
		out = append(out, CourtHours{
			Court:     court,
			FreeHours: matrix.FreeHours(u.ResourceID(court)),
		})
	}
	return out, nil
}
