package reservation

import (
	"context"
	"time"
)

// BookingProvider is the upstream scheduling site seen from the
// orchestration layer. Availability needs no authentication and is safe to
// call concurrently; Book runs one full Authenticate -> Stage -> Confirm
// attempt for a single identity on a fresh session.
type BookingProvider interface {
	Name() string
	Availability(ctx context.Context, date time.Time) (AvailabilityMatrix, error)
	Book(ctx context.Context, identity Identity, slot Slot) (Receipt, error)
}
