package usecases

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/squash-scheduler/internal/domain/reservation"
)

// BookCourt tries the full booking flow across the configured identities,
// strictly in order, one attempt at a time. The first confirmed reservation
// wins and the remaining identities are never touched; racing several
// accounts at once could stage the same slot twice.
type BookCourt struct {
	Provider   reservation.BookingProvider
	Identities []reservation.Identity
	Logger     zerolog.Logger
}

func (u BookCourt) Execute(ctx context.Context, slot reservation.Slot) (reservation.Receipt, error) {
	if u.Provider == nil {
		return reservation.Receipt{}, fmt.Errorf("provider is nil")
	}
	if len(u.Identities) == 0 {
		return reservation.Receipt{}, fmt.Errorf("no identities configured")
	}

	var attempts reservation.AttemptLog
	for _, identity := range u.Identities {
		receipt, err := u.Provider.Book(ctx, identity, slot)
		if err == nil {
			return receipt, nil
		}

		u.Logger.Warn().
			Str("username", identity.Username).
			Err(err).
			Msg("booking attempt failed, moving to next identity")
		attempts = append(attempts, reservation.AttemptFailure{Username: identity.Username, Err: err})

		if ctx.Err() != nil {
			break
		}
	}
	return reservation.Receipt{}, &reservation.ExhaustedError{Attempts: attempts}
}
