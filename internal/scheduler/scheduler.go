package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/squash-scheduler/internal/domain/reservation"
	"github.com/example/squash-scheduler/internal/jobs"
)

// Booker runs one full credential-fallback booking for a slot.
type Booker interface {
	Execute(ctx context.Context, slot reservation.Slot) (reservation.Receipt, error)
}

// Scheduler polls for due jobs and fires booking attempts inside their
// window. Jobs run strictly one after another: a booking attempt holds
// mutable session state against the upstream site and concurrent attempts
// could double-book a slot.
type Scheduler struct {
	Repo     *jobs.Repo
	Booker   Booker
	Site     *time.Location
	Interval time.Duration
	Logger   zerolog.Logger
}

func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.Interval)
	defer t.Stop()

	// kick immediately
	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	if err := s.Repo.ExpireOverdue(ctx); err != nil {
		s.Logger.Error().Err(err).Msg("expiring overdue jobs failed")
	}

	due, err := s.Repo.DueJobs(ctx, 25)
	if err != nil {
		s.Logger.Error().Err(err).Msg("due jobs query failed")
		return
	}

	now := time.Now()
	for _, j := range due {
		if ctx.Err() != nil {
			return
		}
		if j.NextAttemptAt(now).After(now) {
			continue
		}
		s.runJobAttempt(ctx, j)
	}
}

func (s *Scheduler) runJobAttempt(ctx context.Context, j jobs.Job) {
	slot := reservation.Slot{
		Court:    j.Court,
		Date:     midnightIn(j.PlayDate, s.Site),
		Hour:     j.Hour,
		Duration: j.Duration,
	}

	log := s.Logger.With().Int64("job_id", j.ID).Str("job", j.Name).Logger()

	receipt, err := s.Booker.Execute(ctx, slot)
	if err == nil {
		log.Info().Str("booked_by", receipt.Username).Msg("job booked")
		if err := s.Repo.MarkBooked(ctx, j.ID, receipt.Username); err != nil {
			log.Error().Err(err).Msg("marking job booked failed")
		}
		return
	}

	log.Warn().Err(err).Msg("booking round failed")

	var ex *reservation.ExhaustedError
	reason := err.Error()
	if errors.As(err, &ex) {
		for _, a := range ex.Attempts {
			log.Debug().Str("username", a.Username).Err(a.Err).Msg("identity attempt")
		}
	}
	if err := s.Repo.MarkAttemptFailed(ctx, j.ID, reason); err != nil {
		log.Error().Err(err).Msg("recording failed attempt failed")
	}

	if time.Now().After(j.WindowEndAt) {
		msg := "attempt window ended without success"
		if err := s.Repo.SetStatus(ctx, j.ID, "failed", &msg); err != nil {
			log.Error().Err(err).Msg("marking job failed failed")
		}
	}
}

func midnightIn(d time.Time, loc *time.Location) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}
