package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/squash-scheduler/internal/application/usecases"
	"github.com/example/squash-scheduler/internal/config"
	"github.com/example/squash-scheduler/internal/domain/reservation"
)

func newBookCmd() *cobra.Command {
	var (
		court    int
		hour     int
		date     string
		tomorrow bool
		duration int
	)

	c := &cobra.Command{
		Use:   "book",
		Short: "Book a court right now, trying each configured account in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireIdentities(); err != nil {
				return err
			}

			playDate, err := resolveDate(cfg, date, tomorrow)
			if err != nil {
				return err
			}

			logger := newLogger()
			client, err := newClient(cfg, logger)
			if err != nil {
				return err
			}

			u := usecases.BookCourt{
				Provider:   client,
				Identities: identitiesFrom(cfg),
				Logger:     logger,
			}

			slot := reservation.Slot{Court: court, Hour: hour, Date: playDate, Duration: duration}
			receipt, err := u.Execute(cmd.Context(), slot)
			if err != nil {
				return err
			}

			fmt.Printf("booked court %d at %02d:00 on %s as %s: %s\n",
				slot.Court, slot.Hour, playDate.Format("2006-01-02"), receipt.Username, receipt.Confirmation)
			return nil
		},
	}

	c.Flags().IntVar(&court, "court", 1, "court number")
	c.Flags().IntVar(&hour, "hour", 18, "start hour, 24h clock, site-local")
	c.Flags().StringVar(&date, "date", "", "play date YYYY-MM-DD in the site's timezone (default today)")
	c.Flags().BoolVar(&tomorrow, "tomorrow", false, "book for tomorrow instead of today")
	c.Flags().IntVar(&duration, "duration", 60, "duration in minutes")
	return c
}

// resolveDate turns the --date/--tomorrow flags into midnight in the
// site's timezone. The caller's local date is irrelevant.
func resolveDate(cfg config.Config, date string, tomorrow bool) (time.Time, error) {
	loc, err := cfg.Location()
	if err != nil {
		return time.Time{}, err
	}
	if date != "" {
		d, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date (want YYYY-MM-DD)")
		}
		return d, nil
	}
	days := 0
	if tomorrow {
		days = 1
	}
	return reservation.PlayDate(reservation.SystemClock{}, loc, days), nil
}
