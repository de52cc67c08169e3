package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/squash-scheduler/internal/application/usecases"
	"github.com/example/squash-scheduler/internal/config"
)

func newAvailabilityCmd() *cobra.Command {
	var (
		date     string
		tomorrow bool
	)

	c := &cobra.Command{
		Use:   "availability",
		Short: "Show bookable whole hours per court for a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
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

			u := usecases.CheckAvailability{
				Provider:   client,
				CourtCount: cfg.CourtCount,
				ResourceID: client.ResourceID,
			}
			hours, err := u.Execute(cmd.Context(), playDate)
			if err != nil {
				return err
			}

			fmt.Printf("availability for %s:\n", playDate.Format("2006-01-02"))
			for _, ch := range hours {
				if len(ch.FreeHours) == 0 {
					fmt.Printf("  court %d: fully booked\n", ch.Court)
					continue
				}
				parts := make([]string, len(ch.FreeHours))
				for i, h := range ch.FreeHours {
					parts[i] = fmt.Sprintf("%02d:00", h)
				}
				fmt.Printf("  court %d: %s\n", ch.Court, strings.Join(parts, " "))
			}
			return nil
		},
	}

	c.Flags().StringVar(&date, "date", "", "date YYYY-MM-DD in the site's timezone (default today)")
	c.Flags().BoolVar(&tomorrow, "tomorrow", false, "look at tomorrow instead of today")
	return c
}
