package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/squash-scheduler/internal/config"
	"github.com/example/squash-scheduler/internal/db"
	"github.com/example/squash-scheduler/internal/jobs"
	"github.com/example/squash-scheduler/internal/migrate"
)

func newJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage scheduled booking jobs",
	}
	cmd.AddCommand(newJobCreateCmd())
	cmd.AddCommand(newJobListCmd())
	return cmd
}

func newJobCreateCmd() *cobra.Command {
	var (
		name            string
		court           int
		hour            int
		date            string
		tomorrow        bool
		duration        int
		windowStart     string
		windowMinutes   int
		intervalSeconds int
	)

	c := &cobra.Command{
		Use:   "create",
		Short: "Create a booking job the scheduler will fire inside its window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			playDate, err := resolveDate(cfg, date, tomorrow)
			if err != nil {
				return err
			}

			start := time.Now()
			if windowStart != "" {
				start, err = time.Parse(time.RFC3339, windowStart)
				if err != nil {
					return fmt.Errorf("invalid --window-start (want RFC3339)")
				}
			}

			j := jobs.Job{
				Name:          name,
				Court:         court,
				Hour:          hour,
				PlayDate:      playDate,
				Duration:      duration,
				WindowStartAt: start,
				WindowEndAt:   start.Add(time.Duration(windowMinutes) * time.Minute),
				IntervalSec:   intervalSeconds,
			}
			if err := j.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			id, err := jobs.NewRepo(d).Create(ctx, j)
			if err != nil {
				return err
			}
			fmt.Printf("created job %d (%s): court %d %02d:00 on %s\n",
				id, j.Name, j.Court, j.Hour, j.PlayDate.Format("2006-01-02"))
			return nil
		},
	}

	c.Flags().StringVar(&name, "name", "", "job name")
	c.Flags().IntVar(&court, "court", 1, "court number")
	c.Flags().IntVar(&hour, "hour", 18, "start hour, 24h clock, site-local")
	c.Flags().StringVar(&date, "date", "", "play date YYYY-MM-DD in the site's timezone")
	c.Flags().BoolVar(&tomorrow, "tomorrow", false, "play tomorrow")
	c.Flags().IntVar(&duration, "duration", 60, "duration in minutes")
	c.Flags().StringVar(&windowStart, "window-start", "", "when to start trying, RFC3339 (default now)")
	c.Flags().IntVar(&windowMinutes, "window-minutes", 60, "how long to keep trying")
	c.Flags().IntVar(&intervalSeconds, "interval", 30, "seconds between attempts")
	_ = c.MarkFlagRequired("name")
	return c
}

func newJobListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List booking jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			js, err := jobs.NewRepo(d).List(ctx)
			if err != nil {
				return err
			}
			for _, j := range js {
				line := fmt.Sprintf("%d\t%s\tcourt %d %02d:00 %s\t%s",
					j.ID, j.Name, j.Court, j.Hour, j.PlayDate.Format("2006-01-02"), j.Status)
				if j.BookedBy != nil {
					line += "\tby " + *j.BookedBy
				}
				if j.LastError != nil {
					line += "\tlast_error: " + *j.LastError
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}
