package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/squash-scheduler/internal/application/usecases"
	"github.com/example/squash-scheduler/internal/config"
	"github.com/example/squash-scheduler/internal/db"
	"github.com/example/squash-scheduler/internal/jobs"
	"github.com/example/squash-scheduler/internal/migrate"
	"github.com/example/squash-scheduler/internal/scheduler"
	"github.com/example/squash-scheduler/internal/web"
)

func newServerCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "server",
		Short: "Run the scheduler and the job API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if err := cfg.RequireIdentities(); err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}

			logger := newLogger()

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := d.Ping(ctx); err != nil {
				return fmt.Errorf("db ping: %w", err)
			}
			if migrateUp {
				if err := migrate.Up(ctx, d); err != nil {
					return err
				}
			}

			client, err := newClient(cfg, logger)
			if err != nil {
				return err
			}
			jobRepo := jobs.NewRepo(d)

			s := &scheduler.Scheduler{
				Repo: jobRepo,
				Booker: usecases.BookCourt{
					Provider:   client,
					Identities: identitiesFrom(cfg),
					Logger:     logger,
				},
				Site:     loc,
				Interval: cfg.PollInterval,
				Logger:   logger.With().Str("component", "scheduler").Logger(),
			}
			go func() { _ = s.Run(ctx) }()

			ws := &web.Server{
				Jobs:   jobRepo,
				Site:   loc,
				Logger: logger.With().Str("component", "web").Logger(),
			}
			return web.Start(ctx, cfg.ListenAddr, ws.Routes(), logger)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", true, "run database migrations on startup")
	return cmd
}
