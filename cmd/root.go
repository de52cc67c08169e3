package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/example/squash-scheduler/internal/config"
	"github.com/example/squash-scheduler/internal/domain/reservation"
	"github.com/example/squash-scheduler/internal/infrastructure/courtsite"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "squashsched",
		Short: "Books a squash court on the club's reservation site, falling back across accounts",
	}

	root.AddCommand(newVersionCmd())
	root.AddCommand(newBookCmd())
	root.AddCommand(newAvailabilityCmd())
	root.AddCommand(newJobCmd())
	root.AddCommand(newServerCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func newClient(cfg config.Config, logger zerolog.Logger) (*courtsite.Client, error) {
	return courtsite.New(courtsite.Options{
		BaseURL:          cfg.BaseURL,
		SiteID:           cfg.SiteID,
		ResourceIDOffset: cfg.ResourceIDOffset,
		CourtCount:       cfg.CourtCount,
		Timeout:          cfg.HTTPTimeout,
		Logger:           logger,
	})
}

func identitiesFrom(cfg config.Config) []reservation.Identity {
	out := make([]reservation.Identity, len(cfg.Usernames))
	for i := range cfg.Usernames {
		out[i] = reservation.Identity{Username: cfg.Usernames[i], Secret: cfg.Secrets[i]}
	}
	return out
}
