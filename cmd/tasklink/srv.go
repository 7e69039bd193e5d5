package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tasklink/internal/config"
	"tasklink/internal/events"
	"tasklink/internal/server"
	"tasklink/internal/store"
)

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the tasklink API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if cfg.DBPath == "" {
				return fmt.Errorf("db path is required")
			}
			if err := config.ValidateProjectPrefix(cfg.ProjectPrefix); err != nil {
				return err
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			logger.Info("opening database", "path", cfg.DBPath)
			st, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer st.Close()

			publisher, err := events.NewPublisher(cfg.Events.NATSURL)
			if err != nil {
				return err
			}
			defer publisher.Close()
			if cfg.Events.NATSURL != "" {
				logger.Info("publishing events", "nats_url", cfg.Events.NATSURL, "subject_prefix", cfg.Events.SubjectPrefix)
			}

			srv := server.New(addr, st, server.Config{
				ProjectPrefix:  cfg.ProjectPrefix,
				AdminTokenHash: cfg.AdminTokenHash,
				Publisher:      publisher,
				SubjectPrefix:  cfg.Events.SubjectPrefix,
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
}
