package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tasklink/internal/config"
	"tasklink/internal/events"
)

func newEventsCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect change events published to NATS",
	}
	cmd.AddCommand(newEventsWatchCmd(cfg))
	return cmd
}

func newEventsWatchCmd(cfg *config.Config) *cobra.Command {
	var topic string
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print change events as they are published",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Events.NATSURL == "" {
				return errors.New("events.nats_url is not configured")
			}
			if topic == "" {
				topic = events.Wildcard(cfg.Events.SubjectPrefix)
			}

			sub, err := events.NewNATSSubscriber(cfg.Events.NATSURL)
			if err != nil {
				return err
			}
			defer sub.Close()

			payloads, cancel, err := sub.Subscribe(topic)
			if err != nil {
				return err
			}
			defer cancel()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			for {
				select {
				case <-ctx.Done():
					return nil
				case payload, ok := <-payloads:
					if !ok {
						return nil
					}
					if err := writePlain("%s\n", payload); err != nil {
						return err
					}
				}
			}
		},
	}
	cmd.Flags().StringVar(&topic, "subject", "", "subject filter (default <subject_prefix>.>)")
	return cmd
}
