package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tasklink/internal/config"
	"tasklink/internal/format"
)

func newRootCmd(cfg *config.Config) *cobra.Command {
	var (
		jsonOutput   bool
		outputFormat string
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:           "tasklink",
		Short:         "Tasklink tracks typed relationships between tasks and enforces blocking rules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			warning, err := configureLoggerForCLI(logLevel, cfg.LogLevel)
			if err != nil {
				return err
			}
			if warning != "" {
				fmt.Fprintln(os.Stderr, warning)
			}

			if cmd.Flags().Changed("output") {
				formatter, err := format.ByName(outputFormat)
				if err != nil {
					return err
				}
				outputFormatter = formatter
				jsonOutput = true
			}
			return nil
		},
	}

	cmd.Version = version
	cmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output JSON")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "structured output format: json, json-pretty, yaml")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		newSrvCmd(cfg),
		newInfoCmd(cfg, &jsonOutput),
		newProjectCmd(cfg, &jsonOutput),
		newTaskCmd(cfg, &jsonOutput),
		newRelCmd(cfg, &jsonOutput),
		newTypesCmd(cfg, &jsonOutput),
		newTemplateCmd(cfg, &jsonOutput),
		newGroupCmd(cfg, &jsonOutput),
		newConfigCmd(cfg),
		newAdminCmd(),
		newMigrateCmd(cfg, &jsonOutput),
		newEventsCmd(cfg),
	)

	return cmd
}
