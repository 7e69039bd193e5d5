package main

import (
	"github.com/spf13/cobra"

	"tasklink/internal/api"
	"tasklink/internal/config"
)

func newInfoCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show server and database info",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.GetInfo(cmd.Context())
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(struct {
						api.InfoResponse
						DBPath string `json:"db_path"`
					}{resp, cfg.DBPath})
				}

				_ = writePlain("db_path: %s\n", cfg.DBPath)
				_ = writePlain("project_prefix: %s\n", resp.ProjectPrefix)
				_ = writePlain("schema_version: %d\n", resp.SchemaVersion)
				_ = writePlain("events_enabled: %t\n", resp.EventsEnabled)
				return writePlain("admin_token_configured: %t\n", resp.AdminTokenConfigured)
			})
		},
	}
}
