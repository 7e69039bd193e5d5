package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tasklink/internal/api"
	"tasklink/internal/config"
)

func newProjectCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	var description string
	createCmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a project",
		Args:  requireAtLeastArgs(1, "name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				project, err := client.CreateProject(cmd.Context(), api.ProjectCreateRequest{
					Name:        strings.Join(args, " "),
					Description: description,
				})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(project)
				}
				return writePlain("%s\n", project.ID)
			})
		},
	}
	createCmd.Flags().StringVarP(&description, "description", "d", "", "project description")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				projects, err := client.ListProjects(cmd.Context())
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(projects)
				}
				rows := make([]string, 0, len(projects))
				for _, p := range projects {
					rows = append(rows, fmt.Sprintf("%s\t%s\t%s", p.ID, p.Name, formatTime(p.CreatedAt)))
				}
				return writeTable("ID\tNAME\tCREATED", rows)
			})
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a project and all of its tasks",
		Args:  requireExactlyArgs(1, "project id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.DeleteProject(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeDeleted("project", resp)
			})
		},
	}

	cmd.AddCommand(createCmd, listCmd, rmCmd)
	return cmd
}
