package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"tasklink/internal/api"
	"tasklink/internal/config"
)

func newTemplateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Manage task templates",
	}
	cmd.AddCommand(
		newTemplateListCmd(cfg, jsonOutput),
		newTemplateCreateCmd(cfg, jsonOutput),
		newTemplateRmCmd(cfg, jsonOutput),
	)
	return cmd
}

func newTemplateListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var groupID, search string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			setIfNotEmpty(query, "group_id", groupID)
			setIfNotEmpty(query, "search", search)
			return withClient(cfg, func(client *api.Client) error {
				templates, err := client.ListTemplates(cmd.Context(), query)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(templates)
				}
				rows := make([]string, 0, len(templates))
				for _, tmpl := range templates {
					rows = append(rows, fmt.Sprintf("%s\t%s\t%s", tmpl.ID, tmpl.TemplateName, tmpl.TicketTitle))
				}
				return writeTable("ID\tNAME\tTICKET TITLE", rows)
			})
		},
	}
	cmd.Flags().StringVarP(&groupID, "group", "g", "", "only templates in this group")
	cmd.Flags().StringVar(&search, "search", "", "filter by name or title")
	return cmd
}

func newTemplateCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var req api.TemplateCreateRequest
	cmd := &cobra.Command{
		Use:   "create <name> <ticket-title>",
		Short: "Create a task template",
		Args:  requireExactlyArgs(2, "template name and ticket title are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.TemplateName = args[0]
			req.TicketTitle = args[1]
			if req.TemplateTitle == "" {
				req.TemplateTitle = args[0]
			}
			return withClient(cfg, func(client *api.Client) error {
				tmpl, err := client.CreateTemplate(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(tmpl)
				}
				return writePlain("%s %s\n", tmpl.ID, tmpl.TemplateName)
			})
		},
	}
	cmd.Flags().StringVarP(&req.GroupID, "group", "g", "", "group id")
	cmd.Flags().StringVar(&req.TemplateTitle, "title", "", "template title (defaults to the name)")
	cmd.Flags().StringVarP(&req.TicketDescription, "description", "d", "", "description copied into created tasks")
	return cmd
}

func newTemplateRmCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id|name>",
		Short: "Delete a template",
		Args:  requireExactlyArgs(1, "template id or name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.DeleteTemplate(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeDeleted("template", resp)
			})
		},
	}
}

func newGroupCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "group",
		Short: "Manage template groups",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "tree",
			Short: "Show the template group hierarchy",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withClient(cfg, func(client *api.Client) error {
					tree, err := client.TemplateGroupTree(cmd.Context())
					if err != nil {
						return err
					}
					if *jsonOutput {
						return writeJSON(tree)
					}
					if len(tree) == 0 {
						return writePlain("no template groups\n")
					}
					return writeGroupTree(tree, 0)
				})
			},
		},
		newGroupCreateCmd(cfg, jsonOutput),
		newGroupMoveCmd(cfg, jsonOutput),
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete an empty template group",
			Args:  requireExactlyArgs(1, "group id is required"),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withClient(cfg, func(client *api.Client) error {
					resp, err := client.DeleteTemplateGroup(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if *jsonOutput {
						return writeJSON(resp)
					}
					return writeDeleted("group", resp)
				})
			},
		},
	)
	return cmd
}

func newGroupCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a template group",
		Args:  requireExactlyArgs(1, "group name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				group, err := client.CreateTemplateGroup(cmd.Context(), api.TemplateGroupCreateRequest{
					Name:          args[0],
					ParentGroupID: parent,
				})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(group)
				}
				return writePlain("%s %s\n", group.ID, group.Name)
			})
		},
	}
	cmd.Flags().StringVar(&parent, "parent", "", "parent group id")
	return cmd
}

func newGroupMoveCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var name, parent string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Rename a group or move it under another parent",
		Args:  requireExactlyArgs(1, "group id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.TemplateGroupUpdateRequest{
				Name:          optionalString(cmd.Flags().Changed("name"), name),
				ParentGroupID: optionalString(cmd.Flags().Changed("parent"), parent),
			}
			return withClient(cfg, func(client *api.Client) error {
				group, err := client.UpdateTemplateGroup(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(group)
				}
				return writePlain("%s %s\n", group.ID, group.Name)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new name")
	cmd.Flags().StringVar(&parent, "parent", "", `new parent group id ("" moves to the root)`)
	return cmd
}
