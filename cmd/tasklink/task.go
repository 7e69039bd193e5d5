package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"tasklink/internal/api"
	"tasklink/internal/config"
)

func newTaskCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}

	cmd.AddCommand(
		newTaskCreateCmd(cfg, jsonOutput),
		newTaskShowCmd(cfg, jsonOutput),
		newTaskListCmd(cfg, jsonOutput),
		newTaskStatusCmd(cfg, jsonOutput),
		newTaskEditCmd(cfg, jsonOutput),
		newTaskRmCmd(cfg, jsonOutput),
		newTaskBlockersCmd(cfg, jsonOutput),
	)
	return cmd
}

type taskCreateOptions struct {
	id          string
	projectID   string
	description string
	status      string
	templateRef string
}

func newTaskCreateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	opts := &taskCreateOptions{}
	cmd := &cobra.Command{
		Use:   "create [<title>]",
		Short: "Create a task",
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := buildTaskCreateRequest(opts, args)
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				task, err := client.CreateTask(cmd.Context(), req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task)
				}
				return writePlain("%s\n", task.ID)
			})
		},
	}

	cmd.Flags().StringVar(&opts.id, "id", "", "explicit task id")
	cmd.Flags().StringVarP(&opts.projectID, "project", "p", "", "project id (required)")
	cmd.Flags().StringVarP(&opts.description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&opts.status, "status", "s", "", "initial status")
	cmd.Flags().StringVarP(&opts.templateRef, "template", "t", "", "template id or name supplying title and description")
	return cmd
}

func buildTaskCreateRequest(opts *taskCreateOptions, args []string) (api.TaskCreateRequest, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" && opts.templateRef == "" {
		return api.TaskCreateRequest{}, errors.New("title is required unless --template is given")
	}
	if strings.TrimSpace(opts.projectID) == "" {
		return api.TaskCreateRequest{}, errors.New("--project is required")
	}

	req := api.TaskCreateRequest{
		ID:         opts.id,
		ProjectID:  opts.projectID,
		Title:      title,
		TemplateID: opts.templateRef,
	}
	if opts.description != "" {
		req.Description = &opts.description
	}
	if opts.status != "" {
		req.Status = &opts.status
	}
	return req, nil
}

func newTaskShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var withRelationships bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show task details",
		Args:  requireAtLeastOneID,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				task, err := client.GetTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if !withRelationships {
					if *jsonOutput {
						return writeJSON(task)
					}
					return writeTaskDetail(task)
				}

				groups, err := client.TaskRelationships(cmd.Context(), task.ID)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(map[string]any{"task": task, "relationships": groups})
				}
				if err := writeTaskDetail(task); err != nil {
					return err
				}
				return writeRelationshipGroups(task.ID, groups)
			})
		},
	}
	cmd.Flags().BoolVarP(&withRelationships, "relationships", "r", false, "include relationships grouped by type")
	return cmd
}

func newTaskListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var (
		projectID string
		statuses  string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			setIfNotEmpty(query, "project_id", projectID)
			setIfNotEmpty(query, "status", strings.Join(splitCommaList(statuses), ","))
			if limit > 0 {
				query.Set("limit", intToString(limit))
			}
			return withClient(cfg, func(client *api.Client) error {
				tasks, err := client.ListTasks(cmd.Context(), query)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(tasks)
				}
				rows := make([]string, 0, len(tasks))
				for _, task := range tasks {
					rows = append(rows, formatTaskLine(task))
				}
				return writeTable("ID\tSTATUS\tTITLE", rows)
			})
		},
	}
	cmd.Flags().StringVarP(&projectID, "project", "p", "", "project id")
	cmd.Flags().StringVarP(&statuses, "status", "s", "", "comma separated statuses")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of tasks")
	return cmd
}

func newTaskStatusCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change a task's status, subject to blocking relationships",
		Args:  requireExactlyArgs(2, "task id and status are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := args[1]
			return withClient(cfg, func(client *api.Client) error {
				task, err := client.UpdateTask(cmd.Context(), args[0], api.TaskUpdateRequest{Status: &status})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task)
				}
				return writePlain("%s -> %s\n", task.ID, task.Status)
			})
		},
	}
}

func newTaskEditCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var title, description string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task's title or description",
		Args:  requireExactlyArgs(1, "task id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.TaskUpdateRequest{}
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			if cmd.Flags().Changed("description") {
				req.Description = &description
			}
			if req.Title == nil && req.Description == nil {
				return errors.New("no fields to update")
			}
			return withClient(cfg, func(client *api.Client) error {
				task, err := client.UpdateTask(cmd.Context(), args[0], req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(task)
				}
				return writeTaskDetail(task)
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	return cmd
}

func newTaskRmCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task and every relationship touching it",
		Args:  requireExactlyArgs(1, "task id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.DeleteTask(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writePlain("deleted %s (%d relationships removed)\n", resp.ID, resp.RelationshipsDeleted)
			})
		},
	}
}

func newTaskBlockersCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "blockers <id>",
		Short: "List the relationships currently blocking a task",
		Args:  requireExactlyArgs(1, "task id is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.TaskBlockers(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				if !resp.Blocked {
					return writePlain("%s is not blocked\n", resp.TaskID)
				}
				rows := make([]string, 0, len(resp.Blockers))
				for _, edge := range resp.Blockers {
					rows = append(rows, fmt.Sprintf("%s\t%s\t%s\t%s",
						edge.SourceTask.ID, edge.SourceTask.Status, edge.RelationshipType.TypeName, edge.SourceTask.Title))
				}
				return writeTable("BLOCKER\tSTATUS\tTYPE\tTITLE", rows)
			})
		},
	}
}
