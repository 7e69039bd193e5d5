package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"tasklink/internal/api"
	"tasklink/internal/config"
)

func newRelCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rel",
		Short: "Manage relationships between tasks",
	}

	cmd.AddCommand(
		newRelListCmd(cfg, jsonOutput),
		newRelAddCmd(cfg, jsonOutput),
		newRelUpdateCmd(cfg, jsonOutput),
		newRelRmCmd(cfg, jsonOutput),
	)
	return cmd
}

func newRelListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var source, target, typeRef string
	cmd := &cobra.Command{
		Use:   "list [<task-id>]",
		Short: "List a task's relationships grouped by type, or filter edges",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				if len(args) == 1 {
					groups, err := client.TaskRelationships(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					if *jsonOutput {
						return writeJSON(groups)
					}
					return writeRelationshipGroups(args[0], groups)
				}

				query := url.Values{}
				setIfNotEmpty(query, "source_task_id", source)
				setIfNotEmpty(query, "target_task_id", target)
				setIfNotEmpty(query, "type", typeRef)
				if len(query) == 0 {
					return errors.New("pass a task id or one of --source, --target, --type")
				}
				rels, err := client.ListRelationships(cmd.Context(), query)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(rels)
				}
				rows := make([]string, 0, len(rels))
				for _, rel := range rels {
					rows = append(rows, fmt.Sprintf("%s\t%s\t%s\t%s", rel.ID, rel.SourceTaskID, rel.TargetTaskID, rel.Note))
				}
				return writeTable("ID\tSOURCE\tTARGET\tNOTE", rows)
			})
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "edges leaving this task")
	cmd.Flags().StringVar(&target, "target", "", "edges entering this task")
	cmd.Flags().StringVar(&typeRef, "type", "", "edges of this relationship type (id or name)")
	return cmd
}

func newRelAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var typeRef, data, note string
	cmd := &cobra.Command{
		Use:   "add <source-id> <target-id>",
		Short: "Add a relationship from source to target",
		Args:  requireExactlyArgs(2, "source and target task ids are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseRelationshipData(data)
			if err != nil {
				return err
			}
			return withClient(cfg, func(client *api.Client) error {
				rel, err := client.CreateRelationship(cmd.Context(), args[0], api.RelationshipCreateRequest{
					TargetTaskID:       args[1],
					RelationshipTypeID: typeRef,
					Data:               raw,
					Note:               note,
				})
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(rel)
				}
				return writePlain("%s: %s -[%s]-> %s\n", rel.ID, rel.SourceTaskID, typeRef, rel.TargetTaskID)
			})
		},
	}
	cmd.Flags().StringVarP(&typeRef, "type", "t", "blocks", "relationship type id or name")
	cmd.Flags().StringVar(&data, "data", "", "JSON object attached to the relationship")
	cmd.Flags().StringVar(&note, "note", "", "free-form note")
	return cmd
}

func newRelUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var target, typeRef, data, note string
	cmd := &cobra.Command{
		Use:   "update <task-id> <relationship-id>",
		Short: "Update a relationship addressed through one of its tasks",
		Args:  requireExactlyArgs(2, "task id and relationship id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseRelationshipData(data)
			if err != nil {
				return err
			}
			req := api.RelationshipUpdateRequest{
				TargetTaskID:       optionalString(cmd.Flags().Changed("target"), target),
				RelationshipTypeID: optionalString(cmd.Flags().Changed("type"), typeRef),
				Note:               optionalString(cmd.Flags().Changed("note"), note),
				Data:               raw,
			}
			if req.TargetTaskID == nil && req.RelationshipTypeID == nil && req.Note == nil && req.Data == nil {
				return errors.New("no fields to update")
			}
			return withClient(cfg, func(client *api.Client) error {
				rel, err := client.UpdateRelationship(cmd.Context(), args[0], args[1], req)
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(rel)
				}
				return writePlain("%s: %s -> %s\n", rel.ID, rel.SourceTaskID, rel.TargetTaskID)
			})
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "new target task id")
	cmd.Flags().StringVarP(&typeRef, "type", "t", "", "new relationship type id or name")
	cmd.Flags().StringVar(&data, "data", "", "replacement JSON object")
	cmd.Flags().StringVar(&note, "note", "", "replacement note")
	return cmd
}

func newRelRmCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <task-id> <relationship-id>",
		Short: "Delete a relationship addressed through one of its tasks",
		Args:  requireExactlyArgs(2, "task id and relationship id are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cfg, func(client *api.Client) error {
				resp, err := client.DeleteRelationship(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				if *jsonOutput {
					return writeJSON(resp)
				}
				return writeDeleted("relationship", resp)
			})
		},
	}
}

// parseRelationshipData checks that a --data value is a JSON object before
// it is sent.
func parseRelationshipData(value string) (json.RawMessage, error) {
	if value == "" {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(value), &obj); err != nil {
		return nil, fmt.Errorf("--data must be a JSON object: %w", err)
	}
	return json.RawMessage(value), nil
}
