package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"tasklink/internal/api"
	"tasklink/internal/format"
	"tasklink/internal/models"
)

var outputFormatter format.Formatter = format.JSONFormatter{}

func writeJSON(payload any) error {
	return outputFormatter.Write(os.Stdout, payload)
}

func writePlain(format string, args ...any) error {
	_, err := fmt.Fprintf(os.Stdout, format, args...)
	return err
}

func writeTable(header string, rows []string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if _, err := fmt.Fprintln(tw, header); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(tw, row); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func formatTaskLine(task models.Task) string {
	return fmt.Sprintf("%s\t%s\t%s", task.ID, task.Status, task.Title)
}

func writeTaskDetail(task models.Task) error {
	lines := []string{
		fmt.Sprintf("id: %s", task.ID),
		fmt.Sprintf("project_id: %s", task.ProjectID),
		fmt.Sprintf("title: %s", task.Title),
		fmt.Sprintf("status: %s", task.Status),
		fmt.Sprintf("created_at: %s", formatTime(task.CreatedAt)),
		fmt.Sprintf("updated_at: %s", formatTime(task.UpdatedAt)),
	}
	if task.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", task.Description))
	}
	return writePlain("%s\n", strings.Join(lines, "\n"))
}

func formatBlockerLine(b models.Blocker) string {
	return fmt.Sprintf("  blocked by %s [%s] via %s", b.SourceTaskID, b.SourceStatus, b.RelationshipType)
}

func writeRelationshipGroups(taskID string, groups []models.RelationshipGroup) error {
	if len(groups) == 0 {
		return writePlain("%s has no relationships\n", taskID)
	}
	for _, group := range groups {
		typ := group.RelationshipType
		if err := writePlain("%s (%s)\n", typ.DisplayName, typ.TypeName); err != nil {
			return err
		}
		forward, reverse := typ.ForwardLabel, typ.ReverseLabel
		if !typ.IsDirectional {
			forward, reverse = typ.DisplayName, typ.DisplayName
		}
		for _, edge := range group.Forward {
			if err := writePlain("  %s %s %s [%s]  %s\n", taskID, strings.ToLower(forward), edge.TargetTask.ID, edge.TargetTask.Status, edge.Relationship.ID); err != nil {
				return err
			}
		}
		for _, edge := range group.Reverse {
			if err := writePlain("  %s %s %s [%s]  %s\n", taskID, strings.ToLower(reverse), edge.SourceTask.ID, edge.SourceTask.Status, edge.Relationship.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeRelationshipTypes(types []models.RelationshipType) error {
	rows := make([]string, 0, len(types))
	for _, typ := range types {
		flags := []string{}
		if typ.IsSystem {
			flags = append(flags, "system")
		}
		if typ.IsDirectional {
			flags = append(flags, "directional")
		}
		if typ.EnforcesBlocking {
			flags = append(flags, fmt.Sprintf("blocks %s while source %s", typ.BlockingDisabledStatuses, typ.BlockingSourceStatuses))
		}
		rows = append(rows, fmt.Sprintf("%s\t%s\t%s", typ.TypeName, typ.DisplayName, strings.Join(flags, ", ")))
	}
	return writeTable("NAME\tDISPLAY\tFLAGS", rows)
}

func writeGroupTree(nodes []models.TemplateGroupNode, depth int) error {
	for _, node := range nodes {
		if err := writePlain("%s%s  %s\n", strings.Repeat("  ", depth), node.Name, node.ID); err != nil {
			return err
		}
		if err := writeGroupTree(node.Children, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func writeDeleted(kind string, resp api.DeleteResponse) error {
	if resp.Deleted == 0 {
		return writePlain("%s %s not deleted\n", kind, resp.ID)
	}
	return writePlain("deleted %s %s\n", kind, resp.ID)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
