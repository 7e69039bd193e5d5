package models

import (
	"fmt"
	"strings"
)

// TaskStatus defines allowed lifecycle states for tasks.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "todo"
	StatusInProgress TaskStatus = "inprogress"
	StatusInReview   TaskStatus = "inreview"
	StatusDone       TaskStatus = "done"
	StatusCancelled  TaskStatus = "cancelled"
)

const (
	DefaultStatus = StatusTodo

	// TemplateGroupMaxDepth bounds the template group tree.
	TemplateGroupMaxDepth = 3
)

// Names of the relationship types seeded as system types.
const (
	RelationshipBlocks     = "blocks"
	RelationshipRelatesTo  = "relates_to"
	RelationshipDuplicates = "duplicates"
	RelationshipParentOf   = "parent_of"
)

var taskStatusOrder = []TaskStatus{
	StatusTodo,
	StatusInProgress,
	StatusInReview,
	StatusDone,
	StatusCancelled,
}

var validTaskStatuses = map[TaskStatus]struct{}{
	StatusTodo:       {},
	StatusInProgress: {},
	StatusInReview:   {},
	StatusDone:       {},
	StatusCancelled:  {},
}

func IsValidTaskStatus(status TaskStatus) bool {
	_, ok := validTaskStatuses[status]
	return ok
}

func ParseTaskStatus(raw string) (TaskStatus, error) {
	value := TaskStatus(strings.ToLower(strings.TrimSpace(raw)))
	if value == "" {
		return "", fmt.Errorf("status is required")
	}
	if !IsValidTaskStatus(value) {
		return "", fmt.Errorf("invalid status: %s", value)
	}
	return value, nil
}

// TaskStatusStrings returns every known status in lifecycle order.
func TaskStatusStrings() []string {
	return statusStrings(taskStatusOrder)
}

func statusStrings(values []TaskStatus) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		out = append(out, string(value))
	}
	return out
}
