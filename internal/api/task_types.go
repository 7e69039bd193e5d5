package api

import "tasklink/internal/models"

// ProjectCreateRequest defines the payload for creating a project.
type ProjectCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// TaskCreateRequest defines the payload for creating a task. When
// TemplateID names a template, its ticket title and description fill any
// field left empty.
type TaskCreateRequest struct {
	ID          string  `json:"id,omitempty"`
	ProjectID   string  `json:"project_id"`
	Title       string  `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	TemplateID  string  `json:"template_id,omitempty"`
}

// TaskUpdateRequest defines the payload for updating a task.
type TaskUpdateRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// TaskDeleteResponse reports a task delete and the edges removed with it.
type TaskDeleteResponse struct {
	ID                   string `json:"id"`
	RelationshipsDeleted int64  `json:"relationships_deleted"`
}

// BlockersResponse lists the edges currently blocking a task.
type BlockersResponse struct {
	TaskID   string                `json:"task_id"`
	Blocked  bool                  `json:"blocked"`
	Blockers []models.BlockingEdge `json:"blockers"`
}
