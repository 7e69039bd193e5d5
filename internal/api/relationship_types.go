package api

import "encoding/json"

// RelationshipCreateRequest defines the payload for adding an edge leaving a task.
type RelationshipCreateRequest struct {
	TargetTaskID       string          `json:"target_task_id"`
	RelationshipTypeID string          `json:"relationship_type_id"`
	Data               json.RawMessage `json:"data,omitempty"`
	Note               string          `json:"note,omitempty"`
}

// RelationshipUpdateRequest defines the payload for a partial edge update.
// Data and Note can be replaced but not cleared.
type RelationshipUpdateRequest struct {
	TargetTaskID       *string         `json:"target_task_id,omitempty"`
	RelationshipTypeID *string         `json:"relationship_type_id,omitempty"`
	Data               json.RawMessage `json:"data,omitempty"`
	Note               *string         `json:"note,omitempty"`
}

// RelationshipTypeCreateRequest defines the payload for a custom relationship type.
type RelationshipTypeCreateRequest struct {
	TypeName                 string   `json:"type_name" yaml:"type_name"`
	DisplayName              string   `json:"display_name" yaml:"display_name"`
	Description              string   `json:"description,omitempty" yaml:"description,omitempty"`
	IsDirectional            bool     `json:"is_directional" yaml:"is_directional"`
	ForwardLabel             string   `json:"forward_label,omitempty" yaml:"forward_label,omitempty"`
	ReverseLabel             string   `json:"reverse_label,omitempty" yaml:"reverse_label,omitempty"`
	EnforcesBlocking         bool     `json:"enforces_blocking" yaml:"enforces_blocking"`
	BlockingDisabledStatuses []string `json:"blocking_disabled_statuses,omitempty" yaml:"blocking_disabled_statuses,omitempty"`
	BlockingSourceStatuses   []string `json:"blocking_source_statuses,omitempty" yaml:"blocking_source_statuses,omitempty"`
}

// RelationshipTypeUpdateRequest defines the payload for a partial type update.
type RelationshipTypeUpdateRequest struct {
	TypeName                 *string   `json:"type_name,omitempty"`
	DisplayName              *string   `json:"display_name,omitempty"`
	Description              *string   `json:"description,omitempty"`
	IsDirectional            *bool     `json:"is_directional,omitempty"`
	ForwardLabel             *string   `json:"forward_label,omitempty"`
	ReverseLabel             *string   `json:"reverse_label,omitempty"`
	EnforcesBlocking         *bool     `json:"enforces_blocking,omitempty"`
	BlockingDisabledStatuses *[]string `json:"blocking_disabled_statuses,omitempty"`
	BlockingSourceStatuses   *[]string `json:"blocking_source_statuses,omitempty"`
}
