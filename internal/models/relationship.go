package models

import (
	"encoding/json"
	"strings"
	"time"
)

// RelationshipType is the schema of an edge kind between two tasks.
type RelationshipType struct {
	ID                       string    `json:"id"`
	TypeName                 string    `json:"type_name"`
	DisplayName              string    `json:"display_name"`
	Description              string    `json:"description,omitempty"`
	IsSystem                 bool      `json:"is_system"`
	IsDirectional            bool      `json:"is_directional"`
	ForwardLabel             string    `json:"forward_label,omitempty"`
	ReverseLabel             string    `json:"reverse_label,omitempty"`
	EnforcesBlocking         bool      `json:"enforces_blocking"`
	BlockingDisabledStatuses StatusSet `json:"blocking_disabled_statuses,omitempty"`
	BlockingSourceStatuses   StatusSet `json:"blocking_source_statuses,omitempty"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// Validate checks the label and blocking-set rules against the full value.
// Labels on non-directional types are cleared.
func (t *RelationshipType) Validate() error {
	t.TypeName = strings.TrimSpace(t.TypeName)
	t.DisplayName = strings.TrimSpace(t.DisplayName)
	if t.TypeName == "" {
		return Validationf("type_name is required")
	}
	if t.DisplayName == "" {
		return Validationf("display_name is required")
	}

	if t.IsDirectional {
		if strings.TrimSpace(t.ForwardLabel) == "" || strings.TrimSpace(t.ReverseLabel) == "" {
			return Validationf("directional relationship types require both forward_label and reverse_label")
		}
	} else {
		t.ForwardLabel = ""
		t.ReverseLabel = ""
	}

	if t.EnforcesBlocking {
		if len(t.BlockingDisabledStatuses) == 0 || len(t.BlockingSourceStatuses) == 0 {
			return Validationf("blocking relationship types require both blocking_disabled_statuses and blocking_source_statuses")
		}
	}
	return nil
}

// RelationshipTypePatch carries the fields of a partial type update.
// Nil fields keep their stored value.
type RelationshipTypePatch struct {
	TypeName                 *string
	DisplayName              *string
	Description              *string
	IsDirectional            *bool
	ForwardLabel             *string
	ReverseLabel             *string
	EnforcesBlocking         *bool
	BlockingDisabledStatuses *StatusSet
	BlockingSourceStatuses   *StatusSet
}

// Apply merges the patch over t in place.
func (p RelationshipTypePatch) Apply(t *RelationshipType) {
	if p.TypeName != nil {
		t.TypeName = *p.TypeName
	}
	if p.DisplayName != nil {
		t.DisplayName = *p.DisplayName
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.IsDirectional != nil {
		t.IsDirectional = *p.IsDirectional
	}
	if p.ForwardLabel != nil {
		t.ForwardLabel = *p.ForwardLabel
	}
	if p.ReverseLabel != nil {
		t.ReverseLabel = *p.ReverseLabel
	}
	if p.EnforcesBlocking != nil {
		t.EnforcesBlocking = *p.EnforcesBlocking
	}
	if p.BlockingDisabledStatuses != nil {
		t.BlockingDisabledStatuses = *p.BlockingDisabledStatuses
	}
	if p.BlockingSourceStatuses != nil {
		t.BlockingSourceStatuses = *p.BlockingSourceStatuses
	}
}

// Relationship is a typed edge from a source task to a target task.
type Relationship struct {
	ID                 string          `json:"id"`
	SourceTaskID       string          `json:"source_task_id"`
	TargetTaskID       string          `json:"target_task_id"`
	RelationshipTypeID string          `json:"relationship_type_id"`
	Data               json.RawMessage `json:"data,omitempty"`
	Note               string          `json:"note,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// RelationshipSpec describes a new edge leaving a known source task.
type RelationshipSpec struct {
	TargetTaskID       string
	RelationshipTypeID string
	Data               json.RawMessage
	Note               string
}

// RelationshipPatch carries the fields of a partial edge update.
type RelationshipPatch struct {
	TargetTaskID       *string
	RelationshipTypeID *string
	Data               json.RawMessage
	Note               *string
}

// RelationshipWithDetails is an edge joined with both endpoints and its type.
type RelationshipWithDetails struct {
	Relationship     Relationship     `json:"relationship"`
	SourceTask       Task             `json:"source_task"`
	TargetTask       Task             `json:"target_task"`
	RelationshipType RelationshipType `json:"relationship_type"`
}

// RelationshipGroup holds one task's edges of a single type, split by direction.
type RelationshipGroup struct {
	RelationshipType RelationshipType          `json:"relationship_type"`
	Forward          []RelationshipWithDetails `json:"forward"`
	Reverse          []RelationshipWithDetails `json:"reverse"`
}

// BlockingEdge is an incoming edge of a blocking type whose source task is
// currently in one of the type's blocking source statuses.
type BlockingEdge struct {
	Relationship     Relationship     `json:"relationship"`
	SourceTask       Task             `json:"source_task"`
	RelationshipType RelationshipType `json:"relationship_type"`
}

// NormalizeRelationshipData validates an edge payload. Empty input and JSON
// null both mean "no data"; anything else must be a JSON object.
func NormalizeRelationshipData(raw json.RawMessage) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return nil, Validationf("data must be a JSON object")
	}
	return json.RawMessage(trimmed), nil
}
