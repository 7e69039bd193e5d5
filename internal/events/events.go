// Package events publishes lifecycle events for tasks, relationships,
// relationship types and templates.
package events

import (
	"context"
	"strings"
	"time"

	"tasklink/internal/models"
)

// DefaultSubjectPrefix is prepended to every subject when none is configured.
const DefaultSubjectPrefix = "tasklink"

// Entities.
const (
	EntityTask             = "task"
	EntityRelationship     = "relationship"
	EntityRelationshipType = "relationship_type"
	EntityTemplate         = "template"
	EntityTemplateGroup    = "template_group"
)

// Actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Subject returns "<prefix>.<entity>.<action>".
func Subject(prefix, entity, action string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + "." + entity + "." + action
}

// Wildcard returns the subject matching every event under prefix.
func Wildcard(prefix string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return prefix + ".>"
}

// Event payloads

type TaskChanged struct {
	Task       *models.Task `json:"task,omitempty"`
	TaskID     string       `json:"task_id"`
	PrevStatus string       `json:"prev_status,omitempty"`
	At         time.Time    `json:"at"`
}

type RelationshipChanged struct {
	Relationship *models.Relationship `json:"relationship,omitempty"`
	ID           string               `json:"id"`
	At           time.Time            `json:"at"`
}

type RelationshipTypeChanged struct {
	RelationshipType *models.RelationshipType `json:"relationship_type,omitempty"`
	ID               string                   `json:"id"`
	At               time.Time                `json:"at"`
}

type TemplateChanged struct {
	Template *models.TaskTemplate  `json:"template,omitempty"`
	Group    *models.TemplateGroup `json:"group,omitempty"`
	ID       string                `json:"id"`
	At       time.Time             `json:"at"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber receives raw event payloads.
type Subscriber interface {
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
