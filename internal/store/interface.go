package store

import (
	"context"

	"tasklink/internal/models"
)

// ProjectStore abstracts project storage.
type ProjectStore interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]models.Project, error)
	DeleteProject(ctx context.Context, id string) (int64, error)
}

// TaskStore abstracts task storage.
type TaskStore interface {
	TaskExists(ctx context.Context, id string) (bool, error)
	CreateTask(ctx context.Context, task *models.Task) error
	GetTask(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]models.Task, error)
	UpdateTask(ctx context.Context, id string, update TaskUpdate) error
	DeleteTask(ctx context.Context, id string) (int64, error)
}

// RelationshipTypeStore abstracts the relationship type catalog.
type RelationshipTypeStore interface {
	CreateRelationshipType(ctx context.Context, typ *models.RelationshipType) error
	GetRelationshipType(ctx context.Context, id string) (*models.RelationshipType, error)
	GetRelationshipTypeByName(ctx context.Context, typeName string) (*models.RelationshipType, error)
	ListRelationshipTypes(ctx context.Context, filter RelationshipTypeFilter) ([]models.RelationshipType, error)
	UpdateRelationshipType(ctx context.Context, typ *models.RelationshipType) error
	DeleteRelationshipType(ctx context.Context, id string) (int64, error)
	CountRelationshipsByType(ctx context.Context, typeID string) (int, error)
}

// RelationshipStore abstracts edge storage.
type RelationshipStore interface {
	CreateRelationship(ctx context.Context, rel *models.Relationship) error
	GetRelationship(ctx context.Context, id string) (*models.Relationship, error)
	UpdateRelationship(ctx context.Context, rel *models.Relationship) error
	DeleteRelationship(ctx context.Context, id string) (int64, error)
	DeleteRelationshipsForTask(ctx context.Context, taskID string) (int64, error)
	ListRelationships(ctx context.Context, filter RelationshipFilter) ([]models.Relationship, error)
	GetRelationshipDetails(ctx context.Context, id string) (*models.RelationshipWithDetails, error)
	ListRelationshipDetailsForTask(ctx context.Context, taskID string) ([]models.RelationshipWithDetails, error)
	ListIncomingBlockingEdges(ctx context.Context, taskID string) ([]models.BlockingEdge, error)
}

// TemplateStore abstracts templates and the template group tree.
type TemplateStore interface {
	CreateTemplateGroup(ctx context.Context, group *models.TemplateGroup) error
	GetTemplateGroup(ctx context.Context, id string) (*models.TemplateGroup, error)
	ListTemplateGroups(ctx context.Context, filter TemplateGroupFilter) ([]models.TemplateGroup, error)
	UpdateTemplateGroup(ctx context.Context, group *models.TemplateGroup) error
	DeleteTemplateGroup(ctx context.Context, id string) (int64, error)
	CountChildGroups(ctx context.Context, groupID string) (int, error)
	CountTemplatesInGroup(ctx context.Context, groupID string) (int, error)

	CreateTemplate(ctx context.Context, tmpl *models.TaskTemplate) error
	GetTemplate(ctx context.Context, id string) (*models.TaskTemplate, error)
	GetTemplateByName(ctx context.Context, name string) (*models.TaskTemplate, error)
	ListTemplates(ctx context.Context, filter TemplateFilter) ([]models.TaskTemplate, error)
	UpdateTemplate(ctx context.Context, tmpl *models.TaskTemplate) error
	DeleteTemplate(ctx context.Context, id string) (int64, error)
}

// Repository is the full storage surface. RunInTx hands fn a Repository
// bound to one transaction.
type Repository interface {
	ProjectStore
	TaskStore
	RelationshipTypeStore
	RelationshipStore
	TemplateStore
	RunInTx(ctx context.Context, fn func(Repository) error) error
}

// TaskFilter narrows ListTasks.
type TaskFilter struct {
	ProjectID string
	Statuses  []models.TaskStatus
	Limit     int
}

// TaskUpdate carries mutable task fields; nil fields are left unchanged.
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
}

// RelationshipTypeFilter narrows ListRelationshipTypes.
type RelationshipTypeFilter struct {
	Search     string
	SystemOnly bool
}

// RelationshipFilter narrows ListRelationships. Empty fields are ignored.
type RelationshipFilter struct {
	SourceTaskID string
	TargetTaskID string
	TypeID       string
}

// TemplateGroupFilter narrows ListTemplateGroups.
type TemplateGroupFilter struct {
	ParentGroupID string
	RootsOnly     bool
}

// TemplateFilter narrows ListTemplates.
type TemplateFilter struct {
	GroupID string
	Search  string
}

var _ Repository = (*Store)(nil)
