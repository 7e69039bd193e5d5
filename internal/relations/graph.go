package relations

import (
	"context"
	"sort"
	"strings"
	"time"

	"tasklink/internal/models"
	"tasklink/internal/store"
)

// Graph manages relationship instances between tasks.
type Graph struct {
	repo store.Repository
	now  func() time.Time
}

// NewGraph constructs a Graph.
func NewGraph(repo store.Repository) *Graph {
	return &Graph{repo: repo, now: utcNow}
}

// Create adds an edge leaving sourceTaskID. Both tasks and the type must exist.
func (g *Graph) Create(ctx context.Context, sourceTaskID string, spec models.RelationshipSpec) (*models.Relationship, error) {
	sourceTaskID = strings.TrimSpace(sourceTaskID)
	targetTaskID := strings.TrimSpace(spec.TargetTaskID)
	typeID := strings.TrimSpace(spec.RelationshipTypeID)
	if targetTaskID == "" {
		return nil, models.Validationf("target_task_id is required")
	}
	if typeID == "" {
		return nil, models.Validationf("relationship_type_id is required")
	}
	if sourceTaskID == targetTaskID {
		return nil, selfLoopError()
	}
	data, err := models.NormalizeRelationshipData(spec.Data)
	if err != nil {
		return nil, err
	}

	now := g.now()
	rel := &models.Relationship{
		ID:                 store.NewUUID(),
		SourceTaskID:       sourceTaskID,
		TargetTaskID:       targetTaskID,
		RelationshipTypeID: typeID,
		Data:               data,
		Note:               strings.TrimSpace(spec.Note),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = g.repo.RunInTx(ctx, func(tx store.Repository) error {
		if err := requireTask(ctx, tx, sourceTaskID); err != nil {
			return err
		}
		if err := requireTask(ctx, tx, targetTaskID); err != nil {
			return err
		}
		if _, err := loadType(ctx, tx, typeID); err != nil {
			return err
		}
		return tx.CreateRelationship(ctx, rel)
	})
	if err != nil {
		return nil, err
	}
	return rel, nil
}

// Update merges patch over the stored edge. The self-loop rule is checked
// against the current source and the prospective target; a changed target
// or type is re-verified.
func (g *Graph) Update(ctx context.Context, id string, patch models.RelationshipPatch) (*models.Relationship, error) {
	var data []byte
	if patch.Data != nil {
		normalized, err := models.NormalizeRelationshipData(patch.Data)
		if err != nil {
			return nil, err
		}
		data = normalized
	}

	var out *models.Relationship
	err := g.repo.RunInTx(ctx, func(tx store.Repository) error {
		existing, err := loadRelationship(ctx, tx, id)
		if err != nil {
			return err
		}

		merged := *existing
		if patch.TargetTaskID != nil {
			merged.TargetTaskID = strings.TrimSpace(*patch.TargetTaskID)
		}
		if patch.RelationshipTypeID != nil {
			merged.RelationshipTypeID = strings.TrimSpace(*patch.RelationshipTypeID)
		}
		if data != nil {
			merged.Data = data
		}
		if patch.Note != nil {
			merged.Note = strings.TrimSpace(*patch.Note)
		}

		if merged.SourceTaskID == merged.TargetTaskID {
			return selfLoopError()
		}
		if merged.TargetTaskID != existing.TargetTaskID {
			if err := requireTask(ctx, tx, merged.TargetTaskID); err != nil {
				return err
			}
		}
		if merged.RelationshipTypeID != existing.RelationshipTypeID {
			if _, err := loadType(ctx, tx, merged.RelationshipTypeID); err != nil {
				return err
			}
		}

		merged.UpdatedAt = g.now()
		if err := tx.UpdateRelationship(ctx, &merged); err != nil {
			return err
		}
		out = &merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one edge and returns the number of rows removed.
func (g *Graph) Delete(ctx context.Context, id string) (int64, error) {
	return g.repo.DeleteRelationship(ctx, strings.TrimSpace(id))
}

// DeleteAllForTask removes every edge where the task is source or target.
func (g *Graph) DeleteAllForTask(ctx context.Context, taskID string) (int64, error) {
	return g.repo.DeleteRelationshipsForTask(ctx, strings.TrimSpace(taskID))
}

// Get returns an edge by id.
func (g *Graph) Get(ctx context.Context, id string) (*models.Relationship, error) {
	return loadRelationship(ctx, g.repo, id)
}

// FindBySource lists edges leaving the task, newest first.
func (g *Graph) FindBySource(ctx context.Context, taskID string) ([]models.Relationship, error) {
	return g.repo.ListRelationships(ctx, store.RelationshipFilter{SourceTaskID: taskID})
}

// FindByTarget lists edges entering the task, newest first.
func (g *Graph) FindByTarget(ctx context.Context, taskID string) ([]models.Relationship, error) {
	return g.repo.ListRelationships(ctx, store.RelationshipFilter{TargetTaskID: taskID})
}

// FindByType lists edges of one type, newest first.
func (g *Graph) FindByType(ctx context.Context, typeID string) ([]models.Relationship, error) {
	return g.repo.ListRelationships(ctx, store.RelationshipFilter{TypeID: typeID})
}

// FindWithDetails returns the edge joined with both tasks and its type.
func (g *Graph) FindWithDetails(ctx context.Context, id string) (*models.RelationshipWithDetails, error) {
	details, err := g.repo.GetRelationshipDetails(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if details == nil {
		return nil, models.NotFoundf("relationship %s not found", id)
	}
	return details, nil
}

// GroupedByTask partitions the task's edges by type into forward (task is
// source) and reverse (task is target) buckets. Groups are ordered by display
// name; buckets keep newest-first order.
func (g *Graph) GroupedByTask(ctx context.Context, taskID string) ([]models.RelationshipGroup, error) {
	taskID = strings.TrimSpace(taskID)
	if err := requireTask(ctx, g.repo, taskID); err != nil {
		return nil, err
	}

	edges, err := g.repo.ListRelationshipDetailsForTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	return groupByType(taskID, edges), nil
}

// FindBlockingEdges lists incoming edges whose source task currently blocks
// the task under its type's rules.
func (g *Graph) FindBlockingEdges(ctx context.Context, taskID string) ([]models.BlockingEdge, error) {
	return g.repo.ListIncomingBlockingEdges(ctx, strings.TrimSpace(taskID))
}

func groupByType(taskID string, edges []models.RelationshipWithDetails) []models.RelationshipGroup {
	byType := make(map[string]*models.RelationshipGroup)
	for _, edge := range edges {
		typeID := edge.RelationshipType.ID
		group, ok := byType[typeID]
		if !ok {
			group = &models.RelationshipGroup{
				RelationshipType: edge.RelationshipType,
				Forward:          []models.RelationshipWithDetails{},
				Reverse:          []models.RelationshipWithDetails{},
			}
			byType[typeID] = group
		}
		if edge.Relationship.SourceTaskID == taskID {
			group.Forward = append(group.Forward, edge)
		} else {
			group.Reverse = append(group.Reverse, edge)
		}
	}

	out := make([]models.RelationshipGroup, 0, len(byType))
	for _, group := range byType {
		out = append(out, *group)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].RelationshipType, out[j].RelationshipType
		if a.DisplayName != b.DisplayName {
			return a.DisplayName < b.DisplayName
		}
		return a.ID < b.ID
	})
	return out
}

func loadRelationship(ctx context.Context, repo store.RelationshipStore, id string) (*models.Relationship, error) {
	rel, err := repo.GetRelationship(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if rel == nil {
		return nil, models.NotFoundf("relationship %s not found", id)
	}
	return rel, nil
}

func requireTask(ctx context.Context, repo store.TaskStore, id string) error {
	if id == "" {
		return models.Validationf("task id is required")
	}
	exists, err := repo.TaskExists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return models.NotFoundf("task %s not found", id)
	}
	return nil
}

func selfLoopError() error {
	return models.Validationf("a task cannot have a relationship with itself").WithCode("self_relationship")
}
