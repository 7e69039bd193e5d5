package relations

import (
	"context"
	"strings"

	"tasklink/internal/models"
)

// CanTransition decides whether one relationship type allows the target task
// to enter proposed, given the statuses of that type's linked source tasks.
// A nil return allows the transition. An enforcing type without both status
// sets is an error, never an allow.
func CanTransition(typ models.RelationshipType, proposed models.TaskStatus, sourceStatuses []models.TaskStatus) error {
	if !typ.EnforcesBlocking {
		return nil
	}
	if len(typ.BlockingDisabledStatuses) == 0 || len(typ.BlockingSourceStatuses) == 0 {
		return models.Deserializationf("relationship type %s enforces blocking without status sets", typ.TypeName)
	}
	if !typ.BlockingDisabledStatuses.Contains(proposed) {
		return nil
	}

	offending := typ.BlockingSourceStatuses.Intersect(sourceStatuses)
	if len(offending) == 0 {
		return nil
	}
	return models.Forbiddenf(
		"Cannot set status to '%s' because task is blocked by tasks in statuses: %s. Blocked statuses: %s",
		proposed, offending, typ.BlockingDisabledStatuses,
	)
}

// BlockingEdgeFinder is the query the evaluator needs from storage.
type BlockingEdgeFinder interface {
	ListIncomingBlockingEdges(ctx context.Context, taskID string) ([]models.BlockingEdge, error)
}

// Evaluator checks proposed status transitions against blocking relationships.
type Evaluator struct {
	edges BlockingEdgeFinder
}

// NewEvaluator constructs an Evaluator. Pass a transaction-bound store to
// check and write in one snapshot.
func NewEvaluator(edges BlockingEdgeFinder) *Evaluator {
	return &Evaluator{edges: edges}
}

// CheckTransition returns a *models.TransitionBlockedError when any blocking
// relationship vetoes moving taskID to proposed.
func (e *Evaluator) CheckTransition(ctx context.Context, taskID string, proposed models.TaskStatus) error {
	edges, err := e.edges.ListIncomingBlockingEdges(ctx, taskID)
	if err != nil {
		return err
	}
	if len(edges) == 0 {
		return nil
	}

	type typeEdges struct {
		typ      models.RelationshipType
		statuses []models.TaskStatus
		edges    []models.BlockingEdge
	}
	var order []string
	byType := make(map[string]*typeEdges)
	for _, edge := range edges {
		entry, ok := byType[edge.RelationshipType.ID]
		if !ok {
			entry = &typeEdges{typ: edge.RelationshipType}
			byType[edge.RelationshipType.ID] = entry
			order = append(order, edge.RelationshipType.ID)
		}
		entry.statuses = append(entry.statuses, edge.SourceTask.Status)
		entry.edges = append(entry.edges, edge)
	}

	var messages []string
	var blockers []models.Blocker
	for _, typeID := range order {
		entry := byType[typeID]
		err := CanTransition(entry.typ, proposed, entry.statuses)
		if err == nil {
			continue
		}
		if !models.IsKind(err, models.KindForbidden) {
			return err
		}
		messages = append(messages, err.Error())
		for _, edge := range entry.edges {
			if !entry.typ.BlockingSourceStatuses.Contains(edge.SourceTask.Status) {
				continue
			}
			blockers = append(blockers, models.Blocker{
				RelationshipID:   edge.Relationship.ID,
				RelationshipType: entry.typ.TypeName,
				SourceTaskID:     edge.SourceTask.ID,
				SourceTaskTitle:  edge.SourceTask.Title,
				SourceStatus:     edge.SourceTask.Status,
			})
		}
	}
	if len(blockers) == 0 {
		return nil
	}
	return models.NewTransitionBlockedError(taskID, proposed, strings.Join(messages, "; "), blockers)
}
