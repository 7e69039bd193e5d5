package relations

import (
	"context"
	"errors"
	"testing"

	"tasklink/internal/models"
	"tasklink/internal/store"
)

func gateType() models.RelationshipType {
	return models.RelationshipType{
		ID:                       "gate",
		TypeName:                 "gates",
		EnforcesBlocking:         true,
		BlockingDisabledStatuses: models.StatusSet{models.StatusDone},
		BlockingSourceStatuses:   models.StatusSet{models.StatusTodo, models.StatusInProgress},
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name     string
		typ      models.RelationshipType
		proposed models.TaskStatus
		sources  []models.TaskStatus
		wantKind models.ErrorKind
	}{
		{name: "source todo blocks done", typ: gateType(), proposed: models.StatusDone, sources: []models.TaskStatus{models.StatusTodo}, wantKind: models.KindForbidden},
		{name: "source done allows done", typ: gateType(), proposed: models.StatusDone, sources: []models.TaskStatus{models.StatusDone}},
		{name: "status outside disabled set", typ: gateType(), proposed: models.StatusInReview, sources: []models.TaskStatus{models.StatusTodo}},
		{name: "one offending source is enough", typ: gateType(), proposed: models.StatusDone, sources: []models.TaskStatus{models.StatusDone, models.StatusInProgress}, wantKind: models.KindForbidden},
		{name: "no sources", typ: gateType(), proposed: models.StatusDone},
		{
			name:     "non-enforcing type never vetoes",
			typ:      models.RelationshipType{TypeName: "loose", BlockingDisabledStatuses: models.StatusSet{models.StatusDone}, BlockingSourceStatuses: models.StatusSet{models.StatusTodo}},
			proposed: models.StatusDone,
			sources:  []models.TaskStatus{models.StatusTodo},
		},
		{
			name:     "missing disabled set fails closed",
			typ:      models.RelationshipType{TypeName: "broken", EnforcesBlocking: true, BlockingSourceStatuses: models.StatusSet{models.StatusTodo}},
			proposed: models.StatusTodo,
			wantKind: models.KindDeserialization,
		},
		{
			name:     "missing source set fails closed",
			typ:      models.RelationshipType{TypeName: "broken", EnforcesBlocking: true, BlockingDisabledStatuses: models.StatusSet{models.StatusDone}},
			proposed: models.StatusDone,
			sources:  []models.TaskStatus{models.StatusDone},
			wantKind: models.KindDeserialization,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CanTransition(tc.typ, tc.proposed, tc.sources)
			if tc.wantKind == "" {
				if err != nil {
					t.Fatalf("expected allow, got %v", err)
				}
				return
			}
			if !models.IsKind(err, tc.wantKind) {
				t.Fatalf("expected %s, got %v", tc.wantKind, err)
			}
		})
	}
}

func TestCanTransitionMessage(t *testing.T) {
	err := CanTransition(gateType(), models.StatusDone, []models.TaskStatus{models.StatusInProgress, models.StatusDone})
	if err == nil {
		t.Fatal("expected veto")
	}
	want := "Cannot set status to 'done' because task is blocked by tasks in statuses: inprogress. Blocked statuses: done"
	if err.Error() != want {
		t.Fatalf("unexpected message: %s", err)
	}
}

func TestCheckTransitionSeededBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.task(t, "tl-aaaa", models.StatusTodo)
	f.task(t, "tl-bbbb", models.StatusTodo)
	rel := f.link(t, "tl-bbbb", "tl-aaaa", store.SystemTypeBlocksID)

	evaluator := NewEvaluator(f.repo)

	err := evaluator.CheckTransition(ctx, "tl-aaaa", models.StatusInProgress)
	var blocked *models.TransitionBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected transition blocked error, got %v", err)
	}
	if !models.IsKind(err, models.KindForbidden) {
		t.Fatalf("blocked transition must be forbidden, got %v", err)
	}
	if len(blocked.Blockers) != 1 || blocked.Blockers[0].RelationshipID != rel.ID || blocked.Blockers[0].SourceTaskID != "tl-bbbb" {
		t.Fatalf("unexpected blockers: %+v", blocked.Blockers)
	}

	// todo is not a disabled status for blocks.
	if err := evaluator.CheckTransition(ctx, "tl-aaaa", models.StatusTodo); err != nil {
		t.Fatalf("expected allow, got %v", err)
	}

	// The blocker itself is never constrained by its outgoing edge.
	if err := evaluator.CheckTransition(ctx, "tl-bbbb", models.StatusDone); err != nil {
		t.Fatalf("source task should be free, got %v", err)
	}

	f.setStatus(t, "tl-bbbb", models.StatusDone)
	if err := evaluator.CheckTransition(ctx, "tl-aaaa", models.StatusDone); err != nil {
		t.Fatalf("expected allow once blocker is done, got %v", err)
	}
}

func TestCheckTransitionCustomType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.task(t, "tl-aaaa", models.StatusTodo)
	f.task(t, "tl-bbbb", models.StatusTodo)

	spec := gateType()
	spec.ID = ""
	spec.DisplayName = "Gates"
	typ, err := f.registry.Create(ctx, spec)
	if err != nil {
		t.Fatalf("create type: %v", err)
	}
	f.link(t, "tl-bbbb", "tl-aaaa", typ.ID)
	evaluator := NewEvaluator(f.repo)

	if err := evaluator.CheckTransition(ctx, "tl-aaaa", models.StatusInProgress); err != nil {
		t.Fatalf("inprogress is not disabled, got %v", err)
	}
	if err := evaluator.CheckTransition(ctx, "tl-aaaa", models.StatusDone); !models.IsKind(err, models.KindForbidden) {
		t.Fatalf("expected veto while source is todo, got %v", err)
	}

	f.setStatus(t, "tl-bbbb", models.StatusInReview)
	if err := evaluator.CheckTransition(ctx, "tl-aaaa", models.StatusDone); err != nil {
		t.Fatalf("inreview is not a source status, got %v", err)
	}
}

func TestCheckTransitionIgnoresNonBlockingTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.task(t, "tl-aaaa", models.StatusTodo)
	f.task(t, "tl-bbbb", models.StatusTodo)
	f.link(t, "tl-bbbb", "tl-aaaa", store.SystemTypeRelatesToID)
	f.link(t, "tl-bbbb", "tl-aaaa", store.SystemTypeDuplicatesID)
	f.link(t, "tl-bbbb", "tl-aaaa", store.SystemTypeParentOfID)

	for _, status := range []models.TaskStatus{models.StatusInProgress, models.StatusInReview, models.StatusDone, models.StatusCancelled} {
		if err := NewEvaluator(f.repo).CheckTransition(ctx, "tl-aaaa", status); err != nil {
			t.Fatalf("non-blocking edges vetoed %s: %v", status, err)
		}
	}
}

func TestCheckTransitionCollectsEveryBlocker(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.task(t, "tl-aaaa", models.StatusTodo)
	f.task(t, "tl-bbbb", models.StatusTodo)
	f.task(t, "tl-cccc", models.StatusInProgress)
	f.task(t, "tl-dddd", models.StatusDone)
	f.link(t, "tl-bbbb", "tl-aaaa", store.SystemTypeBlocksID)
	f.link(t, "tl-cccc", "tl-aaaa", store.SystemTypeBlocksID)
	f.link(t, "tl-dddd", "tl-aaaa", store.SystemTypeBlocksID)

	err := NewEvaluator(f.repo).CheckTransition(ctx, "tl-aaaa", models.StatusDone)
	var blocked *models.TransitionBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("expected transition blocked error, got %v", err)
	}
	if len(blocked.Blockers) != 2 {
		t.Fatalf("expected 2 blockers, got %+v", blocked.Blockers)
	}
	for _, b := range blocked.Blockers {
		if b.SourceTaskID == "tl-dddd" {
			t.Fatalf("done source must not block: %+v", b)
		}
	}
}

type edgeStub struct {
	edges []models.BlockingEdge
	err   error
}

func (s edgeStub) ListIncomingBlockingEdges(context.Context, string) ([]models.BlockingEdge, error) {
	return s.edges, s.err
}

func TestCheckTransitionFailsClosed(t *testing.T) {
	ctx := context.Background()

	readErr := models.Deserializationf("relationship type gates: malformed status set")
	err := NewEvaluator(edgeStub{err: readErr}).CheckTransition(ctx, "tl-aaaa", models.StatusDone)
	if !models.IsKind(err, models.KindDeserialization) {
		t.Fatalf("expected deserialization error, got %v", err)
	}

	broken := gateType()
	broken.BlockingSourceStatuses = nil
	edges := []models.BlockingEdge{{
		Relationship:     models.Relationship{ID: "r1"},
		SourceTask:       models.Task{ID: "tl-bbbb", Status: models.StatusDone},
		RelationshipType: broken,
	}}
	err = NewEvaluator(edgeStub{edges: edges}).CheckTransition(ctx, "tl-aaaa", models.StatusTodo)
	if !models.IsKind(err, models.KindDeserialization) {
		t.Fatalf("expected deserialization error for type without sets, got %v", err)
	}

	storageErr := errors.New("disk I/O error")
	err = NewEvaluator(edgeStub{err: storageErr}).CheckTransition(ctx, "tl-aaaa", models.StatusDone)
	if !errors.Is(err, storageErr) {
		t.Fatalf("expected storage error to propagate, got %v", err)
	}
}
