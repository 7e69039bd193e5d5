package relations

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tasklink/internal/models"
	"tasklink/internal/store"
)

func testRepo(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

type fixture struct {
	repo      *store.Store
	registry  *TypeRegistry
	graph     *Graph
	projectID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := testRepo(t)
	now := time.Now().UTC()
	project := &models.Project{ID: store.NewUUID(), Name: "Core", CreatedAt: now, UpdatedAt: now}
	if err := repo.CreateProject(context.Background(), project); err != nil {
		t.Fatalf("create project: %v", err)
	}
	return &fixture{repo: repo, registry: NewTypeRegistry(repo), graph: NewGraph(repo), projectID: project.ID}
}

func (f *fixture) task(t *testing.T, id string, status models.TaskStatus) {
	t.Helper()
	now := time.Now().UTC()
	task := &models.Task{ID: id, ProjectID: f.projectID, Title: "Task " + id, Status: status, CreatedAt: now, UpdatedAt: now}
	if err := f.repo.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("create task %s: %v", id, err)
	}
}

func (f *fixture) setStatus(t *testing.T, id string, status models.TaskStatus) {
	t.Helper()
	if err := f.repo.UpdateTask(context.Background(), id, store.TaskUpdate{Status: &status}); err != nil {
		t.Fatalf("set status %s: %v", id, err)
	}
}

func (f *fixture) link(t *testing.T, source, target, typeID string) *models.Relationship {
	t.Helper()
	rel, err := f.graph.Create(context.Background(), source, models.RelationshipSpec{TargetTaskID: target, RelationshipTypeID: typeID})
	if err != nil {
		t.Fatalf("link %s -> %s: %v", source, target, err)
	}
	return rel
}

func strPtr(v string) *string { return &v }

func boolPtr(v bool) *bool { return &v }

func asDomainError(err error, target **models.Error) bool {
	return errors.As(err, target)
}
