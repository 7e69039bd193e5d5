package server

import (
	"context"
	"strings"
	"time"

	"tasklink/internal/api"
	"tasklink/internal/models"
	"tasklink/internal/store"
)

// ProjectService validates and persists projects.
type ProjectService struct {
	store store.ProjectStore
	now   func() time.Time
}

// NewProjectService constructs a ProjectService.
func NewProjectService(store store.ProjectStore) *ProjectService {
	return &ProjectService{store: store, now: utcNow}
}

// Create creates a project from a request.
func (s *ProjectService) Create(ctx context.Context, req api.ProjectCreateRequest) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.Validationf("name is required")
	}

	now := s.now()
	project := &models.Project{
		ID:          store.NewUUID(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateProject(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Get returns a project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	project, err := s.store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, models.NotFoundf("project %s not found", id)
	}
	return project, nil
}

// List returns every project ordered by name.
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	return s.store.ListProjects(ctx)
}

// Delete removes a project together with its tasks and their relationships.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteProject(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return models.NotFoundf("project %s not found", id)
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
