package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tasklink/internal/api"
	"tasklink/internal/models"
	"tasklink/internal/relations"
	"tasklink/internal/store"
)

// TaskService centralizes task validation and defaults. Status changes are
// checked against blocking relationships inside the write transaction.
type TaskService struct {
	store         store.Repository
	projectPrefix string
	now           func() time.Time
}

// NewTaskService constructs a TaskService.
func NewTaskService(repo store.Repository, projectPrefix string) *TaskService {
	return &TaskService{store: repo, projectPrefix: projectPrefix, now: utcNow}
}

// Create creates a task from a request.
func (s *TaskService) Create(ctx context.Context, req api.TaskCreateRequest) (*models.Task, error) {
	prefix, err := normalizePrefix(s.projectPrefix)
	if err != nil {
		return nil, internalError(err)
	}

	projectID := strings.TrimSpace(req.ProjectID)
	if projectID == "" {
		return nil, badRequestCode(fmt.Errorf("project_id is required"), ErrCodeMissingRequired)
	}

	status := models.DefaultStatus
	if req.Status != nil {
		status, err = normalizeStatus(*req.Status)
		if err != nil {
			return nil, err
		}
	}

	title := strings.TrimSpace(req.Title)
	description := valueOrEmpty(req.Description)
	id := strings.TrimSpace(req.ID)
	if id != "" && (!validateID(id) || !strings.HasPrefix(id, prefix+"-")) {
		return nil, badRequestCode(fmt.Errorf("invalid id"), ErrCodeInvalidID)
	}

	var task *models.Task
	err = s.store.RunInTx(ctx, func(tx store.Repository) error {
		project, err := tx.GetProject(ctx, projectID)
		if err != nil {
			return err
		}
		if project == nil {
			return models.NotFoundf("project %s not found", projectID)
		}

		if ref := strings.TrimSpace(req.TemplateID); ref != "" {
			tmpl, err := resolveTemplate(ctx, tx, ref)
			if err != nil {
				return err
			}
			if title == "" {
				title = strings.TrimSpace(tmpl.TicketTitle)
			}
			if description == "" {
				description = strings.TrimSpace(tmpl.TicketDescription)
			}
		}
		if title == "" {
			return badRequestCode(fmt.Errorf("title is required"), ErrCodeMissingRequired)
		}

		taskExists := func(candidate string) (bool, error) {
			return tx.TaskExists(ctx, candidate)
		}
		if id != "" {
			exists, err := taskExists(id)
			if err != nil {
				return err
			}
			if exists {
				return conflictCode(fmt.Errorf("id already exists"), ErrCodeTaskIDExists)
			}
		} else {
			id, err = store.GenerateID(prefix, taskExists)
			if err != nil {
				return err
			}
		}

		now := s.now()
		task = &models.Task{
			ID:          id,
			ProjectID:   projectID,
			Title:       title,
			Description: description,
			Status:      status,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.CreateTask(ctx, task)
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Get returns a task by id.
func (s *TaskService) Get(ctx context.Context, id string) (*models.Task, error) {
	return loadTask(ctx, s.store, id)
}

// List returns tasks matching filter, newest first.
func (s *TaskService) List(ctx context.Context, filter store.TaskFilter) ([]models.Task, error) {
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	return s.store.ListTasks(ctx, filter)
}

// Update applies a partial update. A status change is vetoed when any
// blocking relationship forbids it; the check and the write share one
// transaction. It returns the updated task and its previous status.
func (s *TaskService) Update(ctx context.Context, id string, req api.TaskUpdateRequest) (*models.Task, models.TaskStatus, error) {
	update := store.TaskUpdate{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, "", badRequestCode(fmt.Errorf("title cannot be empty"), ErrCodeMissingRequired)
		}
		update.Title = &title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		update.Description = &description
	}
	if req.Status != nil {
		status, err := normalizeStatus(*req.Status)
		if err != nil {
			return nil, "", err
		}
		update.Status = &status
	}
	if update.Title == nil && update.Description == nil && update.Status == nil {
		return nil, "", badRequest(fmt.Errorf("no fields to update"))
	}

	var (
		updated *models.Task
		prev    models.TaskStatus
	)
	err := s.store.RunInTx(ctx, func(tx store.Repository) error {
		current, err := loadTask(ctx, tx, id)
		if err != nil {
			return err
		}
		prev = current.Status

		if update.Status != nil && *update.Status != current.Status {
			if err := relations.NewEvaluator(tx).CheckTransition(ctx, id, *update.Status); err != nil {
				return err
			}
		}

		if err := tx.UpdateTask(ctx, id, update); err != nil {
			return err
		}
		updated, err = loadTask(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return updated, prev, nil
}

// Delete removes a task and every relationship touching it, returning the
// number of relationships removed.
func (s *TaskService) Delete(ctx context.Context, id string) (int64, error) {
	var removed int64
	err := s.store.RunInTx(ctx, func(tx store.Repository) error {
		if _, err := loadTask(ctx, tx, id); err != nil {
			return err
		}
		count, err := relations.NewGraph(tx).DeleteAllForTask(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.DeleteTask(ctx, id); err != nil {
			return err
		}
		removed = count
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Blockers lists the incoming edges currently blocking the task.
func (s *TaskService) Blockers(ctx context.Context, id string) ([]models.BlockingEdge, error) {
	if _, err := loadTask(ctx, s.store, id); err != nil {
		return nil, err
	}
	edges, err := relations.NewGraph(s.store).FindBlockingEdges(ctx, id)
	if err != nil {
		return nil, err
	}
	if edges == nil {
		edges = []models.BlockingEdge{}
	}
	return edges, nil
}

func loadTask(ctx context.Context, repo store.TaskStore, id string) (*models.Task, error) {
	task, err := repo.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, models.NotFoundf("task %s not found", id)
	}
	return task, nil
}
