package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasklink/internal/models"
)

// CreateProject inserts a project.
func (s *Store) CreateProject(ctx context.Context, project *models.Project) error {
	if project == nil {
		return fmt.Errorf("project is required")
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO projects (id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`,
		project.ID,
		project.Name,
		nullIfEmpty(project.Description),
		formatTime(project.CreatedAt),
		formatTime(project.UpdatedAt),
	)
	return err
}

// GetProject returns a project by id, or nil when it does not exist.
func (s *Store) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)
	return scanProject(row)
}

// ListProjects returns all projects ordered by name.
func (s *Store) ListProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM projects ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *project)
	}
	return out, rows.Err()
}

// DeleteProject removes a project and, through the foreign key, its tasks.
func (s *Store) DeleteProject(ctx context.Context, id string) (int64, error) {
	res, err := s.q.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanProject(scanner rowScanner) (*models.Project, error) {
	var project models.Project
	var description sql.NullString
	var createdAt, updatedAt string

	if err := scanner.Scan(&project.ID, &project.Name, &description, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	project.Description = description.String

	var err error
	if project.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if project.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &project, nil
}
