package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tasklink/internal/models"
)

const (
	templateColumns      = "id, group_id, template_name, template_title, ticket_title, ticket_description, created_at, updated_at"
	templateGroupColumns = "id, name, parent_group_id, created_at, updated_at"
)

// CreateTemplateGroup inserts a template group.
func (s *Store) CreateTemplateGroup(ctx context.Context, group *models.TemplateGroup) error {
	if group == nil {
		return fmt.Errorf("template group is required")
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO template_groups (`+templateGroupColumns+`)
		VALUES (?, ?, ?, ?, ?)
	`,
		group.ID,
		group.Name,
		nullIfEmpty(group.ParentGroupID),
		formatTime(group.CreatedAt),
		formatTime(group.UpdatedAt),
	)
	return err
}

// GetTemplateGroup returns a group by id, or nil when it does not exist.
func (s *Store) GetTemplateGroup(ctx context.Context, id string) (*models.TemplateGroup, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+templateGroupColumns+" FROM template_groups WHERE id = ?", id)
	return scanTemplateGroup(row)
}

// ListTemplateGroups returns groups ordered by name.
func (s *Store) ListTemplateGroups(ctx context.Context, filter TemplateGroupFilter) ([]models.TemplateGroup, error) {
	query := "SELECT " + templateGroupColumns + " FROM template_groups"
	var args []any
	switch {
	case filter.RootsOnly:
		query += " WHERE parent_group_id IS NULL"
	case filter.ParentGroupID != "":
		query += " WHERE parent_group_id = ?"
		args = append(args, filter.ParentGroupID)
	}
	query += " ORDER BY name ASC, id ASC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TemplateGroup
	for rows.Next() {
		group, err := scanTemplateGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *group)
	}
	return out, rows.Err()
}

// UpdateTemplateGroup overwrites the mutable columns of a group.
func (s *Store) UpdateTemplateGroup(ctx context.Context, group *models.TemplateGroup) error {
	if group == nil {
		return fmt.Errorf("template group is required")
	}
	_, err := s.q.ExecContext(ctx,
		"UPDATE template_groups SET name = ?, parent_group_id = ?, updated_at = ? WHERE id = ?",
		group.Name,
		nullIfEmpty(group.ParentGroupID),
		formatTime(group.UpdatedAt),
		group.ID,
	)
	return err
}

// DeleteTemplateGroup removes a group by id.
func (s *Store) DeleteTemplateGroup(ctx context.Context, id string) (int64, error) {
	res, err := s.q.ExecContext(ctx, "DELETE FROM template_groups WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountChildGroups returns the number of direct children of a group.
func (s *Store) CountChildGroups(ctx context.Context, groupID string) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM template_groups WHERE parent_group_id = ?", groupID).Scan(&count)
	return count, err
}

// CountTemplatesInGroup returns the number of templates filed under a group.
func (s *Store) CountTemplatesInGroup(ctx context.Context, groupID string) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM task_templates WHERE group_id = ?", groupID).Scan(&count)
	return count, err
}

// CreateTemplate inserts a task template.
func (s *Store) CreateTemplate(ctx context.Context, tmpl *models.TaskTemplate) error {
	if tmpl == nil {
		return fmt.Errorf("template is required")
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO task_templates (`+templateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		tmpl.ID,
		nullIfEmpty(tmpl.GroupID),
		tmpl.TemplateName,
		tmpl.TemplateTitle,
		tmpl.TicketTitle,
		tmpl.TicketDescription,
		formatTime(tmpl.CreatedAt),
		formatTime(tmpl.UpdatedAt),
	)
	return err
}

// GetTemplate returns a template by id, or nil when it does not exist.
func (s *Store) GetTemplate(ctx context.Context, id string) (*models.TaskTemplate, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+templateColumns+" FROM task_templates WHERE id = ?", id)
	return scanTemplate(row)
}

// GetTemplateByName returns a template by its unique name.
func (s *Store) GetTemplateByName(ctx context.Context, name string) (*models.TaskTemplate, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+templateColumns+" FROM task_templates WHERE template_name = ?", name)
	return scanTemplate(row)
}

// ListTemplates returns templates ordered by name.
func (s *Store) ListTemplates(ctx context.Context, filter TemplateFilter) ([]models.TaskTemplate, error) {
	query := "SELECT " + templateColumns + " FROM task_templates"
	var where []string
	var args []any

	if filter.GroupID != "" {
		where = append(where, "group_id = ?")
		args = append(args, filter.GroupID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		where = append(where, `(LOWER(template_name) LIKE ? ESCAPE '\' OR LOWER(template_title) LIKE ? ESCAPE '\' OR LOWER(ticket_title) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY template_name ASC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TaskTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tmpl)
	}
	return out, rows.Err()
}

// UpdateTemplate overwrites the mutable columns of a template.
func (s *Store) UpdateTemplate(ctx context.Context, tmpl *models.TaskTemplate) error {
	if tmpl == nil {
		return fmt.Errorf("template is required")
	}
	_, err := s.q.ExecContext(ctx, `
		UPDATE task_templates SET
			group_id = ?, template_name = ?, template_title = ?, ticket_title = ?, ticket_description = ?, updated_at = ?
		WHERE id = ?
	`,
		nullIfEmpty(tmpl.GroupID),
		tmpl.TemplateName,
		tmpl.TemplateTitle,
		tmpl.TicketTitle,
		tmpl.TicketDescription,
		formatTime(tmpl.UpdatedAt),
		tmpl.ID,
	)
	return err
}

// DeleteTemplate removes a template by id.
func (s *Store) DeleteTemplate(ctx context.Context, id string) (int64, error) {
	res, err := s.q.ExecContext(ctx, "DELETE FROM task_templates WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanTemplateGroup(scanner rowScanner) (*models.TemplateGroup, error) {
	var group models.TemplateGroup
	var parent sql.NullString
	var createdAt, updatedAt string

	if err := scanner.Scan(&group.ID, &group.Name, &parent, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	group.ParentGroupID = parent.String

	var err error
	if group.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if group.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &group, nil
}

func scanTemplate(scanner rowScanner) (*models.TaskTemplate, error) {
	var tmpl models.TaskTemplate
	var groupID sql.NullString
	var createdAt, updatedAt string

	if err := scanner.Scan(
		&tmpl.ID,
		&groupID,
		&tmpl.TemplateName,
		&tmpl.TemplateTitle,
		&tmpl.TicketTitle,
		&tmpl.TicketDescription,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	tmpl.GroupID = groupID.String

	var err error
	if tmpl.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if tmpl.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &tmpl, nil
}
