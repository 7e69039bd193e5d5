package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"tasklink/internal/models"
)

const relationshipColumns = "id, source_task_id, target_task_id, relationship_type_id, data, note, created_at, updated_at"

var (
	detailsSelect = "SELECT " + qualify("r", relationshipColumns) + ", " +
		qualify("s", taskColumns) + ", " +
		qualify("t", taskColumns) + ", " +
		qualify("rt", relationshipTypeColumns) + `
		FROM relationships r
		JOIN tasks s ON s.id = r.source_task_id
		JOIN tasks t ON t.id = r.target_task_id
		JOIN relationship_types rt ON rt.id = r.relationship_type_id`

	blockingSelect = "SELECT " + qualify("r", relationshipColumns) + ", " +
		qualify("s", taskColumns) + ", " +
		qualify("rt", relationshipTypeColumns) + `
		FROM relationships r
		JOIN tasks s ON s.id = r.source_task_id
		JOIN relationship_types rt ON rt.id = r.relationship_type_id`
)

// CreateRelationship inserts an edge.
func (s *Store) CreateRelationship(ctx context.Context, rel *models.Relationship) error {
	if rel == nil {
		return fmt.Errorf("relationship is required")
	}
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO relationships (`+relationshipColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rel.ID,
		rel.SourceTaskID,
		rel.TargetTaskID,
		rel.RelationshipTypeID,
		nullIfEmpty(string(rel.Data)),
		nullIfEmpty(rel.Note),
		formatTime(rel.CreatedAt),
		formatTime(rel.UpdatedAt),
	)
	return err
}

// GetRelationship returns an edge by id, or nil when it does not exist.
func (s *Store) GetRelationship(ctx context.Context, id string) (*models.Relationship, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+relationshipColumns+" FROM relationships WHERE id = ?", id)
	return scanRelationship(row)
}

// UpdateRelationship overwrites the mutable columns of an edge.
func (s *Store) UpdateRelationship(ctx context.Context, rel *models.Relationship) error {
	if rel == nil {
		return fmt.Errorf("relationship is required")
	}
	_, err := s.q.ExecContext(ctx, `
		UPDATE relationships SET
			target_task_id = ?, relationship_type_id = ?, data = ?, note = ?, updated_at = ?
		WHERE id = ?
	`,
		rel.TargetTaskID,
		rel.RelationshipTypeID,
		nullIfEmpty(string(rel.Data)),
		nullIfEmpty(rel.Note),
		formatTime(rel.UpdatedAt),
		rel.ID,
	)
	return err
}

// DeleteRelationship removes an edge by id.
func (s *Store) DeleteRelationship(ctx context.Context, id string) (int64, error) {
	res, err := s.q.ExecContext(ctx, "DELETE FROM relationships WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteRelationshipsForTask removes every edge where the task is either endpoint.
func (s *Store) DeleteRelationshipsForTask(ctx context.Context, taskID string) (int64, error) {
	res, err := s.q.ExecContext(ctx, "DELETE FROM relationships WHERE source_task_id = ? OR target_task_id = ?", taskID, taskID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListRelationships returns edges newest first.
func (s *Store) ListRelationships(ctx context.Context, filter RelationshipFilter) ([]models.Relationship, error) {
	query := "SELECT " + relationshipColumns + " FROM relationships"
	var where []string
	var args []any

	if filter.SourceTaskID != "" {
		where = append(where, "source_task_id = ?")
		args = append(args, filter.SourceTaskID)
	}
	if filter.TargetTaskID != "" {
		where = append(where, "target_task_id = ?")
		args = append(args, filter.TargetTaskID)
	}
	if filter.TypeID != "" {
		where = append(where, "relationship_type_id = ?")
		args = append(args, filter.TypeID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Relationship
	for rows.Next() {
		rel, err := scanRelationship(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rel)
	}
	return out, rows.Err()
}

// GetRelationshipDetails returns an edge joined with both tasks and its type.
// It returns nil when the edge or any of the joined rows is missing.
func (s *Store) GetRelationshipDetails(ctx context.Context, id string) (*models.RelationshipWithDetails, error) {
	row := s.q.QueryRowContext(ctx, detailsSelect+" WHERE r.id = ?", id)
	return scanRelationshipDetails(row)
}

// ListRelationshipDetailsForTask returns every edge touching the task, joined
// with details, newest first.
func (s *Store) ListRelationshipDetailsForTask(ctx context.Context, taskID string) ([]models.RelationshipWithDetails, error) {
	rows, err := s.q.QueryContext(ctx,
		detailsSelect+" WHERE r.source_task_id = ? OR r.target_task_id = ? ORDER BY r.created_at DESC, r.id DESC",
		taskID, taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RelationshipWithDetails
	for rows.Next() {
		details, err := scanRelationshipDetails(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *details)
	}
	return out, rows.Err()
}

// ListIncomingBlockingEdges returns edges targeting the task whose type
// enforces blocking and whose source task is in one of that type's blocking
// source statuses.
func (s *Store) ListIncomingBlockingEdges(ctx context.Context, taskID string) ([]models.BlockingEdge, error) {
	rows, err := s.q.QueryContext(ctx,
		blockingSelect+" WHERE r.target_task_id = ? AND rt.enforces_blocking = 1 ORDER BY r.created_at DESC, r.id DESC",
		taskID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BlockingEdge
	for rows.Next() {
		edge, err := scanBlockingEdge(rows)
		if err != nil {
			return nil, err
		}
		typ := edge.RelationshipType
		if len(typ.BlockingSourceStatuses) == 0 || len(typ.BlockingDisabledStatuses) == 0 {
			return nil, models.Deserializationf("relationship type %s enforces blocking without status sets", typ.TypeName)
		}
		if typ.BlockingSourceStatuses.Contains(edge.SourceTask.Status) {
			out = append(out, *edge)
		}
	}
	return out, rows.Err()
}

type relationshipCols struct {
	data, note           sql.NullString
	createdAt, updatedAt string
}

func (c *relationshipCols) dest(rel *models.Relationship) []any {
	return []any{
		&rel.ID,
		&rel.SourceTaskID,
		&rel.TargetTaskID,
		&rel.RelationshipTypeID,
		&c.data,
		&c.note,
		&c.createdAt,
		&c.updatedAt,
	}
}

func (c *relationshipCols) fill(rel *models.Relationship) error {
	if c.data.Valid && c.data.String != "" {
		if !json.Valid([]byte(c.data.String)) {
			return models.Deserializationf("relationship %s has malformed data", rel.ID)
		}
		rel.Data = json.RawMessage(c.data.String)
	}
	rel.Note = c.note.String

	var err error
	if rel.CreatedAt, err = parseTime(c.createdAt); err != nil {
		return err
	}
	if rel.UpdatedAt, err = parseTime(c.updatedAt); err != nil {
		return err
	}
	return nil
}

type taskCols struct {
	description                  sql.NullString
	status, createdAt, updatedAt string
}

func (c *taskCols) dest(task *models.Task) []any {
	return []any{&task.ID, &task.ProjectID, &task.Title, &c.description, &c.status, &c.createdAt, &c.updatedAt}
}

func (c *taskCols) fill(task *models.Task) error {
	return fillTask(task, c.description, c.status, c.createdAt, c.updatedAt)
}

type relationshipTypeCols struct {
	description, forward, reverse, disabled, source sql.NullString
	isSystem, isDirectional, enforces               int
	createdAt, updatedAt                            string
}

func (c *relationshipTypeCols) dest(typ *models.RelationshipType) []any {
	return []any{
		&typ.ID, &typ.TypeName, &typ.DisplayName, &c.description, &c.isSystem, &c.isDirectional,
		&c.forward, &c.reverse, &c.enforces, &c.disabled, &c.source, &c.createdAt, &c.updatedAt,
	}
}

func (c *relationshipTypeCols) fill(typ *models.RelationshipType) error {
	return fillRelationshipType(typ, c.description, c.isSystem, c.isDirectional, c.forward, c.reverse,
		c.enforces, c.disabled, c.source, c.createdAt, c.updatedAt)
}

func scanRelationship(scanner rowScanner) (*models.Relationship, error) {
	var rel models.Relationship
	var cols relationshipCols
	if err := scanner.Scan(cols.dest(&rel)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := cols.fill(&rel); err != nil {
		return nil, err
	}
	return &rel, nil
}

func scanRelationshipDetails(scanner rowScanner) (*models.RelationshipWithDetails, error) {
	var out models.RelationshipWithDetails
	var relCols relationshipCols
	var sourceCols, targetCols taskCols
	var typeCols relationshipTypeCols

	dest := relCols.dest(&out.Relationship)
	dest = append(dest, sourceCols.dest(&out.SourceTask)...)
	dest = append(dest, targetCols.dest(&out.TargetTask)...)
	dest = append(dest, typeCols.dest(&out.RelationshipType)...)
	if err := scanner.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := relCols.fill(&out.Relationship); err != nil {
		return nil, err
	}
	if err := sourceCols.fill(&out.SourceTask); err != nil {
		return nil, err
	}
	if err := targetCols.fill(&out.TargetTask); err != nil {
		return nil, err
	}
	if err := typeCols.fill(&out.RelationshipType); err != nil {
		return nil, err
	}
	return &out, nil
}

func scanBlockingEdge(scanner rowScanner) (*models.BlockingEdge, error) {
	var out models.BlockingEdge
	var relCols relationshipCols
	var sourceCols taskCols
	var typeCols relationshipTypeCols

	dest := relCols.dest(&out.Relationship)
	dest = append(dest, sourceCols.dest(&out.SourceTask)...)
	dest = append(dest, typeCols.dest(&out.RelationshipType)...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	if err := relCols.fill(&out.Relationship); err != nil {
		return nil, err
	}
	if err := sourceCols.fill(&out.SourceTask); err != nil {
		return nil, err
	}
	if err := typeCols.fill(&out.RelationshipType); err != nil {
		return nil, err
	}
	return &out, nil
}

func qualify(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}
