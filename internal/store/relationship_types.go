package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tasklink/internal/models"
)

const relationshipTypeColumns = `id, type_name, display_name, description, is_system, is_directional,
	forward_label, reverse_label, enforces_blocking, blocking_disabled_statuses, blocking_source_statuses,
	created_at, updated_at`

// CreateRelationshipType inserts a relationship type.
func (s *Store) CreateRelationshipType(ctx context.Context, typ *models.RelationshipType) error {
	if typ == nil {
		return fmt.Errorf("relationship type is required")
	}
	disabled, source, err := encodeBlockingSets(typ)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO relationship_types (`+relationshipTypeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		typ.ID,
		typ.TypeName,
		typ.DisplayName,
		nullIfEmpty(typ.Description),
		boolToInt(typ.IsSystem),
		boolToInt(typ.IsDirectional),
		nullIfEmpty(typ.ForwardLabel),
		nullIfEmpty(typ.ReverseLabel),
		boolToInt(typ.EnforcesBlocking),
		disabled,
		source,
		formatTime(typ.CreatedAt),
		formatTime(typ.UpdatedAt),
	)
	return err
}

// GetRelationshipType returns a type by id, or nil when it does not exist.
func (s *Store) GetRelationshipType(ctx context.Context, id string) (*models.RelationshipType, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+relationshipTypeColumns+" FROM relationship_types WHERE id = ?", id)
	return scanRelationshipType(row)
}

// GetRelationshipTypeByName returns a type by its unique type_name.
func (s *Store) GetRelationshipTypeByName(ctx context.Context, typeName string) (*models.RelationshipType, error) {
	row := s.q.QueryRowContext(ctx, "SELECT "+relationshipTypeColumns+" FROM relationship_types WHERE type_name = ?", typeName)
	return scanRelationshipType(row)
}

// ListRelationshipTypes returns types ordered by display name.
func (s *Store) ListRelationshipTypes(ctx context.Context, filter RelationshipTypeFilter) ([]models.RelationshipType, error) {
	query := "SELECT " + relationshipTypeColumns + " FROM relationship_types"
	var where []string
	var args []any

	if filter.SystemOnly {
		where = append(where, "is_system = 1")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(search)
		where = append(where, `(LOWER(type_name) LIKE ? ESCAPE '\' OR LOWER(display_name) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY display_name ASC, type_name ASC"

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RelationshipType
	for rows.Next() {
		typ, err := scanRelationshipType(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *typ)
	}
	return out, rows.Err()
}

// UpdateRelationshipType overwrites every mutable column of a type.
func (s *Store) UpdateRelationshipType(ctx context.Context, typ *models.RelationshipType) error {
	if typ == nil {
		return fmt.Errorf("relationship type is required")
	}
	disabled, source, err := encodeBlockingSets(typ)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		UPDATE relationship_types SET
			type_name = ?, display_name = ?, description = ?, is_directional = ?,
			forward_label = ?, reverse_label = ?, enforces_blocking = ?,
			blocking_disabled_statuses = ?, blocking_source_statuses = ?, updated_at = ?
		WHERE id = ?
	`,
		typ.TypeName,
		typ.DisplayName,
		nullIfEmpty(typ.Description),
		boolToInt(typ.IsDirectional),
		nullIfEmpty(typ.ForwardLabel),
		nullIfEmpty(typ.ReverseLabel),
		boolToInt(typ.EnforcesBlocking),
		disabled,
		source,
		formatTime(typ.UpdatedAt),
		typ.ID,
	)
	return err
}

// DeleteRelationshipType removes a type by id.
func (s *Store) DeleteRelationshipType(ctx context.Context, id string) (int64, error) {
	res, err := s.q.ExecContext(ctx, "DELETE FROM relationship_types WHERE id = ?", id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountRelationshipsByType returns how many edges reference a type.
func (s *Store) CountRelationshipsByType(ctx context.Context, typeID string) (int, error) {
	var count int
	err := s.q.QueryRowContext(ctx, "SELECT COUNT(*) FROM relationships WHERE relationship_type_id = ?", typeID).Scan(&count)
	return count, err
}

func encodeBlockingSets(typ *models.RelationshipType) (any, any, error) {
	disabled, err := encodeStatusSet(typ.BlockingDisabledStatuses)
	if err != nil {
		return nil, nil, err
	}
	source, err := encodeStatusSet(typ.BlockingSourceStatuses)
	if err != nil {
		return nil, nil, err
	}
	return disabled, source, nil
}

func encodeStatusSet(set models.StatusSet) (any, error) {
	if set == nil {
		return nil, nil
	}
	return set.Encode()
}

func scanRelationshipType(scanner rowScanner) (*models.RelationshipType, error) {
	var typ models.RelationshipType
	var cols relationshipTypeCols
	if err := scanner.Scan(cols.dest(&typ)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := cols.fill(&typ); err != nil {
		return nil, err
	}
	return &typ, nil
}

func fillRelationshipType(
	typ *models.RelationshipType,
	description sql.NullString,
	isSystem, isDirectional int,
	forward, reverse sql.NullString,
	enforces int,
	disabled, source sql.NullString,
	createdAt, updatedAt string,
) error {
	typ.Description = description.String
	typ.IsSystem = isSystem != 0
	typ.IsDirectional = isDirectional != 0
	typ.ForwardLabel = forward.String
	typ.ReverseLabel = reverse.String
	typ.EnforcesBlocking = enforces != 0

	if disabled.Valid {
		set, err := models.ParseStatusSet(disabled.String)
		if err != nil {
			return fmt.Errorf("relationship type %s blocking_disabled_statuses: %w", typ.ID, err)
		}
		typ.BlockingDisabledStatuses = set
	}
	if source.Valid {
		set, err := models.ParseStatusSet(source.String)
		if err != nil {
			return fmt.Errorf("relationship type %s blocking_source_statuses: %w", typ.ID, err)
		}
		typ.BlockingSourceStatuses = set
	}

	var err error
	if typ.CreatedAt, err = parseTime(createdAt); err != nil {
		return err
	}
	if typ.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return err
	}
	return nil
}
