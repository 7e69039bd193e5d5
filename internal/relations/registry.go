// Package relations owns the relationship type catalog, the task
// relationship graph and the blocking checks evaluated on status changes.
package relations

import (
	"context"
	"strings"
	"time"

	"tasklink/internal/models"
	"tasklink/internal/store"
)

// TypeRegistry manages the catalog of relationship types.
type TypeRegistry struct {
	repo store.Repository
	now  func() time.Time
}

// NewTypeRegistry constructs a TypeRegistry.
func NewTypeRegistry(repo store.Repository) *TypeRegistry {
	return &TypeRegistry{repo: repo, now: utcNow}
}

// Create validates and persists a new, non-system relationship type.
func (r *TypeRegistry) Create(ctx context.Context, spec models.RelationshipType) (*models.RelationshipType, error) {
	typ := spec
	if err := typ.Validate(); err != nil {
		return nil, err
	}

	now := r.now()
	typ.ID = store.NewUUID()
	typ.IsSystem = false
	typ.CreatedAt = now
	typ.UpdatedAt = now

	err := r.repo.RunInTx(ctx, func(tx store.Repository) error {
		if err := ensureTypeNameFree(ctx, tx, typ.TypeName, ""); err != nil {
			return err
		}
		return tx.CreateRelationshipType(ctx, &typ)
	})
	if err != nil {
		return nil, err
	}
	return &typ, nil
}

// Update merges patch over the stored type and validates the merged value
// before persisting it.
func (r *TypeRegistry) Update(ctx context.Context, id string, patch models.RelationshipTypePatch) (*models.RelationshipType, error) {
	var out *models.RelationshipType
	err := r.repo.RunInTx(ctx, func(tx store.Repository) error {
		existing, err := loadType(ctx, tx, id)
		if err != nil {
			return err
		}

		merged := *existing
		patch.Apply(&merged)
		if err := merged.Validate(); err != nil {
			return err
		}
		if merged.TypeName != existing.TypeName {
			if existing.IsSystem {
				return models.Forbiddenf("system relationship type %s cannot be renamed", existing.TypeName)
			}
			if err := ensureTypeNameFree(ctx, tx, merged.TypeName, existing.ID); err != nil {
				return err
			}
		}

		merged.UpdatedAt = r.now()
		if err := tx.UpdateRelationshipType(ctx, &merged); err != nil {
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

// Delete removes a relationship type. System types and types still
// referenced by relationships are forbidden.
func (r *TypeRegistry) Delete(ctx context.Context, id string) (*models.RelationshipType, error) {
	var deleted *models.RelationshipType
	err := r.repo.RunInTx(ctx, func(tx store.Repository) error {
		existing, err := loadType(ctx, tx, id)
		if err != nil {
			return err
		}
		if existing.IsSystem {
			return models.Forbiddenf("cannot delete system relationship type %s", existing.TypeName).WithCode("system_type")
		}

		inUse, err := tx.CountRelationshipsByType(ctx, existing.ID)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return models.Forbiddenf("relationship type %s is used by %d relationships", existing.TypeName, inUse).
				WithCode("relationship_type_in_use")
		}

		if _, err := tx.DeleteRelationshipType(ctx, existing.ID); err != nil {
			return err
		}
		deleted = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// Get returns a type by id.
func (r *TypeRegistry) Get(ctx context.Context, id string) (*models.RelationshipType, error) {
	return loadType(ctx, r.repo, id)
}

// FindByName returns a type by its unique type_name.
func (r *TypeRegistry) FindByName(ctx context.Context, typeName string) (*models.RelationshipType, error) {
	typ, err := r.repo.GetRelationshipTypeByName(ctx, strings.TrimSpace(typeName))
	if err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, models.NotFoundf("relationship type %q not found", typeName)
	}
	return typ, nil
}

// FindAll lists every type, optionally filtered by a case-insensitive search
// over type_name and display_name.
func (r *TypeRegistry) FindAll(ctx context.Context, search string) ([]models.RelationshipType, error) {
	return r.repo.ListRelationshipTypes(ctx, store.RelationshipTypeFilter{Search: search})
}

// FindSystemTypes lists the built-in types.
func (r *TypeRegistry) FindSystemTypes(ctx context.Context) ([]models.RelationshipType, error) {
	return r.repo.ListRelationshipTypes(ctx, store.RelationshipTypeFilter{SystemOnly: true})
}

// Resolve accepts either a type id or a type_name.
func (r *TypeRegistry) Resolve(ctx context.Context, ref string) (*models.RelationshipType, error) {
	ref = strings.TrimSpace(ref)
	if store.IsUUID(ref) {
		return r.Get(ctx, ref)
	}
	return r.FindByName(ctx, ref)
}

func loadType(ctx context.Context, repo store.RelationshipTypeStore, id string) (*models.RelationshipType, error) {
	typ, err := repo.GetRelationshipType(ctx, strings.TrimSpace(id))
	if err != nil {
		return nil, err
	}
	if typ == nil {
		return nil, models.NotFoundf("relationship type %s not found", id)
	}
	return typ, nil
}

func ensureTypeNameFree(ctx context.Context, repo store.RelationshipTypeStore, typeName, selfID string) error {
	existing, err := repo.GetRelationshipTypeByName(ctx, typeName)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return models.Validationf("relationship type %q already exists", typeName).WithCode("type_name_taken")
	}
	return nil
}

func utcNow() time.Time {
	return time.Now().UTC()
}
