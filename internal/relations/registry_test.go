package relations

import (
	"context"
	"testing"

	"tasklink/internal/models"
	"tasklink/internal/store"
)

func TestCreateTypeDirectionalLabels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		spec    models.RelationshipType
		wantErr bool
	}{
		{
			name:    "missing reverse label",
			spec:    models.RelationshipType{TypeName: "mentors", DisplayName: "Mentors", IsDirectional: true, ForwardLabel: "mentors"},
			wantErr: true,
		},
		{
			name:    "missing forward label",
			spec:    models.RelationshipType{TypeName: "mentors", DisplayName: "Mentors", IsDirectional: true, ReverseLabel: "mentored by"},
			wantErr: true,
		},
		{
			name: "both labels",
			spec: models.RelationshipType{TypeName: "mentors", DisplayName: "Mentors", IsDirectional: true, ForwardLabel: "mentors", ReverseLabel: "mentored by"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			typ, err := f.registry.Create(ctx, tc.spec)
			if tc.wantErr {
				if !models.IsKind(err, models.KindValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if typ.ID == "" || typ.IsSystem {
				t.Fatalf("unexpected type: %+v", typ)
			}
		})
	}
}

func TestCreateTypeBlockingSets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	spec := models.RelationshipType{TypeName: "gates", DisplayName: "Gates", EnforcesBlocking: true}
	if _, err := f.registry.Create(ctx, spec); !models.IsKind(err, models.KindValidation) {
		t.Fatalf("expected validation error without sets, got %v", err)
	}

	spec.BlockingDisabledStatuses = models.StatusSet{models.StatusDone}
	if _, err := f.registry.Create(ctx, spec); !models.IsKind(err, models.KindValidation) {
		t.Fatalf("expected validation error without source set, got %v", err)
	}

	spec.BlockingSourceStatuses = models.StatusSet{models.StatusTodo}
	typ, err := f.registry.Create(ctx, spec)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	stored, err := f.registry.Get(ctx, typ.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.BlockingSourceStatuses.Contains(models.StatusTodo) {
		t.Fatalf("sets not persisted: %+v", stored)
	}
}

func TestCreateTypeDuplicateName(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.Create(context.Background(), models.RelationshipType{TypeName: "blocks", DisplayName: "Blocks again"})
	if !models.IsKind(err, models.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateTypeValidatesMergedValue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	typ, err := f.registry.Create(ctx, models.RelationshipType{TypeName: "follows", DisplayName: "Follows"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Enabling blocking with no stored sets must fail even though the sets
	// are not part of this patch.
	_, err = f.registry.Update(ctx, typ.ID, models.RelationshipTypePatch{EnforcesBlocking: boolPtr(true)})
	if !models.IsKind(err, models.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = f.registry.Update(ctx, typ.ID, models.RelationshipTypePatch{IsDirectional: boolPtr(true), ForwardLabel: strPtr("follows")})
	if !models.IsKind(err, models.KindValidation) {
		t.Fatalf("expected validation error for missing reverse label, got %v", err)
	}

	disabled := models.StatusSet{models.StatusDone}
	source := models.StatusSet{models.StatusTodo}
	updated, err := f.registry.Update(ctx, typ.ID, models.RelationshipTypePatch{
		EnforcesBlocking:         boolPtr(true),
		BlockingDisabledStatuses: &disabled,
		BlockingSourceStatuses:   &source,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.EnforcesBlocking || updated.DisplayName != "Follows" {
		t.Fatalf("unexpected merge: %+v", updated)
	}
	if updated.UpdatedAt.Before(typ.UpdatedAt) {
		t.Fatalf("updated_at went backwards")
	}

	// Subsequent patches keep the stored sets.
	again, err := f.registry.Update(ctx, typ.ID, models.RelationshipTypePatch{DisplayName: strPtr("Follows after")})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if len(again.BlockingDisabledStatuses) != 1 || !again.EnforcesBlocking {
		t.Fatalf("stored sets lost: %+v", again)
	}

	if _, err := f.registry.Update(ctx, store.NewUUID(), models.RelationshipTypePatch{}); !models.IsKind(err, models.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateSystemTypeRename(t *testing.T) {
	f := newFixture(t)
	_, err := f.registry.Update(context.Background(), store.SystemTypeBlocksID, models.RelationshipTypePatch{TypeName: strPtr("stops")})
	if !models.IsKind(err, models.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestDeleteType(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{store.SystemTypeBlocksID, store.SystemTypeRelatesToID, store.SystemTypeDuplicatesID, store.SystemTypeParentOfID} {
		if _, err := f.registry.Delete(ctx, id); !models.IsKind(err, models.KindForbidden) {
			t.Fatalf("expected forbidden deleting system type %s, got %v", id, err)
		}
	}

	typ, err := f.registry.Create(ctx, models.RelationshipType{TypeName: "temp", DisplayName: "Temp"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	deleted, err := f.registry.Delete(ctx, typ.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted.ID != typ.ID {
		t.Fatalf("unexpected deleted type: %+v", deleted)
	}
	if _, err := f.registry.Get(ctx, typ.ID); !models.IsKind(err, models.KindNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := f.registry.Delete(ctx, typ.ID); !models.IsKind(err, models.KindNotFound) {
		t.Fatalf("expected not found deleting twice, got %v", err)
	}
}

func TestDeleteTypeInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.task(t, "tl-aaaa", models.StatusTodo)
	f.task(t, "tl-bbbb", models.StatusTodo)

	typ, err := f.registry.Create(ctx, models.RelationshipType{TypeName: "pairs", DisplayName: "Pairs"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	f.link(t, "tl-aaaa", "tl-bbbb", typ.ID)

	_, err = f.registry.Delete(ctx, typ.ID)
	if !models.IsKind(err, models.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	var domainErr *models.Error
	if !asDomainError(err, &domainErr) || domainErr.Code != "relationship_type_in_use" {
		t.Fatalf("expected relationship_type_in_use code, got %v", err)
	}
}

func TestFindTypes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.registry.Create(ctx, models.RelationshipType{TypeName: "reviews", DisplayName: "Reviews"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	system, err := f.registry.FindSystemTypes(ctx)
	if err != nil {
		t.Fatalf("system: %v", err)
	}
	if len(system) != 4 {
		t.Fatalf("expected 4 system types, got %d", len(system))
	}

	all, err := f.registry.FindAll(ctx, "")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 types, got %d", len(all))
	}

	found, err := f.registry.FindAll(ctx, "review")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected 1 match, got %d", len(found))
	}

	byName, err := f.registry.FindByName(ctx, "parent_of")
	if err != nil {
		t.Fatalf("by name: %v", err)
	}
	if byName.ID != store.SystemTypeParentOfID {
		t.Fatalf("unexpected type: %+v", byName)
	}
	if _, err := f.registry.FindByName(ctx, "nope"); !models.IsKind(err, models.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	resolved, err := f.registry.Resolve(ctx, store.SystemTypeBlocksID)
	if err != nil || resolved.TypeName != "blocks" {
		t.Fatalf("resolve by id: %+v (%v)", resolved, err)
	}
	resolved, err = f.registry.Resolve(ctx, "duplicates")
	if err != nil || resolved.ID != store.SystemTypeDuplicatesID {
		t.Fatalf("resolve by name: %+v (%v)", resolved, err)
	}
}
