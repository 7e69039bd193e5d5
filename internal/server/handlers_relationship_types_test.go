package server

import (
	"net/http"
	"testing"

	"tasklink/internal/api"
	"tasklink/internal/models"
)

func TestRelationshipTypeLifecycle(t *testing.T) {
	env := newTestEnv(t, Config{})

	var created models.RelationshipType
	env.mustDo(t, http.MethodPost, "/v1/relationship-types", api.RelationshipTypeCreateRequest{
		TypeName:      " follows_up ",
		DisplayName:   "Follows up",
		IsDirectional: true,
		ForwardLabel:  "follows up",
		ReverseLabel:  "followed up by",
	}, http.StatusCreated, &created)
	if created.TypeName != "follows_up" || created.IsSystem {
		t.Fatalf("unexpected type: %+v", created)
	}

	var byName models.RelationshipType
	env.mustDo(t, http.MethodGet, "/v1/relationship-types/follows_up", nil, http.StatusOK, &byName)
	if byName.ID != created.ID {
		t.Fatalf("resolve by name returned %s", byName.ID)
	}

	var updated models.RelationshipType
	env.mustDo(t, http.MethodPatch, "/v1/relationship-types/"+created.ID, api.RelationshipTypeUpdateRequest{
		DisplayName: strPtr("Follow-up"),
	}, http.StatusOK, &updated)
	if updated.DisplayName != "Follow-up" || updated.ForwardLabel != "follows up" {
		t.Fatalf("patch should keep unspecified fields: %+v", updated)
	}

	var deleted models.RelationshipType
	env.mustDo(t, http.MethodDelete, "/v1/relationship-types/follows_up", nil, http.StatusOK, &deleted)
	if deleted.ID != created.ID {
		t.Fatalf("unexpected deleted type: %+v", deleted)
	}
	expectError(t, env.do(t, http.MethodGet, "/v1/relationship-types/"+created.ID, nil), http.StatusNotFound, "not_found")

	want := []string{
		"tasklink.relationship_type.created",
		"tasklink.relationship_type.updated",
		"tasklink.relationship_type.deleted",
	}
	got := env.publisher.subjects()
	got = got[len(got)-len(want):]
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected events: %v", got)
		}
	}
}

func TestRelationshipTypeValidation(t *testing.T) {
	env := newTestEnv(t, Config{})

	tests := []struct {
		name      string
		req       api.RelationshipTypeCreateRequest
		code      string
		errorCode int
	}{
		{
			name: "missing display name",
			req:  api.RelationshipTypeCreateRequest{TypeName: "x"},
			code: "invalid_argument", errorCode: ErrCodeInvalidArgument,
		},
		{
			name: "directional without labels",
			req:  api.RelationshipTypeCreateRequest{TypeName: "x", DisplayName: "X", IsDirectional: true, ForwardLabel: "x"},
			code: "invalid_argument", errorCode: ErrCodeInvalidArgument,
		},
		{
			name: "blocking without status sets",
			req:  api.RelationshipTypeCreateRequest{TypeName: "x", DisplayName: "X", EnforcesBlocking: true, BlockingDisabledStatuses: []string{"done"}},
			code: "invalid_argument", errorCode: ErrCodeInvalidArgument,
		},
		{
			name: "unknown status in set",
			req:  api.RelationshipTypeCreateRequest{TypeName: "x", DisplayName: "X", EnforcesBlocking: true, BlockingDisabledStatuses: []string{"closed"}, BlockingSourceStatuses: []string{"todo"}},
			code: "invalid_argument", errorCode: ErrCodeInvalidStatus,
		},
		{
			name: "name taken",
			req:  api.RelationshipTypeCreateRequest{TypeName: models.RelationshipBlocks, DisplayName: "Blocks again"},
			code: "type_name_taken", errorCode: ErrCodeTypeNameTaken,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/v1/relationship-types", tc.req)
			errResp := expectError(t, w, http.StatusBadRequest, tc.code)
			if errResp.ErrorCode != tc.errorCode {
				t.Fatalf("expected error_code %d, got %d (%s)", tc.errorCode, errResp.ErrorCode, errResp.Error)
			}
		})
	}
}

func TestSystemTypesAreProtected(t *testing.T) {
	env := newTestEnv(t, Config{})

	var system []models.RelationshipType
	env.mustDo(t, http.MethodGet, "/v1/relationship-types?system=true", nil, http.StatusOK, &system)
	if len(system) != 4 {
		t.Fatalf("expected 4 system types, got %d", len(system))
	}
	for _, typ := range system {
		if !typ.IsSystem {
			t.Fatalf("non-system type in system listing: %+v", typ)
		}
	}

	w := env.do(t, http.MethodDelete, "/v1/relationship-types/blocks", nil)
	errResp := expectError(t, w, http.StatusForbidden, "system_type")
	if errResp.ErrorCode != ErrCodeSystemTypeProtected {
		t.Fatalf("expected error_code %d, got %d", ErrCodeSystemTypeProtected, errResp.ErrorCode)
	}

	expectError(t, env.do(t, http.MethodPatch, "/v1/relationship-types/blocks", api.RelationshipTypeUpdateRequest{
		TypeName: strPtr("stops"),
	}), http.StatusForbidden, "forbidden")

	// Non-name fields of a system type stay editable.
	var updated models.RelationshipType
	env.mustDo(t, http.MethodPatch, "/v1/relationship-types/blocks", api.RelationshipTypeUpdateRequest{
		Description: strPtr("Hard ordering"),
	}, http.StatusOK, &updated)
	if updated.Description != "Hard ordering" || !updated.EnforcesBlocking {
		t.Fatalf("unexpected system type update: %+v", updated)
	}
}

func TestRelationshipTypeInUse(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.createTask(t, "tl-aaaa", models.StatusTodo)
	env.createTask(t, "tl-bbbb", models.StatusTodo)

	env.mustDo(t, http.MethodPost, "/v1/relationship-types", api.RelationshipTypeCreateRequest{
		TypeName:    "pairs_with",
		DisplayName: "Pairs with",
	}, http.StatusCreated, nil)
	rel := env.link(t, "tl-aaaa", "tl-bbbb", "pairs_with")

	w := env.do(t, http.MethodDelete, "/v1/relationship-types/pairs_with", nil)
	errResp := expectError(t, w, http.StatusForbidden, "relationship_type_in_use")
	if errResp.ErrorCode != ErrCodeRelationshipTypeInUse {
		t.Fatalf("expected error_code %d, got %d", ErrCodeRelationshipTypeInUse, errResp.ErrorCode)
	}

	env.mustDo(t, http.MethodDelete, "/v1/tasks/tl-aaaa/relationships/"+rel.ID, nil, http.StatusOK, nil)
	env.mustDo(t, http.MethodDelete, "/v1/relationship-types/pairs_with", nil, http.StatusOK, nil)
}

func TestRelationshipTypeSearch(t *testing.T) {
	env := newTestEnv(t, Config{})

	var found []models.RelationshipType
	env.mustDo(t, http.MethodGet, "/v1/relationship-types?search=PARENT", nil, http.StatusOK, &found)
	if len(found) != 1 || found[0].TypeName != models.RelationshipParentOf {
		t.Fatalf("unexpected search result: %+v", found)
	}

	env.mustDo(t, http.MethodGet, "/v1/relationship-types", nil, http.StatusOK, &found)
	if len(found) != 4 {
		t.Fatalf("expected all 4 seeded types, got %d", len(found))
	}

	expectError(t, env.do(t, http.MethodGet, "/v1/relationship-types?system=maybe", nil), http.StatusBadRequest, "invalid_argument")
}

func TestRelationshipTypeWritesRequireAdminToken(t *testing.T) {
	adminToken := "admin-token-0123456789"
	env := newTestEnv(t, Config{AdminTokenHash: mustHashToken(t, adminToken)})

	req := api.RelationshipTypeCreateRequest{TypeName: "mirrors", DisplayName: "Mirrors"}
	expectError(t, env.do(t, http.MethodPost, "/v1/relationship-types", req), http.StatusForbidden, "forbidden")

	w := env.do(t, http.MethodPost, "/v1/relationship-types", req, adminTokenHeader, adminToken)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 with admin token, got %d (%s)", w.Code, w.Body.String())
	}

	if w := env.do(t, http.MethodGet, "/v1/relationship-types/mirrors", nil); w.Code != http.StatusOK {
		t.Fatalf("reads should not need the admin token, got %d", w.Code)
	}
}
