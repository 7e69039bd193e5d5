package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"tasklink/internal/api"
	"tasklink/internal/models"
)

func TestCreateRelationship(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.createTask(t, "tl-aaaa", models.StatusTodo)
	env.createTask(t, "tl-bbbb", models.StatusTodo)

	var rel models.Relationship
	env.mustDo(t, http.MethodPost, "/v1/tasks/tl-aaaa/relationships", api.RelationshipCreateRequest{
		TargetTaskID:       "tl-bbbb",
		RelationshipTypeID: models.RelationshipParentOf,
		Data:               json.RawMessage(`{"weight": 2}`),
		Note:               " split out ",
	}, http.StatusCreated, &rel)
	if rel.SourceTaskID != "tl-aaaa" || rel.TargetTaskID != "tl-bbbb" || rel.Note != "split out" {
		t.Fatalf("unexpected relationship: %+v", rel)
	}

	var details models.RelationshipWithDetails
	env.mustDo(t, http.MethodGet, "/v1/tasks/tl-bbbb/relationships/"+rel.ID, nil, http.StatusOK, &details)
	if details.RelationshipType.TypeName != models.RelationshipParentOf || details.SourceTask.ID != "tl-aaaa" {
		t.Fatalf("unexpected details: %+v", details)
	}
	var data map[string]int
	if err := json.Unmarshal(details.Relationship.Data, &data); err != nil || data["weight"] != 2 {
		t.Fatalf("data not preserved: %s (%v)", details.Relationship.Data, err)
	}

	subjects := env.publisher.subjects()
	if subjects[len(subjects)-1] != "tasklink.relationship.created" {
		t.Fatalf("expected relationship.created event, got %v", subjects)
	}
}

func TestCreateRelationshipRejections(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.createTask(t, "tl-aaaa", models.StatusTodo)
	env.createTask(t, "tl-bbbb", models.StatusTodo)

	tests := []struct {
		name      string
		source    string
		req       api.RelationshipCreateRequest
		status    int
		code      string
		errorCode int
	}{
		{
			name:      "self loop",
			source:    "tl-aaaa",
			req:       api.RelationshipCreateRequest{TargetTaskID: "tl-aaaa", RelationshipTypeID: models.RelationshipRelatesTo},
			status:    http.StatusBadRequest,
			code:      "self_relationship",
			errorCode: ErrCodeSelfRelationship,
		},
		{
			name:      "missing target task",
			source:    "tl-aaaa",
			req:       api.RelationshipCreateRequest{TargetTaskID: "tl-zzzz", RelationshipTypeID: models.RelationshipBlocks},
			status:    http.StatusNotFound,
			code:      "not_found",
			errorCode: ErrCodeNotFound,
		},
		{
			name:      "missing source task",
			source:    "tl-zzzz",
			req:       api.RelationshipCreateRequest{TargetTaskID: "tl-aaaa", RelationshipTypeID: models.RelationshipBlocks},
			status:    http.StatusNotFound,
			code:      "not_found",
			errorCode: ErrCodeNotFound,
		},
		{
			name:      "unknown type",
			source:    "tl-aaaa",
			req:       api.RelationshipCreateRequest{TargetTaskID: "tl-bbbb", RelationshipTypeID: "depends_on"},
			status:    http.StatusNotFound,
			code:      "not_found",
			errorCode: ErrCodeNotFound,
		},
		{
			name:      "missing type",
			source:    "tl-aaaa",
			req:       api.RelationshipCreateRequest{TargetTaskID: "tl-bbbb"},
			status:    http.StatusBadRequest,
			code:      "invalid_argument",
			errorCode: ErrCodeInvalidArgument,
		},
		{
			name:      "data must be an object",
			source:    "tl-aaaa",
			req:       api.RelationshipCreateRequest{TargetTaskID: "tl-bbbb", RelationshipTypeID: models.RelationshipBlocks, Data: json.RawMessage(`[1,2]`)},
			status:    http.StatusBadRequest,
			code:      "invalid_argument",
			errorCode: ErrCodeInvalidArgument,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/v1/tasks/"+tc.source+"/relationships", tc.req)
			errResp := expectError(t, w, tc.status, tc.code)
			if errResp.ErrorCode != tc.errorCode {
				t.Fatalf("expected error_code %d, got %d", tc.errorCode, errResp.ErrorCode)
			}
		})
	}

	var rels []models.Relationship
	env.mustDo(t, http.MethodGet, "/v1/relationships?source_task_id=tl-aaaa", nil, http.StatusOK, &rels)
	if len(rels) != 0 {
		t.Fatalf("rejected creates must not write edges, got %d", len(rels))
	}
}

func TestScopedRelationshipRoutes(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.createTask(t, "tl-aaaa", models.StatusTodo)
	env.createTask(t, "tl-bbbb", models.StatusTodo)
	env.createTask(t, "tl-cccc", models.StatusTodo)
	rel := env.link(t, "tl-aaaa", "tl-bbbb", models.RelationshipRelatesTo)

	t.Run("task not on edge", func(t *testing.T) {
		for _, method := range []string{http.MethodGet, http.MethodPatch, http.MethodDelete} {
			var body any
			if method == http.MethodPatch {
				body = api.RelationshipUpdateRequest{Note: strPtr("x")}
			}
			w := env.do(t, method, "/v1/tasks/tl-cccc/relationships/"+rel.ID, body)
			errResp := expectError(t, w, http.StatusBadRequest, "relationship_not_on_task")
			if errResp.ErrorCode != ErrCodeRelationshipNotOnTask {
				t.Fatalf("%s: expected error_code %d, got %d", method, ErrCodeRelationshipNotOnTask, errResp.ErrorCode)
			}
		}
	})

	t.Run("bad relationship id", func(t *testing.T) {
		expectError(t, env.do(t, http.MethodGet, "/v1/tasks/tl-aaaa/relationships/not-a-uuid", nil), http.StatusBadRequest, "invalid_argument")
	})

	t.Run("update retargets and retypes", func(t *testing.T) {
		var updated models.Relationship
		env.mustDo(t, http.MethodPatch, "/v1/tasks/tl-aaaa/relationships/"+rel.ID, api.RelationshipUpdateRequest{
			TargetTaskID:       strPtr("tl-cccc"),
			RelationshipTypeID: strPtr(models.RelationshipDuplicates),
			Data:               json.RawMessage(`{"reason":"same bug"}`),
		}, http.StatusOK, &updated)
		if updated.TargetTaskID != "tl-cccc" || updated.ID != rel.ID {
			t.Fatalf("unexpected update: %+v", updated)
		}
		if updated.RelationshipTypeID == rel.RelationshipTypeID {
			t.Fatal("expected relationship type to change")
		}
	})

	t.Run("update rejects self loop", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, "/v1/tasks/tl-aaaa/relationships/"+rel.ID, api.RelationshipUpdateRequest{TargetTaskID: strPtr("tl-aaaa")})
		expectError(t, w, http.StatusBadRequest, "self_relationship")
	})

	t.Run("delete", func(t *testing.T) {
		var resp api.DeleteResponse
		env.mustDo(t, http.MethodDelete, "/v1/tasks/tl-cccc/relationships/"+rel.ID, nil, http.StatusOK, &resp)
		if resp.Deleted != 1 {
			t.Fatalf("expected one deleted edge, got %+v", resp)
		}
		expectError(t, env.do(t, http.MethodGet, "/v1/tasks/tl-aaaa/relationships/"+rel.ID, nil), http.StatusNotFound, "not_found")
	})
}

func TestGroupedTaskRelationships(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.createTask(t, "tl-aaaa", models.StatusTodo)
	env.createTask(t, "tl-bbbb", models.StatusTodo)
	env.createTask(t, "tl-cccc", models.StatusTodo)
	env.link(t, "tl-aaaa", "tl-bbbb", models.RelationshipBlocks)
	env.link(t, "tl-cccc", "tl-aaaa", models.RelationshipBlocks)
	env.link(t, "tl-aaaa", "tl-cccc", models.RelationshipRelatesTo)

	var groups []models.RelationshipGroup
	env.mustDo(t, http.MethodGet, "/v1/tasks/tl-aaaa/relationships", nil, http.StatusOK, &groups)
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	// Ordered by display name: "Blocks" before "Relates to".
	blocks, relates := groups[0], groups[1]
	if blocks.RelationshipType.TypeName != models.RelationshipBlocks || relates.RelationshipType.TypeName != models.RelationshipRelatesTo {
		t.Fatalf("unexpected group order: %s, %s", blocks.RelationshipType.TypeName, relates.RelationshipType.TypeName)
	}
	if len(blocks.Forward) != 1 || len(blocks.Reverse) != 1 {
		t.Fatalf("unexpected blocks buckets: forward=%d reverse=%d", len(blocks.Forward), len(blocks.Reverse))
	}
	if blocks.Forward[0].TargetTask.ID != "tl-bbbb" || blocks.Reverse[0].SourceTask.ID != "tl-cccc" {
		t.Fatalf("unexpected bucket contents: %+v", blocks)
	}
	if len(relates.Forward) != 1 || len(relates.Reverse) != 0 {
		t.Fatalf("unexpected relates buckets: %+v", relates)
	}

	expectError(t, env.do(t, http.MethodGet, "/v1/tasks/tl-zzzz/relationships", nil), http.StatusNotFound, "not_found")
}

func TestListRelationships(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.createTask(t, "tl-aaaa", models.StatusTodo)
	env.createTask(t, "tl-bbbb", models.StatusTodo)
	env.createTask(t, "tl-cccc", models.StatusTodo)
	env.link(t, "tl-aaaa", "tl-bbbb", models.RelationshipBlocks)
	env.link(t, "tl-cccc", "tl-bbbb", models.RelationshipRelatesTo)

	var rels []models.Relationship
	env.mustDo(t, http.MethodGet, "/v1/relationships?target_task_id=tl-bbbb", nil, http.StatusOK, &rels)
	if len(rels) != 2 {
		t.Fatalf("expected 2 incoming edges, got %d", len(rels))
	}

	env.mustDo(t, http.MethodGet, "/v1/relationships?type=blocks", nil, http.StatusOK, &rels)
	if len(rels) != 1 || rels[0].SourceTaskID != "tl-aaaa" {
		t.Fatalf("unexpected edges by type: %+v", rels)
	}

	env.mustDo(t, http.MethodGet, "/v1/relationships?source_task_id=tl-bbbb", nil, http.StatusOK, &rels)
	if len(rels) != 0 {
		t.Fatalf("expected no outgoing edges, got %d", len(rels))
	}

	for _, query := range []string{"", "?source_task_id=tl-aaaa&type=blocks"} {
		w := env.do(t, http.MethodGet, "/v1/relationships"+query, nil)
		errResp := expectError(t, w, http.StatusBadRequest, "invalid_argument")
		if errResp.ErrorCode != ErrCodeInvalidQuery {
			t.Fatalf("query %q: expected error_code %d, got %d", query, ErrCodeInvalidQuery, errResp.ErrorCode)
		}
	}
	expectError(t, env.do(t, http.MethodGet, "/v1/relationships?type=nope", nil), http.StatusNotFound, "not_found")
}

func TestCustomBlockingType(t *testing.T) {
	env := newTestEnv(t, Config{})
	env.createTask(t, "tl-aaaa", models.StatusTodo)
	env.createTask(t, "tl-bbbb", models.StatusInReview)

	env.mustDo(t, http.MethodPost, "/v1/relationship-types", api.RelationshipTypeCreateRequest{
		TypeName:                 "gates_release",
		DisplayName:              "Gates release",
		IsDirectional:            true,
		ForwardLabel:             "gates",
		ReverseLabel:             "gated by",
		EnforcesBlocking:         true,
		BlockingDisabledStatuses: []string{"done"},
		BlockingSourceStatuses:   []string{"inreview"},
	}, http.StatusCreated, nil)
	env.link(t, "tl-bbbb", "tl-aaaa", "gates_release")

	var task models.Task
	// Statuses outside the disabled set are never vetoed.
	env.mustDo(t, http.MethodPatch, "/v1/tasks/tl-aaaa", api.TaskUpdateRequest{Status: strPtr("inprogress")}, http.StatusOK, &task)

	w := env.do(t, http.MethodPatch, "/v1/tasks/tl-aaaa", api.TaskUpdateRequest{Status: strPtr("done")})
	errResp := expectError(t, w, http.StatusConflict, "transition_blocked")
	if len(errResp.Details.Blockers) != 1 || errResp.Details.Blockers[0].SourceStatus != models.StatusInReview {
		t.Fatalf("unexpected blockers: %+v", errResp.Details)
	}

	// A source outside the blocking source set no longer blocks.
	env.mustDo(t, http.MethodPatch, "/v1/tasks/tl-bbbb", api.TaskUpdateRequest{Status: strPtr("todo")}, http.StatusOK, &task)
	env.mustDo(t, http.MethodPatch, "/v1/tasks/tl-aaaa", api.TaskUpdateRequest{Status: strPtr("done")}, http.StatusOK, &task)
}
