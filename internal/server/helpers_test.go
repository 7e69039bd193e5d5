package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"tasklink/internal/api"
	"tasklink/internal/models"
	"tasklink/internal/store"
)

type recordedEvent struct {
	subject string
	payload any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{subject: topic, payload: event})
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, event := range p.events {
		out = append(out, event.subject)
	}
	return out
}

type testEnv struct {
	srv       *Server
	store     *store.Store
	handler   http.Handler
	publisher *recordingPublisher
	projectID string
}

func newTestEnv(t *testing.T, cfg Config) *testEnv {
	t.Helper()
	t.Setenv(apiTokenEnvKey, "")

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	publisher := &recordingPublisher{}
	if cfg.ProjectPrefix == "" {
		cfg.ProjectPrefix = "tl"
	}
	if cfg.Publisher == nil {
		cfg.Publisher = publisher
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := New("127.0.0.1:0", st, cfg, logger)

	env := &testEnv{srv: srv, store: st, handler: srv.Handler(), publisher: publisher}
	var project models.Project
	env.mustDo(t, http.MethodPost, "/v1/projects", api.ProjectCreateRequest{Name: "Core"}, http.StatusCreated, &project)
	env.projectID = project.ID
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(v)
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func (e *testEnv) mustDo(t *testing.T, method, path string, body any, wantStatus int, out any) {
	t.Helper()
	w := e.do(t, method, path, body)
	if w.Code != wantStatus {
		t.Fatalf("%s %s: expected %d, got %d (%s)", method, path, wantStatus, w.Code, w.Body.String())
	}
	if out == nil {
		return
	}
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("%s %s: decode response: %v", method, path, err)
	}
}

func (e *testEnv) createTask(t *testing.T, id string, status models.TaskStatus) models.Task {
	t.Helper()
	statusValue := string(status)
	var task models.Task
	e.mustDo(t, http.MethodPost, "/v1/tasks", api.TaskCreateRequest{
		ID:        id,
		ProjectID: e.projectID,
		Title:     "Task " + id,
		Status:    &statusValue,
	}, http.StatusCreated, &task)
	return task
}

func (e *testEnv) link(t *testing.T, sourceID, targetID, typeRef string) models.Relationship {
	t.Helper()
	var rel models.Relationship
	e.mustDo(t, http.MethodPost, "/v1/tasks/"+sourceID+"/relationships", api.RelationshipCreateRequest{
		TargetTaskID:       targetID,
		RelationshipTypeID: typeRef,
	}, http.StatusCreated, &rel)
	return rel
}

func decodeErrorResponse(t *testing.T, w *httptest.ResponseRecorder) api.ErrorResponse {
	t.Helper()
	var errResp api.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &errResp); err != nil {
		t.Fatalf("decode error response: %v (%s)", err, w.Body.String())
	}
	return errResp
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) api.ErrorResponse {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected %d, got %d (%s)", status, w.Code, w.Body.String())
	}
	errResp := decodeErrorResponse(t, w)
	if code != "" && errResp.Code != code {
		t.Fatalf("expected code %q, got %q (%s)", code, errResp.Code, errResp.Error)
	}
	return errResp
}

func strPtr(v string) *string {
	return &v
}
