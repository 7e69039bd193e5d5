package server

import (
	"net/http"
	"strings"

	"tasklink/internal/api"
	"tasklink/internal/events"
	"tasklink/internal/store"
)

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req api.TaskCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	task, err := s.tasks.Create(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityTask, events.ActionCreated, events.TaskChanged{Task: task, TaskID: task.ID, At: eventTime()})
	s.writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	statuses, err := normalizeStatuses(splitCSV(r.URL.Query().Get("status")))
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	filter := store.TaskFilter{
		ProjectID: strings.TrimSpace(r.URL.Query().Get("project_id")),
		Statuses:  statuses,
		Limit:     limit,
	}
	tasks, err := s.tasks.List(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	task, err := s.tasks.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	var req api.TaskUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	task, prev, err := s.tasks.Update(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	payload := events.TaskChanged{Task: task, TaskID: task.ID, At: eventTime()}
	if prev != task.Status {
		payload.PrevStatus = string(prev)
	}
	s.publish(r.Context(), events.EntityTask, events.ActionUpdated, payload)
	s.writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	removed, err := s.tasks.Delete(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityTask, events.ActionDeleted, events.TaskChanged{TaskID: id, At: eventTime()})
	s.writeJSON(w, http.StatusOK, api.TaskDeleteResponse{ID: id, RelationshipsDeleted: removed})
}

func (s *Server) handleTaskBlockers(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	edges, err := s.tasks.Blockers(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.BlockersResponse{TaskID: id, Blocked: len(edges) > 0, Blockers: edges})
}
