package server

import (
	"net/http"
	"strings"

	"tasklink/internal/api"
	"tasklink/internal/events"
	"tasklink/internal/models"
	"tasklink/internal/store"
)

func (s *Server) handleTemplateGroupTree(w http.ResponseWriter, r *http.Request) {
	tree, err := s.templates.Tree(r.Context())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleCreateTemplateGroup(w http.ResponseWriter, r *http.Request) {
	var req api.TemplateGroupCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	group, err := s.templates.CreateGroup(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityTemplateGroup, events.ActionCreated, events.TemplateChanged{Group: group, ID: group.ID, At: eventTime()})
	s.writeJSON(w, http.StatusCreated, group)
}

func (s *Server) handleUpdateTemplateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUIDOrBadRequest(w, r, "gid")
	if !ok {
		return
	}
	var req api.TemplateGroupUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	group, err := s.templates.UpdateGroup(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityTemplateGroup, events.ActionUpdated, events.TemplateChanged{Group: group, ID: group.ID, At: eventTime()})
	s.writeJSON(w, http.StatusOK, group)
}

func (s *Server) handleDeleteTemplateGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUIDOrBadRequest(w, r, "gid")
	if !ok {
		return
	}

	if err := s.templates.DeleteGroup(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityTemplateGroup, events.ActionDeleted, events.TemplateChanged{ID: id, At: eventTime()})
	s.writeJSON(w, http.StatusOK, api.DeleteResponse{ID: id, Deleted: 1})
}

func (s *Server) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := store.TemplateFilter{
		GroupID: strings.TrimSpace(query.Get("group_id")),
		Search:  strings.TrimSpace(query.Get("search")),
	}

	templates, err := s.templates.ListTemplates(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if templates == nil {
		templates = []models.TaskTemplate{}
	}
	s.writeJSON(w, http.StatusOK, templates)
}

func (s *Server) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := s.templates.GetTemplate(r.Context(), r.PathValue("ref"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req api.TemplateCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	tmpl, err := s.templates.CreateTemplate(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityTemplate, events.ActionCreated, events.TemplateChanged{Template: tmpl, ID: tmpl.ID, At: eventTime()})
	s.writeJSON(w, http.StatusCreated, tmpl)
}

func (s *Server) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUIDOrBadRequest(w, r, "tid")
	if !ok {
		return
	}
	var req api.TemplateUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	tmpl, err := s.templates.UpdateTemplate(r.Context(), id, req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityTemplate, events.ActionUpdated, events.TemplateChanged{Template: tmpl, ID: tmpl.ID, At: eventTime()})
	s.writeJSON(w, http.StatusOK, tmpl)
}

func (s *Server) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUIDOrBadRequest(w, r, "tid")
	if !ok {
		return
	}

	if err := s.templates.DeleteTemplate(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityTemplate, events.ActionDeleted, events.TemplateChanged{ID: id, At: eventTime()})
	s.writeJSON(w, http.StatusOK, api.DeleteResponse{ID: id, Deleted: 1})
}
