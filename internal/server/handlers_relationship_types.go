package server

import (
	"net/http"
	"strings"

	"tasklink/internal/api"
	"tasklink/internal/events"
	"tasklink/internal/models"
)

func (s *Server) handleListRelationshipTypes(w http.ResponseWriter, r *http.Request) {
	systemOnly, err := queryBool(r, "system")
	if err != nil {
		s.writeErrorReq(w, r, http.StatusBadRequest, err)
		return
	}

	var types []models.RelationshipType
	if systemOnly {
		types, err = s.registry.FindSystemTypes(r.Context())
	} else {
		types, err = s.registry.FindAll(r.Context(), strings.TrimSpace(r.URL.Query().Get("search")))
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if types == nil {
		types = []models.RelationshipType{}
	}
	s.writeJSON(w, http.StatusOK, types)
}

func (s *Server) handleGetRelationshipType(w http.ResponseWriter, r *http.Request) {
	typ, err := s.registry.Resolve(r.Context(), r.PathValue("ref"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, typ)
}

func (s *Server) handleCreateRelationshipType(w http.ResponseWriter, r *http.Request) {
	var req api.RelationshipTypeCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	spec, err := relationshipTypeFromRequest(req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	typ, err := s.registry.Create(r.Context(), spec)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityRelationshipType, events.ActionCreated, events.RelationshipTypeChanged{RelationshipType: typ, ID: typ.ID, At: eventTime()})
	s.writeJSON(w, http.StatusCreated, typ)
}

func (s *Server) handleUpdateRelationshipType(w http.ResponseWriter, r *http.Request) {
	var req api.RelationshipTypeUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	patch, err := relationshipTypePatchFromRequest(req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	existing, err := s.registry.Resolve(r.Context(), r.PathValue("ref"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	typ, err := s.registry.Update(r.Context(), existing.ID, patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityRelationshipType, events.ActionUpdated, events.RelationshipTypeChanged{RelationshipType: typ, ID: typ.ID, At: eventTime()})
	s.writeJSON(w, http.StatusOK, typ)
}

func (s *Server) handleDeleteRelationshipType(w http.ResponseWriter, r *http.Request) {
	existing, err := s.registry.Resolve(r.Context(), r.PathValue("ref"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	typ, err := s.registry.Delete(r.Context(), existing.ID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityRelationshipType, events.ActionDeleted, events.RelationshipTypeChanged{RelationshipType: typ, ID: typ.ID, At: eventTime()})
	s.writeJSON(w, http.StatusOK, typ)
}

func relationshipTypeFromRequest(req api.RelationshipTypeCreateRequest) (models.RelationshipType, error) {
	disabled, err := statusSet(req.BlockingDisabledStatuses)
	if err != nil {
		return models.RelationshipType{}, err
	}
	source, err := statusSet(req.BlockingSourceStatuses)
	if err != nil {
		return models.RelationshipType{}, err
	}
	return models.RelationshipType{
		TypeName:                 req.TypeName,
		DisplayName:              req.DisplayName,
		Description:              strings.TrimSpace(req.Description),
		IsDirectional:            req.IsDirectional,
		ForwardLabel:             strings.TrimSpace(req.ForwardLabel),
		ReverseLabel:             strings.TrimSpace(req.ReverseLabel),
		EnforcesBlocking:         req.EnforcesBlocking,
		BlockingDisabledStatuses: disabled,
		BlockingSourceStatuses:   source,
	}, nil
}

func relationshipTypePatchFromRequest(req api.RelationshipTypeUpdateRequest) (models.RelationshipTypePatch, error) {
	patch := models.RelationshipTypePatch{
		TypeName:         req.TypeName,
		DisplayName:      req.DisplayName,
		Description:      req.Description,
		IsDirectional:    req.IsDirectional,
		ForwardLabel:     req.ForwardLabel,
		ReverseLabel:     req.ReverseLabel,
		EnforcesBlocking: req.EnforcesBlocking,
	}
	if req.BlockingDisabledStatuses != nil {
		set, err := statusSet(*req.BlockingDisabledStatuses)
		if err != nil {
			return patch, err
		}
		patch.BlockingDisabledStatuses = &set
	}
	if req.BlockingSourceStatuses != nil {
		set, err := statusSet(*req.BlockingSourceStatuses)
		if err != nil {
			return patch, err
		}
		patch.BlockingSourceStatuses = &set
	}
	return patch, nil
}
