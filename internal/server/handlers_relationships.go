package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tasklink/internal/api"
	"tasklink/internal/events"
	"tasklink/internal/models"
)

func (s *Server) handleTaskRelationships(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}

	groups, err := s.graph.GroupedByTask(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleCreateRelationship(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return
	}
	var req api.RelationshipCreateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	typeID, err := s.resolveTypeID(r.Context(), req.RelationshipTypeID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	rel, err := s.graph.Create(r.Context(), id, models.RelationshipSpec{
		TargetTaskID:       req.TargetTaskID,
		RelationshipTypeID: typeID,
		Data:               req.Data,
		Note:               req.Note,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityRelationship, events.ActionCreated, events.RelationshipChanged{Relationship: rel, ID: rel.ID, At: eventTime()})
	s.writeJSON(w, http.StatusCreated, rel)
}

func (s *Server) handleGetRelationship(w http.ResponseWriter, r *http.Request) {
	taskID, relID, ok := s.taskRelationshipPath(w, r)
	if !ok {
		return
	}

	details, err := s.graph.FindWithDetails(r.Context(), relID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := requireEndpoint(&details.Relationship, taskID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleUpdateRelationship(w http.ResponseWriter, r *http.Request) {
	taskID, relID, ok := s.taskRelationshipPath(w, r)
	if !ok {
		return
	}
	var req api.RelationshipUpdateRequest
	if !s.decodeJSONReq(w, r, &req) {
		return
	}

	existing, err := s.graph.Get(r.Context(), relID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := requireEndpoint(existing, taskID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	patch := models.RelationshipPatch{
		TargetTaskID: req.TargetTaskID,
		Data:         req.Data,
		Note:         req.Note,
	}
	if req.RelationshipTypeID != nil {
		typeID, err := s.resolveTypeID(r.Context(), *req.RelationshipTypeID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		patch.RelationshipTypeID = &typeID
	}

	rel, err := s.graph.Update(r.Context(), relID, patch)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.publish(r.Context(), events.EntityRelationship, events.ActionUpdated, events.RelationshipChanged{Relationship: rel, ID: rel.ID, At: eventTime()})
	s.writeJSON(w, http.StatusOK, rel)
}

func (s *Server) handleDeleteRelationship(w http.ResponseWriter, r *http.Request) {
	taskID, relID, ok := s.taskRelationshipPath(w, r)
	if !ok {
		return
	}

	existing, err := s.graph.Get(r.Context(), relID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if err := requireEndpoint(existing, taskID); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	deleted, err := s.graph.Delete(r.Context(), relID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	if deleted > 0 {
		s.publish(r.Context(), events.EntityRelationship, events.ActionDeleted, events.RelationshipChanged{Relationship: existing, ID: relID, At: eventTime()})
	}
	s.writeJSON(w, http.StatusOK, api.DeleteResponse{ID: relID, Deleted: deleted})
}

// handleListRelationships lists edges by exactly one of source_task_id,
// target_task_id or type (id or type_name).
func (s *Server) handleListRelationships(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	source := strings.TrimSpace(query.Get("source_task_id"))
	target := strings.TrimSpace(query.Get("target_task_id"))
	typeRef := strings.TrimSpace(query.Get("type"))

	set := 0
	for _, value := range []string{source, target, typeRef} {
		if value != "" {
			set++
		}
	}
	if set != 1 {
		s.writeErrorReq(w, r, http.StatusBadRequest,
			badRequestCode(fmt.Errorf("exactly one of source_task_id, target_task_id or type is required"), ErrCodeInvalidQuery))
		return
	}

	var (
		rels []models.Relationship
		err  error
	)
	switch {
	case source != "":
		rels, err = s.graph.FindBySource(r.Context(), source)
	case target != "":
		rels, err = s.graph.FindByTarget(r.Context(), target)
	default:
		var typeID string
		typeID, err = s.resolveTypeID(r.Context(), typeRef)
		if err == nil {
			rels, err = s.graph.FindByType(r.Context(), typeID)
		}
	}
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if rels == nil {
		rels = []models.Relationship{}
	}
	s.writeJSON(w, http.StatusOK, rels)
}

func (s *Server) taskRelationshipPath(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	taskID, ok := s.pathIDOrBadRequest(w, r)
	if !ok {
		return "", "", false
	}
	relID, ok := s.pathUUIDOrBadRequest(w, r, "rid")
	if !ok {
		return "", "", false
	}
	return taskID, relID, true
}

// resolveTypeID accepts a relationship type id or type_name.
func (s *Server) resolveTypeID(ctx context.Context, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", models.Validationf("relationship_type_id is required")
	}
	typ, err := s.registry.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}
	return typ.ID, nil
}

func requireEndpoint(rel *models.Relationship, taskID string) error {
	if rel.SourceTaskID == taskID || rel.TargetTaskID == taskID {
		return nil
	}
	return models.Validationf("relationship %s does not involve task %s", rel.ID, taskID).WithCode("relationship_not_on_task")
}
