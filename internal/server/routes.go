package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health check and info.
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /v1/info", s.handleInfo)

	// Projects.
	mux.HandleFunc("POST /v1/projects", s.handleCreateProject)
	mux.HandleFunc("GET /v1/projects", s.handleListProjects)
	mux.HandleFunc("GET /v1/projects/{id}", s.handleGetProject)
	mux.HandleFunc("DELETE /v1/projects/{id}", s.handleDeleteProject)

	// Tasks.
	mux.HandleFunc("POST /v1/tasks", s.handleCreateTask)
	mux.HandleFunc("GET /v1/tasks", s.handleListTasks)
	mux.HandleFunc("GET /v1/tasks/{id}", s.handleGetTask)
	mux.HandleFunc("PATCH /v1/tasks/{id}", s.handleUpdateTask)
	mux.HandleFunc("DELETE /v1/tasks/{id}", s.handleDeleteTask)
	mux.HandleFunc("GET /v1/tasks/{id}/blockers", s.handleTaskBlockers)

	// Relationships scoped to a task.
	mux.HandleFunc("GET /v1/tasks/{id}/relationships", s.handleTaskRelationships)
	mux.HandleFunc("POST /v1/tasks/{id}/relationships", s.handleCreateRelationship)
	mux.HandleFunc("GET /v1/tasks/{id}/relationships/{rid}", s.handleGetRelationship)
	mux.HandleFunc("PATCH /v1/tasks/{id}/relationships/{rid}", s.handleUpdateRelationship)
	mux.HandleFunc("DELETE /v1/tasks/{id}/relationships/{rid}", s.handleDeleteRelationship)
	mux.HandleFunc("GET /v1/relationships", s.handleListRelationships)

	// Relationship types. Writes require the admin token when configured.
	mux.HandleFunc("GET /v1/relationship-types", s.handleListRelationshipTypes)
	mux.HandleFunc("GET /v1/relationship-types/{ref}", s.handleGetRelationshipType)
	mux.HandleFunc("POST /v1/relationship-types", s.handleCreateRelationshipType)
	mux.HandleFunc("PATCH /v1/relationship-types/{ref}", s.handleUpdateRelationshipType)
	mux.HandleFunc("DELETE /v1/relationship-types/{ref}", s.handleDeleteRelationshipType)

	// Templates and template groups.
	mux.HandleFunc("GET /v1/template-groups", s.handleTemplateGroupTree)
	mux.HandleFunc("POST /v1/template-groups", s.handleCreateTemplateGroup)
	mux.HandleFunc("PATCH /v1/template-groups/{gid}", s.handleUpdateTemplateGroup)
	mux.HandleFunc("DELETE /v1/template-groups/{gid}", s.handleDeleteTemplateGroup)
	mux.HandleFunc("GET /v1/templates", s.handleListTemplates)
	mux.HandleFunc("POST /v1/templates", s.handleCreateTemplate)
	mux.HandleFunc("GET /v1/templates/{ref}", s.handleGetTemplate)
	mux.HandleFunc("PATCH /v1/templates/{tid}", s.handleUpdateTemplate)
	mux.HandleFunc("DELETE /v1/templates/{tid}", s.handleDeleteTemplate)

	return mux
}
