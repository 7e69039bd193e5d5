package server

import (
	"context"
	"net/http"

	"tasklink/internal/api"
)

type schemaVersioner interface {
	SchemaVersion(ctx context.Context) (int, error)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	resp := api.InfoResponse{
		ProjectPrefix:        s.projectPrefix,
		EventsEnabled:        s.eventsEnabled(),
		AdminTokenConfigured: s.adminTokenHash != "",
	}

	if versioner, ok := s.store.(schemaVersioner); ok {
		version, err := versioner.SchemaVersion(r.Context())
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		resp.SchemaVersion = version
	}

	s.writeJSON(w, http.StatusOK, resp)
}
