package api

import "tasklink/internal/models"

// ErrorResponse is a generic JSON error wrapper.
type ErrorResponse struct {
	Error     string        `json:"error"`
	Code      string        `json:"code,omitempty"`
	ErrorCode int           `json:"error_code,omitempty"`
	Details   *ErrorDetails `json:"details,omitempty"`
}

// ErrorDetails carries structured context for some errors.
type ErrorDetails struct {
	Blockers []models.Blocker `json:"blockers,omitempty"`
}

// InfoResponse is the response from GET /v1/info.
type InfoResponse struct {
	ProjectPrefix        string `json:"project_prefix"`
	SchemaVersion        int    `json:"schema_version"`
	EventsEnabled        bool   `json:"events_enabled"`
	AdminTokenConfigured bool   `json:"admin_token_configured"`
}

// DeleteResponse reports the outcome of a delete.
type DeleteResponse struct {
	ID      string `json:"id"`
	Deleted int64  `json:"deleted"`
}
