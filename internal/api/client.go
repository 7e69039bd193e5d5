package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"tasklink/internal/models"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	httpTimeoutEnvKey  = "TASKLINK_HTTP_TIMEOUT"
	apiTokenEnvKey     = "TASKLINK_API_TOKEN"
	adminTokenEnvKey   = "TASKLINK_ADMIN_TOKEN"
)

// Client is a simple HTTP client for the tasklink API.
type Client struct {
	baseURL    string
	http       *http.Client
	authToken  string
	adminToken string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		http:       &http.Client{Timeout: httpTimeoutFromEnv()},
		authToken:  strings.TrimSpace(os.Getenv(apiTokenEnvKey)),
		adminToken: strings.TrimSpace(os.Getenv(adminTokenEnvKey)),
	}
}

// WithAdminToken returns a copy of the client that sends token as X-Admin-Token.
func (c *Client) WithAdminToken(token string) *Client {
	clone := *c
	clone.adminToken = strings.TrimSpace(token)
	return &clone
}

// Ping checks whether the API server is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func (c *Client) GetInfo(ctx context.Context) (InfoResponse, error) {
	var resp InfoResponse
	err := c.do(ctx, http.MethodGet, "/v1/info", nil, nil, &resp)
	return resp, err
}

// Projects

func (c *Client) CreateProject(ctx context.Context, req ProjectCreateRequest) (models.Project, error) {
	var resp models.Project
	err := c.do(ctx, http.MethodPost, "/v1/projects", nil, req, &resp)
	return resp, err
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var resp []models.Project
	err := c.do(ctx, http.MethodGet, "/v1/projects", nil, nil, &resp)
	return resp, err
}

func (c *Client) DeleteProject(ctx context.Context, id string) (DeleteResponse, error) {
	var resp DeleteResponse
	err := c.do(ctx, http.MethodDelete, "/v1/projects/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

// Tasks

func (c *Client) CreateTask(ctx context.Context, req TaskCreateRequest) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodPost, "/v1/tasks", nil, req, &resp)
	return resp, err
}

func (c *Client) GetTask(ctx context.Context, id string) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodGet, "/v1/tasks/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) ListTasks(ctx context.Context, query url.Values) ([]models.Task, error) {
	var resp []models.Task
	err := c.do(ctx, http.MethodGet, "/v1/tasks", query, nil, &resp)
	return resp, err
}

func (c *Client) UpdateTask(ctx context.Context, id string, req TaskUpdateRequest) (models.Task, error) {
	var resp models.Task
	err := c.do(ctx, http.MethodPatch, "/v1/tasks/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) (TaskDeleteResponse, error) {
	var resp TaskDeleteResponse
	err := c.do(ctx, http.MethodDelete, "/v1/tasks/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) TaskBlockers(ctx context.Context, id string) (BlockersResponse, error) {
	var resp BlockersResponse
	err := c.do(ctx, http.MethodGet, "/v1/tasks/"+url.PathEscape(id)+"/blockers", nil, nil, &resp)
	return resp, err
}

// Relationships

func taskRelationshipsPath(taskID string) string {
	return "/v1/tasks/" + url.PathEscape(taskID) + "/relationships"
}

func (c *Client) TaskRelationships(ctx context.Context, taskID string) ([]models.RelationshipGroup, error) {
	var resp []models.RelationshipGroup
	err := c.do(ctx, http.MethodGet, taskRelationshipsPath(taskID), nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateRelationship(ctx context.Context, taskID string, req RelationshipCreateRequest) (models.Relationship, error) {
	var resp models.Relationship
	err := c.do(ctx, http.MethodPost, taskRelationshipsPath(taskID), nil, req, &resp)
	return resp, err
}

func (c *Client) GetRelationship(ctx context.Context, taskID, id string) (models.RelationshipWithDetails, error) {
	var resp models.RelationshipWithDetails
	err := c.do(ctx, http.MethodGet, taskRelationshipsPath(taskID)+"/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) UpdateRelationship(ctx context.Context, taskID, id string, req RelationshipUpdateRequest) (models.Relationship, error) {
	var resp models.Relationship
	err := c.do(ctx, http.MethodPatch, taskRelationshipsPath(taskID)+"/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteRelationship(ctx context.Context, taskID, id string) (DeleteResponse, error) {
	var resp DeleteResponse
	err := c.do(ctx, http.MethodDelete, taskRelationshipsPath(taskID)+"/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) ListRelationships(ctx context.Context, query url.Values) ([]models.Relationship, error) {
	var resp []models.Relationship
	err := c.do(ctx, http.MethodGet, "/v1/relationships", query, nil, &resp)
	return resp, err
}

// Relationship types

func (c *Client) ListRelationshipTypes(ctx context.Context, query url.Values) ([]models.RelationshipType, error) {
	var resp []models.RelationshipType
	err := c.do(ctx, http.MethodGet, "/v1/relationship-types", query, nil, &resp)
	return resp, err
}

// GetRelationshipType resolves ref as an id or a type_name.
func (c *Client) GetRelationshipType(ctx context.Context, ref string) (models.RelationshipType, error) {
	var resp models.RelationshipType
	err := c.do(ctx, http.MethodGet, "/v1/relationship-types/"+url.PathEscape(ref), nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateRelationshipType(ctx context.Context, req RelationshipTypeCreateRequest) (models.RelationshipType, error) {
	var resp models.RelationshipType
	err := c.do(ctx, http.MethodPost, "/v1/relationship-types", nil, req, &resp)
	return resp, err
}

func (c *Client) UpdateRelationshipType(ctx context.Context, id string, req RelationshipTypeUpdateRequest) (models.RelationshipType, error) {
	var resp models.RelationshipType
	err := c.do(ctx, http.MethodPatch, "/v1/relationship-types/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteRelationshipType(ctx context.Context, id string) (models.RelationshipType, error) {
	var resp models.RelationshipType
	err := c.do(ctx, http.MethodDelete, "/v1/relationship-types/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

// Templates

func (c *Client) TemplateGroupTree(ctx context.Context) ([]models.TemplateGroupNode, error) {
	var resp []models.TemplateGroupNode
	err := c.do(ctx, http.MethodGet, "/v1/template-groups", nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateTemplateGroup(ctx context.Context, req TemplateGroupCreateRequest) (models.TemplateGroup, error) {
	var resp models.TemplateGroup
	err := c.do(ctx, http.MethodPost, "/v1/template-groups", nil, req, &resp)
	return resp, err
}

func (c *Client) UpdateTemplateGroup(ctx context.Context, id string, req TemplateGroupUpdateRequest) (models.TemplateGroup, error) {
	var resp models.TemplateGroup
	err := c.do(ctx, http.MethodPatch, "/v1/template-groups/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteTemplateGroup(ctx context.Context, id string) (DeleteResponse, error) {
	var resp DeleteResponse
	err := c.do(ctx, http.MethodDelete, "/v1/template-groups/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) ListTemplates(ctx context.Context, query url.Values) ([]models.TaskTemplate, error) {
	var resp []models.TaskTemplate
	err := c.do(ctx, http.MethodGet, "/v1/templates", query, nil, &resp)
	return resp, err
}

func (c *Client) GetTemplate(ctx context.Context, ref string) (models.TaskTemplate, error) {
	var resp models.TaskTemplate
	err := c.do(ctx, http.MethodGet, "/v1/templates/"+url.PathEscape(ref), nil, nil, &resp)
	return resp, err
}

func (c *Client) CreateTemplate(ctx context.Context, req TemplateCreateRequest) (models.TaskTemplate, error) {
	var resp models.TaskTemplate
	err := c.do(ctx, http.MethodPost, "/v1/templates", nil, req, &resp)
	return resp, err
}

func (c *Client) UpdateTemplate(ctx context.Context, id string, req TemplateUpdateRequest) (models.TaskTemplate, error) {
	var resp models.TaskTemplate
	err := c.do(ctx, http.MethodPatch, "/v1/templates/"+url.PathEscape(id), nil, req, &resp)
	return resp, err
}

func (c *Client) DeleteTemplate(ctx context.Context, id string) (DeleteResponse, error) {
	var resp DeleteResponse
	err := c.do(ctx, http.MethodDelete, "/v1/templates/"+url.PathEscape(id), nil, nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuthHeader(req)
	c.setAdminHeader(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if out == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error != "" {
		apiErr := &APIError{
			Status:    resp.StatusCode,
			Code:      errResp.Code,
			ErrorCode: errResp.ErrorCode,
			Message:   errResp.Error,
		}
		if errResp.Details != nil {
			apiErr.Blockers = errResp.Details.Blockers
		}
		return apiErr
	}
	return &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("api error: %s", resp.Status)}
}

func (c *Client) setAuthHeader(req *http.Request) {
	if c.authToken == "" || req == nil {
		return
	}
	req.Header.Set("Authorization", "Bearer "+c.authToken)
}

func (c *Client) setAdminHeader(req *http.Request) {
	if c.adminToken == "" || req == nil {
		return
	}
	req.Header.Set("X-Admin-Token", c.adminToken)
}

func httpTimeoutFromEnv() time.Duration {
	value := strings.TrimSpace(os.Getenv(httpTimeoutEnvKey))
	if value == "" {
		return defaultHTTPTimeout
	}

	if duration, err := time.ParseDuration(value); err == nil && duration > 0 {
		return duration
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	return defaultHTTPTimeout
}
