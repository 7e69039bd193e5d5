package api

// TemplateGroupCreateRequest defines the payload for creating a template group.
type TemplateGroupCreateRequest struct {
	Name          string `json:"name"`
	ParentGroupID string `json:"parent_group_id,omitempty"`
}

// TemplateGroupUpdateRequest renames or moves a group. An empty
// parent_group_id moves the group to the root.
type TemplateGroupUpdateRequest struct {
	Name          *string `json:"name,omitempty"`
	ParentGroupID *string `json:"parent_group_id,omitempty"`
}

// TemplateCreateRequest defines the payload for creating a task template.
type TemplateCreateRequest struct {
	GroupID           string `json:"group_id,omitempty"`
	TemplateName      string `json:"template_name"`
	TemplateTitle     string `json:"template_title"`
	TicketTitle       string `json:"ticket_title"`
	TicketDescription string `json:"ticket_description,omitempty"`
}

// TemplateUpdateRequest defines the payload for a partial template update.
type TemplateUpdateRequest struct {
	GroupID           *string `json:"group_id,omitempty"`
	TemplateName      *string `json:"template_name,omitempty"`
	TemplateTitle     *string `json:"template_title,omitempty"`
	TicketTitle       *string `json:"ticket_title,omitempty"`
	TicketDescription *string `json:"ticket_description,omitempty"`
}
