package models

import "time"

// TemplateGroup is a folder in the bounded-depth template tree.
type TemplateGroup struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	ParentGroupID string    `json:"parent_group_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TemplateGroupNode is a group with its nested children.
type TemplateGroupNode struct {
	TemplateGroup
	Children []TemplateGroupNode `json:"children"`
}

// TemplateGroupPatch carries the fields of a partial group update. A non-nil
// ParentGroupID pointing at "" moves the group to the root.
type TemplateGroupPatch struct {
	Name          *string
	ParentGroupID *string
}

// TaskTemplate is a reusable blueprint for creating tasks.
type TaskTemplate struct {
	ID                string    `json:"id"`
	GroupID           string    `json:"group_id,omitempty"`
	TemplateName      string    `json:"template_name"`
	TemplateTitle     string    `json:"template_title"`
	TicketTitle       string    `json:"ticket_title"`
	TicketDescription string    `json:"ticket_description"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TaskTemplatePatch carries the fields of a partial template update.
type TaskTemplatePatch struct {
	GroupID           *string
	TemplateName      *string
	TemplateTitle     *string
	TicketTitle       *string
	TicketDescription *string
}

// Apply merges the patch over t in place.
func (p TaskTemplatePatch) Apply(t *TaskTemplate) {
	if p.GroupID != nil {
		t.GroupID = *p.GroupID
	}
	if p.TemplateName != nil {
		t.TemplateName = *p.TemplateName
	}
	if p.TemplateTitle != nil {
		t.TemplateTitle = *p.TemplateTitle
	}
	if p.TicketTitle != nil {
		t.TicketTitle = *p.TicketTitle
	}
	if p.TicketDescription != nil {
		t.TicketDescription = *p.TicketDescription
	}
}
