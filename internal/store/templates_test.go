package store

import (
	"testing"
	"time"

	"tasklink/internal/models"
)

func seedGroup(t *testing.T, st *Store, name, parent string) *models.TemplateGroup {
	t.Helper()
	now := time.Now().UTC()
	group := &models.TemplateGroup{ID: NewUUID(), Name: name, ParentGroupID: parent, CreatedAt: now, UpdatedAt: now}
	if err := st.CreateTemplateGroup(testCtx(), group); err != nil {
		t.Fatalf("create group %s: %v", name, err)
	}
	return group
}

func TestTemplateGroupQueries(t *testing.T) {
	st := testStore(t)
	ctx := testCtx()
	root := seedGroup(t, st, "Ops", "")
	seedGroup(t, st, "Backend", "")
	child := seedGroup(t, st, "Incidents", root.ID)

	roots, err := st.ListTemplateGroups(ctx, TemplateGroupFilter{RootsOnly: true})
	if err != nil {
		t.Fatalf("list roots: %v", err)
	}
	if len(roots) != 2 || roots[0].Name != "Backend" {
		t.Fatalf("unexpected roots: %+v", roots)
	}

	children, err := st.ListTemplateGroups(ctx, TemplateGroupFilter{ParentGroupID: root.ID})
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 1 || children[0].ID != child.ID {
		t.Fatalf("unexpected children: %+v", children)
	}

	count, err := st.CountChildGroups(ctx, root.ID)
	if err != nil || count != 1 {
		t.Fatalf("expected 1 child, got %d (%v)", count, err)
	}

	child.ParentGroupID = ""
	child.UpdatedAt = time.Now().UTC()
	if err := st.UpdateTemplateGroup(ctx, child); err != nil {
		t.Fatalf("move to root: %v", err)
	}
	got, err := st.GetTemplateGroup(ctx, child.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ParentGroupID != "" {
		t.Fatalf("expected root group, got parent %q", got.ParentGroupID)
	}
}

func TestTemplateCRUDAndSearch(t *testing.T) {
	st := testStore(t)
	ctx := testCtx()
	group := seedGroup(t, st, "Ops", "")
	now := time.Now().UTC()

	tmpl := &models.TaskTemplate{
		ID:                NewUUID(),
		GroupID:           group.ID,
		TemplateName:      "incident",
		TemplateTitle:     "Incident follow-up",
		TicketTitle:       "Postmortem for outage",
		TicketDescription: "Collect timeline",
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := st.CreateTemplate(ctx, tmpl); err != nil {
		t.Fatalf("create: %v", err)
	}

	byName, err := st.GetTemplateByName(ctx, "incident")
	if err != nil || byName == nil || byName.ID != tmpl.ID {
		t.Fatalf("get by name: %+v (%v)", byName, err)
	}

	found, err := st.ListTemplates(ctx, TemplateFilter{Search: "postmortem"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("expected ticket title match, got %d", len(found))
	}

	inGroup, err := st.CountTemplatesInGroup(ctx, group.ID)
	if err != nil || inGroup != 1 {
		t.Fatalf("expected 1 template in group, got %d (%v)", inGroup, err)
	}

	dup := *tmpl
	dup.ID = NewUUID()
	if err := st.CreateTemplate(ctx, &dup); err == nil {
		t.Fatal("expected unique template_name violation")
	}

	tmpl.GroupID = ""
	tmpl.TicketDescription = "Collect timeline and owners"
	tmpl.UpdatedAt = time.Now().UTC()
	if err := st.UpdateTemplate(ctx, tmpl); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := st.GetTemplate(ctx, tmpl.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.GroupID != "" || got.TicketDescription != "Collect timeline and owners" {
		t.Fatalf("update not applied: %+v", got)
	}

	if n, err := st.DeleteTemplate(ctx, tmpl.ID); err != nil || n != 1 {
		t.Fatalf("delete template: %d (%v)", n, err)
	}
	if n, err := st.DeleteTemplateGroup(ctx, group.ID); err != nil || n != 1 {
		t.Fatalf("delete group: %d (%v)", n, err)
	}
}
