package server

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tasklink/internal/api"
	"tasklink/internal/models"
	"tasklink/internal/store"
)

// maxGroupWalk caps parent-chain walks so corrupt data cannot loop forever.
const maxGroupWalk = 32

// TemplateService manages task templates and the template group tree.
type TemplateService struct {
	store store.Repository
	now   func() time.Time
}

// NewTemplateService constructs a TemplateService.
func NewTemplateService(repo store.Repository) *TemplateService {
	return &TemplateService{store: repo, now: utcNow}
}

// CreateGroup adds a group under an optional parent.
func (s *TemplateService) CreateGroup(ctx context.Context, req api.TemplateGroupCreateRequest) (*models.TemplateGroup, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, models.Validationf("name is required")
	}
	parentID := strings.TrimSpace(req.ParentGroupID)

	now := s.now()
	group := &models.TemplateGroup{
		ID:            store.NewUUID(),
		Name:          name,
		ParentGroupID: parentID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err := s.store.RunInTx(ctx, func(tx store.Repository) error {
		if parentID != "" {
			depth, err := groupDepth(ctx, tx, parentID)
			if err != nil {
				return err
			}
			if depth+1 > models.TemplateGroupMaxDepth {
				return depthExceeded()
			}
		}
		return tx.CreateTemplateGroup(ctx, group)
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// UpdateGroup renames or moves a group. Moves are rejected when they would
// create a cycle or push any descendant past the maximum depth.
func (s *TemplateService) UpdateGroup(ctx context.Context, id string, req api.TemplateGroupUpdateRequest) (*models.TemplateGroup, error) {
	patch := models.TemplateGroupPatch{Name: req.Name, ParentGroupID: req.ParentGroupID}
	if patch.Name == nil && patch.ParentGroupID == nil {
		return nil, badRequest(fmt.Errorf("no fields to update"))
	}

	var out *models.TemplateGroup
	err := s.store.RunInTx(ctx, func(tx store.Repository) error {
		group, err := loadGroup(ctx, tx, id)
		if err != nil {
			return err
		}

		merged := *group
		if patch.Name != nil {
			merged.Name = strings.TrimSpace(*patch.Name)
			if merged.Name == "" {
				return models.Validationf("name cannot be empty")
			}
		}
		if patch.ParentGroupID != nil {
			merged.ParentGroupID = strings.TrimSpace(*patch.ParentGroupID)
		}

		if merged.ParentGroupID != group.ParentGroupID {
			if err := checkGroupMove(ctx, tx, group.ID, merged.ParentGroupID); err != nil {
				return err
			}
		}

		merged.UpdatedAt = s.now()
		if err := tx.UpdateTemplateGroup(ctx, &merged); err != nil {
			return err
		}
		out = &merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteGroup removes an empty group.
func (s *TemplateService) DeleteGroup(ctx context.Context, id string) error {
	return s.store.RunInTx(ctx, func(tx store.Repository) error {
		group, err := loadGroup(ctx, tx, id)
		if err != nil {
			return err
		}
		children, err := tx.CountChildGroups(ctx, group.ID)
		if err != nil {
			return err
		}
		templates, err := tx.CountTemplatesInGroup(ctx, group.ID)
		if err != nil {
			return err
		}
		if children > 0 || templates > 0 {
			return models.Validationf("group %s still has %d child groups and %d templates", group.Name, children, templates).
				WithCode("group_not_empty")
		}
		_, err = tx.DeleteTemplateGroup(ctx, group.ID)
		return err
	})
}

// Tree returns the root groups with their nested children, sorted by name.
func (s *TemplateService) Tree(ctx context.Context) ([]models.TemplateGroupNode, error) {
	groups, err := s.store.ListTemplateGroups(ctx, store.TemplateGroupFilter{})
	if err != nil {
		return nil, err
	}
	return buildGroupTree(groups), nil
}

// CreateTemplate validates and stores a template.
func (s *TemplateService) CreateTemplate(ctx context.Context, req api.TemplateCreateRequest) (*models.TaskTemplate, error) {
	now := s.now()
	tmpl := &models.TaskTemplate{
		ID:                store.NewUUID(),
		GroupID:           strings.TrimSpace(req.GroupID),
		TemplateName:      strings.TrimSpace(req.TemplateName),
		TemplateTitle:     strings.TrimSpace(req.TemplateTitle),
		TicketTitle:       strings.TrimSpace(req.TicketTitle),
		TicketDescription: strings.TrimSpace(req.TicketDescription),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := validateTemplate(tmpl); err != nil {
		return nil, err
	}

	err := s.store.RunInTx(ctx, func(tx store.Repository) error {
		if tmpl.GroupID != "" {
			if _, err := loadGroup(ctx, tx, tmpl.GroupID); err != nil {
				return err
			}
		}
		if err := ensureTemplateNameFree(ctx, tx, tmpl.TemplateName, ""); err != nil {
			return err
		}
		return tx.CreateTemplate(ctx, tmpl)
	})
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}

// UpdateTemplate merges a partial update over the stored template.
func (s *TemplateService) UpdateTemplate(ctx context.Context, id string, req api.TemplateUpdateRequest) (*models.TaskTemplate, error) {
	patch := models.TaskTemplatePatch{
		GroupID:           trimPtr(req.GroupID),
		TemplateName:      trimPtr(req.TemplateName),
		TemplateTitle:     trimPtr(req.TemplateTitle),
		TicketTitle:       trimPtr(req.TicketTitle),
		TicketDescription: trimPtr(req.TicketDescription),
	}

	var out *models.TaskTemplate
	err := s.store.RunInTx(ctx, func(tx store.Repository) error {
		existing, err := loadTemplate(ctx, tx, id)
		if err != nil {
			return err
		}

		merged := *existing
		patch.Apply(&merged)
		if err := validateTemplate(&merged); err != nil {
			return err
		}
		if merged.GroupID != "" && merged.GroupID != existing.GroupID {
			if _, err := loadGroup(ctx, tx, merged.GroupID); err != nil {
				return err
			}
		}
		if merged.TemplateName != existing.TemplateName {
			if err := ensureTemplateNameFree(ctx, tx, merged.TemplateName, existing.ID); err != nil {
				return err
			}
		}

		merged.UpdatedAt = s.now()
		if err := tx.UpdateTemplate(ctx, &merged); err != nil {
			return err
		}
		out = &merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteTemplate removes a template.
func (s *TemplateService) DeleteTemplate(ctx context.Context, id string) error {
	deleted, err := s.store.DeleteTemplate(ctx, id)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return models.NotFoundf("template %s not found", id)
	}
	return nil
}

// GetTemplate resolves a template by id or template_name.
func (s *TemplateService) GetTemplate(ctx context.Context, ref string) (*models.TaskTemplate, error) {
	return resolveTemplate(ctx, s.store, ref)
}

// ListTemplates lists templates, optionally within one group and filtered by
// a search over name, title and ticket title.
func (s *TemplateService) ListTemplates(ctx context.Context, filter store.TemplateFilter) ([]models.TaskTemplate, error) {
	return s.store.ListTemplates(ctx, filter)
}

func validateTemplate(tmpl *models.TaskTemplate) error {
	switch {
	case tmpl.TemplateName == "":
		return models.Validationf("template_name is required")
	case tmpl.TemplateTitle == "":
		return models.Validationf("template_title is required")
	case tmpl.TicketTitle == "":
		return models.Validationf("ticket_title is required")
	}
	return nil
}

func ensureTemplateNameFree(ctx context.Context, repo store.TemplateStore, name, selfID string) error {
	existing, err := repo.GetTemplateByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return models.Validationf("template %q already exists", name).WithCode("template_name_taken")
	}
	return nil
}

func resolveTemplate(ctx context.Context, repo store.TemplateStore, ref string) (*models.TaskTemplate, error) {
	ref = strings.TrimSpace(ref)
	if store.IsUUID(ref) {
		return loadTemplate(ctx, repo, ref)
	}
	tmpl, err := repo.GetTemplateByName(ctx, ref)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, models.NotFoundf("template %q not found", ref)
	}
	return tmpl, nil
}

func loadTemplate(ctx context.Context, repo store.TemplateStore, id string) (*models.TaskTemplate, error) {
	tmpl, err := repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl == nil {
		return nil, models.NotFoundf("template %s not found", id)
	}
	return tmpl, nil
}

func loadGroup(ctx context.Context, repo store.TemplateStore, id string) (*models.TemplateGroup, error) {
	group, err := repo.GetTemplateGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, models.NotFoundf("template group %s not found", id)
	}
	return group, nil
}

// groupDepth returns the depth of id; a root group has depth 1.
func groupDepth(ctx context.Context, repo store.TemplateStore, id string) (int, error) {
	depth := 0
	current := id
	for current != "" {
		if depth >= maxGroupWalk {
			return 0, models.Deserializationf("template group %s has a cyclic parent chain", id)
		}
		group, err := loadGroup(ctx, repo, current)
		if err != nil {
			return 0, err
		}
		depth++
		current = group.ParentGroupID
	}
	return depth, nil
}

// subtreeHeight returns the number of levels in the subtree rooted at id,
// counting id itself.
func subtreeHeight(ctx context.Context, repo store.TemplateStore, id string, level int) (int, error) {
	if level >= maxGroupWalk {
		return 0, models.Deserializationf("template group %s has a cyclic subtree", id)
	}
	children, err := repo.ListTemplateGroups(ctx, store.TemplateGroupFilter{ParentGroupID: id})
	if err != nil {
		return 0, err
	}
	height := 1
	for _, child := range children {
		childHeight, err := subtreeHeight(ctx, repo, child.ID, level+1)
		if err != nil {
			return 0, err
		}
		height = max(height, childHeight+1)
	}
	return height, nil
}

func checkGroupMove(ctx context.Context, repo store.TemplateStore, groupID, newParentID string) error {
	parentDepth := 0
	if newParentID != "" {
		if newParentID == groupID {
			return models.Validationf("a group cannot be its own parent").WithCode("group_cycle")
		}
		current := newParentID
		for steps := 0; current != ""; steps++ {
			if steps >= maxGroupWalk {
				return models.Deserializationf("template group %s has a cyclic parent chain", newParentID)
			}
			if current == groupID {
				return models.Validationf("cannot move a group under its own descendant").WithCode("group_cycle")
			}
			parent, err := loadGroup(ctx, repo, current)
			if err != nil {
				return err
			}
			parentDepth++
			current = parent.ParentGroupID
		}
	}

	height, err := subtreeHeight(ctx, repo, groupID, 0)
	if err != nil {
		return err
	}
	if parentDepth+height > models.TemplateGroupMaxDepth {
		return depthExceeded()
	}
	return nil
}

func depthExceeded() error {
	return models.Validationf("template groups cannot be nested more than %d levels deep", models.TemplateGroupMaxDepth).
		WithCode("group_depth_exceeded")
}

func buildGroupTree(groups []models.TemplateGroup) []models.TemplateGroupNode {
	children := make(map[string][]models.TemplateGroup)
	known := make(map[string]struct{}, len(groups))
	for _, group := range groups {
		known[group.ID] = struct{}{}
	}
	var roots []models.TemplateGroup
	for _, group := range groups {
		if _, ok := known[group.ParentGroupID]; group.ParentGroupID == "" || !ok {
			roots = append(roots, group)
			continue
		}
		children[group.ParentGroupID] = append(children[group.ParentGroupID], group)
	}

	var build func(group models.TemplateGroup, level int) models.TemplateGroupNode
	build = func(group models.TemplateGroup, level int) models.TemplateGroupNode {
		node := models.TemplateGroupNode{TemplateGroup: group, Children: []models.TemplateGroupNode{}}
		if level >= maxGroupWalk {
			return node
		}
		for _, child := range children[group.ID] {
			node.Children = append(node.Children, build(child, level+1))
		}
		return node
	}

	out := make([]models.TemplateGroupNode, 0, len(roots))
	for _, root := range roots {
		out = append(out, build(root, 1))
	}
	return out
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}
