package main

import (
	"slices"
	"strings"
	"testing"
)

func TestBuildTaskCreateRequest(t *testing.T) {
	opts := &taskCreateOptions{projectID: "p1", status: "inprogress"}
	req, err := buildTaskCreateRequest(opts, []string{"Write", "docs"})
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if req.Title != "Write docs" || req.ProjectID != "p1" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Status == nil || *req.Status != "inprogress" {
		t.Fatalf("expected status pointer, got %v", req.Status)
	}
	if req.Description != nil {
		t.Fatal("unset description should stay nil")
	}

	if _, err := buildTaskCreateRequest(&taskCreateOptions{projectID: "p1"}, nil); err == nil {
		t.Fatal("expected error without title or template")
	}
	if _, err := buildTaskCreateRequest(&taskCreateOptions{}, []string{"x"}); err == nil {
		t.Fatal("expected error without project")
	}

	req, err = buildTaskCreateRequest(&taskCreateOptions{projectID: "p1", templateRef: "triage"}, nil)
	if err != nil || req.TemplateID != "triage" || req.Title != "" {
		t.Fatalf("template-only create: %+v, %v", req, err)
	}
}

func TestParseRelationshipData(t *testing.T) {
	data, err := parseRelationshipData(`{"weight": 2}`)
	if err != nil || string(data) != `{"weight": 2}` {
		t.Fatalf("unexpected data %s, %v", data, err)
	}

	data, err = parseRelationshipData("")
	if err != nil || data != nil {
		t.Fatalf("empty value should produce no data, got %s, %v", data, err)
	}

	for _, bad := range []string{"[1,2]", `"text"`, "{broken"} {
		if _, err := parseRelationshipData(bad); err == nil || !strings.Contains(err.Error(), "JSON object") {
			t.Fatalf("expected object error for %s, got %v", bad, err)
		}
	}
}

func TestSplitCommaList(t *testing.T) {
	got := splitCommaList(" todo, ,inprogress ,")
	if !slices.Equal(got, []string{"todo", "inprogress"}) {
		t.Fatalf("unexpected list: %v", got)
	}
	if splitCommaList("  ") != nil {
		t.Fatal("blank input should produce nil")
	}
}

func TestOptionalString(t *testing.T) {
	if optionalString(false, "x") != nil {
		t.Fatal("unchanged flag should produce nil")
	}
	if got := optionalString(true, ""); got == nil || *got != "" {
		t.Fatal("changed flag should keep empty values")
	}
}
