package format

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

type sample struct {
	ID        string    `json:"id"`
	Statuses  []string  `json:"statuses,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func TestFormatters(t *testing.T) {
	payload := sample{ID: "tl-aaaa", Statuses: []string{"todo"}, CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}

	var buf bytes.Buffer
	if err := (JSONFormatter{}).Write(&buf, payload); err != nil {
		t.Fatalf("json: %v", err)
	}
	if got := buf.String(); got != `{"id":"tl-aaaa","statuses":["todo"],"created_at":"2026-01-02T03:04:05Z"}`+"\n" {
		t.Fatalf("unexpected json: %q", got)
	}

	buf.Reset()
	if err := (YAMLFormatter{}).Write(&buf, payload); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"id: tl-aaaa", "statuses:\n  - todo", "created_at: \"2026-01-02T03:04:05Z\""} {
		if !strings.Contains(out, want) {
			t.Fatalf("yaml output missing %q:\n%s", want, out)
		}
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "json", "json-pretty", "yaml"} {
		if _, err := ByName(name); err != nil {
			t.Fatalf("ByName(%q): %v", name, err)
		}
	}
	if _, err := ByName("xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
