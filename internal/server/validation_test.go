package server

import (
	"testing"

	"tasklink/internal/models"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"tl-ab12", true},
		{"zz-0000", true},
		{"tl-zzzz", true},
		{"", false},
		{"tl", false},
		{"tl-", false},
		{"tl-abc", false},   // too short
		{"tl-abcde", false}, // too long
		{"TL-ab12", false},  // uppercase prefix
		{"tl-AB12", false},  // uppercase hash
		{"tl_ab12", false},  // wrong separator
		{"abc-ab12", false}, // 3-letter prefix
		{"t-ab12", false},   // 1-letter prefix
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := validateID(tt.id)
			if got != tt.want {
				t.Fatalf("validateID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    models.TaskStatus
		wantErr bool
	}{
		{"todo", models.StatusTodo, false},
		{"TODO", models.StatusTodo, false},
		{" inprogress ", models.StatusInProgress, false},
		{"inreview", models.StatusInReview, false},
		{"done", models.StatusDone, false},
		{"cancelled", models.StatusCancelled, false},
		{"in_progress", "", true},
		{"open", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := normalizeStatus(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("normalizeStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("normalizeStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if err != nil && errorNumericCode(400, err) != ErrCodeInvalidStatus {
				t.Fatalf("expected error_code %d for %q", ErrCodeInvalidStatus, tt.input)
			}
		})
	}
}

func TestStatusSet(t *testing.T) {
	set, err := statusSet(nil)
	if err != nil || set != nil {
		t.Fatalf("nil input should stay nil, got %v %v", set, err)
	}

	set, err = statusSet([]string{"done", "DONE", "inreview"})
	if err != nil {
		t.Fatalf("statusSet: %v", err)
	}
	if len(set) != 2 || set[0] != models.StatusDone || set[1] != models.StatusInReview {
		t.Fatalf("unexpected set: %v", set)
	}

	if _, err := statusSet([]string{"blocked"}); err == nil {
		t.Fatal("expected unknown status to be rejected")
	}
}

func TestNormalizePrefix(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"tl", "tl", false},
		{"TL", "tl", false},
		{" ab ", "ab", false},
		{"a", "", true},
		{"abc", "", true},
		{"a1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := normalizePrefix(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("normalizePrefix(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("normalizePrefix(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
