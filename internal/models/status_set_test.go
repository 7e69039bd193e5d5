package models

import "testing"

func TestParseStatusSet(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []string
		wantErr ErrorKind
	}{
		{name: "valid", raw: `["todo","inprogress"]`, want: []string{"todo", "inprogress"}},
		{name: "duplicates collapse", raw: `["done","done"]`, want: []string{"done"}},
		{name: "empty array", raw: `[]`, want: []string{}},
		{name: "malformed", raw: `["todo"`, wantErr: KindDeserialization},
		{name: "not an array", raw: `"todo"`, wantErr: KindDeserialization},
		{name: "unknown status", raw: `["todo","open"]`, wantErr: KindDeserialization},
		{name: "case sensitive", raw: `["TODO"]`, wantErr: KindDeserialization},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseStatusSet(tc.raw)
			if tc.wantErr != "" {
				if !IsKind(err, tc.wantErr) {
					t.Fatalf("expected %s error, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
			for i, value := range tc.want {
				if string(got[i]) != value {
					t.Fatalf("expected %v, got %v", tc.want, got)
				}
			}
		})
	}
}

func TestNewStatusSetRejectsUnknown(t *testing.T) {
	if _, err := NewStatusSet([]string{"todo", "nope"}); !IsKind(err, KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	set, err := NewStatusSet([]string{" Done ", "cancelled"})
	if err != nil {
		t.Fatalf("new status set: %v", err)
	}
	if !set.Contains(StatusDone) || !set.Contains(StatusCancelled) {
		t.Fatalf("unexpected set: %v", set)
	}
}

func TestStatusSetEncodeRoundTrip(t *testing.T) {
	set := StatusSet{StatusInProgress, StatusInReview}
	raw, err := set.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if raw != `["inprogress","inreview"]` {
		t.Fatalf("unexpected encoding: %s", raw)
	}

	var empty StatusSet
	raw, err = empty.Encode()
	if err != nil {
		t.Fatalf("encode empty: %v", err)
	}
	if raw != `[]` {
		t.Fatalf("expected empty array, got %s", raw)
	}
}

func TestStatusSetIntersect(t *testing.T) {
	set := StatusSet{StatusTodo, StatusInProgress}
	got := set.Intersect([]TaskStatus{StatusDone, StatusInProgress, StatusInProgress})
	if len(got) != 1 || got[0] != StatusInProgress {
		t.Fatalf("unexpected intersection: %v", got)
	}
	if got.String() != "inprogress" {
		t.Fatalf("unexpected string: %q", got.String())
	}
	if len(set.Intersect(nil)) != 0 {
		t.Fatal("expected empty intersection")
	}
}
