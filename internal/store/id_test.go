package store

import (
	"testing"
)

func TestGenerateID(t *testing.T) {
	t.Run("valid prefix", func(t *testing.T) {
		id, err := GenerateID("tl", nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(id) != 7 { // "tl-" + 4 chars
			t.Fatalf("expected length 7, got %d: %s", len(id), id)
		}
		if id[:3] != "tl-" {
			t.Fatalf("expected prefix tl-, got %s", id[:3])
		}
	})

	t.Run("empty prefix", func(t *testing.T) {
		_, err := GenerateID("", nil)
		if err == nil {
			t.Fatal("expected error for empty prefix")
		}
	})

	t.Run("retries on collision", func(t *testing.T) {
		calls := 0
		exists := func(id string) (bool, error) {
			calls++
			return calls < 3, nil // first 2 calls collide
		}
		id, err := GenerateID("tl", exists)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if id == "" {
			t.Fatal("expected non-empty id")
		}
		if calls != 3 {
			t.Fatalf("expected 3 calls, got %d", calls)
		}
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		exists := func(id string) (bool, error) {
			return true, nil // always collide
		}
		_, err := GenerateID("tl", exists)
		if err == nil {
			t.Fatal("expected error after max attempts")
		}
	})
}

func TestNewUUID(t *testing.T) {
	first := NewUUID()
	second := NewUUID()
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
	if !IsUUID(first) {
		t.Fatalf("expected uuid, got %q", first)
	}
	if IsUUID("tl-ab12") {
		t.Fatal("task ids are not uuids")
	}
	if !IsUUID(SystemTypeBlocksID) {
		t.Fatalf("expected seeded id %q to parse", SystemTypeBlocksID)
	}
}
