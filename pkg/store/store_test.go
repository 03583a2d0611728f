package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := m.Set(ctx, "checksum", "abc123"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	v, err := m.Get(ctx, "checksum")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "abc123" {
		t.Errorf("Get = %q, want %q", v, "abc123")
	}

	if err := m.Delete(ctx, "checksum"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := m.Get(ctx, "checksum"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	// Deleting an absent key is fine.
	if err := m.Delete(ctx, "checksum"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}
