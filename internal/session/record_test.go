package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spec-kit/donation-service/internal/domain"
	"github.com/spec-kit/donation-service/pkg/util"
)

func TestFileRecordStore(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		store := NewFileRecordStore(filepath.Join(t.TempDir(), "session.json"))
		identity := domain.Identity{
			ID:              "u-1",
			Name:            "Jordan",
			Email:           "jordan@x.com",
			Role:            domain.RoleDonor,
			ProfileComplete: true,
		}
		if err := store.Write(ctx, identity); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		got, err := store.Read(ctx)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if got == nil || *got != identity {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, identity)
		}
	})

	t.Run("absent record reads as no session", func(t *testing.T) {
		store := NewFileRecordStore(filepath.Join(t.TempDir(), "missing.json"))
		got, err := store.Read(ctx)
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil identity, got %+v", got)
		}
	})

	t.Run("malformed record is a storage failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
			t.Fatal(err)
		}
		store := NewFileRecordStore(path)
		if _, err := store.Read(ctx); !util.HasCode(err, "STORAGE_FAILURE") {
			t.Errorf("expected STORAGE_FAILURE, got %v", err)
		}
	})

	t.Run("record with unknown role is a storage failure", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		if err := os.WriteFile(path, []byte(`{"id":"u-1","name":"x","email":"x@x.com","role":"patient"}`), 0o600); err != nil {
			t.Fatal(err)
		}
		store := NewFileRecordStore(path)
		if _, err := store.Read(ctx); !util.HasCode(err, "STORAGE_FAILURE") {
			t.Errorf("expected STORAGE_FAILURE, got %v", err)
		}
	})

	t.Run("clear is idempotent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "session.json")
		store := NewFileRecordStore(path)
		if err := store.Write(ctx, domain.Identity{ID: "u-1", Email: "x@x.com", Role: domain.RoleDonor}); err != nil {
			t.Fatal(err)
		}
		if err := store.Clear(ctx); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if err := store.Clear(ctx); err != nil {
			t.Errorf("second Clear should be a no-op, got %v", err)
		}
	})
}
