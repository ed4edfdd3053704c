package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/docelucro/backend-doce/internal/state"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), Config{
		Local:  &FileStore{Path: filepath.Join(t.TempDir(), "doc.json")},
		Logger: zerolog.Nop(),
		Now:    func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestOpenStartsWithDefaults(t *testing.T) {
	s := newTestStore(t)
	s.View(func(doc *state.Document) {
		if doc.SchemaVersion != state.SchemaVersion {
			t.Fatalf("schema version = %d, want %d", doc.SchemaVersion, state.SchemaVersion)
		}
		if doc.Settings.StoreName == "" {
			t.Fatal("default store name is empty")
		}
	})
}

func TestUpdatePersistsAndIsolates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	local := &FileStore{Path: path}
	s, err := Open(context.Background(), Config{Local: local, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	err = s.Update(context.Background(), func(doc *state.Document) error {
		doc.Products = append(doc.Products, state.Product{ID: "p1", Name: "Bolo no pote", Price: 12})
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	onDisk, err := local.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(onDisk.Products) != 1 {
		t.Fatalf("products on disk = %d, want 1", len(onDisk.Products))
	}

	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	snap.Products[0].Name = "changed"
	s.View(func(doc *state.Document) {
		if doc.Products[0].Name != "Bolo no pote" {
			t.Fatal("snapshot mutation leaked into the store")
		}
	})
}

func TestUpdateRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	boom := errors.New("boom")

	err := s.Update(context.Background(), func(doc *state.Document) error {
		doc.Products = append(doc.Products, state.Product{ID: "p1"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want boom", err)
	}
	s.View(func(doc *state.Document) {
		if len(doc.Products) != 0 {
			t.Fatal("failed update mutated the document")
		}
	})
}
