package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSQLiteStore(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "store-test-*")
	defer os.RemoveAll(tmpDir)

	s, err := NewSQLiteStore(filepath.Join(tmpDir, "ankimate.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	t.Run("Runs", func(t *testing.T) {
		run := &Run{
			Op:       OpCompact,
			Deck:     "News",
			Field:    "Example",
			Provider: "openai",
			Updated:  12,
			Skipped:  3,
		}
		if err := s.RecordRun(run); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
		if run.ID == "" {
			t.Error("Expected RecordRun to assign an ID")
		}
		if run.CreatedAt.IsZero() {
			t.Error("Expected RecordRun to assign a timestamp")
		}

		older := &Run{
			Op:        OpRollback,
			Deck:      "News",
			Field:     "Example",
			Restored:  5,
			CreatedAt: time.Now().UTC().Add(-time.Hour),
		}
		if err := s.RecordRun(older); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}

		runs, err := s.ListRuns(10)
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("Expected 2 runs, got %d", len(runs))
		}
		// Newest first
		if runs[0].Op != OpCompact || runs[1].Op != OpRollback {
			t.Errorf("Expected [compact, rollback], got [%s, %s]", runs[0].Op, runs[1].Op)
		}
		if runs[0].Updated != 12 || runs[0].Skipped != 3 {
			t.Errorf("Expected counts 12/3, got %d/%d", runs[0].Updated, runs[0].Skipped)
		}
		if runs[1].Restored != 5 {
			t.Errorf("Expected 5 restored, got %d", runs[1].Restored)
		}

		limited, err := s.ListRuns(1)
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(limited) != 1 {
			t.Errorf("Expected limit to apply, got %d runs", len(limited))
		}
	})

	t.Run("Config", func(t *testing.T) {
		if err := s.SetConfig("provider", "ollama"); err != nil {
			t.Fatalf("SetConfig failed: %v", err)
		}

		val, err := s.GetConfig("provider")
		if err != nil {
			t.Fatalf("GetConfig failed: %v", err)
		}
		if val != "ollama" {
			t.Errorf("Expected 'ollama', got '%s'", val)
		}

		// Upsert overwrites
		if err := s.SetConfig("provider", "openai"); err != nil {
			t.Fatalf("SetConfig failed: %v", err)
		}
		val, _ = s.GetConfig("provider")
		if val != "openai" {
			t.Errorf("Expected 'openai', got '%s'", val)
		}

		// Missing keys return empty, not an error
		val, err = s.GetConfig("never-set")
		if err != nil {
			t.Fatalf("GetConfig failed: %v", err)
		}
		if val != "" {
			t.Errorf("Expected empty value, got '%s'", val)
		}
	})
}
