package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tmpDir, _ := os.MkdirTemp("", "config-test-*")
	defer os.RemoveAll(tmpDir)

	t.Run("YAML", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.yaml")
		content := `
anki:
  url: http://localhost:9999
  timeout: 5s
provider:
  name: ollama
  model: llama3.2
guard:
  allowed_deck_globs: ["Languages::**"]
  protected_tags: [leech]
  max_batch_size: 50
`
		os.WriteFile(path, []byte(content), 0600)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Anki.URL != "http://localhost:9999" {
			t.Errorf("Expected overridden URL, got %s", cfg.Anki.URL)
		}
		if cfg.Anki.Timeout.Std() != 5*time.Second {
			t.Errorf("Expected 5s timeout, got %v", cfg.Anki.Timeout.Std())
		}
		if cfg.Provider.Name != "ollama" || cfg.Provider.Model != "llama3.2" {
			t.Errorf("Unexpected provider config: %+v", cfg.Provider)
		}
		if cfg.Guard.MaxBatchSize != 50 {
			t.Errorf("Expected batch size 50, got %d", cfg.Guard.MaxBatchSize)
		}
		// Unset fields keep their defaults
		if cfg.Server.Addr != "127.0.0.1:8460" {
			t.Errorf("Expected default server addr, got %s", cfg.Server.Addr)
		}
		if cfg.DBPath == "" {
			t.Error("Expected default db path")
		}
	})

	t.Run("JSON", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.json")
		os.WriteFile(path, []byte(`{"provider": {"name": "stub"}, "anki": {"timeout": "10s"}}`), 0600)

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Provider.Name != "stub" {
			t.Errorf("Expected stub provider, got %s", cfg.Provider.Name)
		}
		if cfg.Anki.Timeout.Std() != 10*time.Second {
			t.Errorf("Expected 10s timeout, got %v", cfg.Anki.Timeout.Std())
		}
	})

	t.Run("Missing Explicit File", func(t *testing.T) {
		if _, err := Load(filepath.Join(tmpDir, "nope.yaml")); err == nil {
			t.Error("Expected error for missing explicit file")
		}
	})

	t.Run("Unsupported Extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "config.toml")
		os.WriteFile(path, []byte("x = 1"), 0600)
		if _, err := Load(path); err == nil {
			t.Error("Expected error for unsupported format")
		}
	})

	t.Run("Bad Duration", func(t *testing.T) {
		path := filepath.Join(tmpDir, "bad.yaml")
		os.WriteFile(path, []byte("anki:\n  timeout: soon\n"), 0600)
		if _, err := Load(path); err == nil {
			t.Error("Expected error for unparseable duration")
		}
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Anki.URL != "http://127.0.0.1:8765" {
		t.Errorf("Unexpected default AnkiConnect URL: %s", cfg.Anki.URL)
	}
	if cfg.Anki.Timeout.Std() != 30*time.Second {
		t.Errorf("Unexpected default timeout: %v", cfg.Anki.Timeout.Std())
	}
	if len(cfg.Guard.AllowedDeckGlobs) == 0 {
		t.Error("Default policy should allow decks")
	}
}
