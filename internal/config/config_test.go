package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := parse([]byte("{}"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cfg.Search.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.Search.PageSize)
	}
	if cfg.Search.TokenEnv != "FIRSTWATCH_API_TOKEN" {
		t.Errorf("TokenEnv = %q", cfg.Search.TokenEnv)
	}
	if cfg.Anchoring.WindowHours != 24 || cfg.Anchoring.MinClusterSize != 1 {
		t.Errorf("anchoring defaults = %+v", cfg.Anchoring)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("Port = %d, want 8000", cfg.Server.Port)
	}
}

func TestParsePageSizeClamped(t *testing.T) {
	cfg, err := parse([]byte("search:\n  page_size: 500\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cfg.Search.PageSize != 100 {
		t.Errorf("PageSize = %d, want 100", cfg.Search.PageSize)
	}

	cfg, err = parse([]byte("search:\n  page_size: 3\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if cfg.Search.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.Search.PageSize)
	}
}

func TestDefaultConfigParses(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("embedded default config failed to parse: %v", err)
	}
	if len(cfg.Catalogue) == 0 {
		t.Error("expected catalogue entries in default config")
	}
	for _, entry := range cfg.Catalogue {
		if entry.Title == "" || entry.Location == "" || len(entry.Queries) == 0 {
			t.Errorf("incomplete catalogue entry: %+v", entry)
		}
	}
	if len(cfg.Queries) == 0 || len(cfg.Cities) == 0 {
		t.Error("expected default queries and cities")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("queries:\n  - \"test query\"\nserver:\n  port: 9999\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d, want 9999", cfg.Server.Port)
	}
	if len(cfg.Queries) != 1 || cfg.Queries[0] != "test query" {
		t.Errorf("Queries = %v", cfg.Queries)
	}
}
