package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPaths(t *testing.T) {
	p := Paths{ProjectRoot: "/work/proj"}

	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"steward dir", p.StewardDir(), "/work/proj/.steward"},
		{"state dir", p.StateDir(), "/work/proj/.steward/state"},
		{"runtime dir", p.RuntimeDir(), "/work/proj/.steward_runtime"},
		{"cache db", p.CacheDBPath(), "/work/proj/.steward_runtime/steward.db"},
		{"memory db", p.MemoryDBPath(), "/work/proj/.steward_runtime/session/memory.db"},
		{"pack cache", p.PackCacheDir(), "/work/proj/.steward_runtime/pack_cache"},
		{"status file", p.StatusFilePath(), "/work/proj/.steward/STATUS.md"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != filepath.FromSlash(tt.expected) {
				t.Errorf("got %q, want %q", tt.got, tt.expected)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Version != "1" {
		t.Errorf("Version = %q, want 1", cfg.Version)
	}
	if cfg.DefaultSession != "default" {
		t.Errorf("DefaultSession = %q, want default", cfg.DefaultSession)
	}
	if cfg.DefaultNamespace != "default" {
		t.Errorf("DefaultNamespace = %q, want default", cfg.DefaultNamespace)
	}
}

func TestLoadConfig_PartialFile(t *testing.T) {
	root := t.TempDir()
	stewardDir := filepath.Join(root, ".steward")
	if err := os.MkdirAll(stewardDir, 0755); err != nil {
		t.Fatalf("failed to create .steward dir: %v", err)
	}

	raw := `{"version":"1","project_id":"demo","redact_denylist":["internal-\\d+"]}`
	if err := os.WriteFile(filepath.Join(stewardDir, "config.json"), []byte(raw), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.ProjectID != "demo" {
		t.Errorf("ProjectID = %q, want demo", cfg.ProjectID)
	}
	// Unset scope fields still pick up defaults.
	if cfg.DefaultSession != "default" || cfg.DefaultNamespace != "default" {
		t.Errorf("defaults not applied: session=%q namespace=%q", cfg.DefaultSession, cfg.DefaultNamespace)
	}
	if len(cfg.RedactDenylist) != 1 || cfg.RedactDenylist[0] != `internal-\d+` {
		t.Errorf("RedactDenylist = %v", cfg.RedactDenylist)
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	root := t.TempDir()
	stewardDir := filepath.Join(root, ".steward")
	if err := os.MkdirAll(stewardDir, 0755); err != nil {
		t.Fatalf("failed to create .steward dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(stewardDir, "config.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadConfig(root); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	root := t.TempDir()
	in := &Config{Version: "1", ProjectID: "p1", DefaultSession: "s1", DefaultNamespace: "ops"}

	if err := SaveConfig(root, in); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	out, err := LoadConfig(root)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if out.ProjectID != "p1" || out.DefaultSession != "s1" || out.DefaultNamespace != "ops" {
		t.Errorf("round trip mismatch: %+v", out)
	}
}
