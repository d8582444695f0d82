// Package config carries the explicit path and policy configuration for a
// steward project. Every component receives its paths from here at
// construction time; nothing resolves directories on its own.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves the on-disk layout beneath a project root.
//
// Canonical, hand-edited state lives under StateDir and is the source of
// truth. Everything under RuntimeDir is derived or session-local and can be
// rebuilt or discarded.
type Paths struct {
	ProjectRoot string
}

// StewardDir returns the committed steward directory (.steward).
func (p Paths) StewardDir() string {
	return filepath.Join(p.ProjectRoot, ".steward")
}

// StateDir returns the canonical state directory holding the YAML documents.
func (p Paths) StateDir() string {
	return filepath.Join(p.StewardDir(), "state")
}

// WorkersDir returns the committed worker-state directory (roster,
// checkpoints, summaries).
func (p Paths) WorkersDir() string {
	return filepath.Join(p.StewardDir(), "workers")
}

// RuntimeDir returns the local runtime directory (derived state, never committed).
func (p Paths) RuntimeDir() string {
	return filepath.Join(p.ProjectRoot, ".steward_runtime")
}

// CacheDBPath returns the derived cache database file.
func (p Paths) CacheDBPath() string {
	return filepath.Join(p.RuntimeDir(), "steward.db")
}

// MemoryDBPath returns the session memory database file.
func (p Paths) MemoryDBPath() string {
	return filepath.Join(p.RuntimeDir(), "session", "memory.db")
}

// PackCacheDir returns the staging area for pack export/import scratch dirs.
func (p Paths) PackCacheDir() string {
	return filepath.Join(p.RuntimeDir(), "pack_cache")
}

// WorkerRegistryPath returns the runtime worker registry file.
func (p Paths) WorkerRegistryPath() string {
	return filepath.Join(p.RuntimeDir(), "workers", "registry.json")
}

// StatusFilePath returns the rendered STATUS.md location.
func (p Paths) StatusFilePath() string {
	return filepath.Join(p.StewardDir(), "STATUS.md")
}

// Config represents the flat steward configuration stored at
// .steward/config.json.
type Config struct {
	Version          string   `json:"version"`
	ProjectID        string   `json:"project_id,omitempty"`
	DefaultSession   string   `json:"default_session,omitempty"`
	DefaultNamespace string   `json:"default_namespace,omitempty"`
	RedactDenylist   []string `json:"redact_denylist,omitempty"` // extra redaction patterns, applied after built-ins
}

// LoadConfig reads .steward/config.json from the project root.
// A missing config file is not an error; defaults are returned instead.
func LoadConfig(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ".steward", "config.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	applyDefaults(&cfg)

	return &cfg, nil
}

// SaveConfig writes config.json beneath the project root.
func SaveConfig(projectRoot string, cfg *Config) error {
	stewardDir := filepath.Join(projectRoot, ".steward")
	if err := os.MkdirAll(stewardDir, 0755); err != nil {
		return fmt.Errorf("failed to create .steward dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(stewardDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

func defaultConfig() *Config {
	cfg := &Config{Version: "1"}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.DefaultSession == "" {
		cfg.DefaultSession = "default"
	}
	if cfg.DefaultNamespace == "" {
		cfg.DefaultNamespace = "default"
	}
}
