// Package workers manages durable, portable worker state under the committed
// workers directory: the roster, per-worker markdown checkpoints, and
// per-worker summaries. A worker can resume on any machine from these files
// alone; nothing here depends on the runtime directory.
package workers

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RosterFile is the worker roster document name.
const RosterFile = "roster.yaml"

// RosterEntry is one worker in the committed roster.
type RosterEntry struct {
	WorkerID         string `yaml:"worker_id"`
	Role             string `yaml:"role"`
	Provider         string `yaml:"provider"`
	Model            string `yaml:"model"`
	Status           string `yaml:"status"`
	LastCheckpointID string `yaml:"last_checkpoint_id,omitempty"`
}

type rosterDoc struct {
	Workers []RosterEntry `yaml:"workers"`
}

// EnsureDirs creates the workers directory structure if missing.
func EnsureDirs(workersDir string) error {
	for _, sub := range []string{"checkpoints", "summaries"} {
		if err := os.MkdirAll(filepath.Join(workersDir, sub), 0755); err != nil {
			return fmt.Errorf("failed to create workers dir: %w", err)
		}
	}
	return nil
}

// WriteRoster writes roster.yaml. Entries with an empty status are stored as
// "ready".
func WriteRoster(workersDir string, entries []RosterEntry) error {
	if err := EnsureDirs(workersDir); err != nil {
		return err
	}

	doc := rosterDoc{Workers: make([]RosterEntry, len(entries))}
	for i, e := range entries {
		if e.Status == "" {
			e.Status = "ready"
		}
		doc.Workers[i] = e
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("failed to marshal roster: %w", err)
	}
	if err := os.WriteFile(filepath.Join(workersDir, RosterFile), out, 0644); err != nil {
		return fmt.Errorf("failed to write roster: %w", err)
	}

	return nil
}

// LoadRoster reads roster.yaml. A missing roster is an empty list.
func LoadRoster(workersDir string) ([]RosterEntry, error) {
	data, err := os.ReadFile(filepath.Join(workersDir, RosterFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read roster: %w", err)
	}

	var doc rosterDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse roster: %w", err)
	}

	return doc.Workers, nil
}

// updateRosterCheckpoint stamps last_checkpoint_id for one worker. A missing
// roster or unknown worker is left alone.
func updateRosterCheckpoint(workersDir, workerID, checkpointID string) error {
	entries, err := LoadRoster(workersDir)
	if err != nil || len(entries) == 0 {
		return err
	}

	for i := range entries {
		if entries[i].WorkerID == workerID {
			entries[i].LastCheckpointID = checkpointID
			return WriteRoster(workersDir, entries)
		}
	}

	return nil
}
