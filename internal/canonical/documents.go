// Package canonical loads and saves the hand-edited source-of-truth
// documents (team roster, task board, approval log, command registry) and
// computes the content hash used by the reconciliation gate.
//
// The documents live as YAML files in the project state directory. They are
// mutated only by human editors or the explicit Save here; everything in the
// derived cache is rebuilt from them.
package canonical

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Canonical document file names. Documents are hashed and loaded in the
// fixed order team, board, approvals, commands.
const (
	TeamFile      = "team.yaml"
	BoardFile     = "board.yaml"
	ApprovalsFile = "approvals.yaml"
	CommandsFile  = "commands.yaml"
)

// DocumentFiles lists all canonical document file names in load order.
var DocumentFiles = []string{TeamFile, BoardFile, ApprovalsFile, CommandsFile}

// TeamDoc is the parsed team.yaml document.
type TeamDoc struct {
	Orchestrator Orchestrator `yaml:"orchestrator"`
	Roles        []Role       `yaml:"roles"`
}

// Orchestrator describes the single orchestrator entry of the roster.
type Orchestrator struct {
	RoleID    string `yaml:"role_id"`
	Title     string `yaml:"title"`
	Authority string `yaml:"authority"`
}

// Role describes one role in the roster, with zero or more workers filling it.
type Role struct {
	RoleID     string       `yaml:"role_id"`
	Title      string       `yaml:"title"`
	Department string       `yaml:"department"`
	ReportsTo  string       `yaml:"reports_to"`
	Authority  string       `yaml:"authority"`
	Workers    []RoleWorker `yaml:"workers"`
}

// RoleWorker describes a worker assigned to a role.
type RoleWorker struct {
	ID       string `yaml:"id"`
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
}

// BoardDoc is the parsed board.yaml document.
type BoardDoc struct {
	Columns []string    `yaml:"columns"`
	Tasks   []BoardTask `yaml:"tasks"`
}

// BoardTask is a single task on the board.
type BoardTask struct {
	ID               string   `yaml:"id"`
	Title            string   `yaml:"title"`
	Status           string   `yaml:"status"`
	OwnerRole        string   `yaml:"owner_role"`
	RequiresApproval []string `yaml:"requires_approval"`
}

// ApprovalsDoc is the parsed approvals.yaml document.
type ApprovalsDoc struct {
	ApprovalLog []ApprovalEntry `yaml:"approval_log"`
}

// ApprovalEntry is one row of the approval log. ApprovalType falls back to
// TriggerID when unset.
type ApprovalEntry struct {
	TaskID       string `yaml:"task_id"`
	ApprovalType string `yaml:"approval_type"`
	TriggerID    string `yaml:"trigger_id"`
	Status       string `yaml:"status"`
	ApprovedBy   string `yaml:"approved_by"`
	Timestamp    string `yaml:"timestamp"`
}

// CommandsDoc is the parsed commands.yaml document.
type CommandsDoc struct {
	Commands []CommandDef `yaml:"commands"`
}

// CommandDef maps a command name and its aliases to a handler identifier.
type CommandDef struct {
	Name        string   `yaml:"name"`
	Aliases     []string `yaml:"aliases"`
	Handler     string   `yaml:"handler"`
	Description string   `yaml:"description"`
}

// State is the full canonical document set.
type State struct {
	Team      TeamDoc
	Board     BoardDoc
	Approvals ApprovalsDoc
	Commands  CommandsDoc
}

// Load reads all canonical documents from the state directory.
//
// A missing file loads as an empty document (it also contributes nothing to
// the canonical hash). A file that exists but cannot be read or parsed fails
// the whole load: partial ingestion would leave the cache diverged from
// canonical.
func Load(stateDir string) (*State, error) {
	state := &State{}

	if err := loadDocument(filepath.Join(stateDir, TeamFile), &state.Team); err != nil {
		return nil, err
	}
	if err := loadDocument(filepath.Join(stateDir, BoardFile), &state.Board); err != nil {
		return nil, err
	}
	if err := loadDocument(filepath.Join(stateDir, ApprovalsFile), &state.Approvals); err != nil {
		return nil, err
	}
	if err := loadDocument(filepath.Join(stateDir, CommandsFile), &state.Commands); err != nil {
		return nil, err
	}

	return state, nil
}

// Save writes the canonical documents back to the state directory, creating
// it if needed.
func Save(stateDir string, state *State) error {
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return fmt.Errorf("failed to create state dir: %w", err)
	}

	docs := []struct {
		name string
		data any
	}{
		{TeamFile, &state.Team},
		{BoardFile, &state.Board},
		{ApprovalsFile, &state.Approvals},
		{CommandsFile, &state.Commands},
	}

	for _, doc := range docs {
		out, err := yaml.Marshal(doc.data)
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", doc.name, err)
		}
		if err := os.WriteFile(filepath.Join(stateDir, doc.name), out, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", doc.name, err)
		}
	}

	return nil
}

func loadDocument(path string, out any) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
