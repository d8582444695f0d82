package app

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/example/steward/internal/canonical"
	"github.com/example/steward/internal/config"
	"github.com/example/steward/internal/ports/primary"
)

const (
	progressBarWidth = 20
	columnBarWidth   = 5

	legacyMarker = "## Legacy Status Snapshot"
)

// StatusServiceImpl implements the StatusService interface.
type StatusServiceImpl struct {
	paths     config.Paths
	reconcile primary.ReconcileService
}

// NewStatusService creates a new StatusService with injected dependencies.
func NewStatusService(paths config.Paths, reconcile primary.ReconcileService) *StatusServiceImpl {
	return &StatusServiceImpl{
		paths:     paths,
		reconcile: reconcile,
	}
}

// statusModel holds everything both renderers need, computed once from the
// canonical documents.
type statusModel struct {
	phase   string
	columns []string
	counts  map[string]int
	total   int
	done    int
	pct     int
	active  []canonical.BoardTask
	pending []canonical.ApprovalEntry
}

// RenderStatus reconciles the cache, then renders the project status report
// from canonical state and rewrites STATUS.md alongside.
func (s *StatusServiceImpl) RenderStatus(ctx context.Context) (string, error) {
	if _, err := s.reconcile.Reconcile(ctx); err != nil {
		return "", err
	}

	state, err := canonical.Load(s.paths.StateDir())
	if err != nil {
		return "", fmt.Errorf("failed to load canonical state: %w", err)
	}

	model := buildStatusModel(state)

	if err := s.writeStatusFile(model); err != nil {
		return "", err
	}

	return renderStatusReport(model), nil
}

func buildStatusModel(state *canonical.State) *statusModel {
	m := &statusModel{
		columns: state.Board.Columns,
		counts:  map[string]int{},
	}
	for _, col := range m.columns {
		m.counts[col] = 0
	}

	for _, task := range state.Board.Tasks {
		status := task.Status
		if status == "" {
			status = "backlog"
		}
		if _, known := m.counts[status]; known {
			m.counts[status]++
		}
		if status == "in_progress" {
			m.active = append(m.active, task)
		}
	}

	m.total = len(state.Board.Tasks)
	m.done = m.counts["done"]
	if m.total > 0 {
		m.pct = m.done * 100 / m.total
	}

	switch {
	case m.total == 0:
		m.phase = "Initialization"
	case m.done == m.total:
		m.phase = "Complete"
	case len(m.active) > 0:
		m.phase = "Active Development"
	default:
		m.phase = "Planning"
	}

	for _, entry := range state.Approvals.ApprovalLog {
		if entry.Status == "pending" {
			m.pending = append(m.pending, entry)
		}
	}

	return m
}

func renderStatusReport(m *statusModel) string {
	rule := strings.Repeat("=", 50)
	header := color.New(color.FgHiCyan, color.Bold)

	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, header.Sprint("  PROJECT STATUS"))
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "  Phase: %s\n\n", phaseColor(m.phase).Sprint(m.phase))

	fmt.Fprintln(&b, "  Tasks:")
	maxColLen := 10
	maxCount := 0
	for _, col := range m.columns {
		if len(col) > maxColLen {
			maxColLen = len(col)
		}
		if m.counts[col] > maxCount {
			maxCount = m.counts[col]
		}
	}
	for _, col := range m.columns {
		cnt := m.counts[col]
		barLen := 0
		if maxCount > 0 {
			barLen = columnBarWidth * cnt / maxCount
		}
		bar := strings.Repeat("#", barLen) + strings.Repeat(".", columnBarWidth-barLen)
		fmt.Fprintf(&b, "    %-*s  %s  %d\n", maxColLen, col, bar, cnt)
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "  Progress: [%s] %d%%\n\n", progressBar(m.pct), m.pct)

	if len(m.active) > 0 {
		fmt.Fprintln(&b, "  Active Tasks:")
		for _, t := range m.active {
			owner := t.OwnerRole
			if owner == "" {
				owner = "unassigned"
			}
			fmt.Fprintf(&b, "    - %s: %s (%s)\n", t.ID, t.Title, owner)
		}
		fmt.Fprintln(&b)
	}

	if len(m.pending) > 0 {
		fmt.Fprintln(&b, color.New(color.FgYellow).Sprint("  Pending Approvals:"))
		for _, a := range m.pending {
			fmt.Fprintf(&b, "    - %s on %s\n", orUnknown(a.TriggerID), orPlaceholder(a.TaskID))
		}
	} else {
		fmt.Fprintln(&b, "  Blockers: None")
		fmt.Fprintln(&b, "  Pending Approvals: None")
	}
	fmt.Fprintln(&b)
	fmt.Fprint(&b, rule)

	return b.String()
}

func phaseColor(phase string) *color.Color {
	switch phase {
	case "Complete":
		return color.New(color.FgHiGreen)
	case "Active Development":
		return color.New(color.FgHiBlue)
	case "Planning":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgWhite)
	}
}

func progressBar(pct int) string {
	filled := progressBarWidth * pct / 100
	return strings.Repeat("#", filled) + strings.Repeat(".", progressBarWidth-filled)
}

// writeStatusFile rewrites STATUS.md from the model, carrying over any
// existing legacy snapshot section verbatim.
func (s *StatusServiceImpl) writeStatusFile(m *statusModel) error {
	var b strings.Builder
	b.WriteString("# Project Status\n\n")
	b.WriteString("> Auto-generated by `steward status`. Do not edit manually.\n\n")
	fmt.Fprintf(&b, "## Phase\n%s\n\n", m.phase)

	b.WriteString("## Task Summary\n")
	b.WriteString("| Column | Count |\n")
	b.WriteString("|--------|-------|\n")
	for _, col := range m.columns {
		fmt.Fprintf(&b, "| %s | %d |\n", col, m.counts[col])
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "## Progress\n[%s] %d%%\n\n", progressBar(m.pct), m.pct)

	if len(m.active) > 0 {
		b.WriteString("## Active Tasks\n")
		for _, t := range m.active {
			owner := t.OwnerRole
			if owner == "" {
				owner = "unassigned"
			}
			fmt.Fprintf(&b, "- **%s**: %s (owner: %s)\n", t.ID, t.Title, owner)
		}
		b.WriteString("\n")
	}

	if len(m.pending) > 0 {
		b.WriteString("## Pending Approvals\n")
		for _, a := range m.pending {
			fmt.Fprintf(&b, "- %s on %s\n", orUnknown(a.TriggerID), orPlaceholder(a.TaskID))
		}
	} else {
		b.WriteString("## Blockers\nNone\n\n")
		b.WriteString("## Pending Approvals\nNone\n")
	}
	b.WriteString("\n## Recent Decisions\nSee DECISIONS.md\n\n")
	fmt.Fprintf(&b, "---\n*Last updated: %s*", time.Now().UTC().Format("2006-01-02 15:04 UTC"))

	if err := os.MkdirAll(s.paths.StewardDir(), 0755); err != nil {
		return fmt.Errorf("failed to create steward dir: %w", err)
	}

	statusPath := s.paths.StatusFilePath()
	legacy := ""
	if existing, err := os.ReadFile(statusPath); err == nil {
		if idx := strings.Index(string(existing), legacyMarker); idx >= 0 {
			legacy = "\n\n" + string(existing[idx:])
		}
	}

	content := b.String() + legacy + "\n"
	if err := os.WriteFile(statusPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}

	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func orPlaceholder(s string) string {
	if s == "" {
		return "?"
	}
	return s
}

// Ensure StatusServiceImpl implements the interface
var _ primary.StatusService = (*StatusServiceImpl)(nil)
