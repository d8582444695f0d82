package workers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SummaryInput carries the fields rendered into a worker summary file.
type SummaryInput struct {
	Role             string
	Title            string
	Provider         string
	Model            string
	Status           string
	LastCheckpointID string
	Responsibilities []string
	OpenTickets      []string
	LatestProgress   string
}

// WriteSummary renders summaries/<worker_id>.md, replacing any prior file.
func WriteSummary(workersDir, workerID string, in SummaryInput) error {
	dir := filepath.Join(workersDir, "summaries")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create summaries dir: %w", err)
	}

	title := in.Title
	if title == "" {
		title = in.Role
	}
	if title == "" {
		title = workerID
	}
	provider := orQuestionMark(in.Provider)
	model := orQuestionMark(in.Model)
	status := in.Status
	if status == "" {
		status = "ready"
	}
	lastCp := in.LastCheckpointID
	if lastCp == "" {
		lastCp = "none"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Worker: %s\n", workerID)
	fmt.Fprintf(&b, "Role: %s | Provider: %s | Model: %s\n", title, provider, model)
	fmt.Fprintf(&b, "Status: %s\n", status)
	fmt.Fprintf(&b, "Last Checkpoint: %s\n\n", lastCp)

	writeBulletSection(&b, "Current Responsibilities", in.Responsibilities)

	if len(in.OpenTickets) > 0 {
		writeBulletSection(&b, "Open Tickets", in.OpenTickets)
	} else {
		b.WriteString("## Open Tickets\n- (awaiting assignment)\n\n")
	}

	if in.LatestProgress != "" {
		fmt.Fprintf(&b, "## Latest Progress\n%s\n\n", in.LatestProgress)
	}

	path := filepath.Join(dir, workerID+".md")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	return nil
}

// LoadSummary returns a worker summary as raw markdown, or "" when missing.
func LoadSummary(workersDir, workerID string) (string, error) {
	data, err := os.ReadFile(filepath.Join(workersDir, "summaries", workerID+".md"))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read summary: %w", err)
	}
	return string(data), nil
}

func orQuestionMark(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
