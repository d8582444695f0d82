package workers

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"
)

// Checkpoint is one durable progress record for a worker, stored as markdown
// under checkpoints/<worker_id>/<checkpoint_id>.md so it stays reviewable in
// plain git diffs.
type Checkpoint struct {
	CheckpointID    string
	WorkerID        string
	Role            string
	Provider        string
	Timestamp       string
	Completed       []string
	Pending         []string
	FilesChanged    []string
	Decisions       []string
	ProgressSummary string
	NextSteps       string
}

var checkpointHeaderRe = regexp.MustCompile(`Worker:\s*(\S+)\s*\|\s*Role:\s*(\S+)\s*\|\s*Provider:\s*(\S+)`)
var checkpointTimestampRe = regexp.MustCompile(`Timestamp:\s*(.+)`)

// WriteCheckpoint renders a checkpoint to markdown, stamps the worker's
// last_checkpoint_id in the roster, and returns the checkpoint id.
func WriteCheckpoint(workersDir, workerID string, cp Checkpoint) (string, error) {
	now := time.Now().UTC()
	checkpointID := now.Format("20060102_150405")

	dir := filepath.Join(workersDir, "checkpoints", workerID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create checkpoint dir: %w", err)
	}

	timestamp := cp.Timestamp
	if timestamp == "" {
		timestamp = now.Format(time.RFC3339)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Checkpoint: %s\n", checkpointID)
	fmt.Fprintf(&b, "Worker: %s | Role: %s | Provider: %s\n", workerID, cp.Role, cp.Provider)
	fmt.Fprintf(&b, "Timestamp: %s\n\n", timestamp)

	writeBulletSection(&b, "Completed", cp.Completed)
	writeBulletSection(&b, "Pending", cp.Pending)
	writeBulletSection(&b, "Files Changed", cp.FilesChanged)
	writeBulletSection(&b, "Decisions", cp.Decisions)

	if cp.ProgressSummary != "" && len(cp.Completed) == 0 {
		fmt.Fprintf(&b, "## Progress\n%s\n\n", cp.ProgressSummary)
	}
	if cp.NextSteps != "" {
		fmt.Fprintf(&b, "## Resume Instructions\n%s\n\n", cp.NextSteps)
	}

	path := filepath.Join(dir, checkpointID+".md")
	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write checkpoint: %w", err)
	}

	if err := updateRosterCheckpoint(workersDir, workerID, checkpointID); err != nil {
		return "", err
	}

	return checkpointID, nil
}

// LatestCheckpoint parses the most recent checkpoint for a worker, or nil
// when none exist. Checkpoint ids sort lexicographically by creation time.
func LatestCheckpoint(workersDir, workerID string) (*Checkpoint, error) {
	dir := filepath.Join(workersDir, "checkpoints", workerID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list checkpoints: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".md") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return nil, nil
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	data, err := os.ReadFile(filepath.Join(dir, names[0]))
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	cp := parseCheckpoint(string(data))
	cp.CheckpointID = strings.TrimSuffix(names[0], ".md")
	return cp, nil
}

func parseCheckpoint(text string) *Checkpoint {
	cp := &Checkpoint{}

	if m := checkpointHeaderRe.FindStringSubmatch(text); m != nil {
		cp.WorkerID = m[1]
		cp.Role = m[2]
		cp.Provider = m[3]
	}
	if m := checkpointTimestampRe.FindStringSubmatch(text); m != nil {
		cp.Timestamp = strings.TrimSpace(m[1])
	}

	sections := extractSections(text)
	cp.Completed = parseBulletList(sections["Completed"])
	cp.Pending = parseBulletList(sections["Pending"])
	cp.FilesChanged = parseBulletList(sections["Files Changed"])
	cp.Decisions = parseBulletList(sections["Decisions"])
	cp.ProgressSummary = strings.TrimSpace(sections["Progress"])
	cp.NextSteps = strings.TrimSpace(sections["Resume Instructions"])

	return cp
}

func writeBulletSection(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// extractSections splits markdown into its ## sections.
func extractSections(text string) map[string]string {
	sections := make(map[string]string)
	var current string
	var content []string

	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "## ") {
			if current != "" {
				sections[current] = strings.Join(content, "\n")
			}
			current = strings.TrimSpace(line[3:])
			content = nil
		} else if current != "" {
			content = append(content, line)
		}
	}
	if current != "" {
		sections[current] = strings.Join(content, "\n")
	}

	return sections
}

func parseBulletList(text string) []string {
	var items []string
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			items = append(items, line[2:])
		}
	}
	return items
}
