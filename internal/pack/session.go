package pack

import (
	"fmt"
	"os"
	"time"

	"github.com/example/steward/internal/ports/secondary"
)

// Session pack table files.
const (
	MessagesFile  = "messages.jsonl"
	FactsFile     = "facts.jsonl"
	SummariesFile = "summaries.jsonl"
	EventsFile    = "events.jsonl"
)

type messageRow struct {
	ID        int64          `json:"id"`
	SessionID string         `json:"session_id"`
	Namespace string         `json:"namespace"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	TS        string         `json:"ts"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type factRow struct {
	ID           int64    `json:"id"`
	SessionID    string   `json:"session_id"`
	Namespace    string   `json:"namespace"`
	FactText     string   `json:"fact_text"`
	TS           string   `json:"ts"`
	Importance   int      `json:"importance"`
	Tags         []string `json:"tags,omitempty"`
	SupersedesID int64    `json:"supersedes_id,omitempty"`
}

type summaryRow struct {
	ID        int64  `json:"id"`
	SessionID string `json:"session_id"`
	Namespace string `json:"namespace"`
	Summary   string `json:"summary_text"`
	TS        string `json:"ts"`
	Scope     string `json:"scope"`
}

type memoryEventRow struct {
	ID      int64          `json:"id"`
	TS      string         `json:"ts"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// WriteSessionPack writes a session-memory pack to the destination. A .zip
// destination stages under stagingParent and compresses; anything else is
// treated as the pack directory itself. Returns the pack location.
func WriteSessionPack(destination, stagingParent string, rows *secondary.MemoryRows, namespaces []string) (string, error) {
	packDir := destination
	isZip := IsArchivePath(destination)
	if isZip {
		var err error
		packDir, err = StagingDir(stagingParent, "export")
		if err != nil {
			return "", err
		}
	} else if err := os.MkdirAll(packDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create pack dir: %w", err)
	}

	checksums := map[string]string{}

	if err := writeJSONL(packDir, MessagesFile, toMessageRows(rows.Messages), checksums); err != nil {
		return "", err
	}
	if err := writeJSONL(packDir, FactsFile, toFactRows(rows.Facts), checksums); err != nil {
		return "", err
	}
	if err := writeJSONL(packDir, SummariesFile, toSummaryRows(rows.Summaries), checksums); err != nil {
		return "", err
	}
	if len(rows.Events) > 0 {
		if err := writeJSONL(packDir, EventsFile, toMemoryEventRows(rows.Events), checksums); err != nil {
			return "", err
		}
	}

	var nsValue any = "all"
	if len(namespaces) > 0 {
		nsValue = namespaces
	}
	manifest := &Manifest{
		Version:    FormatVersion,
		Type:       TypeSessionMemory,
		CreatedAt:  time.Now().UTC().Format(time.RFC3339),
		Namespaces: nsValue,
		Counts: map[string]int{
			"messages":  len(rows.Messages),
			"facts":     len(rows.Facts),
			"summaries": len(rows.Summaries),
		},
	}
	if err := WriteManifest(packDir, manifest, checksums); err != nil {
		return "", err
	}
	if err := WriteChecksums(packDir, checksums); err != nil {
		return "", err
	}

	if isZip {
		if err := Compress(packDir, destination); err != nil {
			return "", err
		}
		return destination, nil
	}

	return packDir, nil
}

// ReadSessionPack opens a session-memory pack (directory or zip), verifies
// the manifest version and every checksum, and returns the rows. Nothing is
// returned unless the whole pack validates. Zip scratch directories are
// always cleaned up, on the error path included.
func ReadSessionPack(source, scratchParent string) (*secondary.MemoryRows, *Manifest, error) {
	dir, cleanup, err := openPackDir(source, scratchParent)
	if err != nil {
		return nil, nil, err
	}
	defer cleanup()

	manifest, err := ReadManifest(dir)
	if err != nil {
		return nil, nil, err
	}
	if err := VerifyChecksums(dir); err != nil {
		return nil, nil, err
	}

	messages, err := readJSONL[messageRow](dir, MessagesFile)
	if err != nil {
		return nil, nil, err
	}
	facts, err := readJSONL[factRow](dir, FactsFile)
	if err != nil {
		return nil, nil, err
	}
	summaries, err := readJSONL[summaryRow](dir, SummariesFile)
	if err != nil {
		return nil, nil, err
	}
	events, err := readJSONL[memoryEventRow](dir, EventsFile)
	if err != nil {
		return nil, nil, err
	}

	rows := &secondary.MemoryRows{
		Messages:  fromMessageRows(messages),
		Facts:     fromFactRows(facts),
		Summaries: fromSummaryRows(summaries),
		Events:    fromMemoryEventRows(events),
	}

	return rows, manifest, nil
}

// openPackDir resolves a pack source into a readable directory. Zip sources
// are extracted into a scratch dir whose removal is the returned cleanup.
func openPackDir(source, scratchParent string) (string, func(), error) {
	if IsArchivePath(source) {
		scratch, err := Extract(source, scratchParent)
		if err != nil {
			return "", nil, err
		}
		return scratch, func() { os.RemoveAll(scratch) }, nil
	}

	info, err := os.Stat(source)
	if os.IsNotExist(err) || (err == nil && !info.IsDir()) {
		return "", nil, fmt.Errorf("%w: %s is not a pack directory or zip", ErrNotFound, source)
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to stat pack: %w", err)
	}

	return source, func() {}, nil
}

func toMessageRows(messages []*secondary.MessageRecord) []messageRow {
	rows := make([]messageRow, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, messageRow{
			ID: m.ID, SessionID: m.SessionID, Namespace: m.Namespace,
			Role: m.Role, Content: m.Content, TS: m.Timestamp, Metadata: m.Metadata,
		})
	}
	return rows
}

func fromMessageRows(rows []messageRow) []*secondary.MessageRecord {
	messages := make([]*secondary.MessageRecord, 0, len(rows))
	for _, r := range rows {
		messages = append(messages, &secondary.MessageRecord{
			ID: r.ID, SessionID: r.SessionID, Namespace: r.Namespace,
			Role: r.Role, Content: r.Content, Timestamp: r.TS, Metadata: r.Metadata,
		})
	}
	return messages
}

func toFactRows(facts []*secondary.FactRecord) []factRow {
	rows := make([]factRow, 0, len(facts))
	for _, f := range facts {
		rows = append(rows, factRow{
			ID: f.ID, SessionID: f.SessionID, Namespace: f.Namespace,
			FactText: f.Text, TS: f.Timestamp, Importance: f.Importance,
			Tags: f.Tags, SupersedesID: f.SupersedesID,
		})
	}
	return rows
}

func fromFactRows(rows []factRow) []*secondary.FactRecord {
	facts := make([]*secondary.FactRecord, 0, len(rows))
	for _, r := range rows {
		facts = append(facts, &secondary.FactRecord{
			ID: r.ID, SessionID: r.SessionID, Namespace: r.Namespace,
			Text: r.FactText, Timestamp: r.TS, Importance: r.Importance,
			Tags: r.Tags, SupersedesID: r.SupersedesID,
		})
	}
	return facts
}

func toSummaryRows(summaries []*secondary.SummaryRecord) []summaryRow {
	rows := make([]summaryRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, summaryRow{
			ID: s.ID, SessionID: s.SessionID, Namespace: s.Namespace,
			Summary: s.Text, TS: s.Timestamp, Scope: s.Scope,
		})
	}
	return rows
}

func fromSummaryRows(rows []summaryRow) []*secondary.SummaryRecord {
	summaries := make([]*secondary.SummaryRecord, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, &secondary.SummaryRecord{
			ID: r.ID, SessionID: r.SessionID, Namespace: r.Namespace,
			Text: r.Summary, Timestamp: r.TS, Scope: r.Scope,
		})
	}
	return summaries
}

func toMemoryEventRows(events []*secondary.MemoryEventRecord) []memoryEventRow {
	rows := make([]memoryEventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, memoryEventRow{ID: e.ID, TS: e.Timestamp, Type: e.Type, Payload: e.Payload})
	}
	return rows
}

func fromMemoryEventRows(rows []memoryEventRow) []*secondary.MemoryEventRecord {
	events := make([]*secondary.MemoryEventRecord, 0, len(rows))
	for _, r := range rows {
		events = append(events, &secondary.MemoryEventRecord{ID: r.ID, Timestamp: r.TS, Type: r.Type, Payload: r.Payload})
	}
	return events
}
