package pack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/example/steward/internal/ports/secondary"
)

// Cache pack files.
const (
	CacheEventsFile  = "events.jsonl"
	DerivedStateFile = "derived_state.json"
)

type cacheEventRow struct {
	TS      string         `json:"ts"`
	Actor   string         `json:"actor"`
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

type workerRow struct {
	ID         string `json:"id"`
	RoleID     string `json:"role_id"`
	Title      string `json:"title"`
	Department string `json:"department"`
	Provider   string `json:"provider,omitempty"`
	Model      string `json:"model,omitempty"`
	ReportsTo  string `json:"reports_to,omitempty"`
	Authority  string `json:"authority"`
}

type taskRow struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Status           string   `json:"status"`
	OwnerRole        string   `json:"owner_role,omitempty"`
	RequiresApproval []string `json:"requires_approval,omitempty"`
	UpdatedTS        string   `json:"updated_ts"`
}

type approvalRow struct {
	TaskID       string `json:"task_id"`
	ApprovalType string `json:"approval_type"`
	Status       string `json:"status"`
	ApprovedBy   string `json:"approved_by,omitempty"`
	TS           string `json:"ts"`
}

type derivedState struct {
	Workers   []workerRow   `json:"workers"`
	Tasks     []taskRow     `json:"tasks"`
	Approvals []approvalRow `json:"approvals"`
}

// WriteCachePack writes a cache pack (event log plus derived tables) to the
// destination, staging under stagingParent when the destination is a zip.
func WriteCachePack(destination, stagingParent string, export *secondary.DerivedExport) (string, error) {
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

	if err := writeJSONL(packDir, CacheEventsFile, toCacheEventRows(export.Events), checksums); err != nil {
		return "", err
	}
	if err := writeDerivedState(packDir, export, checksums); err != nil {
		return "", err
	}

	manifest := &Manifest{
		Version:       FormatVersion,
		Type:          TypeCache,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		CanonicalHash: export.CanonicalHash,
		Counts: map[string]int{
			"events":    len(export.Events),
			"workers":   len(export.Workers),
			"tasks":     len(export.Tasks),
			"approvals": len(export.Approvals),
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

// ReadCachePack opens a cache pack, validates manifest and checksums, and
// returns the event log plus the derived state it was exported with.
func ReadCachePack(source, scratchParent string) (*secondary.DerivedExport, *Manifest, error) {
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

	events, err := readJSONL[cacheEventRow](dir, CacheEventsFile)
	if err != nil {
		return nil, nil, err
	}
	state, err := readDerivedState(dir)
	if err != nil {
		return nil, nil, err
	}

	export := &secondary.DerivedExport{
		Workers:       fromWorkerRows(state.Workers),
		Tasks:         fromTaskRows(state.Tasks),
		Approvals:     fromApprovalRows(state.Approvals),
		Events:        fromCacheEventRows(events),
		CanonicalHash: manifest.CanonicalHash,
	}

	return export, manifest, nil
}

func writeDerivedState(dir string, export *secondary.DerivedExport, checksums map[string]string) error {
	state := derivedState{
		Workers:   toWorkerRows(export.Workers),
		Tasks:     toTaskRows(export.Tasks),
		Approvals: toApprovalRows(export.Approvals),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(state); err != nil {
		return fmt.Errorf("failed to encode derived state: %w", err)
	}

	path := filepath.Join(dir, DerivedStateFile)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", DerivedStateFile, err)
	}

	sum, err := ChecksumFile(path)
	if err != nil {
		return err
	}
	checksums[DerivedStateFile] = sum
	return nil
}

func readDerivedState(dir string) (*derivedState, error) {
	data, err := os.ReadFile(filepath.Join(dir, DerivedStateFile))
	if os.IsNotExist(err) {
		return &derivedState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", DerivedStateFile, err)
	}

	var state derivedState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", DerivedStateFile, err)
	}
	return &state, nil
}

func toCacheEventRows(events []*secondary.EventRecord) []cacheEventRow {
	rows := make([]cacheEventRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, cacheEventRow{TS: e.Timestamp, Actor: e.Actor, Type: e.Type, Payload: e.Payload})
	}
	return rows
}

func fromCacheEventRows(rows []cacheEventRow) []*secondary.EventRecord {
	events := make([]*secondary.EventRecord, 0, len(rows))
	for _, r := range rows {
		events = append(events, &secondary.EventRecord{Timestamp: r.TS, Actor: r.Actor, Type: r.Type, Payload: r.Payload})
	}
	return events
}

func toWorkerRows(workers []*secondary.WorkerRecord) []workerRow {
	rows := make([]workerRow, 0, len(workers))
	for _, w := range workers {
		rows = append(rows, workerRow{
			ID: w.ID, RoleID: w.RoleID, Title: w.Title, Department: w.Department,
			Provider: w.Provider, Model: w.Model, ReportsTo: w.ReportsTo, Authority: w.Authority,
		})
	}
	return rows
}

func fromWorkerRows(rows []workerRow) []*secondary.WorkerRecord {
	workers := make([]*secondary.WorkerRecord, 0, len(rows))
	for _, r := range rows {
		workers = append(workers, &secondary.WorkerRecord{
			ID: r.ID, RoleID: r.RoleID, Title: r.Title, Department: r.Department,
			Provider: r.Provider, Model: r.Model, ReportsTo: r.ReportsTo, Authority: r.Authority,
		})
	}
	return workers
}

func toTaskRows(tasks []*secondary.TaskRecord) []taskRow {
	rows := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, taskRow{
			ID: t.ID, Title: t.Title, Status: t.Status, OwnerRole: t.OwnerRole,
			RequiresApproval: t.RequiresApproval, UpdatedTS: t.UpdatedAt,
		})
	}
	return rows
}

func fromTaskRows(rows []taskRow) []*secondary.TaskRecord {
	tasks := make([]*secondary.TaskRecord, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, &secondary.TaskRecord{
			ID: r.ID, Title: r.Title, Status: r.Status, OwnerRole: r.OwnerRole,
			RequiresApproval: r.RequiresApproval, UpdatedAt: r.UpdatedTS,
		})
	}
	return tasks
}

func toApprovalRows(approvals []*secondary.ApprovalRecord) []approvalRow {
	rows := make([]approvalRow, 0, len(approvals))
	for _, a := range approvals {
		rows = append(rows, approvalRow{
			TaskID: a.TaskID, ApprovalType: a.Type, Status: a.Status,
			ApprovedBy: a.ApprovedBy, TS: a.Timestamp,
		})
	}
	return rows
}

func fromApprovalRows(rows []approvalRow) []*secondary.ApprovalRecord {
	approvals := make([]*secondary.ApprovalRecord, 0, len(rows))
	for _, r := range rows {
		approvals = append(approvals, &secondary.ApprovalRecord{
			TaskID: r.TaskID, Type: r.ApprovalType, Status: r.Status,
			ApprovedBy: r.ApprovedBy, Timestamp: r.TS,
		})
	}
	return approvals
}
