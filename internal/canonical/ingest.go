package canonical

import "github.com/example/steward/internal/ports/secondary"

// IngestTeam transforms the team document into worker rows. The orchestrator
// always appears first, then each role's workers; a role with no workers
// contributes one row under its role id so every role stays queryable.
func IngestTeam(team TeamDoc) []*secondary.WorkerRecord {
	orch := team.Orchestrator
	orchID := orch.RoleID
	if orchID == "" {
		orchID = "orchestrator"
	}
	orchTitle := orch.Title
	if orchTitle == "" {
		orchTitle = "Orchestrator"
	}
	orchAuthority := orch.Authority
	if orchAuthority == "" {
		orchAuthority = "write"
	}

	workers := []*secondary.WorkerRecord{{
		ID:         orchID,
		RoleID:     orchID,
		Title:      orchTitle,
		Department: "orchestration",
		Authority:  orchAuthority,
	}}

	for _, role := range team.Roles {
		authority := role.Authority
		if authority == "" {
			authority = "read"
		}
		for _, w := range role.Workers {
			id := w.ID
			if id == "" {
				id = role.RoleID
			}
			workers = append(workers, &secondary.WorkerRecord{
				ID:         id,
				RoleID:     role.RoleID,
				Title:      role.Title,
				Department: role.Department,
				Provider:   w.Provider,
				Model:      w.Model,
				ReportsTo:  role.ReportsTo,
				Authority:  authority,
			})
		}
		if len(role.Workers) == 0 {
			workers = append(workers, &secondary.WorkerRecord{
				ID:         role.RoleID,
				RoleID:     role.RoleID,
				Title:      role.Title,
				Department: role.Department,
				ReportsTo:  role.ReportsTo,
				Authority:  authority,
			})
		}
	}

	return workers
}

// IngestBoard transforms the board document into task rows. The ingestion
// timestamp is recorded as each task's updated_ts.
func IngestBoard(board BoardDoc, ingestedAt string) []*secondary.TaskRecord {
	tasks := make([]*secondary.TaskRecord, 0, len(board.Tasks))
	for _, t := range board.Tasks {
		tasks = append(tasks, &secondary.TaskRecord{
			ID:               t.ID,
			Title:            t.Title,
			Status:           t.Status,
			OwnerRole:        t.OwnerRole,
			RequiresApproval: t.RequiresApproval,
			UpdatedAt:        ingestedAt,
		})
	}
	return tasks
}

// IngestApprovals transforms the approval log into approval rows. The
// approval type falls back to the trigger id, and status defaults to
// pending.
func IngestApprovals(approvals ApprovalsDoc) []*secondary.ApprovalRecord {
	rows := make([]*secondary.ApprovalRecord, 0, len(approvals.ApprovalLog))
	for _, entry := range approvals.ApprovalLog {
		approvalType := entry.ApprovalType
		if approvalType == "" {
			approvalType = entry.TriggerID
		}
		status := entry.Status
		if status == "" {
			status = "pending"
		}
		rows = append(rows, &secondary.ApprovalRecord{
			TaskID:     entry.TaskID,
			Type:       approvalType,
			Status:     status,
			ApprovedBy: entry.ApprovedBy,
			Timestamp:  entry.Timestamp,
		})
	}
	return rows
}
