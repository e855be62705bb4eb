package models

import "time"

// StageRecord is one entry in a candidate's stage history. A record is opened
// when the candidate enters a stage and closed when it leaves; an active
// candidate always has exactly one open record.
type StageRecord struct {
	ID            string         `json:"id"`
	CandidateID   string         `json:"candidate_id" validate:"required"`
	PhaseID       string         `json:"phase_id"`
	WorkflowID    string         `json:"workflow_id"  validate:"required"`
	StageID       string         `json:"stage_id"     validate:"required"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"` // nil while the record is open
	Deadline      *time.Time     `json:"deadline,omitempty"`
	EstimatedCost *float64       `json:"estimated_cost,omitempty"`
	ActualCost    *float64       `json:"actual_cost,omitempty"`
	Comment       string         `json:"comment,omitempty"`
	Data          map[string]any `json:"data,omitempty"`
}

// OpenStageRecord opens a history record for the candidate entering a stage.
// The deadline is computed from the stage configuration when present.
func OpenStageRecord(id string, candidate *Candidate, stage WorkflowStage) StageRecord {
	started := time.Now().UTC()

	return StageRecord{
		ID:            id,
		CandidateID:   candidate.ID,
		PhaseID:       candidate.CurrentPhaseID,
		WorkflowID:    stage.WorkflowID,
		StageID:       stage.ID,
		StartedAt:     started,
		Deadline:      stage.DeadlineFrom(started),
		EstimatedCost: stage.EstimatedCost,
	}
}

// Close marks the record completed, carrying the given comment forward.
func (r *StageRecord) Close(comment string) {
	now := time.Now().UTC()
	r.CompletedAt = &now

	if comment != "" {
		r.Comment = comment
	}
}

// IsOpen reports whether the record is still the candidate's current one.
func (r *StageRecord) IsOpen() bool {
	return r.CompletedAt == nil
}

// IsOverdue reports whether an open record has passed its deadline.
func (r *StageRecord) IsOverdue(now time.Time) bool {
	return r.IsOpen() && r.Deadline != nil && now.After(*r.Deadline)
}
