package models

import "time"

// CandidateStatus is the hiring status of a candidate application.
type CandidateStatus string

const (
	CandidateStatusActive    CandidateStatus = "active"
	CandidateStatusRejected  CandidateStatus = "rejected"
	CandidateStatusHired     CandidateStatus = "hired"
	CandidateStatusWithdrawn CandidateStatus = "withdrawn"
)

// Candidate is a candidate application moving through a position's hiring
// workflows. It is the only mutable entity in the transition core: it always
// occupies exactly one stage of its current workflow.
type Candidate struct {
	ID                string            `json:"id"`
	PositionID        string            `json:"position_id" validate:"required"`
	CompanyID         string            `json:"company_id"  validate:"required"`
	Name              string            `json:"name"        validate:"required"`
	Email             string            `json:"email"       validate:"omitempty,email"`
	Status            CandidateStatus   `json:"status"`
	CurrentPhaseID    string            `json:"current_phase_id"`
	CurrentWorkflowID string            `json:"current_workflow_id"`
	CurrentStageID    string            `json:"current_stage_id"`
	PhaseWorkflows    map[string]string `json:"phase_workflows,omitempty"` // phase ID -> workflow ID configured on the parent position
	FieldValues       map[string]any    `json:"field_values,omitempty"`    // custom field ID -> value
	RejectionReason   *string           `json:"rejection_reason,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// GetWorkflowForPhase resolves the workflow configured for the given phase on
// the candidate's parent position. Empty string when no workflow is configured.
func (c *Candidate) GetWorkflowForPhase(phaseID string) string {
	if c.PhaseWorkflows == nil {
		return ""
	}

	return c.PhaseWorkflows[phaseID]
}

// MoveToStage places the candidate on the given stage, switching workflow and
// phase along with it.
func (c *Candidate) MoveToStage(phaseID, workflowID, stageID string) {
	c.CurrentPhaseID = phaseID
	c.CurrentWorkflowID = workflowID
	c.CurrentStageID = stageID
	c.UpdatedAt = time.Now().UTC()
}

// Reject marks the candidate rejected with the given reason. The current stage
// is left untouched so the rejection context stays visible.
func (c *Candidate) Reject(reason string) {
	c.Status = CandidateStatusRejected
	c.RejectionReason = &reason
	c.UpdatedAt = time.Now().UTC()
}

// IsRejected reports whether the candidate has been rejected.
func (c *Candidate) IsRejected() bool {
	return c.Status == CandidateStatusRejected
}
