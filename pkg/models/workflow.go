// Package models defines the core domain models for hiring workflow management.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft    WorkflowStatus = "draft"    // Editable, not assignable to candidates
	WorkflowStatusActive   WorkflowStatus = "active"   // Candidates can be assigned and transitioned
	WorkflowStatusArchived WorkflowStatus = "archived" // Historical, read-only
)

// Workflow represents a hiring workflow owned by a company. Stages and custom
// fields reference the workflow by ID and are persisted independently.
type Workflow struct {
	ID          string         `json:"id"`
	CompanyID   string         `json:"company_id"  validate:"required"`
	PhaseID     string         `json:"phase_id"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Status      WorkflowStatus `json:"status"      validate:"required"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty"`
}
