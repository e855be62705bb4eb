package models

import (
	"errors"
	"fmt"
	"time"
)

// StageType classifies a stage within a workflow.
type StageType string

const (
	StageTypeInitial  StageType = "INITIAL"  // Entry point of a workflow, exactly one per workflow by convention
	StageTypeStandard StageType = "STANDARD" // Intermediate stage
	StageTypeSuccess  StageType = "SUCCESS"  // Terminal, may cascade into the next phase
	StageTypeFail     StageType = "FAIL"     // Terminal rejection stage
)

// IsTerminal reports whether the stage type ends the workflow.
func (t StageType) IsTerminal() bool {
	return t == StageTypeSuccess || t == StageTypeFail
}

func (t StageType) valid() bool {
	switch t {
	case StageTypeInitial, StageTypeStandard, StageTypeSuccess, StageTypeFail:
		return true
	default:
		return false
	}
}

var (
	ErrStageNameRequired   = errors.New("stage name is required")
	ErrNegativeOrder       = errors.New("stage order must be non-negative")
	ErrNegativeDuration    = errors.New("estimated duration must be non-negative")
	ErrInvalidDeadline     = errors.New("deadline must be at least 1 day")
	ErrNegativeCost        = errors.New("estimated cost must be non-negative")
	ErrInvalidStageType    = errors.New("invalid stage type")
	ErrNextPhaseOnNonFinal = errors.New("next phase can only be set on SUCCESS or FAIL stages")
)

// WorkflowStage is one stage in a workflow. Instances are immutable: every
// mutation returns a new value.
type WorkflowStage struct {
	ID                string          `json:"id"`
	WorkflowID        string          `json:"workflow_id" validate:"required"`
	Name              string          `json:"name"        validate:"required"`
	StageType         StageType       `json:"stage_type"  validate:"required"`
	Order             int             `json:"order"`
	AllowSkip         bool            `json:"allow_skip"`
	EstimatedDuration int             `json:"estimated_duration"` // days
	DefaultRoleID     *string         `json:"default_role_id,omitempty"`
	DefaultUserID     *string         `json:"default_user_id,omitempty"`
	EmailTemplateID   *string         `json:"email_template_id,omitempty"`
	DeadlineDays      *int            `json:"deadline_days,omitempty"`
	EstimatedCost     *float64        `json:"estimated_cost,omitempty"`
	NextPhaseID       *string         `json:"next_phase_id,omitempty"`
	FieldVisibility   map[string]bool `json:"field_visibility,omitempty"`
	FieldValidation   map[string]any  `json:"field_validation,omitempty"`
	IsActive          bool            `json:"is_active"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// StageAttributes carries the mutable attributes of a stage for create and
// update operations.
type StageAttributes struct {
	Name              string
	StageType         StageType
	Order             int
	AllowSkip         bool
	EstimatedDuration int
	DefaultRoleID     *string
	DefaultUserID     *string
	EmailTemplateID   *string
	DeadlineDays      *int
	EstimatedCost     *float64
	NextPhaseID       *string
	FieldVisibility   map[string]bool
	FieldValidation   map[string]any
}

func (a StageAttributes) validate() error {
	if a.Name == "" {
		return ErrStageNameRequired
	}

	if !a.StageType.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStageType, a.StageType)
	}

	if a.Order < 0 {
		return ErrNegativeOrder
	}

	if a.EstimatedDuration < 0 {
		return ErrNegativeDuration
	}

	if a.DeadlineDays != nil && *a.DeadlineDays < 1 {
		return ErrInvalidDeadline
	}

	if a.EstimatedCost != nil && *a.EstimatedCost < 0 {
		return ErrNegativeCost
	}

	if a.NextPhaseID != nil && !a.StageType.IsTerminal() {
		return ErrNextPhaseOnNonFinal
	}

	return nil
}

// NewWorkflowStage validates the given attributes and returns a new stage.
func NewWorkflowStage(id, workflowID string, attrs StageAttributes) (WorkflowStage, error) {
	if err := attrs.validate(); err != nil {
		return WorkflowStage{}, err
	}

	now := time.Now().UTC()

	return WorkflowStage{
		ID:                id,
		WorkflowID:        workflowID,
		Name:              attrs.Name,
		StageType:         attrs.StageType,
		Order:             attrs.Order,
		AllowSkip:         attrs.AllowSkip,
		EstimatedDuration: attrs.EstimatedDuration,
		DefaultRoleID:     attrs.DefaultRoleID,
		DefaultUserID:     attrs.DefaultUserID,
		EmailTemplateID:   attrs.EmailTemplateID,
		DeadlineDays:      attrs.DeadlineDays,
		EstimatedCost:     attrs.EstimatedCost,
		NextPhaseID:       attrs.NextPhaseID,
		FieldVisibility:   attrs.FieldVisibility,
		FieldValidation:   attrs.FieldValidation,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Update returns a copy of the stage with the given attributes applied.
// ID, workflow and creation time are preserved.
func (s WorkflowStage) Update(attrs StageAttributes) (WorkflowStage, error) {
	if err := attrs.validate(); err != nil {
		return WorkflowStage{}, err
	}

	updated := s
	updated.Name = attrs.Name
	updated.StageType = attrs.StageType
	updated.Order = attrs.Order
	updated.AllowSkip = attrs.AllowSkip
	updated.EstimatedDuration = attrs.EstimatedDuration
	updated.DefaultRoleID = attrs.DefaultRoleID
	updated.DefaultUserID = attrs.DefaultUserID
	updated.EmailTemplateID = attrs.EmailTemplateID
	updated.DeadlineDays = attrs.DeadlineDays
	updated.EstimatedCost = attrs.EstimatedCost
	updated.NextPhaseID = attrs.NextPhaseID
	updated.FieldVisibility = attrs.FieldVisibility
	updated.FieldValidation = attrs.FieldValidation
	updated.UpdatedAt = time.Now().UTC()

	return updated, nil
}

// Reorder returns a copy of the stage at the given position.
func (s WorkflowStage) Reorder(order int) (WorkflowStage, error) {
	if order < 0 {
		return WorkflowStage{}, ErrNegativeOrder
	}

	updated := s
	updated.Order = order
	updated.UpdatedAt = time.Now().UTC()

	return updated, nil
}

// Activate returns an active copy of the stage.
func (s WorkflowStage) Activate() WorkflowStage {
	updated := s
	updated.IsActive = true
	updated.UpdatedAt = time.Now().UTC()

	return updated
}

// Deactivate returns an inactive copy of the stage.
func (s WorkflowStage) Deactivate() WorkflowStage {
	updated := s
	updated.IsActive = false
	updated.UpdatedAt = time.Now().UTC()

	return updated
}

// DeadlineFrom computes the stage deadline relative to the given start time,
// or nil when the stage has no deadline configured.
func (s WorkflowStage) DeadlineFrom(start time.Time) *time.Time {
	if s.DeadlineDays == nil {
		return nil
	}

	deadline := start.AddDate(0, 0, *s.DeadlineDays)

	return &deadline
}
