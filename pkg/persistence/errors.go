// Package persistence provides standardized error types for persistence
// operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrWorkflowNotFound indicates a workflow was not found by the given identifier.
	ErrWorkflowNotFound = errors.New("workflow not found")

	// ErrStageNotFound indicates a workflow stage was not found by the given identifier.
	ErrStageNotFound = errors.New("stage not found")

	// ErrInitialStageNotFound indicates a workflow has no INITIAL stage. This is
	// a configuration error in the workflow definition, not a runtime condition.
	ErrInitialStageNotFound = errors.New("workflow has no initial stage")

	// ErrCustomFieldNotFound indicates a custom field was not found.
	ErrCustomFieldNotFound = errors.New("custom field not found")

	// ErrFieldConfigurationNotFound indicates a per-stage field configuration was not found.
	ErrFieldConfigurationNotFound = errors.New("field configuration not found")

	// ErrValidationRuleNotFound indicates a validation rule was not found.
	ErrValidationRuleNotFound = errors.New("validation rule not found")

	// ErrCandidateNotFound indicates a candidate was not found.
	ErrCandidateNotFound = errors.New("candidate not found")

	// ErrStageRecordNotFound indicates a stage history record was not found.
	ErrStageRecordNotFound = errors.New("stage record not found")
)

// StoreError wraps persistence errors with operation context.
type StoreError struct {
	Op     string // Operation being performed (e.g., "GetByID", "Save", "Delete")
	Entity string // Entity kind (e.g., "workflow", "candidate")
	ID     string // Entity ID if applicable
	Err    error  // Underlying error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}

	return fmt.Sprintf("%s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewStoreError creates a persistence error with context.
func NewStoreError(op, entity, id string, err error) *StoreError {
	return &StoreError{Op: op, Entity: entity, ID: id, Err: err}
}

// IsWorkflowNotFound checks if an error indicates a missing workflow.
func IsWorkflowNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound)
}

// IsStageNotFound checks if an error indicates a missing stage.
func IsStageNotFound(err error) bool {
	return errors.Is(err, ErrStageNotFound)
}

// IsCandidateNotFound checks if an error indicates a missing candidate.
func IsCandidateNotFound(err error) bool {
	return errors.Is(err, ErrCandidateNotFound)
}

// IsNotFound checks if an error belongs to the NotFound class for any entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrWorkflowNotFound) ||
		errors.Is(err, ErrStageNotFound) ||
		errors.Is(err, ErrInitialStageNotFound) ||
		errors.Is(err, ErrCustomFieldNotFound) ||
		errors.Is(err, ErrFieldConfigurationNotFound) ||
		errors.Is(err, ErrValidationRuleNotFound) ||
		errors.Is(err, ErrCandidateNotFound) ||
		errors.Is(err, ErrStageRecordNotFound)
}
