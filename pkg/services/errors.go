// Package services provides the application service layer between the HTTP API
// and the domain model.
package services

import (
	"errors"
	"fmt"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
)

// Business logic errors. These indicate client errors (4xx responses).
var (
	// Validation errors (400 Bad Request).
	ErrInvalidRequest       = errors.New("invalid request")
	ErrWorkflowNameTooShort = errors.New("workflow name must be at least 3 characters")
	ErrCompanyIDRequired    = errors.New("company ID is required")
	ErrInvalidStatus        = errors.New("invalid workflow status")

	// Business logic conflicts (409 Conflict).
	ErrDuplicateFieldKey   = errors.New("field key already exists in workflow")
	ErrDuplicateStageOrder = errors.New("stage order already taken in workflow")
	ErrWorkflowArchived    = errors.New("cannot modify archived workflow")
)

// modelValidationErrors are the domain invariant violations raised by the model
// constructors. They all map to HTTP 400.
var modelValidationErrors = []error{
	models.ErrStageNameRequired,
	models.ErrNegativeOrder,
	models.ErrNegativeDuration,
	models.ErrInvalidDeadline,
	models.ErrNegativeCost,
	models.ErrInvalidStageType,
	models.ErrNextPhaseOnNonFinal,
	models.ErrInvalidFieldKey,
	models.ErrFieldNameRequired,
	models.ErrFieldNameTooLong,
	models.ErrInvalidFieldType,
	models.ErrInvalidFieldConfig,
	models.ErrOptionsRequired,
	models.ErrInvalidNumberRange,
	models.ErrInvalidRuleType,
	models.ErrInvalidOperator,
	models.ErrInvalidSeverity,
	models.ErrAutoRejectNeedsError,
	models.ErrAutoRejectNeedsReason,
	models.ErrPositionFieldPathMissing,
	models.ErrComparisonValueMissing,
}

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// IsValidationError checks if an error is a validation error that should
// return HTTP 400.
func IsValidationError(err error) bool {
	if errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrWorkflowNameTooShort) ||
		errors.Is(err, ErrCompanyIDRequired) ||
		errors.Is(err, ErrInvalidStatus) {
		return true
	}

	for _, validationErr := range modelValidationErrors {
		if errors.Is(err, validationErr) {
			return true
		}
	}

	return false
}

// IsConflictError checks if an error is a business logic conflict that should
// return HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrDuplicateFieldKey) ||
		errors.Is(err, ErrDuplicateStageOrder) ||
		errors.Is(err, ErrWorkflowArchived)
}

// IsNotFoundError checks if an error indicates a missing entity (HTTP 404).
func IsNotFoundError(err error) bool {
	return persistence.IsNotFound(err)
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
