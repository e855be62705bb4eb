package models

import (
	"errors"
	"fmt"
	"time"
)

// RuleType classifies what a validation rule compares against.
type RuleType string

const (
	RuleTypeComparePositionField RuleType = "COMPARE_POSITION_FIELD" // Compare against a path into position data
	RuleTypeRange                RuleType = "RANGE"                  // Compare against a static {min,max} mapping
	RuleTypePattern              RuleType = "PATTERN"                // Compare against a static pattern value
	RuleTypeCustom               RuleType = "CUSTOM"                 // Compare against an arbitrary static value
)

func (t RuleType) valid() bool {
	switch t {
	case RuleTypeComparePositionField, RuleTypeRange, RuleTypePattern, RuleTypeCustom:
		return true
	default:
		return false
	}
}

// ComparisonOperator is the comparison applied between the candidate value and
// the comparison target.
type ComparisonOperator string

const (
	OperatorGT          ComparisonOperator = "GT"
	OperatorGTE         ComparisonOperator = "GTE"
	OperatorLT          ComparisonOperator = "LT"
	OperatorLTE         ComparisonOperator = "LTE"
	OperatorEQ          ComparisonOperator = "EQ"
	OperatorNEQ         ComparisonOperator = "NEQ"
	OperatorInRange     ComparisonOperator = "IN_RANGE"
	OperatorOutRange    ComparisonOperator = "OUT_RANGE"
	OperatorContains    ComparisonOperator = "CONTAINS"
	OperatorNotContains ComparisonOperator = "NOT_CONTAINS"
)

func (o ComparisonOperator) valid() bool {
	switch o {
	case OperatorGT, OperatorGTE, OperatorLT, OperatorLTE,
		OperatorEQ, OperatorNEQ,
		OperatorInRange, OperatorOutRange,
		OperatorContains, OperatorNotContains:
		return true
	default:
		return false
	}
}

// RuleSeverity grades a failed rule.
type RuleSeverity string

const (
	SeverityWarning RuleSeverity = "WARNING" // Surfaced to the caller, never blocks
	SeverityError   RuleSeverity = "ERROR"   // Blocks the transition, may auto-reject
)

var (
	ErrInvalidRuleType          = errors.New("invalid rule type")
	ErrInvalidOperator          = errors.New("invalid comparison operator")
	ErrInvalidSeverity          = errors.New("invalid rule severity")
	ErrAutoRejectNeedsError     = errors.New("auto-reject requires ERROR severity")
	ErrAutoRejectNeedsReason    = errors.New("auto-reject requires a rejection reason")
	ErrPositionFieldPathMissing = errors.New("COMPARE_POSITION_FIELD rules require a position field path")
	ErrComparisonValueMissing   = errors.New("rule requires a comparison value")
)

// ValidationRule is a single validation check bound to one custom field and one
// stage. Rules are immutable: Update and the activation toggles return new
// values.
type ValidationRule struct {
	ID                string             `json:"id"`
	CustomFieldID     string             `json:"custom_field_id" validate:"required"`
	StageID           string             `json:"stage_id"        validate:"required"`
	RuleType          RuleType           `json:"rule_type"       validate:"required"`
	Operator          ComparisonOperator `json:"comparison_operator" validate:"required"`
	PositionFieldPath *string            `json:"position_field_path,omitempty"`
	ComparisonValue   any                `json:"comparison_value,omitempty"`
	Severity          RuleSeverity       `json:"severity"        validate:"required"`
	ValidationMessage string             `json:"validation_message"`
	AutoReject        bool               `json:"auto_reject"`
	RejectionReason   *string            `json:"rejection_reason,omitempty"`
	IsActive          bool               `json:"is_active"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// RuleAttributes carries the mutable attributes of a rule. RuleType is part of
// rule identity and is only set at creation.
type RuleAttributes struct {
	Operator          ComparisonOperator
	PositionFieldPath *string
	ComparisonValue   any
	Severity          RuleSeverity
	ValidationMessage string
	AutoReject        bool
	RejectionReason   *string
}

func (a RuleAttributes) validate(ruleType RuleType) error {
	if !a.Operator.valid() {
		return fmt.Errorf("%w: %q", ErrInvalidOperator, a.Operator)
	}

	if a.Severity != SeverityWarning && a.Severity != SeverityError {
		return fmt.Errorf("%w: %q", ErrInvalidSeverity, a.Severity)
	}

	if a.AutoReject {
		if a.Severity != SeverityError {
			return ErrAutoRejectNeedsError
		}

		if a.RejectionReason == nil || *a.RejectionReason == "" {
			return ErrAutoRejectNeedsReason
		}
	}

	switch ruleType {
	case RuleTypeComparePositionField:
		if a.PositionFieldPath == nil || *a.PositionFieldPath == "" {
			return ErrPositionFieldPathMissing
		}
	case RuleTypeRange, RuleTypePattern, RuleTypeCustom:
		if a.ComparisonValue == nil {
			return fmt.Errorf("%w: rule type %s", ErrComparisonValueMissing, ruleType)
		}
	}

	return nil
}

// NewValidationRule validates the rule invariants and returns a new active
// rule.
func NewValidationRule(id, customFieldID, stageID string, ruleType RuleType, attrs RuleAttributes) (ValidationRule, error) {
	if !ruleType.valid() {
		return ValidationRule{}, fmt.Errorf("%w: %q", ErrInvalidRuleType, ruleType)
	}

	if err := attrs.validate(ruleType); err != nil {
		return ValidationRule{}, err
	}

	now := time.Now().UTC()

	return ValidationRule{
		ID:                id,
		CustomFieldID:     customFieldID,
		StageID:           stageID,
		RuleType:          ruleType,
		Operator:          attrs.Operator,
		PositionFieldPath: attrs.PositionFieldPath,
		ComparisonValue:   attrs.ComparisonValue,
		Severity:          attrs.Severity,
		ValidationMessage: attrs.ValidationMessage,
		AutoReject:        attrs.AutoReject,
		RejectionReason:   attrs.RejectionReason,
		IsActive:          true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// Update replaces all mutable attributes. ID, field, stage and rule type are
// preserved.
func (r ValidationRule) Update(attrs RuleAttributes) (ValidationRule, error) {
	if err := attrs.validate(r.RuleType); err != nil {
		return ValidationRule{}, err
	}

	updated := r
	updated.Operator = attrs.Operator
	updated.PositionFieldPath = attrs.PositionFieldPath
	updated.ComparisonValue = attrs.ComparisonValue
	updated.Severity = attrs.Severity
	updated.ValidationMessage = attrs.ValidationMessage
	updated.AutoReject = attrs.AutoReject
	updated.RejectionReason = attrs.RejectionReason
	updated.UpdatedAt = time.Now().UTC()

	return updated, nil
}

// Activate returns an active copy of the rule without touching other fields.
func (r ValidationRule) Activate() ValidationRule {
	updated := r
	updated.IsActive = true
	updated.UpdatedAt = time.Now().UTC()

	return updated
}

// Deactivate returns an inactive copy of the rule without touching other
// fields.
func (r ValidationRule) Deactivate() ValidationRule {
	updated := r
	updated.IsActive = false
	updated.UpdatedAt = time.Now().UTC()

	return updated
}
