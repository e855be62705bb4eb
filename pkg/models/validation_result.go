package models

// ValidationOutcome is the result classification of a single rule evaluation.
type ValidationOutcome string

const (
	OutcomePassed  ValidationOutcome = "passed"
	OutcomeWarning ValidationOutcome = "warning"
	OutcomeError   ValidationOutcome = "error"
)

// ValidationResult is the ephemeral output of evaluating one rule against one
// candidate value. It is never persisted; the transition orchestrator consumes
// it immediately.
type ValidationResult struct {
	Outcome         ValidationOutcome `json:"outcome"`
	FieldKey        string            `json:"field_key"`
	RuleID          string            `json:"rule_id"`
	Message         string            `json:"message,omitempty"`
	RejectionReason *string           `json:"rejection_reason,omitempty"` // Set only for auto-reject errors
}

// Passed reports whether the rule was satisfied.
func (r ValidationResult) Passed() bool {
	return r.Outcome == OutcomePassed
}

// IsError reports whether the result blocks a transition.
func (r ValidationResult) IsError() bool {
	return r.Outcome == OutcomeError
}

// IsAutoReject reports whether the failing rule demands automatic rejection.
func (r ValidationResult) IsAutoReject() bool {
	return r.Outcome == OutcomeError && r.RejectionReason != nil
}
