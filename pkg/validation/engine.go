// Package validation implements the rule engine that gates stage transitions.
// It evaluates configured validation rules against candidate-supplied field
// values and optional position data, producing pass/warning/error results with
// rendered user-facing messages.
package validation

import (
	"fmt"
	"strings"

	"github.com/talentflow/talentflow/pkg/models"
)

// NullPolicy decides whether a comparison with a missing operand is satisfied.
// The default treats an absent value as "different", so only NEQ passes; every
// other operator fails. This mirrors the historical product behavior and is
// kept overridable because it is a convention, not a law of nature.
type NullPolicy func(operator models.ComparisonOperator) bool

// NullFailsExceptNEQ is the default null-operand policy.
func NullFailsExceptNEQ(operator models.ComparisonOperator) bool {
	return operator == models.OperatorNEQ
}

// Engine evaluates validation rules.
type Engine struct {
	nullPolicy NullPolicy
}

// NewEngine returns an engine with the default null-operand policy.
func NewEngine() *Engine {
	return &Engine{nullPolicy: NullFailsExceptNEQ}
}

// NewEngineWithNullPolicy returns an engine with a custom null-operand policy.
func NewEngineWithNullPolicy(policy NullPolicy) *Engine {
	return &Engine{nullPolicy: policy}
}

// Evaluate checks one rule against a candidate value. Inactive rules always
// pass. Comparison failures never raise: a value that cannot be compared is a
// failed rule, reported through the result.
func (e *Engine) Evaluate(rule models.ValidationRule, fieldKey string, candidateValue any, position map[string]any) models.ValidationResult {
	if !rule.IsActive {
		return passed(rule, fieldKey)
	}

	target := e.resolveTarget(rule, position)

	if e.satisfied(rule.Operator, candidateValue, target) {
		return passed(rule, fieldKey)
	}

	result := models.ValidationResult{
		FieldKey: fieldKey,
		RuleID:   rule.ID,
		Message:  renderMessage(rule.ValidationMessage, fieldKey, candidateValue, target),
	}

	switch rule.Severity {
	case models.SeverityError:
		result.Outcome = models.OutcomeError
		if rule.AutoReject {
			result.RejectionReason = rule.RejectionReason
		}
	default:
		result.Outcome = models.OutcomeWarning
	}

	return result
}

// EvaluateAll evaluates every rule exactly once, in no guaranteed order, and
// returns only the non-passed results. Field names for message rendering come
// from fieldKeys (custom field ID -> field key); rules for unknown fields fall
// back to the raw field ID.
func (e *Engine) EvaluateAll(rules []models.ValidationRule, fieldValues map[string]any, fieldKeys map[string]string, position map[string]any) []models.ValidationResult {
	failures := make([]models.ValidationResult, 0)

	for _, rule := range rules {
		fieldKey, ok := fieldKeys[rule.CustomFieldID]
		if !ok {
			fieldKey = rule.CustomFieldID
		}

		result := e.Evaluate(rule, fieldKey, fieldValues[rule.CustomFieldID], position)
		if !result.Passed() {
			failures = append(failures, result)
		}
	}

	return failures
}

// resolveTarget picks the value the candidate value is compared against:
// either a path into position data or the rule's static comparison value.
func (e *Engine) resolveTarget(rule models.ValidationRule, position map[string]any) any {
	if rule.RuleType == models.RuleTypeComparePositionField {
		if rule.PositionFieldPath == nil {
			return nil
		}

		return resolvePath(position, *rule.PositionFieldPath)
	}

	return rule.ComparisonValue
}

func (e *Engine) satisfied(operator models.ComparisonOperator, candidate, target any) bool {
	if candidate == nil || target == nil {
		return e.nullPolicy(operator)
	}

	switch operator {
	case models.OperatorGT, models.OperatorGTE, models.OperatorLT, models.OperatorLTE:
		return compareNumeric(operator, candidate, target)
	case models.OperatorEQ:
		return equal(candidate, target)
	case models.OperatorNEQ:
		return !equal(candidate, target)
	case models.OperatorInRange:
		return inRange(candidate, target)
	case models.OperatorOutRange:
		lower, upper, ok := rangeBounds(target)
		if !ok {
			return false
		}

		value, ok := coerceFloat(candidate)
		if !ok {
			return false
		}

		return value < lower || value > upper
	case models.OperatorContains:
		return strings.Contains(stringify(candidate), stringify(target))
	case models.OperatorNotContains:
		return !strings.Contains(stringify(candidate), stringify(target))
	default:
		return false
	}
}

func passed(rule models.ValidationRule, fieldKey string) models.ValidationResult {
	return models.ValidationResult{
		Outcome:  models.OutcomePassed,
		FieldKey: fieldKey,
		RuleID:   rule.ID,
	}
}

// resolvePath walks a dot-separated path through nested maps. A nil map or a
// missing segment yields nil.
func resolvePath(data map[string]any, path string) any {
	if data == nil || path == "" {
		return nil
	}

	var current any = data

	for _, segment := range strings.Split(path, ".") {
		node, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		current, ok = node[segment]
		if !ok {
			return nil
		}
	}

	return current
}

const missingValuePlaceholder = "N/A"

// renderMessage substitutes the runtime values into the configured message
// template. Both {position_value} and {comparison_value} name the comparison
// target so either spelling works in configured messages.
func renderMessage(template, fieldKey string, candidateValue, target any) string {
	if template == "" {
		template = "{field_name} failed validation (value: {candidate_value}, expected: {comparison_value})"
	}

	replacer := strings.NewReplacer(
		"{field_name}", fieldKey,
		"{candidate_value}", displayValue(candidateValue),
		"{position_value}", displayValue(target),
		"{comparison_value}", displayValue(target),
	)

	return replacer.Replace(template)
}

func displayValue(v any) string {
	if v == nil {
		return missingValuePlaceholder
	}

	return fmt.Sprintf("%v", v)
}
