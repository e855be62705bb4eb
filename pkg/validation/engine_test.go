package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/talentflow/pkg/models"
)

func customRule(operator models.ComparisonOperator, comparisonValue any) models.ValidationRule {
	return models.ValidationRule{
		ID:              "rule-1",
		CustomFieldID:   "field-1",
		StageID:         "stage-1",
		RuleType:        models.RuleTypeCustom,
		Operator:        operator,
		ComparisonValue: comparisonValue,
		Severity:        models.SeverityError,
		IsActive:        true,
	}
}

func TestEngine_Evaluate_Operators(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name      string
		operator  models.ComparisonOperator
		candidate any
		target    any
		pass      bool
	}{
		{"gt pass", models.OperatorGT, 10, 5, true},
		{"gt fail equal", models.OperatorGT, 5, 5, false},
		{"gte pass equal", models.OperatorGTE, 5, 5, true},
		{"lt pass", models.OperatorLT, 3, 5, true},
		{"lte fail", models.OperatorLTE, 7, 5, false},
		{"eq numeric cross-type", models.OperatorEQ, 95000, 95000.0, true},
		{"eq strings", models.OperatorEQ, "senior", "senior", true},
		{"neq pass", models.OperatorNEQ, "junior", "senior", true},
		{"neq fail", models.OperatorNEQ, 5, 5.0, false},
		{"in_range inside", models.OperatorInRange, 50, map[string]any{"min": 10.0, "max": 100.0}, true},
		{"in_range boundary", models.OperatorInRange, 100, map[string]any{"min": 10.0, "max": 100.0}, true},
		{"in_range outside", models.OperatorInRange, 101, map[string]any{"min": 10.0, "max": 100.0}, false},
		{"out_range pass", models.OperatorOutRange, 101, map[string]any{"min": 10.0, "max": 100.0}, true},
		{"out_range fail inside", models.OperatorOutRange, 50, map[string]any{"min": 10.0, "max": 100.0}, false},
		{"contains pass", models.OperatorContains, "Go, Python, SQL", "Python", true},
		{"contains fail", models.OperatorContains, "Go, SQL", "Python", false},
		{"not_contains pass", models.OperatorNotContains, "Go, SQL", "Python", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Evaluate(customRule(tt.operator, tt.target), "skills", tt.candidate, nil)
			assert.Equal(t, tt.pass, result.Passed())
		})
	}
}

func TestEngine_Evaluate_InactiveRulePasses(t *testing.T) {
	engine := NewEngine()

	rule := customRule(models.OperatorGT, 100)
	rule.IsActive = false

	result := engine.Evaluate(rule, "salary", 5, nil)
	assert.True(t, result.Passed())
}

func TestEngine_Evaluate_NumericCoercion(t *testing.T) {
	engine := NewEngine()

	// Numeric strings coerce.
	result := engine.Evaluate(customRule(models.OperatorGTE, "5"), "score", "7.5", nil)
	assert.True(t, result.Passed())

	// Non-coercible operands fail the comparison instead of raising.
	result = engine.Evaluate(customRule(models.OperatorGT, 5), "score", "not-a-number", nil)
	assert.False(t, result.Passed())
	assert.Equal(t, models.OutcomeError, result.Outcome)
}

func TestEngine_Evaluate_NullOperands(t *testing.T) {
	engine := NewEngine()

	// Missing candidate value: only NEQ passes under the default policy.
	result := engine.Evaluate(customRule(models.OperatorEQ, "senior"), "level", nil, nil)
	assert.False(t, result.Passed())

	result = engine.Evaluate(customRule(models.OperatorNEQ, "senior"), "level", nil, nil)
	assert.True(t, result.Passed())

	// Missing comparison target behaves the same way.
	result = engine.Evaluate(customRule(models.OperatorGT, nil), "level", 10, nil)
	assert.False(t, result.Passed())
}

func TestEngine_Evaluate_CustomNullPolicy(t *testing.T) {
	permissive := NewEngineWithNullPolicy(func(models.ComparisonOperator) bool { return true })

	result := permissive.Evaluate(customRule(models.OperatorEQ, "senior"), "level", nil, nil)
	assert.True(t, result.Passed())
}

func TestEngine_Evaluate_PositionFieldPath(t *testing.T) {
	engine := NewEngine()
	path := "salary_range.max"

	rule := models.ValidationRule{
		ID:                "rule-1",
		CustomFieldID:     "field-1",
		StageID:           "stage-1",
		RuleType:          models.RuleTypeComparePositionField,
		Operator:          models.OperatorLTE,
		PositionFieldPath: &path,
		Severity:          models.SeverityError,
		IsActive:          true,
	}

	position := map[string]any{
		"salary_range": map[string]any{
			"min": 60000.0,
			"max": 100000.0,
		},
	}

	result := engine.Evaluate(rule, "expected_salary", 95000.0, position)
	assert.True(t, result.Passed())

	result = engine.Evaluate(rule, "expected_salary", 120000.0, position)
	assert.False(t, result.Passed())

	// Missing path resolves to nil: LTE fails under the default null policy.
	result = engine.Evaluate(rule, "expected_salary", 95000.0, map[string]any{})
	assert.False(t, result.Passed())
}

func TestEngine_Evaluate_SeverityAndAutoReject(t *testing.T) {
	engine := NewEngine()
	reason := "Salary expectation above budget"

	rule := customRule(models.OperatorLTE, 100000.0)
	rule.Severity = models.SeverityWarning

	result := engine.Evaluate(rule, "expected_salary", 120000.0, nil)
	assert.Equal(t, models.OutcomeWarning, result.Outcome)
	assert.Nil(t, result.RejectionReason)

	rule.Severity = models.SeverityError
	rule.AutoReject = true
	rule.RejectionReason = &reason

	result = engine.Evaluate(rule, "expected_salary", 120000.0, nil)
	require.True(t, result.IsAutoReject())
	assert.Equal(t, reason, *result.RejectionReason)
}

func TestEngine_Evaluate_MessageRendering(t *testing.T) {
	engine := NewEngine()

	rule := customRule(models.OperatorLTE, 100000.0)
	rule.ValidationMessage = "{field_name}: {candidate_value} exceeds {comparison_value}"

	result := engine.Evaluate(rule, "expected_salary", 120000.0, nil)
	assert.Equal(t, "expected_salary: 120000 exceeds 100000", result.Message)

	// {position_value} is an alias for the comparison target.
	rule.ValidationMessage = "budget is {position_value}"
	result = engine.Evaluate(rule, "expected_salary", 120000.0, nil)
	assert.Equal(t, "budget is 100000", result.Message)

	// Default template when none is configured.
	rule.ValidationMessage = ""
	result = engine.Evaluate(rule, "expected_salary", 120000.0, nil)
	assert.Equal(t, "expected_salary failed validation (value: 120000, expected: 100000)", result.Message)

	// Missing values render as N/A.
	rule.ValidationMessage = "value: {candidate_value}"
	result = engine.Evaluate(rule, "expected_salary", nil, nil)
	assert.Equal(t, "value: N/A", result.Message)
}

func TestEngine_EvaluateAll(t *testing.T) {
	engine := NewEngine()

	passing := customRule(models.OperatorGTE, 3)
	passing.ID = "rule-pass"
	passing.CustomFieldID = "field-a"

	warning := customRule(models.OperatorLTE, 100000.0)
	warning.ID = "rule-warn"
	warning.CustomFieldID = "field-b"
	warning.Severity = models.SeverityWarning

	failing := customRule(models.OperatorEQ, "senior")
	failing.ID = "rule-fail"
	failing.CustomFieldID = "field-c"

	fieldValues := map[string]any{
		"field-a": 5,
		"field-b": 120000.0,
		"field-c": "junior",
	}
	fieldKeys := map[string]string{
		"field-a": "years_experience",
		"field-b": "expected_salary",
	}

	results := engine.EvaluateAll(
		[]models.ValidationRule{passing, warning, failing},
		fieldValues, fieldKeys, nil,
	)

	require.Len(t, results, 2)

	byRule := make(map[string]models.ValidationResult, len(results))
	for _, result := range results {
		byRule[result.RuleID] = result
	}

	assert.Equal(t, models.OutcomeWarning, byRule["rule-warn"].Outcome)
	assert.Equal(t, "expected_salary", byRule["rule-warn"].FieldKey)
	assert.Equal(t, models.OutcomeError, byRule["rule-fail"].Outcome)
	// Unknown field IDs fall back to the raw ID.
	assert.Equal(t, "field-c", byRule["rule-fail"].FieldKey)
}

func TestResolvePath(t *testing.T) {
	data := map[string]any{
		"department": map[string]any{
			"budget": map[string]any{
				"annual": 500000.0,
			},
		},
		"title": "Engineer",
	}

	assert.Equal(t, "Engineer", resolvePath(data, "title"))
	assert.Equal(t, 500000.0, resolvePath(data, "department.budget.annual"))
	assert.Nil(t, resolvePath(data, "department.missing"))
	assert.Nil(t, resolvePath(data, "title.not_a_map"))
	assert.Nil(t, resolvePath(nil, "title"))
	assert.Nil(t, resolvePath(data, ""))
}
