package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence/file"
)

func ruleFixture(t *testing.T) (*ValidationRule, models.WorkflowStage, models.CustomField) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	workflows := NewWorkflow(store)
	fields := NewCustomField(store)

	workflow, err := workflows.Create(t.Context(), CreateWorkflowRequest{
		CompanyID: "company-1",
		Name:      "Engineering Hiring",
	})
	require.NoError(t, err)

	stage, err := workflows.CreateStage(t.Context(), workflow.ID, models.StageAttributes{
		Name: "Screening", StageType: models.StageTypeInitial, Order: 0,
	})
	require.NoError(t, err)

	field, err := fields.Create(t.Context(), workflow.ID, "expected_salary", "Expected Salary", models.FieldTypeNumber, nil, 0)
	require.NoError(t, err)

	return NewValidationRule(store), stage, field
}

func TestValidationRule_Create(t *testing.T) {
	service, stage, field := ruleFixture(t)

	rule, err := service.Create(t.Context(), field.ID, stage.ID, models.RuleTypeCustom, models.RuleAttributes{
		Operator:        models.OperatorLTE,
		ComparisonValue: 100000.0,
		Severity:        models.SeverityError,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rule.ID)
	assert.True(t, rule.IsActive)

	rules, err := service.ListByStage(t.Context(), stage.ID, true)
	require.NoError(t, err)
	assert.Len(t, rules, 1)
}

func TestValidationRule_Create_Invalid(t *testing.T) {
	service, stage, field := ruleFixture(t)

	// Model invariants surface as validation errors.
	_, err := service.Create(t.Context(), field.ID, stage.ID, models.RuleTypeCustom, models.RuleAttributes{
		Operator: models.OperatorLTE,
		Severity: models.SeverityError,
	})
	assert.ErrorIs(t, err, models.ErrComparisonValueMissing)
	assert.True(t, IsValidationError(err))
}

func TestValidationRule_ActivateDeactivate(t *testing.T) {
	service, stage, field := ruleFixture(t)

	rule, err := service.Create(t.Context(), field.ID, stage.ID, models.RuleTypeCustom, models.RuleAttributes{
		Operator:        models.OperatorLTE,
		ComparisonValue: 100000.0,
		Severity:        models.SeverityError,
	})
	require.NoError(t, err)

	deactivated, err := service.Deactivate(t.Context(), rule.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	active, err := service.ListByStage(t.Context(), stage.ID, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	activated, err := service.Activate(t.Context(), rule.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
}
