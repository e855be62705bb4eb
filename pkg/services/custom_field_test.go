package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
	"github.com/talentflow/talentflow/pkg/persistence/file"
)

func fieldFixture(t *testing.T) (*CustomField, *Workflow, *models.Workflow) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	workflows := NewWorkflow(store)

	workflow, err := workflows.Create(t.Context(), CreateWorkflowRequest{
		CompanyID: "company-1",
		Name:      "Engineering Hiring",
	})
	require.NoError(t, err)

	return NewCustomField(store), workflows, workflow
}

func TestCustomField_Create(t *testing.T) {
	service, _, workflow := fieldFixture(t)

	field, err := service.Create(t.Context(), workflow.ID, "expected_salary", "Expected Salary", models.FieldTypeNumber, map[string]any{
		"min": 0.0,
	}, 0)
	require.NoError(t, err)

	assert.NotEmpty(t, field.ID)
	assert.Equal(t, "expected_salary", field.FieldKey)
	assert.Equal(t, models.FieldTypeNumber, field.FieldType)

	// Keys are unique within the workflow.
	_, err = service.Create(t.Context(), workflow.ID, "expected_salary", "Salary Again", models.FieldTypeNumber, nil, 1)
	assert.ErrorIs(t, err, ErrDuplicateFieldKey)
	assert.True(t, IsConflictError(err))
}

func TestCustomField_Create_Invalid(t *testing.T) {
	service, _, workflow := fieldFixture(t)

	_, err := service.Create(t.Context(), workflow.ID, "1salary", "Salary", models.FieldTypeNumber, nil, 0)
	assert.ErrorIs(t, err, models.ErrInvalidFieldKey)
	assert.True(t, IsValidationError(err))

	_, err = service.Create(t.Context(), "workflow-missing", "salary", "Salary", models.FieldTypeNumber, nil, 0)
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
}

func TestCustomField_Update_KeepsKeyAndType(t *testing.T) {
	service, _, workflow := fieldFixture(t)

	field, err := service.Create(t.Context(), workflow.ID, "expected_salary", "Expected Salary", models.FieldTypeNumber, nil, 0)
	require.NoError(t, err)

	updated, err := service.Update(t.Context(), field.ID, "Salary Expectation", map[string]any{"max": 250000.0}, 3)
	require.NoError(t, err)

	assert.Equal(t, field.FieldKey, updated.FieldKey)
	assert.Equal(t, field.FieldType, updated.FieldType)
	assert.Equal(t, "Salary Expectation", updated.FieldName)
	assert.Equal(t, 3, updated.OrderIndex)
}

func TestCustomField_Configure(t *testing.T) {
	service, workflows, workflow := fieldFixture(t)

	stage, err := workflows.CreateStage(t.Context(), workflow.ID, models.StageAttributes{
		Name: "Screening", StageType: models.StageTypeInitial, Order: 0,
	})
	require.NoError(t, err)

	field, err := service.Create(t.Context(), workflow.ID, "expected_salary", "Expected Salary", models.FieldTypeNumber, nil, 0)
	require.NoError(t, err)

	configuration, err := service.Configure(t.Context(), stage.ID, field.ID, models.VisibilityRequired)
	require.NoError(t, err)
	assert.True(t, configuration.IsRequired())

	// Configuring the same pair again updates in place.
	reconfigured, err := service.Configure(t.Context(), stage.ID, field.ID, models.VisibilityHidden)
	require.NoError(t, err)
	assert.Equal(t, configuration.ID, reconfigured.ID)
	assert.Equal(t, models.VisibilityHidden, reconfigured.Visibility)

	configurations, err := service.ListConfigurations(t.Context(), stage.ID)
	require.NoError(t, err)
	assert.Len(t, configurations, 1)
}

func TestCustomField_Configure_CrossWorkflow(t *testing.T) {
	service, workflows, workflow := fieldFixture(t)

	stage, err := workflows.CreateStage(t.Context(), workflow.ID, models.StageAttributes{
		Name: "Screening", StageType: models.StageTypeInitial, Order: 0,
	})
	require.NoError(t, err)

	other, err := workflows.Create(t.Context(), CreateWorkflowRequest{
		CompanyID: "company-1",
		Name:      "Sales Hiring",
	})
	require.NoError(t, err)

	field, err := service.Create(t.Context(), other.ID, "quota", "Quota", models.FieldTypeNumber, nil, 0)
	require.NoError(t, err)

	_, err = service.Configure(t.Context(), stage.ID, field.ID, models.VisibilityVisible)
	assert.ErrorIs(t, err, ErrInvalidRequest)
	assert.True(t, IsValidationError(err))
}
