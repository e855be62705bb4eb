package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
	"github.com/talentflow/talentflow/pkg/persistence/file"
)

func TestWorkflow_Create(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	created, err := service.Create(t.Context(), CreateWorkflowRequest{
		CompanyID:   "company-1",
		PhaseID:     "phase-1",
		Name:        "Engineering Hiring",
		Description: "Pipeline for engineering roles",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestWorkflow_Create_Invalid(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	_, err := service.Create(t.Context(), CreateWorkflowRequest{Name: "Engineering Hiring"})
	assert.ErrorIs(t, err, ErrCompanyIDRequired)
	assert.True(t, IsValidationError(err))

	_, err = service.Create(t.Context(), CreateWorkflowRequest{CompanyID: "company-1", Name: "ab"})
	assert.ErrorIs(t, err, ErrWorkflowNameTooShort)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_Update(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	created, err := service.Create(t.Context(), CreateWorkflowRequest{
		CompanyID: "company-1",
		Name:      "Engineering Hiring",
	})
	require.NoError(t, err)

	updated, err := service.Update(t.Context(), created.ID, CreateWorkflowRequest{
		Name:        "Engineering Hiring v2",
		Description: "Updated",
	}, models.WorkflowStatusActive)
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Engineering Hiring v2", updated.Name)
	assert.Equal(t, models.WorkflowStatusActive, updated.Status)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestWorkflow_Update_ArchivedConflict(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	created, err := service.Create(t.Context(), CreateWorkflowRequest{
		CompanyID: "company-1",
		Name:      "Engineering Hiring",
	})
	require.NoError(t, err)

	_, err = service.Update(t.Context(), created.ID, CreateWorkflowRequest{Name: created.Name}, models.WorkflowStatusArchived)
	require.NoError(t, err)

	_, err = service.Update(t.Context(), created.ID, CreateWorkflowRequest{Name: "Renamed"}, models.WorkflowStatusActive)
	assert.ErrorIs(t, err, ErrWorkflowArchived)
	assert.True(t, IsConflictError(err))
}

func TestWorkflow_FetchByID_NotFound(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	_, err := service.FetchByID(t.Context(), "missing")
	assert.ErrorIs(t, err, persistence.ErrWorkflowNotFound)
	assert.True(t, IsNotFoundError(err))
}

func TestWorkflow_CreateStage(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	workflow, err := service.Create(t.Context(), CreateWorkflowRequest{
		CompanyID: "company-1",
		Name:      "Engineering Hiring",
	})
	require.NoError(t, err)

	stage, err := service.CreateStage(t.Context(), workflow.ID, models.StageAttributes{
		Name:      "Applied",
		StageType: models.StageTypeInitial,
		Order:     0,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stage.ID)
	assert.True(t, stage.IsActive)

	// Colliding order is a conflict.
	_, err = service.CreateStage(t.Context(), workflow.ID, models.StageAttributes{
		Name:      "Screening",
		StageType: models.StageTypeStandard,
		Order:     0,
	})
	assert.ErrorIs(t, err, ErrDuplicateStageOrder)

	// Model invariants surface as validation errors.
	_, err = service.CreateStage(t.Context(), workflow.ID, models.StageAttributes{
		Name:      "",
		StageType: models.StageTypeStandard,
		Order:     1,
	})
	assert.ErrorIs(t, err, models.ErrStageNameRequired)
	assert.True(t, IsValidationError(err))
}

func TestWorkflow_UpdateStage_ReorderConflict(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	workflow, err := service.Create(t.Context(), CreateWorkflowRequest{
		CompanyID: "company-1",
		Name:      "Engineering Hiring",
	})
	require.NoError(t, err)

	first, err := service.CreateStage(t.Context(), workflow.ID, models.StageAttributes{
		Name: "Applied", StageType: models.StageTypeInitial, Order: 0,
	})
	require.NoError(t, err)

	_, err = service.CreateStage(t.Context(), workflow.ID, models.StageAttributes{
		Name: "Screening", StageType: models.StageTypeStandard, Order: 1,
	})
	require.NoError(t, err)

	_, err = service.UpdateStage(t.Context(), first.ID, models.StageAttributes{
		Name: "Applied", StageType: models.StageTypeInitial, Order: 1,
	})
	assert.ErrorIs(t, err, ErrDuplicateStageOrder)
}

func TestWorkflow_StageActivation(t *testing.T) {
	service := NewWorkflow(file.NewPersistence(t.TempDir()))

	workflow, err := service.Create(t.Context(), CreateWorkflowRequest{
		CompanyID: "company-1",
		Name:      "Engineering Hiring",
	})
	require.NoError(t, err)

	stage, err := service.CreateStage(t.Context(), workflow.ID, models.StageAttributes{
		Name: "Applied", StageType: models.StageTypeInitial, Order: 0,
	})
	require.NoError(t, err)

	deactivated, err := service.DeactivateStage(t.Context(), stage.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	activated, err := service.ActivateStage(t.Context(), stage.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
}
