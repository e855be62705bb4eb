package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validStageAttributes() StageAttributes {
	return StageAttributes{
		Name:      "Screening",
		StageType: StageTypeStandard,
		Order:     1,
	}
}

func TestNewWorkflowStage(t *testing.T) {
	stage, err := NewWorkflowStage("stage-1", "workflow-1", validStageAttributes())
	require.NoError(t, err)

	assert.Equal(t, "stage-1", stage.ID)
	assert.Equal(t, "workflow-1", stage.WorkflowID)
	assert.Equal(t, StageTypeStandard, stage.StageType)
	assert.True(t, stage.IsActive)
	assert.False(t, stage.CreatedAt.IsZero())
}

func TestNewWorkflowStage_Invalid(t *testing.T) {
	deadline := 0
	cost := -10.0
	nextPhase := "phase-2"

	tests := []struct {
		name    string
		mutate  func(*StageAttributes)
		wantErr error
	}{
		{
			name:    "empty name",
			mutate:  func(a *StageAttributes) { a.Name = "" },
			wantErr: ErrStageNameRequired,
		},
		{
			name:    "negative order",
			mutate:  func(a *StageAttributes) { a.Order = -1 },
			wantErr: ErrNegativeOrder,
		},
		{
			name:    "negative duration",
			mutate:  func(a *StageAttributes) { a.EstimatedDuration = -5 },
			wantErr: ErrNegativeDuration,
		},
		{
			name:    "deadline below one day",
			mutate:  func(a *StageAttributes) { a.DeadlineDays = &deadline },
			wantErr: ErrInvalidDeadline,
		},
		{
			name:    "negative cost",
			mutate:  func(a *StageAttributes) { a.EstimatedCost = &cost },
			wantErr: ErrNegativeCost,
		},
		{
			name:    "unknown stage type",
			mutate:  func(a *StageAttributes) { a.StageType = "BOGUS" },
			wantErr: ErrInvalidStageType,
		},
		{
			name:    "next phase on standard stage",
			mutate:  func(a *StageAttributes) { a.NextPhaseID = &nextPhase },
			wantErr: ErrNextPhaseOnNonFinal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attrs := validStageAttributes()
			tt.mutate(&attrs)

			_, err := NewWorkflowStage("stage-1", "workflow-1", attrs)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewWorkflowStage_NextPhaseOnSuccess(t *testing.T) {
	nextPhase := "phase-2"
	attrs := validStageAttributes()
	attrs.StageType = StageTypeSuccess
	attrs.NextPhaseID = &nextPhase

	stage, err := NewWorkflowStage("stage-1", "workflow-1", attrs)
	require.NoError(t, err)
	assert.Equal(t, &nextPhase, stage.NextPhaseID)
}

func TestWorkflowStage_Update(t *testing.T) {
	stage, err := NewWorkflowStage("stage-1", "workflow-1", validStageAttributes())
	require.NoError(t, err)

	attrs := validStageAttributes()
	attrs.Name = "Phone Screening"
	attrs.Order = 2

	updated, err := stage.Update(attrs)
	require.NoError(t, err)

	assert.Equal(t, stage.ID, updated.ID)
	assert.Equal(t, stage.WorkflowID, updated.WorkflowID)
	assert.Equal(t, stage.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Phone Screening", updated.Name)
	assert.Equal(t, 2, updated.Order)

	// Original value untouched.
	assert.Equal(t, "Screening", stage.Name)
}

func TestWorkflowStage_Reorder(t *testing.T) {
	stage, err := NewWorkflowStage("stage-1", "workflow-1", validStageAttributes())
	require.NoError(t, err)

	reordered, err := stage.Reorder(5)
	require.NoError(t, err)
	assert.Equal(t, 5, reordered.Order)

	_, err = stage.Reorder(-1)
	assert.ErrorIs(t, err, ErrNegativeOrder)
}

func TestWorkflowStage_ActivateDeactivate(t *testing.T) {
	stage, err := NewWorkflowStage("stage-1", "workflow-1", validStageAttributes())
	require.NoError(t, err)

	inactive := stage.Deactivate()
	assert.False(t, inactive.IsActive)
	assert.True(t, stage.IsActive)

	active := inactive.Activate()
	assert.True(t, active.IsActive)
}

func TestStageType_IsTerminal(t *testing.T) {
	assert.False(t, StageTypeInitial.IsTerminal())
	assert.False(t, StageTypeStandard.IsTerminal())
	assert.True(t, StageTypeSuccess.IsTerminal())
	assert.True(t, StageTypeFail.IsTerminal())
}

func TestWorkflowStage_DeadlineFrom(t *testing.T) {
	stage, err := NewWorkflowStage("stage-1", "workflow-1", validStageAttributes())
	require.NoError(t, err)

	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Nil(t, stage.DeadlineFrom(start))

	days := 7
	stage.DeadlineDays = &days

	deadline := stage.DeadlineFrom(start)
	require.NotNil(t, deadline)
	assert.Equal(t, time.Date(2026, 3, 8, 12, 0, 0, 0, time.UTC), *deadline)
}
