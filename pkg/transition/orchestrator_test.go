package transition

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
	"github.com/talentflow/talentflow/pkg/persistence/file"
	"github.com/talentflow/talentflow/pkg/validation"
)

func testOrchestrator(t *testing.T) (*Orchestrator, persistence.Persistence) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return NewOrchestrator(store, validation.NewEngine(), nil, logger, nil), store
}

type fixture struct {
	workflow1 *models.Workflow
	workflow2 *models.Workflow

	screening models.WorkflowStage // INITIAL of workflow 1
	interview models.WorkflowStage // STANDARD of workflow 1
	passed    models.WorkflowStage // SUCCESS of workflow 1, cascades to phase-2
	kickoff   models.WorkflowStage // INITIAL of workflow 2

	salaryField models.CustomField
	candidate   *models.Candidate
}

// buildFixture wires two phase workflows: phase-1 runs workflow 1
// (Screening -> Interview -> Passed) and phase-2 runs workflow 2 starting at
// Kickoff. The Passed stage cascades into phase-2.
func buildFixture(t *testing.T, store persistence.Persistence) fixture {
	t.Helper()

	ctx := t.Context()
	now := time.Now().UTC()

	f := fixture{}

	f.workflow1 = &models.Workflow{
		ID: "workflow-1", CompanyID: "company-1", PhaseID: "phase-1",
		Name: "Tech Screening", Status: models.WorkflowStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}
	f.workflow2 = &models.Workflow{
		ID: "workflow-2", CompanyID: "company-1", PhaseID: "phase-2",
		Name: "Onsite", Status: models.WorkflowStatusActive,
		CreatedAt: now, UpdatedAt: now,
	}

	require.NoError(t, store.WorkflowRepository().Save(ctx, f.workflow1))
	require.NoError(t, store.WorkflowRepository().Save(ctx, f.workflow2))

	var err error

	f.screening, err = models.NewWorkflowStage("stage-screening", "workflow-1", models.StageAttributes{
		Name: "Screening", StageType: models.StageTypeInitial, Order: 0,
	})
	require.NoError(t, err)

	f.interview, err = models.NewWorkflowStage("stage-interview", "workflow-1", models.StageAttributes{
		Name: "Interview", StageType: models.StageTypeStandard, Order: 1,
	})
	require.NoError(t, err)

	nextPhase := "phase-2"
	f.passed, err = models.NewWorkflowStage("stage-passed", "workflow-1", models.StageAttributes{
		Name: "Passed", StageType: models.StageTypeSuccess, Order: 2, NextPhaseID: &nextPhase,
	})
	require.NoError(t, err)

	f.kickoff, err = models.NewWorkflowStage("stage-kickoff", "workflow-2", models.StageAttributes{
		Name: "Kickoff", StageType: models.StageTypeInitial, Order: 0,
	})
	require.NoError(t, err)

	for _, stage := range []models.WorkflowStage{f.screening, f.interview, f.passed, f.kickoff} {
		require.NoError(t, store.StageRepository().Save(ctx, stage))
	}

	f.salaryField, err = models.NewCustomField("field-salary", "workflow-1",
		"expected_salary", "Expected Salary", models.FieldTypeNumber, nil, 0)
	require.NoError(t, err)
	require.NoError(t, store.CustomFieldRepository().Save(ctx, f.salaryField))

	f.candidate = &models.Candidate{
		ID: "candidate-1", PositionID: "position-1", CompanyID: "company-1",
		Name: "Jordan Doe", Status: models.CandidateStatusActive,
		CurrentPhaseID: "phase-1", CurrentWorkflowID: "workflow-1", CurrentStageID: "stage-screening",
		PhaseWorkflows: map[string]string{"phase-1": "workflow-1", "phase-2": "workflow-2"},
		CreatedAt:      now, UpdatedAt: now,
	}
	require.NoError(t, store.CandidateRepository().Save(ctx, f.candidate))

	openRecord := models.OpenStageRecord("record-1", f.candidate, f.screening)
	require.NoError(t, store.StageRecordRepository().Save(ctx, openRecord))

	return f
}

func saveSalaryRule(t *testing.T, store persistence.Persistence, stageID string, attrs models.RuleAttributes) models.ValidationRule {
	t.Helper()

	rule, err := models.NewValidationRule("rule-"+stageID, "field-salary", stageID, models.RuleTypeCustom, attrs)
	require.NoError(t, err)
	require.NoError(t, store.ValidationRuleRepository().Save(t.Context(), rule))

	return rule
}

func TestRequestTransition_Moves(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	buildFixture(t, store)

	result, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-1",
		TargetStageID: "stage-interview",
		Comment:       "phone screen done",
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeMoved, result.Outcome)
	assert.Equal(t, "stage-interview", result.StageID)
	assert.False(t, result.Cascaded)
	assert.Empty(t, result.Warnings)
	assert.Empty(t, result.Errors)

	candidate, err := store.CandidateRepository().GetByID(t.Context(), "candidate-1")
	require.NoError(t, err)
	assert.Equal(t, "stage-interview", candidate.CurrentStageID)
	assert.Equal(t, "phase-1", candidate.CurrentPhaseID)

	records, err := store.StageRecordRepository().ListByCandidate(t.Context(), "candidate-1")
	require.NoError(t, err)
	require.Len(t, records, 2)

	byStage := recordsByStage(records)
	assert.False(t, byStage["stage-screening"].IsOpen())
	assert.Equal(t, "phone screen done", byStage["stage-screening"].Comment)
	assert.True(t, byStage["stage-interview"].IsOpen())
}

func TestRequestTransition_NoopOnSameStage(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	buildFixture(t, store)

	result, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-1",
		TargetStageID: "stage-screening",
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeNoop, result.Outcome)

	// The open history record is untouched.
	records, err := store.StageRecordRepository().ListByCandidate(t.Context(), "candidate-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].IsOpen())
}

func TestRequestTransition_UnknownCandidate(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	buildFixture(t, store)

	_, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-missing",
		TargetStageID: "stage-interview",
	})
	assert.ErrorIs(t, err, persistence.ErrCandidateNotFound)
}

func TestRequestTransition_StageFromOtherWorkflow(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	buildFixture(t, store)

	_, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-1",
		TargetStageID: "stage-kickoff",
	})
	assert.ErrorIs(t, err, persistence.ErrStageNotFound)

	// Nothing moved.
	candidate, err := store.CandidateRepository().GetByID(t.Context(), "candidate-1")
	require.NoError(t, err)
	assert.Equal(t, "stage-screening", candidate.CurrentStageID)
}

func TestRequestTransition_BlockedByErrors(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	buildFixture(t, store)

	saveSalaryRule(t, store, "stage-interview", models.RuleAttributes{
		Operator:          models.OperatorLTE,
		ComparisonValue:   100000.0,
		Severity:          models.SeverityError,
		ValidationMessage: "{field_name} must be at most {comparison_value}",
	})

	result, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-1",
		TargetStageID: "stage-interview",
		FieldValues:   map[string]any{"field-salary": 150000.0},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeBlocked, result.Outcome)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "expected_salary must be at most 100000", result.Errors[0].Message)

	// Blocked transitions change nothing.
	candidate, err := store.CandidateRepository().GetByID(t.Context(), "candidate-1")
	require.NoError(t, err)
	assert.Equal(t, "stage-screening", candidate.CurrentStageID)
	assert.Equal(t, models.CandidateStatusActive, candidate.Status)

	records, err := store.StageRecordRepository().ListByCandidate(t.Context(), "candidate-1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRequestTransition_WarningsDoNotBlock(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	buildFixture(t, store)

	saveSalaryRule(t, store, "stage-interview", models.RuleAttributes{
		Operator:        models.OperatorLTE,
		ComparisonValue: 100000.0,
		Severity:        models.SeverityWarning,
	})

	result, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-1",
		TargetStageID: "stage-interview",
		FieldValues:   map[string]any{"field-salary": 150000.0},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeMoved, result.Outcome)
	require.Len(t, result.Warnings, 1)
	assert.Empty(t, result.Errors)
	assert.Equal(t, "stage-interview", result.StageID)
}

func TestRequestTransition_InactiveRulesSkipped(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	buildFixture(t, store)

	rule := saveSalaryRule(t, store, "stage-interview", models.RuleAttributes{
		Operator:        models.OperatorLTE,
		ComparisonValue: 100000.0,
		Severity:        models.SeverityError,
	})
	require.NoError(t, store.ValidationRuleRepository().Save(t.Context(), rule.Deactivate()))

	result, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-1",
		TargetStageID: "stage-interview",
		FieldValues:   map[string]any{"field-salary": 150000.0},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeMoved, result.Outcome)
}

func TestRequestTransition_AutoReject(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	buildFixture(t, store)

	reason := "Salary expectation above budget"
	saveSalaryRule(t, store, "stage-interview", models.RuleAttributes{
		Operator:        models.OperatorLTE,
		ComparisonValue: 100000.0,
		Severity:        models.SeverityError,
		AutoReject:      true,
		RejectionReason: &reason,
	})

	result, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-1",
		TargetStageID: "stage-interview",
		FieldValues:   map[string]any{"field-salary": 150000.0},
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeRejected, result.Outcome)
	require.NotNil(t, result.RejectionReason)
	assert.Equal(t, reason, *result.RejectionReason)

	// Rejection marks the candidate but leaves the stage in place.
	candidate, err := store.CandidateRepository().GetByID(t.Context(), "candidate-1")
	require.NoError(t, err)
	assert.True(t, candidate.IsRejected())
	assert.Equal(t, "stage-screening", candidate.CurrentStageID)
	require.NotNil(t, candidate.RejectionReason)
	assert.Equal(t, reason, *candidate.RejectionReason)
}

func TestRequestTransition_CascadesIntoNextPhase(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	buildFixture(t, store)

	result, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-1",
		TargetStageID: "stage-passed",
		Comment:       "all rounds cleared",
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeMoved, result.Outcome)
	assert.True(t, result.Cascaded)
	assert.Equal(t, "phase-2", result.PhaseID)
	assert.Equal(t, "workflow-2", result.WorkflowID)
	assert.Equal(t, "stage-kickoff", result.StageID)

	candidate, err := store.CandidateRepository().GetByID(t.Context(), "candidate-1")
	require.NoError(t, err)
	assert.Equal(t, "stage-kickoff", candidate.CurrentStageID)
	assert.Equal(t, "workflow-2", candidate.CurrentWorkflowID)
	assert.Equal(t, models.CandidateStatusActive, candidate.Status)

	// History: screening closed, passed closed with the auto comment, kickoff open.
	records, err := store.StageRecordRepository().ListByCandidate(t.Context(), "candidate-1")
	require.NoError(t, err)
	require.Len(t, records, 3)

	byStage := recordsByStage(records)
	assert.False(t, byStage["stage-screening"].IsOpen())
	assert.Equal(t, "all rounds cleared", byStage["stage-screening"].Comment)
	assert.False(t, byStage["stage-passed"].IsOpen())
	assert.Equal(t, autoTransitionComment, byStage["stage-passed"].Comment)
	assert.True(t, byStage["stage-kickoff"].IsOpen())
}

func TestRequestTransition_PhaseNotConfigured(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	f := buildFixture(t, store)

	// Drop the phase-2 mapping from the candidate's position configuration.
	f.candidate.PhaseWorkflows = map[string]string{"phase-1": "workflow-1"}
	require.NoError(t, store.CandidateRepository().Save(t.Context(), f.candidate))

	_, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-1",
		TargetStageID: "stage-passed",
	})
	assert.ErrorIs(t, err, ErrPhaseNotConfigured)

	// The failed cascade rolls back the whole sequence: the candidate stays on
	// its original stage and the history is untouched.
	candidate, err := store.CandidateRepository().GetByID(t.Context(), "candidate-1")
	require.NoError(t, err)
	assert.Equal(t, "stage-screening", candidate.CurrentStageID)
	assert.Equal(t, "phase-1", candidate.CurrentPhaseID)

	records, err := store.StageRecordRepository().ListByCandidate(t.Context(), "candidate-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "stage-screening", records[0].StageID)
	assert.True(t, records[0].IsOpen())
}

func TestRequestTransition_MissingInitialStageFailsLoudly(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	buildFixture(t, store)

	// Workflow 2 loses its INITIAL stage.
	require.NoError(t, store.StageRepository().Delete(t.Context(), "stage-kickoff"))

	_, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-1",
		TargetStageID: "stage-passed",
	})
	assert.ErrorIs(t, err, persistence.ErrInitialStageNotFound)
}

func TestRequestTransition_SuccessWithoutNextPhaseDoesNotCascade(t *testing.T) {
	orchestrator, store := testOrchestrator(t)
	f := buildFixture(t, store)

	terminal := f.passed
	terminal.NextPhaseID = nil
	require.NoError(t, store.StageRepository().Save(t.Context(), terminal))

	result, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-1",
		TargetStageID: "stage-passed",
	})
	require.NoError(t, err)

	assert.Equal(t, OutcomeMoved, result.Outcome)
	assert.False(t, result.Cascaded)
	assert.Equal(t, "stage-passed", result.StageID)
	assert.Equal(t, "phase-1", result.PhaseID)
}

func TestRequestTransition_RecordsSpanError(t *testing.T) {
	store := file.NewPersistence(t.TempDir())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() {
		_ = provider.Shutdown(context.Background())
	})

	orchestrator := NewOrchestrator(store, validation.NewEngine(), nil, logger, provider.Tracer("test"))
	buildFixture(t, store)

	_, err := orchestrator.RequestTransition(t.Context(), Request{
		CandidateID:   "candidate-missing",
		TargetStageID: "stage-interview",
	})
	require.ErrorIs(t, err, persistence.ErrCandidateNotFound)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "transition.request", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	require.Len(t, spans[0].Events, 1)
	assert.Equal(t, "exception", spans[0].Events[0].Name)
}

func recordsByStage(records []models.StageRecord) map[string]*models.StageRecord {
	byStage := make(map[string]*models.StageRecord, len(records))
	for _, record := range records {
		byStage[record.StageID] = &record
	}

	return byStage
}
