package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence/file"
	"github.com/talentflow/talentflow/pkg/services"
	"github.com/talentflow/talentflow/pkg/transition"
	"github.com/talentflow/talentflow/pkg/validation"
	"github.com/talentflow/talentflow/pkg/web"
)

type testServices struct {
	workflows  *services.Workflow
	fields     *services.CustomField
	rules      *services.ValidationRule
	candidates *services.Candidate
}

func setupTestApp(t *testing.T) (*fiber.App, testServices) {
	t.Helper()

	store := file.NewPersistence(t.TempDir())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	svc := testServices{
		workflows:  services.NewWorkflow(store),
		fields:     services.NewCustomField(store),
		rules:      services.NewValidationRule(store),
		candidates: services.NewCandidate(store),
	}

	orchestrator := transition.NewOrchestrator(store, validation.NewEngine(), nil, logger, nil)
	handlers := web.NewAPIHandlers(svc.workflows, svc.fields, svc.rules, svc.candidates, orchestrator, validator.New())

	app := fiber.New()

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)

	c := app.Group("/candidates")
	c.Post("/", handlers.CreateCandidate)
	c.Get("/:id", handlers.GetCandidate)
	c.Post("/:id/transition", handlers.TransitionCandidate)

	return app, svc
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target any) {
	t.Helper()

	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func TestAPIHandlers_CreateWorkflow(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		CompanyID:   "company-1",
		Name:        "Engineering Hiring",
		Description: "Pipeline for engineering roles",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var workflow models.Workflow
	decodeBody(t, resp, &workflow)
	assert.NotEmpty(t, workflow.ID)
	assert.Equal(t, models.WorkflowStatusDraft, workflow.Status)
}

func TestAPIHandlers_CreateWorkflow_Validation(t *testing.T) {
	app, _ := setupTestApp(t)

	// Missing company_id fails struct validation before the service runs.
	resp := doJSON(t, app, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		Name: "Engineering Hiring",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/workflows/", web.CreateWorkflowRequest{
		CompanyID: "company-1",
		Name:      "ab",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIHandlers_GetWorkflow_NotFound(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/workflows/missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPIHandlers_TransitionCandidate(t *testing.T) {
	app, svc := setupTestApp(t)
	ctx := t.Context()

	workflow, err := svc.workflows.Create(ctx, services.CreateWorkflowRequest{
		CompanyID: "company-1",
		Name:      "Engineering Hiring",
	})
	require.NoError(t, err)

	initial, err := svc.workflows.CreateStage(ctx, workflow.ID, models.StageAttributes{
		Name: "Applied", StageType: models.StageTypeInitial, Order: 0,
	})
	require.NoError(t, err)

	interview, err := svc.workflows.CreateStage(ctx, workflow.ID, models.StageAttributes{
		Name: "Interview", StageType: models.StageTypeStandard, Order: 1,
	})
	require.NoError(t, err)

	field, err := svc.fields.Create(ctx, workflow.ID, "expected_salary", "Expected Salary", models.FieldTypeNumber, nil, 0)
	require.NoError(t, err)

	_, err = svc.rules.Create(ctx, field.ID, interview.ID, models.RuleTypeCustom, models.RuleAttributes{
		Operator:          models.OperatorLTE,
		ComparisonValue:   100000.0,
		Severity:          models.SeverityError,
		ValidationMessage: "{field_name} must be at most {comparison_value}",
	})
	require.NoError(t, err)

	candidate, err := svc.candidates.Create(ctx, services.CreateCandidateRequest{
		PositionID:     "position-1",
		CompanyID:      "company-1",
		Name:           "Dana Fields",
		EntryPhaseID:   "phase-1",
		PhaseWorkflows: map[string]string{"phase-1": workflow.ID},
	})
	require.NoError(t, err)
	require.Equal(t, initial.ID, candidate.CurrentStageID)

	// A failing ERROR rule blocks with 422 and reports every failure.
	resp := doJSON(t, app, http.MethodPost, "/candidates/"+candidate.ID+"/transition", web.TransitionRequest{
		TargetStageID: interview.ID,
		FieldValues:   map[string]any{field.ID: 120000.0},
	})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var blocked transition.Result
	decodeBody(t, resp, &blocked)
	assert.Equal(t, transition.OutcomeBlocked, blocked.Outcome)
	require.Len(t, blocked.Errors, 1)
	assert.Equal(t, "expected_salary must be at most 100000", blocked.Errors[0].Message)
	assert.Equal(t, initial.ID, blocked.StageID)

	// With a passing value the candidate moves.
	resp = doJSON(t, app, http.MethodPost, "/candidates/"+candidate.ID+"/transition", web.TransitionRequest{
		TargetStageID: interview.ID,
		FieldValues:   map[string]any{field.ID: 95000.0},
		Comment:       "screening done",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var moved transition.Result
	decodeBody(t, resp, &moved)
	assert.Equal(t, transition.OutcomeMoved, moved.Outcome)
	assert.Equal(t, interview.ID, moved.StageID)
}

func TestAPIHandlers_TransitionCandidate_PhaseNotConfigured(t *testing.T) {
	app, svc := setupTestApp(t)
	ctx := t.Context()

	workflow, err := svc.workflows.Create(ctx, services.CreateWorkflowRequest{
		CompanyID: "company-1",
		Name:      "Engineering Hiring",
	})
	require.NoError(t, err)

	initial, err := svc.workflows.CreateStage(ctx, workflow.ID, models.StageAttributes{
		Name: "Applied", StageType: models.StageTypeInitial, Order: 0,
	})
	require.NoError(t, err)

	nextPhase := "phase-2"
	hired, err := svc.workflows.CreateStage(ctx, workflow.ID, models.StageAttributes{
		Name: "Hired", StageType: models.StageTypeSuccess, Order: 1, NextPhaseID: &nextPhase,
	})
	require.NoError(t, err)

	// The candidate's position has no workflow configured for phase-2, so the
	// cascade off the SUCCESS stage cannot resolve a target.
	candidate, err := svc.candidates.Create(ctx, services.CreateCandidateRequest{
		PositionID:     "position-1",
		CompanyID:      "company-1",
		Name:           "Dana Fields",
		EntryPhaseID:   "phase-1",
		PhaseWorkflows: map[string]string{"phase-1": workflow.ID},
	})
	require.NoError(t, err)

	resp := doJSON(t, app, http.MethodPost, "/candidates/"+candidate.ID+"/transition", web.TransitionRequest{
		TargetStageID: hired.ID,
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var problem map[string]any
	decodeBody(t, resp, &problem)
	assert.Equal(t, "configuration_error", problem["type"])

	// Nothing committed: the candidate is still on the initial stage.
	reloaded, err := svc.candidates.FetchByID(ctx, candidate.ID)
	require.NoError(t, err)
	assert.Equal(t, initial.ID, reloaded.CurrentStageID)
}

func TestAPIHandlers_TransitionCandidate_UnknownCandidate(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/candidates/missing/transition", web.TransitionRequest{
		TargetStageID: "stage-1",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
