// Package web provides HTTP handlers and REST API endpoints for hiring
// workflow management.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/talentflow/talentflow/pkg/services"
	"github.com/talentflow/talentflow/pkg/transition"
)

type APIHandlers struct {
	workflowService  *services.Workflow
	fieldService     *services.CustomField
	ruleService      *services.ValidationRule
	candidateService *services.Candidate
	orchestrator     *transition.Orchestrator
	validator        *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	fieldService *services.CustomField,
	ruleService *services.ValidationRule,
	candidateService *services.Candidate,
	orchestrator *transition.Orchestrator,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService:  workflowService,
		fieldService:     fieldService,
		ruleService:      ruleService,
		candidateService: candidateService,
		orchestrator:     orchestrator,
		validator:        validator,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, ok := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if ok {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

// Workflow endpoints

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context(), c.Query("company_id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	workflow, err := h.workflowService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.Create(c.Context(), services.CreateWorkflowRequest{
		CompanyID:   req.CompanyID,
		PhaseID:     req.PhaseID,
		Name:        req.Name,
		Description: req.Description,
		Metadata:    req.Metadata,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	var req UpdateWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.Update(c.Context(), c.Params("id"), services.CreateWorkflowRequest{
		Name:        req.Name,
		Description: req.Description,
		Metadata:    req.Metadata,
	}, req.Status)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	if err := h.workflowService.Delete(c.Context(), c.Params("id")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Stage endpoints

func (h *APIHandlers) GetStages(c fiber.Ctx) error {
	stages, err := h.workflowService.ListStages(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"stages": stages,
	})
}

func (h *APIHandlers) GetStage(c fiber.Ctx) error {
	stage, err := h.workflowService.FetchStageByID(c.Context(), c.Params("stageId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stage)
}

func (h *APIHandlers) CreateStage(c fiber.Ctx) error {
	var req StageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	stage, err := h.workflowService.CreateStage(c.Context(), c.Params("id"), req.Attributes())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(stage)
}

func (h *APIHandlers) UpdateStage(c fiber.Ctx) error {
	var req StageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	stage, err := h.workflowService.UpdateStage(c.Context(), c.Params("stageId"), req.Attributes())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stage)
}

func (h *APIHandlers) ActivateStage(c fiber.Ctx) error {
	stage, err := h.workflowService.ActivateStage(c.Context(), c.Params("stageId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stage)
}

func (h *APIHandlers) DeactivateStage(c fiber.Ctx) error {
	stage, err := h.workflowService.DeactivateStage(c.Context(), c.Params("stageId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(stage)
}

func (h *APIHandlers) DeleteStage(c fiber.Ctx) error {
	if err := h.workflowService.DeleteStage(c.Context(), c.Params("stageId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Custom field endpoints

func (h *APIHandlers) GetCustomFields(c fiber.Ctx) error {
	fields, err := h.fieldService.List(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"custom_fields": fields,
	})
}

func (h *APIHandlers) CreateCustomField(c fiber.Ctx) error {
	var req CreateCustomFieldRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	field, err := h.fieldService.Create(c.Context(), c.Params("id"),
		req.FieldKey, req.FieldName, req.FieldType, req.FieldConfig, req.OrderIndex)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(field)
}

func (h *APIHandlers) UpdateCustomField(c fiber.Ctx) error {
	var req UpdateCustomFieldRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	field, err := h.fieldService.Update(c.Context(), c.Params("fieldId"),
		req.FieldName, req.FieldConfig, req.OrderIndex)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(field)
}

func (h *APIHandlers) DeleteCustomField(c fiber.Ctx) error {
	if err := h.fieldService.Delete(c.Context(), c.Params("fieldId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Field configuration endpoints

func (h *APIHandlers) GetFieldConfigurations(c fiber.Ctx) error {
	configurations, err := h.fieldService.ListConfigurations(c.Context(), c.Params("stageId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"field_configurations": configurations,
	})
}

func (h *APIHandlers) ConfigureField(c fiber.Ctx) error {
	var req ConfigureFieldRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	configuration, err := h.fieldService.Configure(c.Context(), c.Params("stageId"), req.CustomFieldID, req.Visibility)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(configuration)
}

// Validation rule endpoints

func (h *APIHandlers) GetValidationRules(c fiber.Ctx) error {
	activeOnly := false

	if activeStr := c.Query("active_only"); activeStr != "" {
		parsed, err := strconv.ParseBool(activeStr)
		if err != nil {
			return badRequest(c, "Invalid active_only parameter")
		}

		activeOnly = parsed
	}

	rules, err := h.ruleService.ListByStage(c.Context(), c.Params("stageId"), activeOnly)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"validation_rules": rules,
	})
}

func (h *APIHandlers) CreateValidationRule(c fiber.Ctx) error {
	var req ValidationRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	rule, err := h.ruleService.Create(c.Context(), req.CustomFieldID, c.Params("stageId"), req.RuleType, req.Attributes())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(rule)
}

func (h *APIHandlers) UpdateValidationRule(c fiber.Ctx) error {
	var req ValidationRuleRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	rule, err := h.ruleService.Update(c.Context(), c.Params("ruleId"), req.Attributes())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) ActivateValidationRule(c fiber.Ctx) error {
	rule, err := h.ruleService.Activate(c.Context(), c.Params("ruleId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) DeactivateValidationRule(c fiber.Ctx) error {
	rule, err := h.ruleService.Deactivate(c.Context(), c.Params("ruleId"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(rule)
}

func (h *APIHandlers) DeleteValidationRule(c fiber.Ctx) error {
	if err := h.ruleService.Delete(c.Context(), c.Params("ruleId")); err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Candidate endpoints

func (h *APIHandlers) GetCandidate(c fiber.Ctx) error {
	candidate, err := h.candidateService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(candidate)
}

func (h *APIHandlers) GetCandidates(c fiber.Ctx) error {
	positionID := c.Query("position_id")
	if positionID == "" {
		return badRequest(c, "position_id query parameter is required")
	}

	candidates, err := h.candidateService.ListByPosition(c.Context(), positionID)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"candidates": candidates,
	})
}

func (h *APIHandlers) CreateCandidate(c fiber.Ctx) error {
	var req CreateCandidateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	candidate, err := h.candidateService.Create(c.Context(), services.CreateCandidateRequest{
		PositionID:     req.PositionID,
		CompanyID:      req.CompanyID,
		Name:           req.Name,
		Email:          req.Email,
		EntryPhaseID:   req.EntryPhaseID,
		PhaseWorkflows: req.PhaseWorkflows,
		FieldValues:    req.FieldValues,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(candidate)
}

func (h *APIHandlers) UpdateCandidateFieldValues(c fiber.Ctx) error {
	var req UpdateFieldValuesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	candidate, err := h.candidateService.UpdateFieldValues(c.Context(), c.Params("id"), req.FieldValues)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(candidate)
}

func (h *APIHandlers) GetCandidateHistory(c fiber.Ctx) error {
	records, err := h.candidateService.History(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"stage_records": records,
	})
}

// TransitionCandidate moves a candidate to a target stage. A transition
// blocked by validation errors returns 422 with every failed rule so the
// caller can fix all issues at once.
func (h *APIHandlers) TransitionCandidate(c fiber.Ctx) error {
	var req TransitionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	result, err := h.orchestrator.RequestTransition(c.Context(), transition.Request{
		CandidateID:   c.Params("id"),
		TargetStageID: req.TargetStageID,
		FieldValues:   req.FieldValues,
		PositionData:  req.PositionData,
		Comment:       req.Comment,
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	if result.Outcome == transition.OutcomeBlocked {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(result)
	}

	return c.JSON(result)
}
