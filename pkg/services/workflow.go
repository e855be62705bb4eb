package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
)

const minWorkflowNameLength = 3

// Workflow manages hiring workflows and their stages.
type Workflow struct {
	persistence persistence.Persistence
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence) *Workflow {
	return &Workflow{
		persistence: persistence,
	}
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// CreateWorkflowRequest carries the attributes for a new workflow.
type CreateWorkflowRequest struct {
	CompanyID   string
	PhaseID     string
	Name        string
	Description string
	Metadata    map[string]any
}

// List retrieves the workflows of a company. An empty company ID lists all
// workflows.
func (w *Workflow) List(ctx context.Context, companyID string) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().List(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID retrieves a workflow by its ID.
func (w *Workflow) FetchByID(ctx context.Context, id string) (*models.Workflow, error) {
	return w.persistence.WorkflowRepository().GetByID(ctx, id)
}

// Create adds a new workflow in draft status.
func (w *Workflow) Create(ctx context.Context, req CreateWorkflowRequest) (*models.Workflow, error) {
	if strings.TrimSpace(req.CompanyID) == "" {
		return nil, ErrCompanyIDRequired
	}

	if len(strings.TrimSpace(req.Name)) < minWorkflowNameLength {
		return nil, NewValidationError(
			"Create",
			"WORKFLOW_NAME_TOO_SHORT",
			fmt.Sprintf("workflow name %q must be at least %d characters", req.Name, minWorkflowNameLength),
			ErrWorkflowNameTooShort,
		)
	}

	now := time.Now().UTC()
	workflow := &models.Workflow{
		ID:          uuid.New().String(),
		CompanyID:   req.CompanyID,
		PhaseID:     req.PhaseID,
		Name:        req.Name,
		Description: req.Description,
		Status:      models.WorkflowStatusDraft,
		Metadata:    req.Metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := w.persistence.WorkflowRepository().Save(ctx, workflow)
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	return workflow, nil
}

// Update modifies name, description, status and metadata of an existing
// workflow.
func (w *Workflow) Update(ctx context.Context, workflowID string, req CreateWorkflowRequest, status models.WorkflowStatus) (*models.Workflow, error) {
	existing, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if existing.Status == models.WorkflowStatusArchived {
		return nil, ErrWorkflowArchived
	}

	if len(strings.TrimSpace(req.Name)) < minWorkflowNameLength {
		return nil, ErrWorkflowNameTooShort
	}

	if !validWorkflowStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Metadata = req.Metadata
	existing.Status = status
	existing.UpdatedAt = time.Now().UTC()

	err = w.persistence.WorkflowRepository().Save(ctx, existing)
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	return existing, nil
}

// Delete soft-deletes a workflow by its ID.
func (w *Workflow) Delete(ctx context.Context, workflowID string) error {
	err := w.persistence.WorkflowRepository().Delete(ctx, workflowID)
	if err != nil {
		return err
	}

	return nil
}

func validWorkflowStatus(status models.WorkflowStatus) bool {
	switch status {
	case models.WorkflowStatusDraft, models.WorkflowStatusActive, models.WorkflowStatusArchived:
		return true
	default:
		return false
	}
}

// Stage operations

// ListStages retrieves the stages of a workflow ordered by position.
func (w *Workflow) ListStages(ctx context.Context, workflowID string) ([]models.WorkflowStage, error) {
	if _, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID); err != nil {
		return nil, err
	}

	stages, err := w.persistence.StageRepository().ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stages: %w", err)
	}

	return stages, nil
}

// FetchStageByID retrieves a stage by its ID.
func (w *Workflow) FetchStageByID(ctx context.Context, stageID string) (models.WorkflowStage, error) {
	return w.persistence.StageRepository().GetByID(ctx, stageID)
}

// CreateStage adds a stage to a workflow. The order must not collide with an
// existing stage of the same workflow.
func (w *Workflow) CreateStage(ctx context.Context, workflowID string, attrs models.StageAttributes) (models.WorkflowStage, error) {
	if _, err := w.persistence.WorkflowRepository().GetByID(ctx, workflowID); err != nil {
		return models.WorkflowStage{}, err
	}

	siblings, err := w.persistence.StageRepository().ListByWorkflow(ctx, workflowID)
	if err != nil {
		return models.WorkflowStage{}, fmt.Errorf("failed to list stages: %w", err)
	}

	for _, sibling := range siblings {
		if sibling.Order == attrs.Order {
			return models.WorkflowStage{}, fmt.Errorf("%w: order %d", ErrDuplicateStageOrder, attrs.Order)
		}
	}

	stage, err := models.NewWorkflowStage(uuid.New().String(), workflowID, attrs)
	if err != nil {
		return models.WorkflowStage{}, err
	}

	err = w.persistence.StageRepository().Save(ctx, stage)
	if err != nil {
		return models.WorkflowStage{}, fmt.Errorf("failed to create stage: %w", err)
	}

	return stage, nil
}

// UpdateStage replaces the mutable attributes of a stage.
func (w *Workflow) UpdateStage(ctx context.Context, stageID string, attrs models.StageAttributes) (models.WorkflowStage, error) {
	existing, err := w.persistence.StageRepository().GetByID(ctx, stageID)
	if err != nil {
		return models.WorkflowStage{}, err
	}

	if attrs.Order != existing.Order {
		siblings, err := w.persistence.StageRepository().ListByWorkflow(ctx, existing.WorkflowID)
		if err != nil {
			return models.WorkflowStage{}, fmt.Errorf("failed to list stages: %w", err)
		}

		for _, sibling := range siblings {
			if sibling.ID != existing.ID && sibling.Order == attrs.Order {
				return models.WorkflowStage{}, fmt.Errorf("%w: order %d", ErrDuplicateStageOrder, attrs.Order)
			}
		}
	}

	updated, err := existing.Update(attrs)
	if err != nil {
		return models.WorkflowStage{}, err
	}

	err = w.persistence.StageRepository().Save(ctx, updated)
	if err != nil {
		return models.WorkflowStage{}, fmt.Errorf("failed to update stage: %w", err)
	}

	return updated, nil
}

// ActivateStage marks a stage active.
func (w *Workflow) ActivateStage(ctx context.Context, stageID string) (models.WorkflowStage, error) {
	return w.toggleStage(ctx, stageID, models.WorkflowStage.Activate)
}

// DeactivateStage marks a stage inactive.
func (w *Workflow) DeactivateStage(ctx context.Context, stageID string) (models.WorkflowStage, error) {
	return w.toggleStage(ctx, stageID, models.WorkflowStage.Deactivate)
}

func (w *Workflow) toggleStage(ctx context.Context, stageID string, toggle func(models.WorkflowStage) models.WorkflowStage) (models.WorkflowStage, error) {
	existing, err := w.persistence.StageRepository().GetByID(ctx, stageID)
	if err != nil {
		return models.WorkflowStage{}, err
	}

	updated := toggle(existing)

	err = w.persistence.StageRepository().Save(ctx, updated)
	if err != nil {
		return models.WorkflowStage{}, fmt.Errorf("failed to save stage: %w", err)
	}

	return updated, nil
}

// DeleteStage removes a stage by its ID.
func (w *Workflow) DeleteStage(ctx context.Context, stageID string) error {
	return w.persistence.StageRepository().Delete(ctx, stageID)
}
