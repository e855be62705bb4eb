package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
)

// CustomField manages the custom fields of a workflow and their per-stage
// configurations.
type CustomField struct {
	persistence persistence.Persistence
}

// NewCustomField creates a new custom field service.
func NewCustomField(persistence persistence.Persistence) *CustomField {
	return &CustomField{
		persistence: persistence,
	}
}

// List retrieves the custom fields of a workflow ordered by their index.
func (s *CustomField) List(ctx context.Context, workflowID string) ([]models.CustomField, error) {
	if _, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID); err != nil {
		return nil, err
	}

	fields, err := s.persistence.CustomFieldRepository().ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to list custom fields: %w", err)
	}

	return fields, nil
}

// FetchByID retrieves a custom field by its ID.
func (s *CustomField) FetchByID(ctx context.Context, id string) (models.CustomField, error) {
	return s.persistence.CustomFieldRepository().GetByID(ctx, id)
}

// Create adds a custom field to a workflow. Field keys are unique within the
// workflow.
func (s *CustomField) Create(ctx context.Context, workflowID, fieldKey, fieldName string, fieldType models.FieldType, fieldConfig map[string]any, orderIndex int) (models.CustomField, error) {
	if _, err := s.persistence.WorkflowRepository().GetByID(ctx, workflowID); err != nil {
		return models.CustomField{}, err
	}

	siblings, err := s.persistence.CustomFieldRepository().ListByWorkflow(ctx, workflowID)
	if err != nil {
		return models.CustomField{}, fmt.Errorf("failed to list custom fields: %w", err)
	}

	for _, sibling := range siblings {
		if sibling.FieldKey == fieldKey {
			return models.CustomField{}, fmt.Errorf("%w: %q", ErrDuplicateFieldKey, fieldKey)
		}
	}

	field, err := models.NewCustomField(uuid.New().String(), workflowID, fieldKey, fieldName, fieldType, fieldConfig, orderIndex)
	if err != nil {
		return models.CustomField{}, err
	}

	err = s.persistence.CustomFieldRepository().Save(ctx, field)
	if err != nil {
		return models.CustomField{}, fmt.Errorf("failed to create custom field: %w", err)
	}

	return field, nil
}

// Update replaces name, configuration and order of a custom field. Key and
// type are fixed.
func (s *CustomField) Update(ctx context.Context, id, fieldName string, fieldConfig map[string]any, orderIndex int) (models.CustomField, error) {
	existing, err := s.persistence.CustomFieldRepository().GetByID(ctx, id)
	if err != nil {
		return models.CustomField{}, err
	}

	updated, err := existing.Update(fieldName, fieldConfig, orderIndex)
	if err != nil {
		return models.CustomField{}, err
	}

	err = s.persistence.CustomFieldRepository().Save(ctx, updated)
	if err != nil {
		return models.CustomField{}, fmt.Errorf("failed to update custom field: %w", err)
	}

	return updated, nil
}

// Delete removes a custom field by its ID.
func (s *CustomField) Delete(ctx context.Context, id string) error {
	return s.persistence.CustomFieldRepository().Delete(ctx, id)
}

// Field configuration operations

// ListConfigurations retrieves the per-stage field configurations of a stage.
func (s *CustomField) ListConfigurations(ctx context.Context, stageID string) ([]models.FieldConfiguration, error) {
	if _, err := s.persistence.StageRepository().GetByID(ctx, stageID); err != nil {
		return nil, err
	}

	configurations, err := s.persistence.FieldConfigurationRepository().ListByStage(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list field configurations: %w", err)
	}

	return configurations, nil
}

// Configure sets the visibility of a custom field on a stage, creating the
// configuration when none exists for the (stage, field) pair yet.
func (s *CustomField) Configure(ctx context.Context, stageID, customFieldID string, visibility models.FieldVisibility) (models.FieldConfiguration, error) {
	stage, err := s.persistence.StageRepository().GetByID(ctx, stageID)
	if err != nil {
		return models.FieldConfiguration{}, err
	}

	field, err := s.persistence.CustomFieldRepository().GetByID(ctx, customFieldID)
	if err != nil {
		return models.FieldConfiguration{}, err
	}

	if field.WorkflowID != stage.WorkflowID {
		return models.FieldConfiguration{}, fmt.Errorf("%w: field %s belongs to another workflow", ErrInvalidRequest, customFieldID)
	}

	existing, err := s.findConfiguration(ctx, stageID, customFieldID)
	if err != nil {
		return models.FieldConfiguration{}, err
	}

	var configuration models.FieldConfiguration

	if existing != nil {
		configuration, err = existing.UpdateVisibility(visibility)
	} else {
		configuration, err = models.NewFieldConfiguration(uuid.New().String(), stageID, customFieldID, visibility)
	}

	if err != nil {
		return models.FieldConfiguration{}, err
	}

	err = s.persistence.FieldConfigurationRepository().Save(ctx, configuration)
	if err != nil {
		return models.FieldConfiguration{}, fmt.Errorf("failed to save field configuration: %w", err)
	}

	return configuration, nil
}

// DeleteConfiguration removes a field configuration by its ID.
func (s *CustomField) DeleteConfiguration(ctx context.Context, id string) error {
	return s.persistence.FieldConfigurationRepository().Delete(ctx, id)
}

func (s *CustomField) findConfiguration(ctx context.Context, stageID, customFieldID string) (*models.FieldConfiguration, error) {
	configurations, err := s.persistence.FieldConfigurationRepository().ListByStage(ctx, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to list field configurations: %w", err)
	}

	for _, configuration := range configurations {
		if configuration.CustomFieldID == customFieldID {
			return &configuration, nil
		}
	}

	return nil, nil
}
