package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
)

// ValidationRule manages the validation rules attached to workflow stages.
type ValidationRule struct {
	persistence persistence.Persistence
}

// NewValidationRule creates a new validation rule service.
func NewValidationRule(persistence persistence.Persistence) *ValidationRule {
	return &ValidationRule{
		persistence: persistence,
	}
}

// ListByStage retrieves the rules of a stage. With activeOnly only active
// rules are returned.
func (s *ValidationRule) ListByStage(ctx context.Context, stageID string, activeOnly bool) ([]models.ValidationRule, error) {
	if _, err := s.persistence.StageRepository().GetByID(ctx, stageID); err != nil {
		return nil, err
	}

	rules, err := s.persistence.ValidationRuleRepository().ListByStage(ctx, stageID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list validation rules: %w", err)
	}

	return rules, nil
}

// FetchByID retrieves a rule by its ID.
func (s *ValidationRule) FetchByID(ctx context.Context, id string) (models.ValidationRule, error) {
	return s.persistence.ValidationRuleRepository().GetByID(ctx, id)
}

// Create attaches a new active rule to a stage and custom field. The field
// must belong to the same workflow as the stage.
func (s *ValidationRule) Create(ctx context.Context, customFieldID, stageID string, ruleType models.RuleType, attrs models.RuleAttributes) (models.ValidationRule, error) {
	stage, err := s.persistence.StageRepository().GetByID(ctx, stageID)
	if err != nil {
		return models.ValidationRule{}, err
	}

	field, err := s.persistence.CustomFieldRepository().GetByID(ctx, customFieldID)
	if err != nil {
		return models.ValidationRule{}, err
	}

	if field.WorkflowID != stage.WorkflowID {
		return models.ValidationRule{}, fmt.Errorf("%w: field %s belongs to another workflow", ErrInvalidRequest, customFieldID)
	}

	rule, err := models.NewValidationRule(uuid.New().String(), customFieldID, stageID, ruleType, attrs)
	if err != nil {
		return models.ValidationRule{}, err
	}

	err = s.persistence.ValidationRuleRepository().Save(ctx, rule)
	if err != nil {
		return models.ValidationRule{}, fmt.Errorf("failed to create validation rule: %w", err)
	}

	return rule, nil
}

// Update replaces the mutable attributes of a rule.
func (s *ValidationRule) Update(ctx context.Context, id string, attrs models.RuleAttributes) (models.ValidationRule, error) {
	existing, err := s.persistence.ValidationRuleRepository().GetByID(ctx, id)
	if err != nil {
		return models.ValidationRule{}, err
	}

	updated, err := existing.Update(attrs)
	if err != nil {
		return models.ValidationRule{}, err
	}

	err = s.persistence.ValidationRuleRepository().Save(ctx, updated)
	if err != nil {
		return models.ValidationRule{}, fmt.Errorf("failed to update validation rule: %w", err)
	}

	return updated, nil
}

// Activate marks a rule active so the transition engine evaluates it again.
func (s *ValidationRule) Activate(ctx context.Context, id string) (models.ValidationRule, error) {
	return s.toggle(ctx, id, models.ValidationRule.Activate)
}

// Deactivate marks a rule inactive without deleting it.
func (s *ValidationRule) Deactivate(ctx context.Context, id string) (models.ValidationRule, error) {
	return s.toggle(ctx, id, models.ValidationRule.Deactivate)
}

func (s *ValidationRule) toggle(ctx context.Context, id string, toggle func(models.ValidationRule) models.ValidationRule) (models.ValidationRule, error) {
	existing, err := s.persistence.ValidationRuleRepository().GetByID(ctx, id)
	if err != nil {
		return models.ValidationRule{}, err
	}

	updated := toggle(existing)

	err = s.persistence.ValidationRuleRepository().Save(ctx, updated)
	if err != nil {
		return models.ValidationRule{}, fmt.Errorf("failed to save validation rule: %w", err)
	}

	return updated, nil
}

// Delete removes a rule by its ID.
func (s *ValidationRule) Delete(ctx context.Context, id string) error {
	return s.persistence.ValidationRuleRepository().Delete(ctx, id)
}
