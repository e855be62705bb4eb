package file

import (
	"context"
	"sort"
	"time"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
)

type workflowRepository struct {
	store *store
}

func (r *workflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	found, err := r.store.read(id, &workflow)
	if err != nil {
		return nil, err
	}

	if !found || workflow.DeletedAt != nil {
		return nil, persistence.NewStoreError("GetByID", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return &workflow, nil
}

func (r *workflowRepository) List(ctx context.Context, companyID string) ([]*models.Workflow, error) {
	ids, err := r.store.ids()
	if err != nil {
		return nil, err
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		var workflow models.Workflow

		found, err := r.store.read(id, &workflow)
		if err != nil {
			return nil, err
		}

		if !found || workflow.DeletedAt != nil {
			continue
		}

		if companyID != "" && workflow.CompanyID != companyID {
			continue
		}

		workflows = append(workflows, &workflow)
	}

	sort.Slice(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (r *workflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	return r.store.write(workflow.ID, workflow)
}

func (r *workflowRepository) Delete(_ context.Context, id string) error {
	found, err := r.store.delete(id)
	if err != nil {
		return err
	}

	if !found {
		return persistence.NewStoreError("Delete", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

type stageRepository struct {
	store *store
}

func (r *stageRepository) GetByID(_ context.Context, id string) (models.WorkflowStage, error) {
	var stage models.WorkflowStage

	found, err := r.store.read(id, &stage)
	if err != nil {
		return models.WorkflowStage{}, err
	}

	if !found {
		return models.WorkflowStage{}, persistence.NewStoreError("GetByID", "stage", id, persistence.ErrStageNotFound)
	}

	return stage, nil
}

func (r *stageRepository) ListByWorkflow(_ context.Context, workflowID string) ([]models.WorkflowStage, error) {
	ids, err := r.store.ids()
	if err != nil {
		return nil, err
	}

	stages := make([]models.WorkflowStage, 0)

	for _, id := range ids {
		var stage models.WorkflowStage

		found, err := r.store.read(id, &stage)
		if err != nil {
			return nil, err
		}

		if found && stage.WorkflowID == workflowID {
			stages = append(stages, stage)
		}
	}

	sort.Slice(stages, func(i, j int) bool {
		return stages[i].Order < stages[j].Order
	})

	return stages, nil
}

func (r *stageRepository) GetInitialStage(ctx context.Context, workflowID string) (models.WorkflowStage, error) {
	stages, err := r.ListByWorkflow(ctx, workflowID)
	if err != nil {
		return models.WorkflowStage{}, err
	}

	for _, stage := range stages {
		if stage.StageType == models.StageTypeInitial {
			return stage, nil
		}
	}

	return models.WorkflowStage{}, persistence.NewStoreError("GetInitialStage", "workflow", workflowID, persistence.ErrInitialStageNotFound)
}

func (r *stageRepository) GetFinalStages(ctx context.Context, workflowID string) ([]models.WorkflowStage, error) {
	stages, err := r.ListByWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	finals := make([]models.WorkflowStage, 0)

	for _, stage := range stages {
		if stage.StageType.IsTerminal() {
			finals = append(finals, stage)
		}
	}

	return finals, nil
}

func (r *stageRepository) Save(_ context.Context, stage models.WorkflowStage) error {
	return r.store.write(stage.ID, stage)
}

func (r *stageRepository) Delete(_ context.Context, id string) error {
	found, err := r.store.delete(id)
	if err != nil {
		return err
	}

	if !found {
		return persistence.NewStoreError("Delete", "stage", id, persistence.ErrStageNotFound)
	}

	return nil
}

type customFieldRepository struct {
	store *store
}

func (r *customFieldRepository) GetByID(_ context.Context, id string) (models.CustomField, error) {
	var field models.CustomField

	found, err := r.store.read(id, &field)
	if err != nil {
		return models.CustomField{}, err
	}

	if !found {
		return models.CustomField{}, persistence.NewStoreError("GetByID", "custom_field", id, persistence.ErrCustomFieldNotFound)
	}

	return field, nil
}

func (r *customFieldRepository) ListByWorkflow(_ context.Context, workflowID string) ([]models.CustomField, error) {
	ids, err := r.store.ids()
	if err != nil {
		return nil, err
	}

	fields := make([]models.CustomField, 0)

	for _, id := range ids {
		var field models.CustomField

		found, err := r.store.read(id, &field)
		if err != nil {
			return nil, err
		}

		if found && field.WorkflowID == workflowID {
			fields = append(fields, field)
		}
	}

	sort.Slice(fields, func(i, j int) bool {
		return fields[i].OrderIndex < fields[j].OrderIndex
	})

	return fields, nil
}

func (r *customFieldRepository) Save(_ context.Context, field models.CustomField) error {
	return r.store.write(field.ID, field)
}

func (r *customFieldRepository) Delete(_ context.Context, id string) error {
	found, err := r.store.delete(id)
	if err != nil {
		return err
	}

	if !found {
		return persistence.NewStoreError("Delete", "custom_field", id, persistence.ErrCustomFieldNotFound)
	}

	return nil
}

type fieldConfigurationRepository struct {
	store *store
}

func (r *fieldConfigurationRepository) GetByID(_ context.Context, id string) (models.FieldConfiguration, error) {
	var configuration models.FieldConfiguration

	found, err := r.store.read(id, &configuration)
	if err != nil {
		return models.FieldConfiguration{}, err
	}

	if !found {
		return models.FieldConfiguration{}, persistence.NewStoreError("GetByID", "field_configuration", id, persistence.ErrFieldConfigurationNotFound)
	}

	return configuration, nil
}

func (r *fieldConfigurationRepository) ListByStage(_ context.Context, stageID string) ([]models.FieldConfiguration, error) {
	ids, err := r.store.ids()
	if err != nil {
		return nil, err
	}

	configurations := make([]models.FieldConfiguration, 0)

	for _, id := range ids {
		var configuration models.FieldConfiguration

		found, err := r.store.read(id, &configuration)
		if err != nil {
			return nil, err
		}

		if found && configuration.StageID == stageID {
			configurations = append(configurations, configuration)
		}
	}

	return configurations, nil
}

func (r *fieldConfigurationRepository) Save(_ context.Context, configuration models.FieldConfiguration) error {
	return r.store.write(configuration.ID, configuration)
}

func (r *fieldConfigurationRepository) Delete(_ context.Context, id string) error {
	found, err := r.store.delete(id)
	if err != nil {
		return err
	}

	if !found {
		return persistence.NewStoreError("Delete", "field_configuration", id, persistence.ErrFieldConfigurationNotFound)
	}

	return nil
}

type validationRuleRepository struct {
	store *store
}

func (r *validationRuleRepository) GetByID(_ context.Context, id string) (models.ValidationRule, error) {
	var rule models.ValidationRule

	found, err := r.store.read(id, &rule)
	if err != nil {
		return models.ValidationRule{}, err
	}

	if !found {
		return models.ValidationRule{}, persistence.NewStoreError("GetByID", "validation_rule", id, persistence.ErrValidationRuleNotFound)
	}

	return rule, nil
}

func (r *validationRuleRepository) ListByStage(_ context.Context, stageID string, activeOnly bool) ([]models.ValidationRule, error) {
	ids, err := r.store.ids()
	if err != nil {
		return nil, err
	}

	rules := make([]models.ValidationRule, 0)

	for _, id := range ids {
		var rule models.ValidationRule

		found, err := r.store.read(id, &rule)
		if err != nil {
			return nil, err
		}

		if !found || rule.StageID != stageID {
			continue
		}

		if activeOnly && !rule.IsActive {
			continue
		}

		rules = append(rules, rule)
	}

	return rules, nil
}

func (r *validationRuleRepository) Save(_ context.Context, rule models.ValidationRule) error {
	return r.store.write(rule.ID, rule)
}

func (r *validationRuleRepository) Delete(_ context.Context, id string) error {
	found, err := r.store.delete(id)
	if err != nil {
		return err
	}

	if !found {
		return persistence.NewStoreError("Delete", "validation_rule", id, persistence.ErrValidationRuleNotFound)
	}

	return nil
}

type candidateRepository struct {
	store *store
}

func (r *candidateRepository) GetByID(_ context.Context, id string) (*models.Candidate, error) {
	var candidate models.Candidate

	found, err := r.store.read(id, &candidate)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, persistence.NewStoreError("GetByID", "candidate", id, persistence.ErrCandidateNotFound)
	}

	return &candidate, nil
}

func (r *candidateRepository) ListByPosition(_ context.Context, positionID string) ([]*models.Candidate, error) {
	ids, err := r.store.ids()
	if err != nil {
		return nil, err
	}

	candidates := make([]*models.Candidate, 0)

	for _, id := range ids {
		var candidate models.Candidate

		found, err := r.store.read(id, &candidate)
		if err != nil {
			return nil, err
		}

		if found && candidate.PositionID == positionID {
			candidates = append(candidates, &candidate)
		}
	}

	return candidates, nil
}

func (r *candidateRepository) Save(_ context.Context, candidate *models.Candidate) error {
	return r.store.write(candidate.ID, candidate)
}

func (r *candidateRepository) Delete(_ context.Context, id string) error {
	found, err := r.store.delete(id)
	if err != nil {
		return err
	}

	if !found {
		return persistence.NewStoreError("Delete", "candidate", id, persistence.ErrCandidateNotFound)
	}

	return nil
}

type stageRecordRepository struct {
	store *store
}

func (r *stageRecordRepository) GetByID(_ context.Context, id string) (models.StageRecord, error) {
	var record models.StageRecord

	found, err := r.store.read(id, &record)
	if err != nil {
		return models.StageRecord{}, err
	}

	if !found {
		return models.StageRecord{}, persistence.NewStoreError("GetByID", "stage_record", id, persistence.ErrStageRecordNotFound)
	}

	return record, nil
}

func (r *stageRecordRepository) GetOpenRecord(ctx context.Context, candidateID string) (models.StageRecord, error) {
	records, err := r.ListByCandidate(ctx, candidateID)
	if err != nil {
		return models.StageRecord{}, err
	}

	for _, record := range records {
		if record.IsOpen() {
			return record, nil
		}
	}

	return models.StageRecord{}, persistence.NewStoreError("GetOpenRecord", "candidate", candidateID, persistence.ErrStageRecordNotFound)
}

func (r *stageRecordRepository) ListByCandidate(_ context.Context, candidateID string) ([]models.StageRecord, error) {
	ids, err := r.store.ids()
	if err != nil {
		return nil, err
	}

	records := make([]models.StageRecord, 0)

	for _, id := range ids {
		var record models.StageRecord

		found, err := r.store.read(id, &record)
		if err != nil {
			return nil, err
		}

		if found && record.CandidateID == candidateID {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.Before(records[j].StartedAt)
	})

	return records, nil
}

func (r *stageRecordRepository) ListOpenOverdue(_ context.Context, now time.Time) ([]models.StageRecord, error) {
	ids, err := r.store.ids()
	if err != nil {
		return nil, err
	}

	overdue := make([]models.StageRecord, 0)

	for _, id := range ids {
		var record models.StageRecord

		found, err := r.store.read(id, &record)
		if err != nil {
			return nil, err
		}

		if found && record.IsOverdue(now) {
			overdue = append(overdue, record)
		}
	}

	return overdue, nil
}

func (r *stageRecordRepository) Save(_ context.Context, record models.StageRecord) error {
	return r.store.write(record.ID, record)
}
