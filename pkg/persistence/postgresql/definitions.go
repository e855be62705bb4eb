package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/talentflow/talentflow/pkg/models"
	"github.com/talentflow/talentflow/pkg/persistence"
)

// WorkflowRepository

type workflowRepository struct {
	p *Persistence
}

const workflowColumns = `
	id
  , company_id
  , phase_id
  , name
  , description
  , status
  , metadata
  , created_at
  , updated_at
  , deleted_at
`

func (r *workflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE id = $1 AND deleted_at IS NULL`

	workflow, err := scanWorkflow(r.p.q(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.NewStoreError("GetByID", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query workflow %s: %w", id, err)
	}

	return workflow, nil
}

func (r *workflowRepository) List(ctx context.Context, companyID string) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE deleted_at IS NULL`
	args := []any{}

	if companyID != "" {
		query += ` AND company_id = $1`
		args = append(args, companyID)
	}

	query += ` ORDER BY created_at`

	rows, err := r.p.q(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}
	defer closeRows(ctx, r.p, rows)

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan workflow: %w", err)
		}

		workflows = append(workflows, workflow)
	}

	return workflows, rows.Err()
}

func (r *workflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	metadata, err := marshalJSONB(workflow.Metadata)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			company_id = EXCLUDED.company_id,
			phase_id = EXCLUDED.phase_id,
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			metadata = EXCLUDED.metadata,
			updated_at = EXCLUDED.updated_at,
			deleted_at = EXCLUDED.deleted_at
	`

	_, err = r.p.q(ctx).ExecContext(ctx, query,
		workflow.ID, workflow.CompanyID, workflow.PhaseID, workflow.Name, workflow.Description,
		workflow.Status, metadata, workflow.CreatedAt, workflow.UpdatedAt, workflow.DeletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save workflow %s: %w", workflow.ID, err)
	}

	return nil
}

func (r *workflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.p.q(ctx).ExecContext(ctx,
		`UPDATE workflows SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow    models.Workflow
		description sql.NullString
		metadata    []byte
		deletedAt   sql.NullTime
	)

	err := row.Scan(
		&workflow.ID, &workflow.CompanyID, &workflow.PhaseID, &workflow.Name, &description,
		&workflow.Status, &metadata, &workflow.CreatedAt, &workflow.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.Description = description.String

	if err := unmarshalJSONB(metadata, &workflow.Metadata); err != nil {
		return nil, err
	}

	if deletedAt.Valid {
		workflow.DeletedAt = &deletedAt.Time
	}

	return &workflow, nil
}

// StageRepository

type stageRepository struct {
	p *Persistence
}

const stageColumns = `
	id
  , workflow_id
  , name
  , stage_type
  , stage_order
  , allow_skip
  , estimated_duration
  , default_role_id
  , default_user_id
  , email_template_id
  , deadline_days
  , estimated_cost
  , next_phase_id
  , field_visibility
  , field_validation
  , is_active
  , created_at
  , updated_at
`

func (r *stageRepository) GetByID(ctx context.Context, id string) (models.WorkflowStage, error) {
	query := `SELECT ` + stageColumns + ` FROM workflow_stages WHERE id = $1`

	stage, err := scanStage(r.p.q(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.WorkflowStage{}, persistence.NewStoreError("GetByID", "stage", id, persistence.ErrStageNotFound)
	}

	if err != nil {
		return models.WorkflowStage{}, fmt.Errorf("failed to query stage %s: %w", id, err)
	}

	return stage, nil
}

func (r *stageRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]models.WorkflowStage, error) {
	query := `SELECT ` + stageColumns + ` FROM workflow_stages WHERE workflow_id = $1 ORDER BY stage_order`

	rows, err := r.p.q(ctx).QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stages for workflow %s: %w", workflowID, err)
	}
	defer closeRows(ctx, r.p, rows)

	stages := make([]models.WorkflowStage, 0)

	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}

		stages = append(stages, stage)
	}

	return stages, rows.Err()
}

func (r *stageRepository) GetInitialStage(ctx context.Context, workflowID string) (models.WorkflowStage, error) {
	query := `SELECT ` + stageColumns + ` FROM workflow_stages WHERE workflow_id = $1 AND stage_type = $2 LIMIT 1`

	stage, err := scanStage(r.p.q(ctx).QueryRowContext(ctx, query, workflowID, models.StageTypeInitial))
	if errors.Is(err, sql.ErrNoRows) {
		return models.WorkflowStage{}, persistence.NewStoreError("GetInitialStage", "workflow", workflowID, persistence.ErrInitialStageNotFound)
	}

	if err != nil {
		return models.WorkflowStage{}, fmt.Errorf("failed to query initial stage of workflow %s: %w", workflowID, err)
	}

	return stage, nil
}

func (r *stageRepository) GetFinalStages(ctx context.Context, workflowID string) ([]models.WorkflowStage, error) {
	query := `SELECT ` + stageColumns + ` FROM workflow_stages
		WHERE workflow_id = $1 AND stage_type IN ($2, $3) ORDER BY stage_order`

	rows, err := r.p.q(ctx).QueryContext(ctx, query, workflowID, models.StageTypeSuccess, models.StageTypeFail)
	if err != nil {
		return nil, fmt.Errorf("failed to query final stages of workflow %s: %w", workflowID, err)
	}
	defer closeRows(ctx, r.p, rows)

	stages := make([]models.WorkflowStage, 0)

	for rows.Next() {
		stage, err := scanStage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage: %w", err)
		}

		stages = append(stages, stage)
	}

	return stages, rows.Err()
}

func (r *stageRepository) Save(ctx context.Context, stage models.WorkflowStage) error {
	visibility, err := marshalJSONB(stage.FieldVisibility)
	if err != nil {
		return err
	}

	validation, err := marshalJSONB(stage.FieldValidation)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO workflow_stages (` + stageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			stage_type = EXCLUDED.stage_type,
			stage_order = EXCLUDED.stage_order,
			allow_skip = EXCLUDED.allow_skip,
			estimated_duration = EXCLUDED.estimated_duration,
			default_role_id = EXCLUDED.default_role_id,
			default_user_id = EXCLUDED.default_user_id,
			email_template_id = EXCLUDED.email_template_id,
			deadline_days = EXCLUDED.deadline_days,
			estimated_cost = EXCLUDED.estimated_cost,
			next_phase_id = EXCLUDED.next_phase_id,
			field_visibility = EXCLUDED.field_visibility,
			field_validation = EXCLUDED.field_validation,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.p.q(ctx).ExecContext(ctx, query,
		stage.ID, stage.WorkflowID, stage.Name, stage.StageType, stage.Order,
		stage.AllowSkip, stage.EstimatedDuration,
		nullString(stage.DefaultRoleID), nullString(stage.DefaultUserID), nullString(stage.EmailTemplateID),
		nullInt(stage.DeadlineDays), nullFloat(stage.EstimatedCost), nullString(stage.NextPhaseID),
		visibility, validation, stage.IsActive, stage.CreatedAt, stage.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save stage %s: %w", stage.ID, err)
	}

	return nil
}

func (r *stageRepository) Delete(ctx context.Context, id string) error {
	result, err := r.p.q(ctx).ExecContext(ctx, `DELETE FROM workflow_stages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete stage %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "stage", id, persistence.ErrStageNotFound)
	}

	return nil
}

func scanStage(row rowScanner) (models.WorkflowStage, error) {
	var (
		stage                                 models.WorkflowStage
		roleID, userID, templateID, nextPhase sql.NullString
		deadlineDays                          sql.NullInt64
		estimatedCost                         sql.NullFloat64
		visibility, validation                []byte
	)

	err := row.Scan(
		&stage.ID, &stage.WorkflowID, &stage.Name, &stage.StageType, &stage.Order,
		&stage.AllowSkip, &stage.EstimatedDuration,
		&roleID, &userID, &templateID,
		&deadlineDays, &estimatedCost, &nextPhase,
		&visibility, &validation, &stage.IsActive, &stage.CreatedAt, &stage.UpdatedAt,
	)
	if err != nil {
		return models.WorkflowStage{}, err
	}

	stage.DefaultRoleID = fromNullString(roleID)
	stage.DefaultUserID = fromNullString(userID)
	stage.EmailTemplateID = fromNullString(templateID)
	stage.DeadlineDays = fromNullInt(deadlineDays)
	stage.EstimatedCost = fromNullFloat(estimatedCost)
	stage.NextPhaseID = fromNullString(nextPhase)

	if err := unmarshalJSONB(visibility, &stage.FieldVisibility); err != nil {
		return models.WorkflowStage{}, err
	}

	if err := unmarshalJSONB(validation, &stage.FieldValidation); err != nil {
		return models.WorkflowStage{}, err
	}

	return stage, nil
}

// CustomFieldRepository

type customFieldRepository struct {
	p *Persistence
}

const customFieldColumns = `
	id
  , workflow_id
  , field_key
  , field_name
  , field_type
  , field_config
  , order_index
  , created_at
  , updated_at
`

func (r *customFieldRepository) GetByID(ctx context.Context, id string) (models.CustomField, error) {
	query := `SELECT ` + customFieldColumns + ` FROM custom_fields WHERE id = $1`

	field, err := scanCustomField(r.p.q(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.CustomField{}, persistence.NewStoreError("GetByID", "custom_field", id, persistence.ErrCustomFieldNotFound)
	}

	if err != nil {
		return models.CustomField{}, fmt.Errorf("failed to query custom field %s: %w", id, err)
	}

	return field, nil
}

func (r *customFieldRepository) ListByWorkflow(ctx context.Context, workflowID string) ([]models.CustomField, error) {
	query := `SELECT ` + customFieldColumns + ` FROM custom_fields WHERE workflow_id = $1 ORDER BY order_index`

	rows, err := r.p.q(ctx).QueryContext(ctx, query, workflowID)
	if err != nil {
		return nil, fmt.Errorf("failed to query custom fields for workflow %s: %w", workflowID, err)
	}
	defer closeRows(ctx, r.p, rows)

	fields := make([]models.CustomField, 0)

	for rows.Next() {
		field, err := scanCustomField(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan custom field: %w", err)
		}

		fields = append(fields, field)
	}

	return fields, rows.Err()
}

func (r *customFieldRepository) Save(ctx context.Context, field models.CustomField) error {
	config, err := marshalJSONB(field.FieldConfig)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO custom_fields (` + customFieldColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			field_name = EXCLUDED.field_name,
			field_config = EXCLUDED.field_config,
			order_index = EXCLUDED.order_index,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.p.q(ctx).ExecContext(ctx, query,
		field.ID, field.WorkflowID, field.FieldKey, field.FieldName, field.FieldType,
		config, field.OrderIndex, field.CreatedAt, field.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save custom field %s: %w", field.ID, err)
	}

	return nil
}

func (r *customFieldRepository) Delete(ctx context.Context, id string) error {
	result, err := r.p.q(ctx).ExecContext(ctx, `DELETE FROM custom_fields WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete custom field %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "custom_field", id, persistence.ErrCustomFieldNotFound)
	}

	return nil
}

func scanCustomField(row rowScanner) (models.CustomField, error) {
	var (
		field  models.CustomField
		config []byte
	)

	err := row.Scan(
		&field.ID, &field.WorkflowID, &field.FieldKey, &field.FieldName, &field.FieldType,
		&config, &field.OrderIndex, &field.CreatedAt, &field.UpdatedAt,
	)
	if err != nil {
		return models.CustomField{}, err
	}

	if err := unmarshalJSONB(config, &field.FieldConfig); err != nil {
		return models.CustomField{}, err
	}

	return field, nil
}

// FieldConfigurationRepository

type fieldConfigurationRepository struct {
	p *Persistence
}

func (r *fieldConfigurationRepository) GetByID(ctx context.Context, id string) (models.FieldConfiguration, error) {
	query := `SELECT id, stage_id, custom_field_id, visibility, created_at, updated_at
		FROM field_configurations WHERE id = $1`

	var configuration models.FieldConfiguration

	err := r.p.q(ctx).QueryRowContext(ctx, query, id).Scan(
		&configuration.ID, &configuration.StageID, &configuration.CustomFieldID,
		&configuration.Visibility, &configuration.CreatedAt, &configuration.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FieldConfiguration{}, persistence.NewStoreError("GetByID", "field_configuration", id, persistence.ErrFieldConfigurationNotFound)
	}

	if err != nil {
		return models.FieldConfiguration{}, fmt.Errorf("failed to query field configuration %s: %w", id, err)
	}

	return configuration, nil
}

func (r *fieldConfigurationRepository) ListByStage(ctx context.Context, stageID string) ([]models.FieldConfiguration, error) {
	query := `SELECT id, stage_id, custom_field_id, visibility, created_at, updated_at
		FROM field_configurations WHERE stage_id = $1`

	rows, err := r.p.q(ctx).QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query field configurations for stage %s: %w", stageID, err)
	}
	defer closeRows(ctx, r.p, rows)

	configurations := make([]models.FieldConfiguration, 0)

	for rows.Next() {
		var configuration models.FieldConfiguration

		err := rows.Scan(
			&configuration.ID, &configuration.StageID, &configuration.CustomFieldID,
			&configuration.Visibility, &configuration.CreatedAt, &configuration.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan field configuration: %w", err)
		}

		configurations = append(configurations, configuration)
	}

	return configurations, rows.Err()
}

func (r *fieldConfigurationRepository) Save(ctx context.Context, configuration models.FieldConfiguration) error {
	query := `
		INSERT INTO field_configurations (id, stage_id, custom_field_id, visibility, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			visibility = EXCLUDED.visibility,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.p.q(ctx).ExecContext(ctx, query,
		configuration.ID, configuration.StageID, configuration.CustomFieldID,
		configuration.Visibility, configuration.CreatedAt, configuration.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save field configuration %s: %w", configuration.ID, err)
	}

	return nil
}

func (r *fieldConfigurationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.p.q(ctx).ExecContext(ctx, `DELETE FROM field_configurations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete field configuration %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "field_configuration", id, persistence.ErrFieldConfigurationNotFound)
	}

	return nil
}

// ValidationRuleRepository

type validationRuleRepository struct {
	p *Persistence
}

const validationRuleColumns = `
	id
  , custom_field_id
  , stage_id
  , rule_type
  , comparison_operator
  , position_field_path
  , comparison_value
  , severity
  , validation_message
  , auto_reject
  , rejection_reason
  , is_active
  , created_at
  , updated_at
`

func (r *validationRuleRepository) GetByID(ctx context.Context, id string) (models.ValidationRule, error) {
	query := `SELECT ` + validationRuleColumns + ` FROM validation_rules WHERE id = $1`

	rule, err := scanValidationRule(r.p.q(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.ValidationRule{}, persistence.NewStoreError("GetByID", "validation_rule", id, persistence.ErrValidationRuleNotFound)
	}

	if err != nil {
		return models.ValidationRule{}, fmt.Errorf("failed to query validation rule %s: %w", id, err)
	}

	return rule, nil
}

func (r *validationRuleRepository) ListByStage(ctx context.Context, stageID string, activeOnly bool) ([]models.ValidationRule, error) {
	query := `SELECT ` + validationRuleColumns + ` FROM validation_rules WHERE stage_id = $1`

	if activeOnly {
		query += ` AND is_active = TRUE`
	}

	rows, err := r.p.q(ctx).QueryContext(ctx, query, stageID)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation rules for stage %s: %w", stageID, err)
	}
	defer closeRows(ctx, r.p, rows)

	rules := make([]models.ValidationRule, 0)

	for rows.Next() {
		rule, err := scanValidationRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan validation rule: %w", err)
		}

		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

func (r *validationRuleRepository) Save(ctx context.Context, rule models.ValidationRule) error {
	comparisonValue, err := marshalJSONB(rule.ComparisonValue)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO validation_rules (` + validationRuleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			comparison_operator = EXCLUDED.comparison_operator,
			position_field_path = EXCLUDED.position_field_path,
			comparison_value = EXCLUDED.comparison_value,
			severity = EXCLUDED.severity,
			validation_message = EXCLUDED.validation_message,
			auto_reject = EXCLUDED.auto_reject,
			rejection_reason = EXCLUDED.rejection_reason,
			is_active = EXCLUDED.is_active,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.p.q(ctx).ExecContext(ctx, query,
		rule.ID, rule.CustomFieldID, rule.StageID, rule.RuleType, rule.Operator,
		nullString(rule.PositionFieldPath), comparisonValue, rule.Severity, rule.ValidationMessage,
		rule.AutoReject, nullString(rule.RejectionReason), rule.IsActive, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save validation rule %s: %w", rule.ID, err)
	}

	return nil
}

func (r *validationRuleRepository) Delete(ctx context.Context, id string) error {
	result, err := r.p.q(ctx).ExecContext(ctx, `DELETE FROM validation_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete validation rule %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "validation_rule", id, persistence.ErrValidationRuleNotFound)
	}

	return nil
}

func scanValidationRule(row rowScanner) (models.ValidationRule, error) {
	var (
		rule              models.ValidationRule
		path, reason      sql.NullString
		validationMessage sql.NullString
		comparisonValue   []byte
	)

	err := row.Scan(
		&rule.ID, &rule.CustomFieldID, &rule.StageID, &rule.RuleType, &rule.Operator,
		&path, &comparisonValue, &rule.Severity, &validationMessage,
		&rule.AutoReject, &reason, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return models.ValidationRule{}, err
	}

	rule.PositionFieldPath = fromNullString(path)
	rule.RejectionReason = fromNullString(reason)
	rule.ValidationMessage = validationMessage.String

	if err := unmarshalJSONB(comparisonValue, &rule.ComparisonValue); err != nil {
		return models.ValidationRule{}, err
	}

	return rule, nil
}

func closeRows(ctx context.Context, p *Persistence, rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		p.logger.ErrorContext(ctx, "failed to close rows", "error", err)
	}
}
