// Package web provides HTTP request and response types for the hiring
// workflow API.
package web

import "github.com/talentflow/talentflow/pkg/models"

// CreateWorkflowRequest represents the request body for creating a new workflow.
type CreateWorkflowRequest struct {
	CompanyID   string         `json:"company_id"  validate:"required"`
	PhaseID     string         `json:"phase_id"`
	Name        string         `json:"name"        validate:"required,min=3"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// UpdateWorkflowRequest represents the request body for updating an existing
// workflow.
type UpdateWorkflowRequest struct {
	Name        string                `json:"name"        validate:"required,min=3"`
	Description string                `json:"description"`
	Status      models.WorkflowStatus `json:"status"      validate:"required,oneof=draft active archived"`
	Metadata    map[string]any        `json:"metadata,omitempty"`
}

// StageRequest represents the request body for creating or updating a stage.
type StageRequest struct {
	Name              string           `json:"name"       validate:"required"`
	StageType         models.StageType `json:"stage_type" validate:"required,oneof=INITIAL STANDARD SUCCESS FAIL"`
	Order             int              `json:"order"      validate:"min=0"`
	AllowSkip         bool             `json:"allow_skip"`
	EstimatedDuration int              `json:"estimated_duration" validate:"min=0"`
	DefaultRoleID     *string          `json:"default_role_id,omitempty"`
	DefaultUserID     *string          `json:"default_user_id,omitempty"`
	EmailTemplateID   *string          `json:"email_template_id,omitempty"`
	DeadlineDays      *int             `json:"deadline_days,omitempty" validate:"omitempty,min=1"`
	EstimatedCost     *float64         `json:"estimated_cost,omitempty" validate:"omitempty,min=0"`
	NextPhaseID       *string          `json:"next_phase_id,omitempty"`
	FieldVisibility   map[string]bool  `json:"field_visibility,omitempty"`
	FieldValidation   map[string]any   `json:"field_validation,omitempty"`
}

// Attributes converts the request into domain stage attributes.
func (r StageRequest) Attributes() models.StageAttributes {
	return models.StageAttributes{
		Name:              r.Name,
		StageType:         r.StageType,
		Order:             r.Order,
		AllowSkip:         r.AllowSkip,
		EstimatedDuration: r.EstimatedDuration,
		DefaultRoleID:     r.DefaultRoleID,
		DefaultUserID:     r.DefaultUserID,
		EmailTemplateID:   r.EmailTemplateID,
		DeadlineDays:      r.DeadlineDays,
		EstimatedCost:     r.EstimatedCost,
		NextPhaseID:       r.NextPhaseID,
		FieldVisibility:   r.FieldVisibility,
		FieldValidation:   r.FieldValidation,
	}
}

// CreateCustomFieldRequest represents the request body for creating a custom
// field.
type CreateCustomFieldRequest struct {
	FieldKey    string           `json:"field_key"   validate:"required"`
	FieldName   string           `json:"field_name"  validate:"required,max=255"`
	FieldType   models.FieldType `json:"field_type"  validate:"required"`
	FieldConfig map[string]any   `json:"field_config,omitempty"`
	OrderIndex  int              `json:"order_index" validate:"min=0"`
}

// UpdateCustomFieldRequest represents the request body for updating a custom
// field. Key and type are immutable.
type UpdateCustomFieldRequest struct {
	FieldName   string         `json:"field_name"  validate:"required,max=255"`
	FieldConfig map[string]any `json:"field_config,omitempty"`
	OrderIndex  int            `json:"order_index" validate:"min=0"`
}

// ConfigureFieldRequest represents the request body for configuring a field on
// a stage.
type ConfigureFieldRequest struct {
	CustomFieldID string                 `json:"custom_field_id" validate:"required"`
	Visibility    models.FieldVisibility `json:"visibility"      validate:"required,oneof=VISIBLE HIDDEN READ_ONLY REQUIRED"`
}

// ValidationRuleRequest represents the request body for creating or updating a
// validation rule.
type ValidationRuleRequest struct {
	CustomFieldID     string                    `json:"custom_field_id"     validate:"required"`
	RuleType          models.RuleType           `json:"rule_type"           validate:"required,oneof=COMPARE_POSITION_FIELD RANGE PATTERN CUSTOM"`
	Operator          models.ComparisonOperator `json:"comparison_operator" validate:"required"`
	PositionFieldPath *string                   `json:"position_field_path,omitempty"`
	ComparisonValue   any                       `json:"comparison_value,omitempty"`
	Severity          models.RuleSeverity       `json:"severity"            validate:"required,oneof=WARNING ERROR"`
	ValidationMessage string                    `json:"validation_message"`
	AutoReject        bool                      `json:"auto_reject"`
	RejectionReason   *string                   `json:"rejection_reason,omitempty"`
}

// Attributes converts the request into domain rule attributes.
func (r ValidationRuleRequest) Attributes() models.RuleAttributes {
	return models.RuleAttributes{
		Operator:          r.Operator,
		PositionFieldPath: r.PositionFieldPath,
		ComparisonValue:   r.ComparisonValue,
		Severity:          r.Severity,
		ValidationMessage: r.ValidationMessage,
		AutoReject:        r.AutoReject,
		RejectionReason:   r.RejectionReason,
	}
}

// CreateCandidateRequest represents the request body for registering a
// candidate application.
type CreateCandidateRequest struct {
	PositionID     string            `json:"position_id"     validate:"required"`
	CompanyID      string            `json:"company_id"      validate:"required"`
	Name           string            `json:"name"            validate:"required"`
	Email          string            `json:"email"           validate:"omitempty,email"`
	EntryPhaseID   string            `json:"entry_phase_id"  validate:"required"`
	PhaseWorkflows map[string]string `json:"phase_workflows" validate:"required"`
	FieldValues    map[string]any    `json:"field_values,omitempty"`
}

// TransitionRequest represents the request body for moving a candidate to a
// stage.
type TransitionRequest struct {
	TargetStageID string         `json:"target_stage_id" validate:"required"`
	FieldValues   map[string]any `json:"field_values,omitempty"`
	PositionData  map[string]any `json:"position_data,omitempty"`
	Comment       string         `json:"comment,omitempty"`
}

// UpdateFieldValuesRequest represents the request body for merging custom
// field values into a candidate.
type UpdateFieldValuesRequest struct {
	FieldValues map[string]any `json:"field_values" validate:"required"`
}
