package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/xeipuuv/gojsonschema"
)

const maxFieldNameLength = 255

var (
	ErrInvalidFieldKey    = errors.New("field key must be a valid identifier")
	ErrFieldNameRequired  = errors.New("field name is required")
	ErrFieldNameTooLong   = errors.New("field name exceeds 255 characters")
	ErrInvalidFieldType   = errors.New("invalid field type")
	ErrInvalidFieldConfig = errors.New("invalid field configuration")
	ErrOptionsRequired    = errors.New("choice fields require at least one option")
	ErrInvalidNumberRange = errors.New("numeric bounds are inconsistent: min must not exceed max")
)

// Per-type JSON schemas for field configuration. The config dict is a tagged
// union discriminated by FieldType; each variant is validated against its own
// schema so a malformed config is rejected with a descriptive error instead of
// being probed ad hoc at read time.
var fieldConfigSchemas = map[FieldType]string{
	FieldTypeText:        `{"type":"object","properties":{"max_length":{"type":"integer","minimum":1},"placeholder":{"type":"string"}},"additionalProperties":false}`,
	FieldTypeTextarea:    `{"type":"object","properties":{"max_length":{"type":"integer","minimum":1},"rows":{"type":"integer","minimum":1}},"additionalProperties":false}`,
	FieldTypeNumber:      `{"type":"object","properties":{"min":{"type":"number"},"max":{"type":"number"},"step":{"type":"number"}},"additionalProperties":false}`,
	FieldTypeCurrency:    `{"type":"object","properties":{"currency":{"type":"string","minLength":3,"maxLength":3},"min":{"type":"number"},"max":{"type":"number"}},"additionalProperties":false}`,
	FieldTypeDate:        `{"type":"object","properties":{"min_date":{"type":"string"},"max_date":{"type":"string"}},"additionalProperties":false}`,
	FieldTypeDropdown:    `{"type":"object","properties":{"options":{"type":"array","minItems":1}},"required":["options"],"additionalProperties":false}`,
	FieldTypeMultiSelect: `{"type":"object","properties":{"options":{"type":"array","minItems":1},"max_selections":{"type":"integer","minimum":1}},"required":["options"],"additionalProperties":false}`,
	FieldTypeCheckbox:    `{"type":"object","properties":{"default":{"type":"boolean"}},"additionalProperties":false}`,
	FieldTypeRadio:       `{"type":"object","properties":{"options":{"type":"array","minItems":1}},"required":["options"],"additionalProperties":false}`,
	FieldTypeFile:        `{"type":"object","properties":{"allowed_extensions":{"type":"array","items":{"type":"string"}},"max_size_mb":{"type":"number","minimum":0}},"additionalProperties":false}`,
	FieldTypeURL:         `{"type":"object","additionalProperties":false}`,
	FieldTypeEmail:       `{"type":"object","additionalProperties":false}`,
	FieldTypePhone:       `{"type":"object","additionalProperties":false}`,
}

// CustomField is a configurable data field attached to a workflow. Immutable:
// updates replace the whole value.
type CustomField struct {
	ID          string         `json:"id"`
	WorkflowID  string         `json:"workflow_id" validate:"required"`
	FieldKey    string         `json:"field_key"   validate:"required"`
	FieldName   string         `json:"field_name"  validate:"required,max=255"`
	FieldType   FieldType      `json:"field_type"  validate:"required"`
	FieldConfig map[string]any `json:"field_config,omitempty"`
	OrderIndex  int            `json:"order_index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NewCustomField validates key, name and the type-specific configuration and
// returns a new field.
func NewCustomField(id, workflowID, fieldKey, fieldName string, fieldType FieldType, fieldConfig map[string]any, orderIndex int) (CustomField, error) {
	if !isIdentifier(fieldKey) {
		return CustomField{}, fmt.Errorf("%w: %q", ErrInvalidFieldKey, fieldKey)
	}

	if fieldName == "" {
		return CustomField{}, ErrFieldNameRequired
	}

	if len(fieldName) > maxFieldNameLength {
		return CustomField{}, ErrFieldNameTooLong
	}

	if !fieldType.valid() {
		return CustomField{}, fmt.Errorf("%w: %q", ErrInvalidFieldType, fieldType)
	}

	if err := validateFieldConfig(fieldType, fieldConfig); err != nil {
		return CustomField{}, err
	}

	now := time.Now().UTC()

	return CustomField{
		ID:          id,
		WorkflowID:  workflowID,
		FieldKey:    fieldKey,
		FieldName:   fieldName,
		FieldType:   fieldType,
		FieldConfig: fieldConfig,
		OrderIndex:  orderIndex,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Update returns a copy of the field with name, config and order replaced.
// Key and type are fixed for the lifetime of the field; the config is
// re-validated against the field type on every update.
func (f CustomField) Update(fieldName string, fieldConfig map[string]any, orderIndex int) (CustomField, error) {
	if fieldName == "" {
		return CustomField{}, ErrFieldNameRequired
	}

	if len(fieldName) > maxFieldNameLength {
		return CustomField{}, ErrFieldNameTooLong
	}

	if err := validateFieldConfig(f.FieldType, fieldConfig); err != nil {
		return CustomField{}, err
	}

	updated := f
	updated.FieldName = fieldName
	updated.FieldConfig = fieldConfig
	updated.OrderIndex = orderIndex
	updated.UpdatedAt = time.Now().UTC()

	return updated, nil
}

// GetOptions returns the option labels for choice fields in the default
// language, in configured order.
func (f CustomField) GetOptions() []string {
	objects := f.GetOptionsAsObjects()
	labels := make([]string, 0, len(objects))

	for _, option := range objects {
		labels = append(labels, option.Label(DefaultOptionLanguage))
	}

	return labels
}

// GetOptionsAsObjects normalizes the configured options, legacy strings or
// structured maps, into canonical FieldOption values. Non-choice fields and
// missing configuration yield an empty slice.
func (f CustomField) GetOptionsAsObjects() []FieldOption {
	if f.FieldConfig == nil {
		return nil
	}

	raw, ok := f.FieldConfig["options"].([]any)
	if !ok {
		return nil
	}

	return NormalizeOptions(raw)
}

func validateFieldConfig(fieldType FieldType, config map[string]any) error {
	schemaSource, ok := fieldConfigSchemas[fieldType]
	if !ok {
		return fmt.Errorf("%w: no schema for field type %q", ErrInvalidFieldConfig, fieldType)
	}

	if config == nil {
		if fieldType.IsChoice() {
			return ErrOptionsRequired
		}

		return nil
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaSource),
		gojsonschema.NewGoLoader(config),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFieldConfig, err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}

		return fmt.Errorf("%w for %s: %s", ErrInvalidFieldConfig, fieldType, strings.Join(details, "; "))
	}

	return validateConfigBounds(fieldType, config)
}

// validateConfigBounds applies the structural checks the schema cannot
// express: consistent numeric bounds and non-empty options.
func validateConfigBounds(fieldType FieldType, config map[string]any) error {
	if fieldType == FieldTypeNumber || fieldType == FieldTypeCurrency {
		minValue, hasMin := toFloat(config["min"])
		maxValue, hasMax := toFloat(config["max"])

		if hasMin && hasMax && minValue > maxValue {
			return ErrInvalidNumberRange
		}
	}

	if fieldType.IsChoice() {
		options, ok := config["options"].([]any)
		if !ok || len(options) == 0 {
			return ErrOptionsRequired
		}
	}

	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// isIdentifier reports whether s is a valid identifier: a letter or underscore
// followed by letters, digits or underscores.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}

		if i > 0 && unicode.IsDigit(r) {
			continue
		}

		return false
	}

	return true
}
