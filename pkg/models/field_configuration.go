package models

import (
	"fmt"
	"time"
)

// FieldVisibility controls how a custom field behaves on a specific stage.
type FieldVisibility string

const (
	VisibilityVisible  FieldVisibility = "VISIBLE"
	VisibilityHidden   FieldVisibility = "HIDDEN"
	VisibilityReadOnly FieldVisibility = "READ_ONLY"
	VisibilityRequired FieldVisibility = "REQUIRED"
)

func (v FieldVisibility) valid() bool {
	switch v {
	case VisibilityVisible, VisibilityHidden, VisibilityReadOnly, VisibilityRequired:
		return true
	default:
		return false
	}
}

// FieldConfiguration is the per-stage override of a custom field's behavior.
// One record exists per (stage, field) pair.
type FieldConfiguration struct {
	ID            string          `json:"id"`
	StageID       string          `json:"stage_id"        validate:"required"`
	CustomFieldID string          `json:"custom_field_id" validate:"required"`
	Visibility    FieldVisibility `json:"visibility"      validate:"required"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// NewFieldConfiguration returns a configuration for the given (stage, field)
// pair.
func NewFieldConfiguration(id, stageID, customFieldID string, visibility FieldVisibility) (FieldConfiguration, error) {
	if !visibility.valid() {
		return FieldConfiguration{}, fmt.Errorf("invalid field visibility: %q", visibility)
	}

	now := time.Now().UTC()

	return FieldConfiguration{
		ID:            id,
		StageID:       stageID,
		CustomFieldID: customFieldID,
		Visibility:    visibility,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// UpdateVisibility returns a copy with the visibility replaced.
func (c FieldConfiguration) UpdateVisibility(visibility FieldVisibility) (FieldConfiguration, error) {
	if !visibility.valid() {
		return FieldConfiguration{}, fmt.Errorf("invalid field visibility: %q", visibility)
	}

	updated := c
	updated.Visibility = visibility
	updated.UpdatedAt = time.Now().UTC()

	return updated, nil
}

// IsRequired reports whether the field must be filled on this stage.
func (c FieldConfiguration) IsRequired() bool {
	return c.Visibility == VisibilityRequired
}

// IsEditable reports whether the field accepts input on this stage.
func (c FieldConfiguration) IsEditable() bool {
	return c.Visibility == VisibilityVisible || c.Visibility == VisibilityRequired
}

// IsVisible reports whether the field is shown on this stage at all.
func (c FieldConfiguration) IsVisible() bool {
	return c.Visibility != VisibilityHidden
}
