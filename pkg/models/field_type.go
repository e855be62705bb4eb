package models

// FieldType enumerates the supported custom field types.
type FieldType string

const (
	FieldTypeText        FieldType = "TEXT"
	FieldTypeTextarea    FieldType = "TEXTAREA"
	FieldTypeNumber      FieldType = "NUMBER"
	FieldTypeCurrency    FieldType = "CURRENCY"
	FieldTypeDate        FieldType = "DATE"
	FieldTypeDropdown    FieldType = "DROPDOWN"
	FieldTypeMultiSelect FieldType = "MULTI_SELECT"
	FieldTypeCheckbox    FieldType = "CHECKBOX"
	FieldTypeRadio       FieldType = "RADIO"
	FieldTypeFile        FieldType = "FILE"
	FieldTypeURL         FieldType = "URL"
	FieldTypeEmail       FieldType = "EMAIL"
	FieldTypePhone       FieldType = "PHONE"
)

// AllFieldTypes lists every supported field type.
var AllFieldTypes = []FieldType{
	FieldTypeText,
	FieldTypeTextarea,
	FieldTypeNumber,
	FieldTypeCurrency,
	FieldTypeDate,
	FieldTypeDropdown,
	FieldTypeMultiSelect,
	FieldTypeCheckbox,
	FieldTypeRadio,
	FieldTypeFile,
	FieldTypeURL,
	FieldTypeEmail,
	FieldTypePhone,
}

// IsChoice reports whether the field type renders as a list of options.
func (t FieldType) IsChoice() bool {
	switch t {
	case FieldTypeDropdown, FieldTypeMultiSelect, FieldTypeRadio:
		return true
	default:
		return false
	}
}

func (t FieldType) valid() bool {
	for _, known := range AllFieldTypes {
		if t == known {
			return true
		}
	}

	return false
}
