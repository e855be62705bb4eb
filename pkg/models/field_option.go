package models

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// DefaultOptionLanguage is the language assigned to labels normalized from the
// legacy plain-string option format.
const DefaultOptionLanguage = "en"

// FieldOptionLabel is one translation of an option label.
type FieldOptionLabel struct {
	Language string `json:"language" validate:"required"`
	Label    string `json:"label"    validate:"required"`
}

// FieldOption is the canonical form of a selectable option on a choice-type
// custom field. Options configured in the legacy plain-string format are
// normalized into this form with a generated ULID and a single label.
type FieldOption struct {
	ID     string             `json:"id"     validate:"required"`
	Sort   int                `json:"sort"`
	Labels []FieldOptionLabel `json:"labels" validate:"required,min=1,dive"`
}

// Label returns the label for the given language, falling back to the first
// label when the language is not present. Read path for UI rendering, so it
// degrades instead of failing.
func (o FieldOption) Label(language string) string {
	for _, l := range o.Labels {
		if l.Language == language {
			return l.Label
		}
	}

	if len(o.Labels) > 0 {
		return o.Labels[0].Label
	}

	return ""
}

// NewOptionID generates a stable ULID for a field option.
func NewOptionID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// NormalizeOptions converts raw option values, legacy plain strings or
// structured maps, into canonical FieldOptions. Malformed entries fall back to
// a best-effort single-language label rather than failing: this runs on the
// read path consumed by UI rendering.
func NormalizeOptions(raw []any) []FieldOption {
	options := make([]FieldOption, 0, len(raw))

	for i, entry := range raw {
		switch v := entry.(type) {
		case string:
			options = append(options, FieldOption{
				ID:   NewOptionID(),
				Sort: i,
				Labels: []FieldOptionLabel{
					{Language: DefaultOptionLanguage, Label: v},
				},
			})
		case map[string]any:
			options = append(options, optionFromMap(v, i))
		case FieldOption:
			options = append(options, v)
		default:
			// Unknown shape, keep a placeholder so ordering survives.
			options = append(options, FieldOption{
				ID:   NewOptionID(),
				Sort: i,
				Labels: []FieldOptionLabel{
					{Language: DefaultOptionLanguage, Label: ""},
				},
			})
		}
	}

	return options
}

func optionFromMap(v map[string]any, index int) FieldOption {
	option := FieldOption{Sort: index}

	if id, ok := v["id"].(string); ok && id != "" {
		option.ID = id
	} else {
		option.ID = NewOptionID()
	}

	if sort, ok := toInt(v["sort"]); ok {
		option.Sort = sort
	}

	if rawLabels, ok := v["labels"].([]any); ok {
		for _, rawLabel := range rawLabels {
			labelMap, ok := rawLabel.(map[string]any)
			if !ok {
				continue
			}

			language, _ := labelMap["language"].(string)
			label, _ := labelMap["label"].(string)

			if language == "" {
				language = DefaultOptionLanguage
			}

			option.Labels = append(option.Labels, FieldOptionLabel{
				Language: language,
				Label:    label,
			})
		}
	}

	if len(option.Labels) == 0 {
		// Structured entry without usable labels: best-effort fallback to a
		// "label" or "value" key.
		label, _ := v["label"].(string)
		if label == "" {
			label, _ = v["value"].(string)
		}

		option.Labels = []FieldOptionLabel{
			{Language: DefaultOptionLanguage, Label: label},
		}
	}

	return option
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
