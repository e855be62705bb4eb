package validation

import (
	"fmt"
	"strconv"

	"github.com/talentflow/talentflow/pkg/models"
)

// compareNumeric coerces both operands to float64 and applies the operator.
// Non-coercible operands make the comparison fail rather than raising.
func compareNumeric(operator models.ComparisonOperator, candidate, target any) bool {
	left, okLeft := coerceFloat(candidate)
	right, okRight := coerceFloat(target)

	if !okLeft || !okRight {
		return false
	}

	switch operator {
	case models.OperatorGT:
		return left > right
	case models.OperatorGTE:
		return left >= right
	case models.OperatorLT:
		return left < right
	case models.OperatorLTE:
		return left <= right
	default:
		return false
	}
}

// equal compares operands directly, with a numeric fallback so 95000 and
// 95000.0 compare equal regardless of how JSON decoded them.
func equal(candidate, target any) bool {
	if candidate == target {
		return true
	}

	left, okLeft := coerceFloat(candidate)
	right, okRight := coerceFloat(target)

	if okLeft && okRight {
		return left == right
	}

	return stringify(candidate) == stringify(target)
}

// inRange expects target to be a {min,max} mapping; absent bounds fail the
// check.
func inRange(candidate, target any) bool {
	lower, upper, ok := rangeBounds(target)
	if !ok {
		return false
	}

	value, ok := coerceFloat(candidate)
	if !ok {
		return false
	}

	return value >= lower && value <= upper
}

func rangeBounds(target any) (float64, float64, bool) {
	bounds, ok := target.(map[string]any)
	if !ok {
		return 0, 0, false
	}

	lower, okMin := coerceFloat(bounds["min"])
	upper, okMax := coerceFloat(bounds["max"])

	if !okMin || !okMax {
		return 0, 0, false
	}

	return lower, upper, true
}

func coerceFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}

		return parsed, true
	default:
		return 0, false
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}
