package util

import (
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/supportagent/core"
)

// ValidationError represents parameter validation errors with detailed information.
type ValidationError struct {
	Field   string `json:"field"`   // Field that failed validation
	Value   any    `json:"value"`   // Value that was provided
	Message string `json:"message"` // Human-readable error message
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// ValidateParameters checks args against the declared parameters and returns a
// normalized copy: defaults are filled in for absent optional parameters and
// integral JSON numbers are converted to int64 for integer parameters.
// Undeclared extra fields are passed through untouched.
func ValidateParameters(args map[string]any, params []core.Parameter) (map[string]any, error) {
	out := make(map[string]any, len(args)+len(params))
	for k, v := range args {
		out[k] = v
	}

	for _, p := range params {
		value, exists := out[p.Name]
		if !exists || value == nil {
			if p.Required {
				return nil, &ValidationError{Field: p.Name, Message: "required field is missing"}
			}
			if p.Default == nil {
				delete(out, p.Name)
				continue
			}
			value = p.Default
		}

		normalized, err := checkValue(p, value)
		if err != nil {
			return nil, err
		}
		out[p.Name] = normalized
	}

	return out, nil
}

func checkValue(p core.Parameter, value any) (any, error) {
	switch p.Type {
	case core.TypeString:
		s, ok := value.(string)
		if !ok {
			return nil, typeError(p, value)
		}
		if len(p.Enum) > 0 && !slices.Contains(p.Enum, s) {
			return nil, &ValidationError{Field: p.Name, Value: value, Message: fmt.Sprintf("must be one of %v", p.Enum)}
		}
		return s, nil
	case core.TypeInteger:
		n, ok := toInt64(value)
		if !ok {
			return nil, typeError(p, value)
		}
		if err := checkRange(p, float64(n), value); err != nil {
			return nil, err
		}
		return n, nil
	case core.TypeNumber:
		f, ok := toFloat64(value)
		if !ok {
			return nil, typeError(p, value)
		}
		if err := checkRange(p, f, value); err != nil {
			return nil, err
		}
		return f, nil
	case core.TypeBoolean:
		b, ok := value.(bool)
		if !ok {
			return nil, typeError(p, value)
		}
		return b, nil
	default:
		return value, nil // Unknown types are assumed valid
	}
}

func typeError(p core.Parameter, value any) error {
	return &ValidationError{
		Field:   p.Name,
		Value:   value,
		Message: fmt.Sprintf("expected type %s, got %T", p.Type, value),
	}
}

func checkRange(p core.Parameter, f float64, raw any) error {
	if p.Minimum != nil && f < *p.Minimum {
		return &ValidationError{Field: p.Name, Value: raw, Message: fmt.Sprintf("must be >= %v", *p.Minimum)}
	}
	if p.Maximum != nil && f > *p.Maximum {
		return &ValidationError{Field: p.Name, Value: raw, Message: fmt.Sprintf("must be <= %v", *p.Maximum)}
	}
	return nil
}

// toInt64 accepts Go integer kinds and integral floats (JSON decoding yields float64).
func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case float32:
		return toInt64(float64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return 0, false
		}
		// float64(math.MaxInt64) rounds up to 2^63, itself out of range.
		if v < math.MinInt64 || v >= math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

func toFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	}
	if n, ok := toInt64(value); ok {
		return float64(n), true
	}
	return 0, false
}
