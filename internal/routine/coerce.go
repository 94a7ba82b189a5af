package routine

import (
	"fmt"
	"strconv"

	"github.com/san-kum/mjbridge/internal/resolve"
)

// toFloat coerces a set_input value to a scalar. Orchestrators deliver
// values as JSON numbers, strings or already-decoded slices; a one-element
// slice is accepted as its scalar.
func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: value %q is not numeric", resolve.ErrInvalidArgument, v)
		}
		return f, nil
	case []float64:
		if len(v) == 1 {
			return v[0], nil
		}
	case []any:
		if len(v) == 1 {
			return toFloat(v[0])
		}
	}
	return 0, fmt.Errorf("%w: cannot use %T as a scalar value", resolve.ErrInvalidArgument, value)
}

// toFloats coerces a set_input value to a full-row assignment.
func toFloats(value any) ([]float64, error) {
	switch v := value.(type) {
	case []float64:
		return v, nil
	case []any:
		out := make([]float64, len(v))
		for i, e := range v {
			f, err := toFloat(e)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: full-row assignment needs an array value, got %T", resolve.ErrInvalidArgument, value)
}
