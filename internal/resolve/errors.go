package resolve

import "errors"

// Resolution failure kinds. Callers wrap these into their own boundary
// errors; errors.Is against the sentinels classifies the failure.
var (
	// ErrNotFound indicates a named object absent from the model.
	ErrNotFound = errors.New("resolve: object not found")

	// ErrInvalidArgument indicates a missing required field, an unknown
	// object type or property, or misuse of a mocap-only property.
	ErrInvalidArgument = errors.New("resolve: invalid argument")

	// ErrOutOfRange indicates a sub-index outside the declared dimension.
	ErrOutOfRange = errors.New("resolve: index out of range")
)
