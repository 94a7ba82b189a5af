package resolve

import (
	"strconv"
	"strings"
)

// Argument keys recognized in a step's argument map.
const (
	KeyObjectType = "object_type"
	KeyObjectName = "object_name"
	KeyProperty   = "property"
	KeyIndex      = "index"
)

// Spec is an address specification: the validated form of the string-keyed
// argument map a step carries. It is parsed once at the resolver boundary;
// downstream code never looks at raw maps.
type Spec struct {
	ObjectType string
	ObjectName string
	Property   string
	Index      *int // nil when absent or unparseable
}

// ParseSpec extracts a Spec from a step argument map. objectType and
// property fall back to the given defaults when absent; both are
// case-insensitive. A malformed index is treated as absent rather than an
// error.
func ParseSpec(args map[string]string, defaultType, defaultProperty string) Spec {
	return Spec{
		ObjectType: lowerOr(args[KeyObjectType], defaultType),
		ObjectName: args[KeyObjectName],
		Property:   lowerOr(args[KeyProperty], defaultProperty),
		Index:      IntOrNone(args[KeyIndex]),
	}
}

func lowerOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return strings.ToLower(strings.TrimSpace(s))
}

// IntOrNone parses a non-negative integer, returning nil on any failure.
func IntOrNone(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || v < 0 {
		return nil
	}
	return &v
}

// IntOrDefault parses an integer with a fallback and a lower clamp.
func IntOrDefault(s string, def, min int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		v = def
	}
	if v < min {
		v = min
	}
	return v
}
