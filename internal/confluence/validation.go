package confluence

// Limit bounds and defaults per operation
const (
	MinLimit = 1

	MaxSpacesLimit   = 100
	MaxSearchLimit   = 50
	MaxChildrenLimit = 100

	DefaultSpacesLimit   = 25
	DefaultSearchLimit   = 10
	DefaultChildrenLimit = 25

	DefaultBodyFormat = "storage"
)

// ClampLimit forces limit into [MinLimit, ceiling].
func ClampLimit(limit, ceiling int) int {
	return max(MinLimit, min(limit, ceiling))
}

// effectiveLimit applies the default when the caller omitted limit, then clamps.
func effectiveLimit(limit *int, def, ceiling int) int {
	if limit == nil {
		return ClampLimit(def, ceiling)
	}
	return ClampLimit(*limit, ceiling)
}

// truthy reports whether a decoded JSON value counts as present for
// fallback purposes: null, false, zero, "" and empty containers do not.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return true
	}
}

// firstTruthy returns a when it is truthy, otherwise b.
func firstTruthy(a, b any) any {
	if truthy(a) {
		return a
	}
	return b
}
