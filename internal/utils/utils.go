package utils

// Value dereferences p, returning the zero value when p is nil. Backend
// envelopes use optional pointer fields; this keeps call sites nil-safe.
func Value[T any](p *T) T {
	if p == nil {
		return *new(T)
	}
	return *p
}

// ToStringSlice filters a decoded JSON array down to its string elements.
func ToStringSlice(values []any) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			result = append(result, s)
		}
	}
	return result
}
