package validate

// HasFields reports whether body is non-empty and contains every key in fields.
// Values are not inspected: a key mapped to null still counts as present.
func HasFields(body map[string]any, fields ...string) bool {
	if len(body) == 0 {
		return false
	}
	for _, field := range fields {
		if _, ok := body[field]; !ok {
			return false
		}
	}
	return true
}
