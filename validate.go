package goHawcx

import "strings"

// ensureNonEmpty trims value and rejects it when nothing is left.
func ensureNonEmpty(value, field string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", &ValidationError{Field: field}
	}
	return trimmed, nil
}

// optionalTrimmed returns nil for a nil or blank value.
func optionalTrimmed(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
