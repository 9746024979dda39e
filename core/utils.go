package core

import "strings"

// CleanString strips surrounding whitespace from free-text input. Identity
// fields (usernames, emails) are additionally folded to lower case so
// lookups stay case-insensitive.
func CleanString(s string, lower ...bool) string {
	cleaned := strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		cleaned = strings.ToLower(cleaned)
	}
	return cleaned
}
