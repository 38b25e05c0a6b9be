package directory

import "strings"

// NormalizeEmail canonicalizes an email for uniqueness and lookup.
// Trim + lower-case only; provider-specific folding (gmail dots etc.) is
// deliberately not attempted.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeRollNumber canonicalizes a college roll number for uniqueness.
func NormalizeRollNumber(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
