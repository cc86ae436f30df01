// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Username trims surrounding whitespace. Case is preserved for display;
// lookups use the folded username_ci field.
func Username(s string) string {
	return strings.TrimSpace(s)
}

// LoginID trims a login identifier, lowercasing it when it is an email.
func LoginID(s string) string {
	s = strings.TrimSpace(s)
	if strings.Contains(s, "@") {
		return strings.ToLower(s)
	}
	return s
}

// Role trims and lowercases a role name.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Variant trims a size or color label.
func Variant(s string) string {
	return strings.TrimSpace(s)
}
