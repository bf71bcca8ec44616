// Package validate accumulates per-field input errors so handlers
// can return them all at once as a 422 body.
package validate

import (
	"net/mail"
	"regexp"
	"strings"
)

type FieldErrors map[string][]string

func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Any reports whether at least one field failed.
func (e FieldErrors) Any() bool {
	return len(e) > 0
}

func (e FieldErrors) Error() string {
	var b strings.Builder
	b.WriteString("validation failed:")
	for field, messages := range e {
		b.WriteString(" " + field + ": " + strings.Join(messages, ", ") + ";")
	}
	return strings.TrimSuffix(b.String(), ";")
}

// Email reports whether the address parses as a bare RFC 5322
// address (no display name).
func Email(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

var phonePattern = regexp.MustCompile(`^[\d\s\-\+\(\)]+$`)

// Phone accepts digits with common punctuation, at least 10 digits,
// at most 20 characters total.
func Phone(s string) bool {
	if len(s) > 20 || !phonePattern.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 10
}
