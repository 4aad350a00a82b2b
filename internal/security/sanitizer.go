// Package security holds input hygiene helpers.
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from free-text fields shown in the admin panel.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer returns a sanitizer that allows no HTML at all.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text removes tags and returns plain, trimmed text.
func (s *Sanitizer) Text(input string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(input)))
}
