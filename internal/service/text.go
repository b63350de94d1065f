package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxSanitizePasses = 8

// plainText removes markup from user input and returns readable text.
// Sanitize escapes entities, and unescaping can expose markup that was
// entity-encoded, so the two run until the text stops changing. Input still
// changing after maxSanitizePasses is returned in its escaped form.
func plainText(p *bluemonday.Policy, s string) string {
	for i := 0; i < maxSanitizePasses; i++ {
		next := html.UnescapeString(p.Sanitize(s))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	return strings.TrimSpace(p.Sanitize(s))
}
