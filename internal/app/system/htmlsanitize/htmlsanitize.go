// Package htmlsanitize cleans text that arrives from the backend before it
// reaches a template.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// maxMessage caps flash messages taken from backend responses.
const maxMessage = 300

var (
	ugc    = bluemonday.UGCPolicy()
	strict = bluemonday.StrictPolicy()
)

// Sanitize keeps user-generated-content markup (formatting, lists, links)
// and drops scripts, handlers and unsafe URLs.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return ugc.Sanitize(s)
}

// SanitizeToHTML is Sanitize typed for direct use in templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// Message reduces a backend message to plain text for a flash or form
// error. Markup is removed and the result is trimmed and capped.
func Message(s string) string {
	s = html.UnescapeString(strict.Sanitize(s))
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxMessage {
		s = string(r[:maxMessage]) + "…"
	}
	return s
}

// MessageOr returns Message(s), or fallback when nothing is left.
func MessageOr(s, fallback string) string {
	if m := Message(s); m != "" {
		return m
	}
	return fallback
}
