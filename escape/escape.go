// Package escape shields substitution tokens from machine translation.
//
// Placeholder tokens (%{name}, {name}) and literal backslash escape
// sequences (\n, \r, \t) must survive translation byte-for-byte, so Escape
// wraps each of them in a no-translate marker span that translation APIs
// pass through unchanged:
//
//	Hello %{name}!  →  Hello <span class="notranslate">%{name}</span>!
//
// Unescape strips the markers after translation and reverses any HTML
// entity encoding the translator introduced, restoring the wrapped spans
// exactly as they were passed in.
package escape

import (
	"html"
	"regexp"
)

const (
	markerOpen  = `<span class="notranslate">`
	markerClose = `</span>`
)

// protectedPattern matches, in one pass, either a maximal run of backslash
// escape sequences or a single brace-delimited placeholder (optionally
// %-prefixed). (?s) lets a placeholder span encoded newlines.
var protectedPattern = regexp.MustCompile(`(?s)(?:\\[nrt])+|%?\{.*?\}`)

// markerPattern matches a no-translate span and captures its content.
var markerPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(markerOpen) + `(.*?)` + regexp.QuoteMeta(markerClose))

// Escape wraps every placeholder token and escape-sequence run in a
// no-translate marker. Text outside matches is left untouched.
func Escape(s string) string {
	return protectedPattern.ReplaceAllStringFunc(s, func(match string) string {
		return markerOpen + match + markerClose
	})
}

// Unescape removes no-translate markers, keeping their content, and decodes
// HTML entities the translation step may have introduced (&amp; → & etc.).
func Unescape(s string) string {
	s = html.UnescapeString(s)
	return markerPattern.ReplaceAllString(s, "$1")
}
