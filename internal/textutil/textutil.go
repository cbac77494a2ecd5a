// Package textutil provides text cleaning helpers for scraped field values.
package textutil

import (
	"regexp"
	"strings"
)

var (
	// controlCharsRegex matches ASCII control characters except tab, LF, CR.
	controlCharsRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	whitespaceRegex   = regexp.MustCompile(`\s+`)
)

// Clean strips control characters, collapses runs of whitespace into a single
// space, and trims the result. Scraped markup routinely carries stray
// newlines and non-printable characters that corrupt spreadsheet cells.
func Clean(text string) string {
	text = controlCharsRegex.ReplaceAllString(text, "")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CleanAll cleans every value of the map in place and returns it.
func CleanAll(fields map[string]string) map[string]string {
	for key, value := range fields {
		fields[key] = Clean(value)
	}
	return fields
}
