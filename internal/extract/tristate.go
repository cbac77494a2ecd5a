package extract

import (
	"strings"

	"github.com/jonesrussell/gotenders/internal/domain"
)

// Affirmative and negative tokens observed in detail fields. Anything else
// is Unknown, never No; the source markup is not trusted.
var (
	affirmativeTokens = map[string]struct{}{
		"yes": {}, "y": {}, "true": {},
	}
	negativeTokens = map[string]struct{}{
		"no": {}, "n": {}, "false": {}, "none": {}, "n/a": {},
	}
)

// ParseTriState maps a free-text yes/no field onto a tri-state value.
func ParseTriState(raw string) domain.TriState {
	token := strings.ToLower(strings.TrimSpace(raw))
	if _, ok := affirmativeTokens[token]; ok {
		return domain.Yes
	}
	if _, ok := negativeTokens[token]; ok {
		return domain.No
	}
	return domain.Unknown
}

// ParseESubmission maps the listing's e-submission cell onto a tri-state.
// The cell renders a tick glyph for yes and a cross or nothing for no;
// an empty cell means the tick is absent, not that the value is missing.
func ParseESubmission(raw string) domain.TriState {
	cell := strings.TrimSpace(raw)
	lower := strings.ToLower(cell)
	switch {
	case cell == "":
		return domain.No
	case strings.Contains(cell, "✔"), strings.Contains(lower, "tick"):
		return domain.Yes
	case strings.Contains(lower, "x"), strings.Contains(cell, "✗"):
		return domain.No
	default:
		return ParseTriState(cell)
	}
}
