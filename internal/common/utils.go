package common

import (
	"strings"
	"unicode"
)

// Slug turns a city name into a single safe path segment:
// lower-cased, spaces as underscores, anything else outside letters,
// digits, '-' and '_' dropped.
func Slug(city string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(city)) {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
