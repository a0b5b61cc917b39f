package utils

import "strings"

// SanitizeFilename keeps ASCII letters, digits, spaces, hyphens and
// underscores from text, in order, and trims surrounding spaces.
func SanitizeFilename(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if isFilenameRune(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func isFilenameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == ' ', r == '-', r == '_':
		return true
	}
	return false
}
