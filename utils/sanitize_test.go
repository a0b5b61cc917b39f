package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var filenameChars = regexp.MustCompile(`^[A-Za-z0-9 _-]*$`)

func isSubsequence(sub, s string) bool {
	i := 0
	for j := 0; j < len(s) && i < len(sub); j++ {
		if s[j] == sub[i] {
			i++
		}
	}
	return i == len(sub)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trademark", "Mega Miki™ II", "Mega Miki II"},
		{"empty", "", ""},
		{"only symbols", "™®/\\:*?", ""},
		{"trims spaces", "  Red Shad  ", "Red Shad"},
		{"keeps hyphen and underscore", "Blue_Gill-2", "Blue_Gill-2"},
		{"drops path separators", "../etc/passwd", "etcpasswd"},
		{"drops newlines", "Red\nShad", "RedShad"},
		{"non ascii letters", "Crème Brûlée", "Crme Brle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.input))
		})
	}
}

func TestSanitizeFilename_Properties(t *testing.T) {
	inputs := []string{
		"Mega Miki™ II",
		"  \t spaced\t ",
		"a/b\\c:d*e?f\"g<h>i|j",
		"日本語 Lure 3.5\"",
		"---___   ",
		"Hydra Evolution (Green Pumpkin)",
	}

	for _, input := range inputs {
		out := SanitizeFilename(input)
		assert.Regexp(t, filenameChars, out, "input %q", input)
		assert.True(t, isSubsequence(out, input), "%q is not a subsequence of %q", out, input)
		assert.Equal(t, out, SanitizeFilename(out), "not idempotent for %q", input)
	}
}
