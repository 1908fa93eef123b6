package util

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reSpaces      = regexp.MustCompile(`\s+`)
	reParenthesis = regexp.MustCompile(`\([^)]*\)`)
)

// NormalizeText brings source text to NFC with LF line endings so that
// umlaut keywords and month names compare equal regardless of how the
// exporting tool encoded them.
func NormalizeText(input string) string {
	s := strings.TrimPrefix(input, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return norm.NFC.String(s)
}

// NormalizeSpaces collapses every whitespace run, newlines included, to one space.
func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// SplitLines returns the trimmed, non-empty lines of text.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func StripParentheticals(input string) string {
	return reParenthesis.ReplaceAllString(input, "")
}

func ContainsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func StringPtr(v string) *string {
	return &v
}

func Deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
