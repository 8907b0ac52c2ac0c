package textutil

import (
	"html"
	"regexp"
	"strings"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)
	floatPattern = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+$`)
)

// CleanStr trims s, resolves HTML escapes and removes control characters.
func CleanStr(s string) string {
	return controlChars.ReplaceAllString(html.UnescapeString(strings.TrimSpace(s)), "")
}

// IsFloatRegex reports whether s is a plain decimal number such as "-1.5" or ".5".
func IsFloatRegex(s string) bool {
	return floatPattern.MatchString(s)
}

// SplitStringByMultiMarkers splits content on any of markers, trims each
// piece and drops empty ones. With no markers the content is returned whole.
func SplitStringByMultiMarkers(content string, markers []string) []string {
	if len(markers) == 0 {
		return []string{content}
	}

	quoted := make([]string, len(markers))
	for i, m := range markers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	parts := regexp.MustCompile(strings.Join(quoted, "|")).Split(content, -1)

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
