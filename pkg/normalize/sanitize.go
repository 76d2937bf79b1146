package normalize

import (
	"regexp"
	"strings"
)

var (
	valueReplacer = strings.NewReplacer(
		"\r\n", "_",
		"\r", "_",
		"\n", "_",
		"|", "_",
		`"`, "",
		",", "",
	)

	columnInvalid    = regexp.MustCompile(`[^0-9a-zA-Z_]`)
	columnUnderscore = regexp.MustCompile(`_+`)
)

// SanitizeValue prepares a value for pipe-delimited output: a lone "?" becomes
// empty, line breaks and pipes become underscores, quotes and commas are
// removed.
func SanitizeValue(s string) string {
	if s == "?" {
		return ""
	}
	return valueReplacer.Replace(s)
}

// SanitizeColumn lowercases a column name, replaces characters outside
// [0-9a-zA-Z_] with underscores, collapses repeated underscores and drops a
// trailing underscore.
func SanitizeColumn(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = columnInvalid.ReplaceAllString(name, "_")
	name = columnUnderscore.ReplaceAllString(name, "_")
	return strings.TrimSuffix(name, "_")
}
