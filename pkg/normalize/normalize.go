// Package normalize holds the string-cleaning primitives shared by key
// generation, deduplication and output writing.
//
// Identifier normalization is: trim whitespace, uppercase, then strip every
// character outside [A-Z0-9]. All functions are pure.
package normalize

import (
	"strings"
)

// Clean trims surrounding whitespace and uppercases s.
func Clean(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Alnum uppercases s and drops every byte outside [A-Z0-9].
func Alnum(s string) string {
	s = strings.ToUpper(s)

	// Fast path: already normalized.
	clean := true
	for i := 0; i < len(s); i++ {
		if !isAlnum(s[i]) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if isAlnum(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Identifier normalizes a single raw identifier value.
func Identifier(s string) string {
	return Alnum(Clean(s))
}

// Key builds a derived key from raw parts. Each part is cleaned on its own,
// the parts are concatenated, and the result is stripped to [A-Z0-9].
func Key(parts ...string) string {
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return Identifier(parts[0])
	}

	var b strings.Builder
	for _, p := range parts {
		b.WriteString(Clean(p))
	}
	return Alnum(b.String())
}

// QualifiedKey builds a key from parts prefixed by qualifier. When every part
// normalizes to empty the key is empty: a qualifier alone never identifies a
// record.
func QualifiedKey(qualifier string, parts ...string) string {
	body := Key(parts...)
	if body == "" {
		return ""
	}
	if qualifier == "" {
		return body
	}
	return Identifier(qualifier) + body
}

// PrefixedKey builds a qualified key from a prefix and value parts. The key is
// empty when the value parts normalize to empty, whatever the prefix holds.
func PrefixedKey(qualifier, prefix string, parts ...string) string {
	if Key(parts...) == "" {
		return ""
	}
	return QualifiedKey(qualifier, append([]string{prefix}, parts...)...)
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func isAlnum(c byte) bool {
	return ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
