// Package matcher provides glob and regex pattern matching used to discover
// input files.
package matcher

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// PatternType represents the type of pattern matching to use.
type PatternType int

const (
	// Glob uses shell-style glob patterns (*, ?, []).
	Glob PatternType = iota
	// Regex uses regular expressions.
	Regex
	// Auto detects the pattern type.
	Auto
)

// String returns a string representation of the PatternType.
func (pt PatternType) String() string {
	switch pt {
	case Glob:
		return "glob"
	case Regex:
		return "regex"
	case Auto:
		return "auto"
	default:
		return "unknown"
	}
}

// Matcher matches strings against one compiled pattern. Matchers are
// immutable and safe for concurrent use.
type Matcher interface {
	// Match checks if the input matches the pattern.
	Match(input string) bool
	// Filter returns the inputs that match, in input order.
	Filter(inputs ...string) []string
}

// Options configures matching.
type Options struct {
	// CaseInsensitive makes matching case-insensitive.
	CaseInsensitive bool
	// Anchored adds ^ and $ to regex patterns if not present.
	Anchored bool
}

type matcher struct {
	patternType     PatternType
	compiled        *regexp.Regexp
	glob            string
	caseInsensitive bool
}

// New creates a Matcher for pattern.
func New(patternType PatternType, pattern string, opts ...Options) (Matcher, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}

	m := &matcher{
		patternType:     patternType,
		caseInsensitive: o.CaseInsensitive,
	}
	if patternType == Auto {
		m.patternType = detectPatternType(pattern)
	}

	switch m.patternType {
	case Glob:
		m.glob = pattern
		if o.CaseInsensitive {
			m.glob = strings.ToLower(pattern)
		}
		if _, err := filepath.Match(m.glob, ""); err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
	case Regex:
		expr := pattern
		if o.Anchored {
			if !strings.HasPrefix(expr, "^") {
				expr = "^" + expr
			}
			if !strings.HasSuffix(expr, "$") {
				expr += "$"
			}
		}
		if o.CaseInsensitive && !strings.HasPrefix(expr, "(?i)") {
			expr = "(?i)" + expr
		}
		compiled, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", pattern, err)
		}
		m.compiled = compiled
	default:
		return nil, fmt.Errorf("unsupported pattern type: %v", patternType)
	}
	return m, nil
}

func (m *matcher) Match(input string) bool {
	if m.patternType == Regex {
		return m.compiled.MatchString(input)
	}
	if m.caseInsensitive {
		input = strings.ToLower(input)
	}
	ok, _ := filepath.Match(m.glob, input)
	return ok
}

func (m *matcher) Filter(inputs ...string) []string {
	out := make([]string, 0)
	for _, in := range inputs {
		if m.Match(in) {
			out = append(out, in)
		}
	}
	return out
}

// detectPatternType guesses glob or regex from the metacharacters present.
func detectPatternType(pattern string) PatternType {
	regexIndicators := []string{
		"^", "$", "\\d", "\\w", "\\s", "\\D", "\\W", "\\S",
		"(?:", "(?i)", "{", "}", "+", "|", "(", ")",
	}
	for _, indicator := range regexIndicators {
		if strings.Contains(pattern, indicator) {
			return Regex
		}
	}
	return Glob
}

// Any matches when any of several patterns matches.
type Any []Matcher

// NewAny compiles every pattern with the same type and options.
func NewAny(patternType PatternType, patterns []string, opts ...Options) (Any, error) {
	out := make(Any, 0, len(patterns))
	for _, p := range patterns {
		m, err := New(patternType, p, opts...)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// Match returns true if any pattern matches.
func (a Any) Match(input string) bool {
	for _, m := range a {
		if m.Match(input) {
			return true
		}
	}
	return false
}

// Filter returns the distinct inputs matching any pattern, in input order.
func (a Any) Filter(inputs ...string) []string {
	out := make([]string, 0)
	seen := make(map[string]bool)
	for _, in := range inputs {
		if !seen[in] && a.Match(in) {
			out = append(out, in)
			seen[in] = true
		}
	}
	return out
}

// IsPattern reports whether s contains glob or regex metacharacters.
func IsPattern(s string) bool {
	return strings.ContainsAny(s, "*?[") || detectPatternType(s) == Regex
}
