package match

import (
	"strings"

	"github.com/agentstation/tradematch/pkg/errors"
)

// KeyPair joins one primary field to one reference field.
type KeyPair struct {
	Primary   string `yaml:"primary" json:"primary"`
	Reference string `yaml:"reference" json:"reference"`
	// Label names the pair in output and metrics. Defaults to Name().
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
}

// Name returns the label, or the field names when no label is set.
func (p KeyPair) Name() string {
	switch {
	case p.Label != "":
		return p.Label
	case p.Primary == p.Reference:
		return p.Primary
	default:
		return p.Primary + "=" + p.Reference
	}
}

// Outcome classifies a record in the unified output.
type Outcome string

// Match outcomes.
const (
	Matched   Outcome = "matched"
	LeftOnly  Outcome = "left-only"
	RightOnly Outcome = "right-only"
)

// String implements fmt.Stringer.
func (o Outcome) String() string { return string(o) }

// Mode selects which outcome groups are assembled into the output dataset.
type Mode string

// Output modes.
const (
	ModeLeft  Mode = "left"  // matched + left-only
	ModeRight Mode = "right" // matched + right-only
	ModeInner Mode = "inner" // matched only
	ModeFull  Mode = "full"  // all three
)

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ModeLeft, ModeRight, ModeInner, ModeFull}
}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case ModeLeft, ModeRight, ModeInner, ModeFull:
		return m, nil
	}
	return "", &errors.ValidationError{
		Field:   "mode",
		Value:   s,
		Message: "must be one of left, right, inner, full",
	}
}

// includes reports whether the mode emits outcome o.
func (m Mode) includes(o Outcome) bool {
	switch o {
	case Matched:
		return true
	case LeftOnly:
		return m == ModeLeft || m == ModeFull
	case RightOnly:
		return m == ModeRight || m == ModeFull
	}
	return false
}

// Pair is one matched primary and reference record, by ordinal.
type Pair struct {
	Primary   int
	Reference int
	// Pass is the index of the key pair that produced the match.
	Pass int
}

// Counts is the number of records per outcome.
type Counts struct {
	Matched   int `json:"matched" yaml:"matched"`
	LeftOnly  int `json:"left_only" yaml:"left_only"`
	RightOnly int `json:"right_only" yaml:"right_only"`
}

// Total is the number of rows in a full output.
func (c Counts) Total() int {
	return c.Matched + c.LeftOnly + c.RightOnly
}
