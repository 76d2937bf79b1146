package dedup

import (
	"fmt"
	"slices"

	"github.com/agentstation/tradematch/pkg/errors"
)

// Candidate is one identity source. Field holds the identifier value; Prefix,
// when set, names a field whose value is prepended to it (for example the
// identifier family prefix of equity trades).
type Candidate struct {
	Field  string `yaml:"field" json:"field"`
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
}

// Policy lists candidates most authoritative first, plus an optional
// qualifier field prepended to every identity.
type Policy struct {
	Candidates []Candidate `yaml:"candidates" json:"candidates"`
	Qualifier  string      `yaml:"qualifier,omitempty" json:"qualifier,omitempty"`
}

// Fields returns every raw field the policy reads, without duplicates.
func (p Policy) Fields() []string {
	var fields []string
	add := func(f string) {
		if f != "" && !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}
	add(p.Qualifier)
	for _, c := range p.Candidates {
		add(c.Prefix)
		add(c.Field)
	}
	return fields
}

// Validate checks the policy before any record is processed.
func (p Policy) Validate() error {
	if len(p.Candidates) == 0 {
		return errors.NewConfigurationError("dedup", "no identity candidates", nil)
	}
	for i, c := range p.Candidates {
		if c.Field == "" {
			return errors.NewConfigurationError("dedup", fmt.Sprintf("candidate %d has no field", i), nil)
		}
	}
	return nil
}
