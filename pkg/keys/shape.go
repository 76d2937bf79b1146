package keys

import (
	"fmt"
	"slices"

	"github.com/agentstation/tradematch/pkg/errors"
)

// Declaration names one derived key and the raw fields it is built from, in
// concatenation order. Prefix, when set, is a raw field placed before Fields
// that only contributes when Fields hold a value.
type Declaration struct {
	Name   string   `yaml:"name" json:"name"`
	Prefix string   `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Fields []string `yaml:"fields" json:"fields"`
}

// Sources returns the raw fields the key reads, prefix first.
func (d Declaration) Sources() []string {
	if d.Prefix == "" {
		return d.Fields
	}
	return append([]string{d.Prefix}, d.Fields...)
}

// Shape is the full key layout for one business context.
type Shape struct {
	// Qualifier is an optional raw field prepended to every key, such as the
	// reporting counterparty LEI. Empty means unqualified keys.
	Qualifier string `yaml:"qualifier,omitempty" json:"qualifier,omitempty"`

	// Keys are the derived keys to append, in column order.
	Keys []Declaration `yaml:"keys" json:"keys"`
}

// Names returns the derived column names in declaration order.
func (s Shape) Names() []string {
	names := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		names[i] = k.Name
	}
	return names
}

// Fields returns every raw field the shape reads, qualifier first, without
// duplicates.
func (s Shape) Fields() []string {
	var fields []string
	if s.Qualifier != "" {
		fields = append(fields, s.Qualifier)
	}
	for _, k := range s.Keys {
		for _, f := range k.Sources() {
			if !slices.Contains(fields, f) {
				fields = append(fields, f)
			}
		}
	}
	return fields
}

// Validate checks that the shape can produce keys.
func (s Shape) Validate() error {
	if len(s.Keys) == 0 {
		return errors.NewConfigurationError("keys", "no key declarations", nil)
	}

	raw := s.Fields()
	seen := make(map[string]bool, len(s.Keys))
	for i, k := range s.Keys {
		if k.Name == "" {
			return errors.NewConfigurationError("keys", fmt.Sprintf("key %d has no name", i), nil)
		}
		if seen[k.Name] {
			return errors.NewConfigurationError("keys", fmt.Sprintf("duplicate key %q", k.Name), nil)
		}
		seen[k.Name] = true

		if len(k.Fields) == 0 {
			return errors.NewConfigurationError("keys", fmt.Sprintf("key %q has no source fields", k.Name), nil)
		}
		for _, f := range k.Fields {
			if f == "" {
				return errors.NewConfigurationError("keys", fmt.Sprintf("key %q has a blank source field", k.Name), nil)
			}
		}
		// A key overwriting one of its own inputs would not be re-runnable.
		if slices.Contains(raw, k.Name) {
			return errors.NewConfigurationError("keys", fmt.Sprintf("key %q shadows a source field", k.Name), nil)
		}
	}
	return nil
}
