package profile

import (
	"fmt"
	"strings"
)

// Family selects the identifier shape of a business context.
type Family string

const (
	// FamilyEquity builds keys and identities from identifiers alone. Dedup
	// identities carry the identifier's own prefix.
	FamilyEquity Family = "equity"

	// FamilyQualified prepends the Party 1 LEI to every key and identity.
	FamilyQualified Family = "qualified"

	// FamilyCollateral is one-sided: the primary margin state report is
	// ingested and enriched but never keyed, deduplicated or matched.
	FamilyCollateral Family = "collateral"
)

// String implements fmt.Stringer.
func (f Family) String() string { return string(f) }

// IsValid reports whether f is a known family.
func (f Family) IsValid() bool {
	switch f {
	case FamilyEquity, FamilyQualified, FamilyCollateral:
		return true
	}
	return false
}

// UnmarshalText accepts family names case-insensitively.
func (f *Family) UnmarshalText(text []byte) error {
	v := Family(strings.ToLower(strings.TrimSpace(string(text))))
	if !v.IsValid() {
		return fmt.Errorf("unknown family %q (want equity, qualified or collateral)", string(text))
	}
	*f = v
	return nil
}

// UnmarshalYAML implements yaml.InterfaceUnmarshaler.
func (f *Family) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	return f.UnmarshalText([]byte(s))
}

// MarshalText implements encoding.TextMarshaler.
func (f Family) MarshalText() ([]byte, error) {
	return []byte(f), nil
}
