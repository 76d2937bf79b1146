package profile

import (
	"fmt"
	"slices"

	"github.com/agentstation/tradematch/pkg/dedup"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/keys"
	"github.com/agentstation/tradematch/pkg/match"
)

// Derived key names.
const (
	KeyUSI      = "matching_key_usi"
	KeyUTI      = "matching_key_uti"
	KeyHUTI     = "matching_key_huti"
	KeyUSIValue = "matching_key_usi_value"
	KeyUTIValue = "matching_key_uti_value"
)

// KeyNames lists every derived key in column order.
func KeyNames() []string {
	return []string{KeyUSI, KeyUTI, KeyHUTI, KeyUSIValue, KeyUTIValue}
}

// Identifiers maps logical identifier names to physical column names.
type Identifiers struct {
	USIPrefix  string `yaml:"usi_prefix" json:"usi_prefix"`
	USIValue   string `yaml:"usi_value" json:"usi_value"`
	UTIPrefix  string `yaml:"uti_prefix" json:"uti_prefix"`
	UTIValue   string `yaml:"uti_value" json:"uti_value"`
	HUTIPrefix string `yaml:"huti_prefix" json:"huti_prefix"`
	HUTIValue  string `yaml:"huti_value" json:"huti_value"`
	Party1LEI  string `yaml:"party1_lei,omitempty" json:"party1_lei,omitempty"`
}

// Side is the per-dataset part of a business context.
type Side struct {
	Identifiers Identifiers `yaml:"identifiers" json:"identifiers"`

	// Prefix is applied to every field before matching.
	Prefix string `yaml:"prefix" json:"prefix"`

	// Dedup enables deduplication for this side.
	Dedup bool `yaml:"dedup" json:"dedup"`

	// SkipHeader and SkipFooter drop lines around the CSV table.
	SkipHeader int `yaml:"skip_header,omitempty" json:"skip_header,omitempty"`
	SkipFooter int `yaml:"skip_footer,omitempty" json:"skip_footer,omitempty"`

	// Rename maps ingested column names to new names before keying.
	Rename map[string]string `yaml:"rename,omitempty" json:"rename,omitempty"`

	// EntityLEIColumns are LEI columns that gain an entity name column when
	// a GLEIF extract is supplied.
	EntityLEIColumns []string `yaml:"entity_lei_columns,omitempty" json:"entity_lei_columns,omitempty"`
}

// Context is the configuration of one business context: a regulatory regime
// and an asset class. Family is the only branch point; everything the engine
// needs is derived from it here.
type Context struct {
	Regime     string `yaml:"regime" json:"regime"`
	AssetClass string `yaml:"asset_class" json:"asset_class"`
	Family     Family `yaml:"family" json:"family"`

	Primary   Side `yaml:"primary" json:"primary"`
	Reference Side `yaml:"reference" json:"reference"`

	// KeyPairs lists derived key names in matching priority order. Each name
	// joins the primary key column to the reference key column.
	KeyPairs []string `yaml:"key_pairs" json:"key_pairs"`
}

// OneSided reports whether the context has no reference side and is never
// matched.
func (c Context) OneSided() bool {
	return c.Family == FamilyCollateral
}

// ID returns "REGIME/ASSET_CLASS".
func (c Context) ID() string {
	return c.Regime + "/" + c.AssetClass
}

// Side returns the side configuration by name.
func (c Context) Side(name string) (Side, error) {
	switch name {
	case "primary":
		return c.Primary, nil
	case "reference":
		return c.Reference, nil
	}
	return Side{}, &errors.ValidationError{Field: "side", Value: name, Message: "must be primary or reference"}
}

// Validate checks the context before any data is read.
func (c Context) Validate() error {
	component := "profile " + c.ID()
	fail := func(format string, args ...any) error {
		return errors.NewConfigurationError(component, fmt.Sprintf(format, args...), nil)
	}

	if c.Regime == "" || c.AssetClass == "" {
		return fail("regime and asset class are required")
	}
	if !c.Family.IsValid() {
		return fail("unknown family %q", c.Family)
	}
	if c.OneSided() {
		if len(c.KeyPairs) > 0 {
			return fail("%s contexts are not matched and take no key pairs", c.Family)
		}
		if c.Primary.SkipHeader < 0 || c.Primary.SkipFooter < 0 {
			return fail("primary side skip counts must not be negative")
		}
		return nil
	}
	if len(c.KeyPairs) == 0 {
		return fail("empty key-pair priority list")
	}
	known := KeyNames()
	for _, k := range c.KeyPairs {
		if !slices.Contains(known, k) {
			return fail("key pair %q is not a derived key", k)
		}
	}
	if c.Primary.Prefix == c.Reference.Prefix {
		return fail("primary and reference prefixes must differ")
	}
	for _, name := range []string{"primary", "reference"} {
		side, _ := c.Side(name)
		if missing := c.missingIdentifiers(side.Identifiers); len(missing) > 0 {
			return fail("%s side does not map %v", name, missing)
		}
		if side.SkipHeader < 0 || side.SkipFooter < 0 {
			return fail("%s side skip counts must not be negative", name)
		}
	}
	return nil
}

func (c Context) missingIdentifiers(ids Identifiers) []string {
	var missing []string
	check := func(name, col string) {
		if col == "" {
			missing = append(missing, name)
		}
	}
	check("usi_prefix", ids.USIPrefix)
	check("usi_value", ids.USIValue)
	check("uti_prefix", ids.UTIPrefix)
	check("uti_value", ids.UTIValue)
	check("huti_prefix", ids.HUTIPrefix)
	check("huti_value", ids.HUTIValue)
	if c.Family == FamilyQualified {
		check("party1_lei", ids.Party1LEI)
	}
	return missing
}

// Shape returns the key layout for a side.
func (c Context) Shape(side Side) keys.Shape {
	ids := side.Identifiers
	shape := keys.Shape{
		Keys: []keys.Declaration{
			{Name: KeyUSI, Prefix: ids.USIPrefix, Fields: []string{ids.USIValue}},
			{Name: KeyUTI, Prefix: ids.UTIPrefix, Fields: []string{ids.UTIValue}},
			{Name: KeyHUTI, Prefix: ids.HUTIPrefix, Fields: []string{ids.HUTIValue}},
			{Name: KeyUSIValue, Fields: []string{ids.USIValue}},
			{Name: KeyUTIValue, Fields: []string{ids.UTIValue}},
		},
	}
	if c.Family == FamilyQualified {
		shape.Qualifier = ids.Party1LEI
	}
	return shape
}

// Policy returns the deduplication policy for a side: harmonized UTI, then
// UTI, then USI.
func (c Context) Policy(side Side) dedup.Policy {
	ids := side.Identifiers
	if c.Family == FamilyEquity {
		return dedup.Policy{Candidates: []dedup.Candidate{
			{Field: ids.HUTIValue, Prefix: ids.HUTIPrefix},
			{Field: ids.UTIValue, Prefix: ids.UTIPrefix},
			{Field: ids.USIValue, Prefix: ids.USIPrefix},
		}}
	}
	return dedup.Policy{
		Qualifier: ids.Party1LEI,
		Candidates: []dedup.Candidate{
			{Field: ids.HUTIValue},
			{Field: ids.UTIValue},
			{Field: ids.USIValue},
		},
	}
}

// Pairs returns the key-pair priority list with side prefixes applied.
func (c Context) Pairs() []match.KeyPair {
	pairs := make([]match.KeyPair, len(c.KeyPairs))
	for i, k := range c.KeyPairs {
		pairs[i] = match.KeyPair{
			Primary:   c.Primary.Prefix + k,
			Reference: c.Reference.Prefix + k,
			Label:     k,
		}
	}
	return pairs
}
