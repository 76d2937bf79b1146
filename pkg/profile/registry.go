// Package profile holds per business context configuration: which columns
// carry identifiers on each side, the identifier family, side prefixes and
// the key-pair priority list. Contexts are loaded from YAML; a default set is
// embedded in the binary.
package profile

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/tradematch/pkg/errors"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Registry is an ordered, validated set of business contexts.
type Registry struct {
	contexts []Context
	index    map[string]int
}

type document struct {
	Contexts []Context `yaml:"contexts"`
}

// Default returns the embedded registry.
func Default() (*Registry, error) {
	return Parse(defaultsYAML, "defaults.yaml")
}

// LoadFile reads a registry from a YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return Parse(data, path)
}

// Parse decodes and validates a registry. source names the input in errors.
func Parse(data []byte, source string) (*Registry, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapParse("yaml", source, err)
	}
	return New(doc.Contexts...)
}

// New validates contexts and builds a registry. Regime and asset class are
// stored uppercased.
func New(contexts ...Context) (*Registry, error) {
	if len(contexts) == 0 {
		return nil, errors.NewConfigurationError("profile", "no business contexts defined", nil)
	}
	r := &Registry{index: make(map[string]int, len(contexts))}
	for _, c := range contexts {
		c.Regime = strings.ToUpper(strings.TrimSpace(c.Regime))
		c.AssetClass = strings.ToUpper(strings.TrimSpace(c.AssetClass))
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.index[c.ID()]; dup {
			return nil, errors.NewConfigurationError("profile", fmt.Sprintf("duplicate business context %s", c.ID()), nil)
		}
		r.index[c.ID()] = len(r.contexts)
		r.contexts = append(r.contexts, c)
	}
	return r, nil
}

// Lookup returns the context for regime and asset class, case-insensitively.
func (r *Registry) Lookup(regime, assetClass string) (Context, error) {
	id := strings.ToUpper(strings.TrimSpace(regime)) + "/" + strings.ToUpper(strings.TrimSpace(assetClass))
	i, ok := r.index[id]
	if !ok {
		return Context{}, errors.NewNotFoundError("business context", id)
	}
	return r.contexts[i], nil
}

// All returns every context in file order.
func (r *Registry) All() []Context {
	return slices.Clone(r.contexts)
}

// Regimes returns the distinct regimes in file order.
func (r *Registry) Regimes() []string {
	var out []string
	for _, c := range r.contexts {
		if !slices.Contains(out, c.Regime) {
			out = append(out, c.Regime)
		}
	}
	return out
}

// AssetClasses returns the asset classes configured for regime.
func (r *Registry) AssetClasses(regime string) []string {
	regime = strings.ToUpper(strings.TrimSpace(regime))
	var out []string
	for _, c := range r.contexts {
		if c.Regime == regime {
			out = append(out, c.AssetClass)
		}
	}
	return out
}
