// Package keys derives normalized composite identity columns from raw
// identifier fields.
//
// Each source field is cleaned on its own (trimmed, uppercased), the parts are
// concatenated and the result is stripped to [A-Z0-9]. When the shape has a
// qualifier its normalized value is prepended to every non-empty key. A
// declared prefix field is prepended the same way: neither a qualifier nor a
// prefix forms a key on its own.
package keys

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/normalize"
)

// Generator appends derived key columns to datasets.
type Generator struct {
	shape     Shape
	chunkSize int
	logger    *zerolog.Logger
}

// New validates shape and returns a Generator for it.
func New(shape Shape, opts ...Option) (*Generator, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Generator{
		shape:     shape,
		chunkSize: o.chunkSize,
		logger:    o.logger,
	}, nil
}

// Shape returns the generator's key layout.
func (g *Generator) Shape() Shape { return g.shape }

// Generate returns a new dataset with one column per declared key appended.
// Existing fields are untouched; previously derived key columns are
// recomputed in place. All missing source fields are reported together before
// any record is read.
func (g *Generator) Generate(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if err := ds.RequireFields(g.shape.Fields()...); err != nil {
		return nil, err
	}

	start := time.Now()
	n := ds.Len()
	cols := make([]dataset.Column, len(g.shape.Keys))
	for k, decl := range g.shape.Keys {
		cols[k] = dataset.Column{Name: decl.Name, Values: make([]string, n)}
	}

	parts := make([]string, 0, 4)
	windows := 0
	for w := range ds.Windows(g.chunkSize) {
		for i := w.Start; i < w.End; i++ {
			qualifier := ""
			if g.shape.Qualifier != "" {
				qualifier = ds.Value(i, g.shape.Qualifier)
			}
			for k, decl := range g.shape.Keys {
				parts = parts[:0]
				for _, f := range decl.Fields {
					parts = append(parts, ds.Value(i, f))
				}
				if decl.Prefix != "" {
					cols[k].Values[i] = normalize.PrefixedKey(qualifier, ds.Value(i, decl.Prefix), parts...)
					continue
				}
				cols[k].Values[i] = normalize.QualifiedKey(qualifier, parts...)
			}
		}
		windows++
	}

	out, err := ds.WithColumns(cols...)
	if err != nil {
		return nil, err
	}

	g.logger.Debug().
		Str("dataset", ds.Name()).
		Int("records", n).
		Int("keys", len(cols)).
		Int("windows", windows).
		Dur("duration", time.Since(start)).
		Msg("Derived keys generated")

	return out, nil
}

// Key computes a single key outside of a dataset, using the same rules as
// Generate.
func Key(qualifier string, parts ...string) string {
	return normalize.QualifiedKey(qualifier, parts...)
}
