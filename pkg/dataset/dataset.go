// Package dataset provides the immutable tabular model passed between the
// reconciliation stages.
//
// A Dataset is an ordered sequence of records sharing one field list. Every
// value is text. Rows are never modified after construction: each transform
// returns a new Dataset, so stages cannot observe each other's changes.
package dataset

import (
	"fmt"
	"iter"
	"slices"

	"github.com/agentstation/tradematch/pkg/errors"
)

// Dataset is an immutable, ordered collection of records.
type Dataset struct {
	name   string
	fields []string
	index  map[string]int
	rows   [][]string
}

// Column is a named column of values, one per record.
type Column struct {
	Name   string
	Values []string
}

// New creates a dataset from field names and rows. Rows are copied. Every
// row must have exactly len(fields) values and field names must be unique.
func New(name string, fields []string, rows [][]string) (*Dataset, error) {
	ds, err := newEmpty(name, fields)
	if err != nil {
		return nil, err
	}
	ds.rows = make([][]string, len(rows))
	for i, row := range rows {
		if len(row) != len(fields) {
			return nil, &errors.ValidationError{
				Field:   name,
				Value:   i,
				Message: fmt.Sprintf("row %d has %d values, expected %d", i, len(row), len(fields)),
			}
		}
		ds.rows[i] = slices.Clone(row)
	}
	return ds, nil
}

// Empty creates a dataset with the given fields and no records.
func Empty(name string, fields []string) (*Dataset, error) {
	return newEmpty(name, fields)
}

// FromRecords creates a dataset from maps. Fields absent from a map are
// stored as empty strings; keys not listed in fields are ignored.
func FromRecords(name string, fields []string, records []map[string]string) (*Dataset, error) {
	ds, err := newEmpty(name, fields)
	if err != nil {
		return nil, err
	}
	ds.rows = make([][]string, len(records))
	for i, rec := range records {
		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = rec[f]
		}
		ds.rows[i] = row
	}
	return ds, nil
}

// MustNew is like New but panics on error. Intended for tests and fixtures.
func MustNew(name string, fields []string, rows [][]string) *Dataset {
	ds, err := New(name, fields, rows)
	if err != nil {
		panic(err)
	}
	return ds
}

func newEmpty(name string, fields []string) (*Dataset, error) {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		if f == "" {
			return nil, errors.NewValidationError(name, i, "empty field name")
		}
		if _, dup := index[f]; dup {
			return nil, errors.NewValidationError(name, f, fmt.Sprintf("duplicate field %q", f))
		}
		index[f] = i
	}
	return &Dataset{
		name:   name,
		fields: slices.Clone(fields),
		index:  index,
	}, nil
}

// derive builds a dataset over already-owned rows without copying them.
func (d *Dataset) derive(fields []string, rows [][]string) *Dataset {
	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f] = i
	}
	return &Dataset{name: d.name, fields: fields, index: index, rows: rows}
}

// Name returns the dataset name used in logs and error reports.
func (d *Dataset) Name() string { return d.name }

// WithName returns the same records under another name.
func (d *Dataset) WithName(name string) *Dataset {
	out := d.derive(d.fields, d.rows)
	out.name = name
	return out
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.rows) }

// Fields returns a copy of the field names in order.
func (d *Dataset) Fields() []string { return slices.Clone(d.fields) }

// Has reports whether the dataset has a field.
func (d *Dataset) Has(field string) bool {
	_, ok := d.index[field]
	return ok
}

// Missing returns the fields that the dataset does not have, in argument order
// and without duplicates.
func (d *Dataset) Missing(fields ...string) []string {
	var missing []string
	for _, f := range fields {
		if !d.Has(f) && !slices.Contains(missing, f) {
			missing = append(missing, f)
		}
	}
	return missing
}

// RequireFields returns a MissingFieldError listing every absent field, or nil.
func (d *Dataset) RequireFields(fields ...string) *errors.MissingFieldError {
	missing := d.Missing(fields...)
	if len(missing) == 0 {
		return nil
	}
	return errors.NewMissingFieldError(d.name, missing)
}

// Value returns the value of field for the record at ordinal i. Unknown fields
// read as empty.
func (d *Dataset) Value(i int, field string) string {
	j, ok := d.index[field]
	if !ok {
		return ""
	}
	return d.rows[i][j]
}

// Record returns a read-only view of the record at ordinal i.
func (d *Dataset) Record(i int) Record {
	return Record{ds: d, ordinal: i}
}

// All iterates records in order.
func (d *Dataset) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i := range d.rows {
			if !yield(i, d.Record(i)) {
				return
			}
		}
	}
}

// Column returns a copy of one column's values.
func (d *Dataset) Column(field string) ([]string, bool) {
	j, ok := d.index[field]
	if !ok {
		return nil, false
	}
	out := make([]string, len(d.rows))
	for i, row := range d.rows {
		out[i] = row[j]
	}
	return out, true
}

// Select returns a dataset holding the records at the given ordinals, in the
// order given.
func (d *Dataset) Select(ordinals []int) *Dataset {
	rows := make([][]string, len(ordinals))
	for i, o := range ordinals {
		rows[i] = d.rows[o]
	}
	return d.derive(d.fields, rows)
}

// Slice returns records [start, end).
func (d *Dataset) Slice(start, end int) *Dataset {
	return d.derive(d.fields, d.rows[start:end:end])
}

// WithColumns returns a dataset with the given columns set. A column whose
// name already exists replaces that column in place; new columns are appended
// in argument order.
func (d *Dataset) WithColumns(cols ...Column) (*Dataset, error) {
	fields := slices.Clone(d.fields)
	positions := make([]int, len(cols))
	for k, c := range cols {
		if c.Name == "" {
			return nil, errors.NewValidationError(d.name, k, "empty column name")
		}
		if len(c.Values) != len(d.rows) {
			return nil, errors.NewValidationError(c.Name, len(c.Values),
				fmt.Sprintf("column has %d values, dataset %s has %d records", len(c.Values), d.name, len(d.rows)))
		}
		if j := slices.Index(fields, c.Name); j >= 0 {
			positions[k] = j
			continue
		}
		positions[k] = len(fields)
		fields = append(fields, c.Name)
	}

	rows := make([][]string, len(d.rows))
	for i, src := range d.rows {
		row := make([]string, len(fields))
		copy(row, src)
		for k, c := range cols {
			row[positions[k]] = c.Values[i]
		}
		rows[i] = row
	}
	return d.derive(fields, rows), nil
}

// Prefix returns a dataset whose field names all carry prefix.
func (d *Dataset) Prefix(prefix string) *Dataset {
	if prefix == "" {
		return d
	}
	fields := make([]string, len(d.fields))
	for i, f := range d.fields {
		fields[i] = prefix + f
	}
	return d.derive(fields, d.rows)
}

// Rename returns a dataset with fields renamed according to mapping. Fields
// not in mapping keep their names. A rename that produces a duplicate field
// name is an error.
func (d *Dataset) Rename(mapping map[string]string) (*Dataset, error) {
	fields := make([]string, len(d.fields))
	seen := make(map[string]bool, len(d.fields))
	for i, f := range d.fields {
		if to, ok := mapping[f]; ok && to != "" {
			f = to
		}
		if seen[f] {
			return nil, errors.NewValidationError(d.name, f, fmt.Sprintf("rename produces duplicate field %q", f))
		}
		seen[f] = true
		fields[i] = f
	}
	return d.derive(fields, d.rows), nil
}

// Project returns a dataset with exactly the given fields in the given order.
// Fields the dataset lacks are filled with empty values.
func (d *Dataset) Project(fields []string) (*Dataset, error) {
	out, err := newEmpty(d.name, fields)
	if err != nil {
		return nil, err
	}
	src := make([]int, len(fields))
	for j, f := range fields {
		if k, ok := d.index[f]; ok {
			src[j] = k
		} else {
			src[j] = -1
		}
	}
	out.rows = make([][]string, len(d.rows))
	for i, row := range d.rows {
		r := make([]string, len(fields))
		for j, k := range src {
			if k >= 0 {
				r[j] = row[k]
			}
		}
		out.rows[i] = r
	}
	return out, nil
}

// Concat appends datasets in order. The result's fields are the union of all
// inputs' fields in first-seen order; absent values are empty.
func Concat(name string, parts ...*Dataset) *Dataset {
	var fields []string
	for _, p := range parts {
		for _, f := range p.fields {
			if !slices.Contains(fields, f) {
				fields = append(fields, f)
			}
		}
	}
	out := (&Dataset{name: name}).derive(fields, nil)
	for _, p := range parts {
		projected, _ := p.Project(fields)
		out.rows = append(out.rows, projected.rows...)
	}
	return out
}
