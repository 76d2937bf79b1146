package dataset

import "slices"

// Record is a read-only view of one row of a Dataset.
type Record struct {
	ds      *Dataset
	ordinal int
}

// Ordinal returns the record's zero-based position in its dataset.
func (r Record) Ordinal() int { return r.ordinal }

// Get returns the value of field, or "" when the field does not exist.
func (r Record) Get(field string) string {
	return r.ds.Value(r.ordinal, field)
}

// Lookup returns the value of field and whether the field exists.
func (r Record) Lookup(field string) (string, bool) {
	j, ok := r.ds.index[field]
	if !ok {
		return "", false
	}
	return r.ds.rows[r.ordinal][j], true
}

// Values returns a copy of the record's values in field order.
func (r Record) Values() []string {
	return slices.Clone(r.ds.rows[r.ordinal])
}

// Map returns the record as a field to value map.
func (r Record) Map() map[string]string {
	row := r.ds.rows[r.ordinal]
	m := make(map[string]string, len(row))
	for j, f := range r.ds.fields {
		m[f] = row[j]
	}
	return m
}
