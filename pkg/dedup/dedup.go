// Package dedup collapses records that share a derived identity.
//
// Deduplication runs in two phases. Phase one walks the dataset in windows
// and derives one identity per record: qualifier, then the first candidate
// whose value is non-empty after normalization (with its prefix). Records
// with no usable candidate get a placeholder built from their position.
// Phase two feeds identities to an Index in ordinal order; the first record
// per identity survives.
package dedup

import (
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/normalize"
)

// Deduplicator reduces a dataset to one survivor per identity.
type Deduplicator struct {
	policy    Policy
	chunkSize int
	index     IndexFactory
	logger    *zerolog.Logger
}

// Stats summarizes one deduplication run.
type Stats struct {
	Input        int `json:"input" yaml:"input"`
	Survivors    int `json:"survivors" yaml:"survivors"`
	Dropped      int `json:"dropped" yaml:"dropped"`
	Placeholders int `json:"placeholders" yaml:"placeholders"`
}

// Result holds the survivors and run statistics.
type Result struct {
	Dataset  *dataset.Dataset
	Stats    Stats
	Duration time.Duration
}

// New validates policy and returns a Deduplicator.
func New(policy Policy, opts ...Option) (*Deduplicator, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Deduplicator{
		policy:    policy,
		chunkSize: o.chunkSize,
		index:     o.index,
		logger:    o.logger,
	}, nil
}

// Policy returns the deduplicator's identity policy.
func (d *Deduplicator) Policy() Policy { return d.policy }

// Identity derives the deduplication identity of one record. The second
// result is false when the record had no usable candidate and received a
// placeholder.
func (d *Deduplicator) Identity(r dataset.Record) (string, bool) {
	for _, c := range d.policy.Candidates {
		value := r.Get(c.Field)
		if normalize.Identifier(value) == "" {
			continue
		}
		qualifier := ""
		if d.policy.Qualifier != "" {
			qualifier = normalize.Identifier(r.Get(d.policy.Qualifier))
		}
		prefix := ""
		if c.Prefix != "" {
			prefix = r.Get(c.Prefix)
		}
		return qualifier + normalize.Key(prefix, value), true
	}
	return Placeholder(r.Ordinal()), false
}

// Placeholder returns the synthetic identity for the record at ordinal.
func Placeholder(ordinal int) string {
	return constants.PlaceholderPrefix + strconv.Itoa(ordinal+1)
}

// Deduplicate returns a new dataset containing only survivors, in original
// order, with the identity in the deduplication_key column.
func (d *Deduplicator) Deduplicate(ds *dataset.Dataset) (*Result, error) {
	if err := ds.RequireFields(d.policy.Fields()...); err != nil {
		return nil, err
	}

	start := time.Now()
	index, err := d.index()
	if err != nil {
		return nil, err
	}
	defer index.Close() //nolint:errcheck

	var (
		stats      = Stats{Input: ds.Len()}
		survivors  []int
		identities []string
	)
	for w := range ds.Windows(d.chunkSize) {
		entries, placeholders := d.derive(ds, w)
		stats.Placeholders += placeholders

		claimed, err := index.Claim(entries)
		if err != nil {
			return nil, err
		}
		for i, first := range claimed {
			if first {
				survivors = append(survivors, entries[i].Ordinal)
				identities = append(identities, entries[i].Identity)
			}
		}
	}

	out, err := ds.Select(survivors).WithColumns(dataset.Column{
		Name:   constants.DeduplicationKeyColumn,
		Values: identities,
	})
	if err != nil {
		return nil, err
	}

	stats.Survivors = out.Len()
	stats.Dropped = stats.Input - stats.Survivors
	result := &Result{Dataset: out, Stats: stats, Duration: time.Since(start)}

	d.logger.Debug().
		Str("dataset", ds.Name()).
		Int("input", stats.Input).
		Int("survivors", stats.Survivors).
		Int("dropped", stats.Dropped).
		Int("placeholders", stats.Placeholders).
		Int("identities", index.Size()).
		Dur("duration", result.Duration).
		Msg("Deduplication complete")

	return result, nil
}

// derive is phase one for a single window.
func (d *Deduplicator) derive(ds *dataset.Dataset, w dataset.Window) ([]Entry, int) {
	entries := make([]Entry, 0, w.Len())
	placeholders := 0
	for i := w.Start; i < w.End; i++ {
		id, ok := d.Identity(ds.Record(i))
		if !ok {
			placeholders++
		}
		entries = append(entries, Entry{Identity: id, Ordinal: i})
	}
	return entries, placeholders
}
