package match

import (
	"time"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
)

// Result holds the partitions computed by Match. Output datasets for any mode
// are assembled from these partitions without re-joining.
type Result struct {
	// Passes has one report per executed key-pair pass.
	Passes []PassReport

	// Warnings collects non-fatal conditions such as empty inputs.
	Warnings []error

	Duration time.Duration

	primary   *dataset.Dataset
	reference *dataset.Dataset
	pairs     []KeyPair
	matches   []Pair
	leftOnly  []int
	rightOnly []int
}

// Counts returns the number of records per outcome.
func (r *Result) Counts() Counts {
	return Counts{
		Matched:   len(r.matches),
		LeftOnly:  len(r.leftOnly),
		RightOnly: len(r.rightOnly),
	}
}

// Matches returns matched pairs in output order.
func (r *Result) Matches() []Pair {
	out := make([]Pair, len(r.matches))
	copy(out, r.matches)
	return out
}

// LeftOnly returns unmatched primary ordinals, ascending.
func (r *Result) LeftOnly() []int { return append([]int(nil), r.leftOnly...) }

// RightOnly returns unmatched reference ordinals, ascending.
func (r *Result) RightOnly() []int { return append([]int(nil), r.rightOnly...) }

// MatchedBy returns the number of matches produced by each key pair, keyed by
// pair name.
func (r *Result) MatchedBy() map[string]int {
	out := make(map[string]int, len(r.pairs))
	for _, p := range r.pairs {
		out[p.Name()] = 0
	}
	for _, m := range r.matches {
		out[r.pairs[m.Pass].Name()]++
	}
	return out
}

// Fields returns the output schema: primary fields, reference fields, then
// match_outcome and match_key.
func (r *Result) Fields() []string {
	fields := append(r.primary.Fields(), r.reference.Fields()...)
	return append(fields, constants.MatchOutcomeColumn, constants.MatchKeyColumn)
}

type output struct {
	labels map[Outcome]string
}

// OutputOption customizes assembled output.
type OutputOption func(*output)

// WithOutcomeLabel writes label instead of the outcome's name.
func WithOutcomeLabel(o Outcome, label string) OutputOption {
	return func(out *output) {
		out.labels[o] = label
	}
}

// Dataset assembles the unified output for mode. Absent side fields are empty.
func (r *Result) Dataset(mode Mode, opts ...OutputOption) (*dataset.Dataset, error) {
	mode, err := ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	out := &output{labels: map[Outcome]string{
		Matched:   string(Matched),
		LeftOnly:  string(LeftOnly),
		RightOnly: string(RightOnly),
	}}
	for _, opt := range opts {
		opt(out)
	}

	np := len(r.primary.Fields())
	nr := len(r.reference.Fields())
	width := np + nr + 2

	n := len(r.matches)
	if mode.includes(LeftOnly) {
		n += len(r.leftOnly)
	}
	if mode.includes(RightOnly) {
		n += len(r.rightOnly)
	}
	rows := make([][]string, 0, n)

	for _, m := range r.matches {
		row := make([]string, width)
		copy(row, r.primary.Record(m.Primary).Values())
		copy(row[np:], r.reference.Record(m.Reference).Values())
		row[width-2] = out.labels[Matched]
		row[width-1] = r.pairs[m.Pass].Name()
		rows = append(rows, row)
	}
	if mode.includes(LeftOnly) {
		for _, i := range r.leftOnly {
			row := make([]string, width)
			copy(row, r.primary.Record(i).Values())
			row[width-2] = out.labels[LeftOnly]
			rows = append(rows, row)
		}
	}
	if mode.includes(RightOnly) {
		for _, i := range r.rightOnly {
			row := make([]string, width)
			copy(row[np:], r.reference.Record(i).Values())
			row[width-2] = out.labels[RightOnly]
			rows = append(rows, row)
		}
	}

	return dataset.New(r.primary.Name()+"+"+r.reference.Name(), r.Fields(), rows)
}
