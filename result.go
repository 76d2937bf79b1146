package tradematch

import (
	"fmt"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/dedup"
	"github.com/agentstation/tradematch/pkg/match"
	"github.com/agentstation/tradematch/pkg/profile"
)

// Result represents the outcome of one reconciliation.
type Result struct {
	Context profile.Context

	Primary   *SideResult
	Reference *SideResult
	Match     *match.Result

	// Warnings are non-fatal, such as empty inputs.
	Warnings []error

	Metadata ResultMetadata
}

// SideResult describes one side after key generation and deduplication.
type SideResult struct {
	Side     string
	Ingested int
	Keyed    int
	// Dedup is nil when deduplication was disabled for the side.
	Dedup *dedup.Stats
	// Dataset is the keyed (and deduplicated) side, before prefixing.
	Dataset *dataset.Dataset
}

// ResultMetadata contains timing information.
type ResultMetadata struct {
	StartTime utc.Time
	EndTime   utc.Time
	Duration  time.Duration

	// monotonic start for Duration
	started time.Time
}

// NewResult creates a result with its start time set.
func NewResult(pc profile.Context) *Result {
	now := time.Now()
	return &Result{
		Context:  pc,
		Warnings: []error{},
		Metadata: ResultMetadata{StartTime: utc.New(now), started: now},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	end := time.Now()
	r.Metadata.EndTime = utc.New(end)
	r.Metadata.Duration = end.Sub(r.Metadata.started)
}

// Counts returns per-outcome record counts.
func (r *Result) Counts() match.Counts {
	if r.Match == nil {
		return match.Counts{}
	}
	return r.Match.Counts()
}

// HasWarnings reports whether any non-fatal warning was raised.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// OutputOptions controls how the unified dataset is assembled.
type OutputOptions struct {
	// RelabelLeftOnly writes "unmatched" instead of "left-only".
	RelabelLeftOnly bool
}

// Output assembles the unified dataset for mode.
func (r *Result) Output(mode match.Mode, opts ...OutputOptions) (*dataset.Dataset, error) {
	if r.Match == nil {
		return nil, fmt.Errorf("reconciliation %s has no match result", r.Context.ID())
	}
	var mopts []match.OutputOption
	for _, o := range opts {
		if o.RelabelLeftOnly {
			mopts = append(mopts, match.WithOutcomeLabel(match.LeftOnly, constants.UnmatchedLabel))
		}
	}
	out, err := r.Match.Dataset(mode, mopts...)
	if err != nil {
		return nil, err
	}
	return out.WithName(r.Context.ID()), nil
}

// Summary returns a one-line human-readable summary.
func (r *Result) Summary() string {
	c := r.Counts()
	return fmt.Sprintf("%s: %d matched, %d left-only, %d right-only", r.Context.ID(), c.Matched, c.LeftOnly, c.RightOnly)
}
