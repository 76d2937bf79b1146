// Package match pairs records of a primary and a reference dataset using an
// ordered list of key pairs.
//
// Matching is progressive and greedy. Key pairs are tried in priority order,
// each as an exact equality join over records not yet matched. Within a group
// of equal values, unconsumed primary records pair one to one with unconsumed
// reference records, both in ascending ordinal order. A record is matched at
// most once. Blank join values never match.
//
// Output order: matched records grouped by key pair in priority order and by
// primary ordinal within a pair, then left-only records by primary ordinal,
// then right-only records by reference ordinal.
package match

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/errors"
)

// Matcher runs progressive matching for a fixed key-pair priority list.
type Matcher struct {
	pairs     []KeyPair
	observers []Observer
	logger    *zerolog.Logger
	passLog   bool
}

// New validates pairs and returns a Matcher.
func New(pairs []KeyPair, opts ...Option) (*Matcher, error) {
	if len(pairs) == 0 {
		return nil, errors.NewConfigurationError("match", "empty key-pair priority list", nil)
	}
	for i, p := range pairs {
		if strings.TrimSpace(p.Primary) == "" || strings.TrimSpace(p.Reference) == "" {
			return nil, errors.NewConfigurationError("match",
				fmt.Sprintf("key pair %d has a blank field name", i), nil)
		}
	}
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	return &Matcher{
		pairs:     slices.Clone(pairs),
		observers: o.observers,
		logger:    o.logger,
		passLog:   !o.quiet,
	}, nil
}

// LogTo returns a copy of m that logs to logger.
func (m *Matcher) LogTo(logger *zerolog.Logger) *Matcher {
	c := *m
	c.logger = logger
	return &c
}

// Pairs returns the key-pair priority list.
func (m *Matcher) Pairs() []KeyPair { return slices.Clone(m.pairs) }

// Match reconciles primary against reference. Neither input is modified.
func (m *Matcher) Match(primary, reference *dataset.Dataset) (*Result, error) {
	if err := m.validate(primary, reference); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{
		primary:   primary,
		reference: reference,
		pairs:     m.pairs,
	}
	for _, ds := range []*dataset.Dataset{primary, reference} {
		if ds.Len() == 0 {
			w := errors.NewEmptyInputWarning(ds.Name())
			result.Warnings = append(result.Warnings, w)
			m.logger.Warn().Str("dataset", ds.Name()).Msg(w.Error())
		}
	}

	observers := m.observers
	if m.passLog {
		observers = append([]Observer{LogObserver(m.logger)}, observers...)
	}

	pool := newPools(primary.Len(), reference.Len())
	for idx, pair := range m.pairs {
		if pool.primaryLeft == 0 || pool.referenceLeft == 0 {
			break
		}
		matched := pool.join(idx, primary, pair.Primary, reference, pair.Reference, &result.matches)

		report := PassReport{
			Index:              idx,
			Pair:               pair,
			Matched:            matched,
			PrimaryRemaining:   pool.primaryLeft,
			ReferenceRemaining: pool.referenceLeft,
		}
		result.Passes = append(result.Passes, report)
		for _, o := range observers {
			o.PassCompleted(report)
		}
	}

	result.leftOnly = pool.remaining(pool.primaryUsed)
	result.rightOnly = pool.remaining(pool.referenceUsed)
	result.Duration = time.Since(start)

	c := result.Counts()
	m.logger.Debug().
		Int("matched", c.Matched).
		Int("left_only", c.LeftOnly).
		Int("right_only", c.RightOnly).
		Int("passes", len(result.Passes)).
		Dur("duration", result.Duration).
		Msg("Matching complete")

	return result, nil
}

// validate reports missing join fields across both datasets in one error and
// rejects field names that would collide in the unified output.
func (m *Matcher) validate(primary, reference *dataset.Dataset) error {
	var pf, rf []string
	for _, p := range m.pairs {
		pf = append(pf, p.Primary)
		rf = append(rf, p.Reference)
	}
	if err := errors.MergeMissingFields(primary.RequireFields(pf...), reference.RequireFields(rf...)); err != nil {
		return err
	}

	return CheckFields(primary.Fields(), reference.Fields())
}

// CheckFields rejects field names that would collide in the unified output:
// names present on both sides and names reserved for the match columns.
// Callers that know the final field lists can run it before any matching work.
func CheckFields(primary, reference []string) error {
	reserved := []string{constants.MatchOutcomeColumn, constants.MatchKeyColumn}
	var collisions []string
	for _, f := range primary {
		if slices.Contains(reference, f) || slices.Contains(reserved, f) {
			collisions = append(collisions, f)
		}
	}
	for _, f := range reference {
		if slices.Contains(reserved, f) && !slices.Contains(collisions, f) {
			collisions = append(collisions, f)
		}
	}
	if len(collisions) > 0 {
		return errors.NewConfigurationError("match",
			fmt.Sprintf("field name collision between datasets: %s (apply side prefixes)", strings.Join(collisions, ", ")), nil)
	}
	return nil
}

// pools tracks which records are consumed.
type pools struct {
	primaryUsed   []bool
	referenceUsed []bool
	primaryLeft   int
	referenceLeft int
}

func newPools(np, nr int) *pools {
	return &pools{
		primaryUsed:   make([]bool, np),
		referenceUsed: make([]bool, nr),
		primaryLeft:   np,
		referenceLeft: nr,
	}
}

// join runs one equality pass and appends new pairs to matches.
func (p *pools) join(pass int, primary *dataset.Dataset, pfield string, reference *dataset.Dataset, rfield string, matches *[]Pair) int {
	// Unconsumed reference ordinals per join value, ascending.
	groups := make(map[string][]int)
	for i := range p.referenceUsed {
		if p.referenceUsed[i] {
			continue
		}
		v := reference.Value(i, rfield)
		if strings.TrimSpace(v) == "" {
			continue
		}
		groups[v] = append(groups[v], i)
	}
	if len(groups) == 0 {
		return 0
	}

	matched := 0
	for i := range p.primaryUsed {
		if p.primaryUsed[i] {
			continue
		}
		v := primary.Value(i, pfield)
		if strings.TrimSpace(v) == "" {
			continue
		}
		candidates := groups[v]
		if len(candidates) == 0 {
			continue
		}
		r := candidates[0]
		groups[v] = candidates[1:]

		p.primaryUsed[i] = true
		p.referenceUsed[r] = true
		p.primaryLeft--
		p.referenceLeft--
		*matches = append(*matches, Pair{Primary: i, Reference: r, Pass: pass})
		matched++
	}
	return matched
}

func (p *pools) remaining(used []bool) []int {
	var out []int
	for i, u := range used {
		if !u {
			out = append(out, i)
		}
	}
	return out
}
