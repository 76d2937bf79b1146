// Package tradematch reconciles a primary and a reference dataset of trade
// records for one business context.
//
// A run derives matching keys on both sides, deduplicates the sides that the
// profile enables, applies side prefixes and then matches progressively over
// the profile's key-pair priority list:
//
//	reg, _ := profile.Default()
//	pc, _ := reg.Lookup("ASIC", "FX")
//	engine, _ := tradematch.New(pc)
//	result, _ := engine.Reconcile(ctx, tsr, derivone)
//	out, _ := result.Output(match.ModeFull)
package tradematch

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/dedup"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/keys"
	"github.com/agentstation/tradematch/pkg/logging"
	"github.com/agentstation/tradematch/pkg/match"
	"github.com/agentstation/tradematch/pkg/profile"
)

// Engine runs the reconciliation pipeline for one business context. An
// Engine holds no per-run state and may be reused.
type Engine struct {
	context profile.Context
	config  *config
	hooks   *hooks
	matcher *match.Matcher

	primary   stage
	reference stage
}

// stage holds the per-side pipeline components.
type stage struct {
	name   string
	side   profile.Side
	keys   *keys.Generator
	dedup  *dedup.Deduplicator // nil when disabled
	fields []string            // every raw field read on this side
}

// New validates the business context and builds its components. One-sided
// contexts have nothing to reconcile and are rejected.
func New(pc profile.Context, opts ...Option) (*Engine, error) {
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	if pc.OneSided() {
		return nil, errors.NewConfigurationError("profile "+pc.ID(),
			fmt.Sprintf("%s contexts are not matched", pc.Family), nil)
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}

	e := &Engine{context: pc, config: cfg, hooks: newHooks()}

	mopts := []match.Option{match.WithLogger(logging.OrDefault(cfg.logger))}
	for _, o := range cfg.observers {
		mopts = append(mopts, match.WithObserver(o))
	}
	if cfg.metrics != nil {
		mopts = append(mopts, match.WithObserver(cfg.metrics.Observer(pc.Regime, pc.AssetClass)))
	}
	var err error
	if e.matcher, err = match.New(pc.Pairs(), mopts...); err != nil {
		return nil, err
	}

	if e.primary, err = e.newStage(constants.SidePrimary, pc.Primary, cfg.dedupPrimary); err != nil {
		return nil, err
	}
	if e.reference, err = e.newStage(constants.SideReference, pc.Reference, cfg.dedupReference); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) newStage(name string, side profile.Side, override *bool) (stage, error) {
	s := stage{name: name, side: side}

	shape := e.context.Shape(side)
	gen, err := keys.New(shape, keys.WithChunkSize(e.config.chunkSize), keys.WithLogger(e.config.logger))
	if err != nil {
		return s, err
	}
	s.keys = gen
	s.fields = shape.Fields()

	enabled := side.Dedup
	if override != nil {
		enabled = *override
	}
	if enabled {
		dopts := []dedup.Option{dedup.WithChunkSize(e.config.chunkSize), dedup.WithLogger(e.config.logger)}
		if e.config.useSpill {
			dopts = append(dopts, dedup.WithSpillDir(e.config.spillDir))
		}
		policy := e.context.Policy(side)
		if s.dedup, err = dedup.New(policy, dopts...); err != nil {
			return s, err
		}
		for _, f := range policy.Fields() {
			if !slices.Contains(s.fields, f) {
				s.fields = append(s.fields, f)
			}
		}
	}
	return s, nil
}

// output predicts the side's field names after keys, dedup and prefixing.
func (s stage) output(ds *dataset.Dataset) []string {
	fields := ds.Fields()
	derived := s.keys.Shape().Names()
	if s.dedup != nil {
		derived = append(derived, constants.DeduplicationKeyColumn)
	}
	for _, f := range derived {
		if !slices.Contains(fields, f) {
			fields = append(fields, f)
		}
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = s.side.Prefix + f
	}
	return out
}

// Context returns the engine's business context.
func (e *Engine) Context() profile.Context { return e.context }

// OnStage registers a callback invoked after every pipeline stage.
func (e *Engine) OnStage(fn StageHook) { e.hooks.OnStage(fn) }

// logger returns the configured logger or the one carried by ctx, annotated
// with the business context.
func (e *Engine) logger(ctx context.Context) *zerolog.Logger {
	base := e.config.logger
	if base == nil {
		base = logging.FromContext(ctx)
	}
	l := base.With().
		Str("regime", e.context.Regime).
		Str("asset_class", e.context.AssetClass).
		Logger()
	return &l
}

// Reconcile runs keys, dedup and matching. Both inputs are validated up front:
// every missing field on either side is reported in one MissingFieldError,
// and prefixed field names that would collide in the output are rejected,
// before any record is processed. The context is checked between stages only.
func (e *Engine) Reconcile(ctx context.Context, primary, reference *dataset.Dataset) (*Result, error) {
	log := e.logger(ctx)
	result := NewResult(e.context)

	if err := errors.MergeMissingFields(
		primary.RequireFields(e.primary.fields...),
		reference.RequireFields(e.reference.fields...),
	); err != nil {
		log.Error().Err(err).Msg("Required fields missing")
		return nil, err
	}
	if err := match.CheckFields(e.primary.output(primary), e.reference.output(reference)); err != nil {
		log.Error().Err(err).Msg("Output fields collide")
		return nil, err
	}

	p, err := e.prepare(ctx, log, e.primary, primary)
	if err != nil {
		return nil, err
	}
	result.Primary = p

	r, err := e.prepare(ctx, log, e.reference, reference)
	if err != nil {
		return nil, err
	}
	result.Reference = r

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matched, err := e.matcher.LogTo(log).Match(
		p.Dataset.Prefix(e.context.Primary.Prefix),
		r.Dataset.Prefix(e.context.Reference.Prefix),
	)
	if err != nil {
		return nil, err
	}
	result.Match = matched
	result.Warnings = append(result.Warnings, matched.Warnings...)

	counts := matched.Counts()
	e.hooks.trigger(StageReport{
		Stage:    StageMatch,
		Input:    p.Dataset.Len() + r.Dataset.Len(),
		Output:   counts.Total(),
		Duration: matched.Duration,
	})
	if m := e.config.metrics; m != nil {
		m.ObserveOutcomes(e.context.Regime, e.context.AssetClass, counts)
		m.ObserveDuration(StageMatch, matched.Duration)
		for _, w := range matched.Warnings {
			if errors.IsEmptyInput(w) {
				m.IncrementWarning(e.context.Regime, e.context.AssetClass, "empty_input")
			}
		}
	}

	result.Finalize()
	log.Info().
		Int("matched", counts.Matched).
		Int("left_only", counts.LeftOnly).
		Int("right_only", counts.RightOnly).
		Dur("duration", result.Metadata.Duration).
		Msg("Reconciliation complete")

	return result, nil
}

// Prepare runs key generation and, when enabled, deduplication for one side
// without matching. Side prefixes are not applied.
func (e *Engine) Prepare(ctx context.Context, side string, ds *dataset.Dataset) (*SideResult, error) {
	var s stage
	switch side {
	case constants.SidePrimary:
		s = e.primary
	case constants.SideReference:
		s = e.reference
	default:
		return nil, &errors.ValidationError{Field: "side", Value: side, Message: "must be primary or reference"}
	}
	if err := ds.RequireFields(s.fields...); err != nil {
		return nil, err
	}
	return e.prepare(ctx, e.logger(ctx), s, ds)
}

// prepare assumes fields were validated.
func (e *Engine) prepare(ctx context.Context, log *zerolog.Logger, s stage, ds *dataset.Dataset) (*SideResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sideLog := log.With().Str("side", s.name).Logger()
	out := &SideResult{Side: s.name, Ingested: ds.Len()}
	e.observeStage("ingested", s.name, ds.Len())

	start := time.Now()
	keyed, err := s.keys.Generate(ds)
	if err != nil {
		return nil, err
	}
	out.Keyed = keyed.Len()
	e.completed(StageKeys, s.name, ds.Len(), keyed.Len(), time.Since(start))
	e.observeStage("keyed", s.name, keyed.Len())
	sideLog.Debug().Int("records", keyed.Len()).Msg("Keys generated")

	out.Dataset = keyed
	if s.dedup == nil {
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res, err := s.dedup.Deduplicate(keyed)
	if err != nil {
		return nil, err
	}
	out.Dataset = res.Dataset
	stats := res.Stats
	out.Dedup = &stats
	e.completed(StageDedup, s.name, stats.Input, stats.Survivors, res.Duration)
	e.observeStage("deduplicated", s.name, stats.Survivors)
	if m := e.config.metrics; m != nil {
		m.ObserveDedup(e.context.Regime, e.context.AssetClass, s.name, stats)
	}
	sideLog.Info().
		Int("input", stats.Input).
		Int("survivors", stats.Survivors).
		Int("placeholders", stats.Placeholders).
		Msg("Deduplicated")

	return out, nil
}

func (e *Engine) completed(name, side string, in, out int, d time.Duration) {
	e.hooks.trigger(StageReport{Stage: name, Side: side, Input: in, Output: out, Duration: d})
	if m := e.config.metrics; m != nil {
		m.ObserveDuration(name, d)
	}
}

func (e *Engine) observeStage(name, side string, n int) {
	if m := e.config.metrics; m != nil {
		m.ObserveStage(e.context.Regime, e.context.AssetClass, name, side, n)
	}
}
