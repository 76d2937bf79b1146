package run

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/tradematch"
	"github.com/agentstation/tradematch/internal/appcontext"
	"github.com/agentstation/tradematch/internal/cmd/output"
	"github.com/agentstation/tradematch/internal/ingest"
	"github.com/agentstation/tradematch/internal/sink"
	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/logging"
	"github.com/agentstation/tradematch/pkg/match"
	"github.com/agentstation/tradematch/pkg/profile"
)

// runner reconciles the business contexts of one run.
type runner struct {
	app    appcontext.Interface
	opts   *Options
	mode   match.Mode
	rename map[string]string
	names  ingest.EntityNames // nil without --gleif

	// sqlite writes are serialized
	dbMu sync.Mutex
	db   *sink.SQLite

	mu      sync.Mutex
	summary *output.RunSummary
}

// Run reconciles every selected business context. A context that fails is
// recorded in the summary and does not stop the others; cancellation does.
func Run(ctx context.Context, app appcontext.Interface, opts *Options) (*output.RunSummary, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	mode, _ := match.ParseMode(opts.Mode)

	contexts, err := selectContexts(app, opts)
	if err != nil {
		return nil, err
	}
	if err := opts.validateContexts(contexts); err != nil {
		return nil, err
	}

	r := &runner{
		app:  app,
		opts: opts,
		mode: mode,
		summary: &output.RunSummary{
			RunID:     uuid.NewString(),
			Succeeded: []string{},
		},
	}
	if opts.RelabelLeftOnly {
		r.summary.LeftOnlyLabel = constants.UnmatchedLabel
	}

	if opts.RenameFile != "" {
		if r.rename, err = ingest.LoadRenameMap(opts.RenameFile); err != nil {
			return nil, err
		}
	}
	if opts.GLEIF != "" {
		if r.names, err = ingest.LoadEntityNames(opts.GLEIF); err != nil {
			return nil, err
		}
	}
	if opts.SQLite != "" {
		if r.db, err = sink.OpenSQLite(opts.SQLite); err != nil {
			return nil, err
		}
		defer r.db.Close() //nolint:errcheck
	}

	ctx = logging.WithLogger(ctx, app.Logger())
	ctx = logging.WithRunID(ctx, r.summary.RunID)
	logger := logging.FromContext(ctx)
	if r.names != nil {
		logger.Debug().Str("file", opts.GLEIF).Int("entities", len(r.names)).Msg("Loaded GLEIF entity names")
	}

	parallel := opts.Parallel
	if parallel < 1 {
		parallel = app.Parallel()
	}

	start := time.Now()
	logger.Info().
		Str("regime", opts.Regime).
		Int("contexts", len(contexts)).
		Int("parallel", parallel).
		Msg("Starting run")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for _, pc := range contexts {
		g.Go(func() error {
			row, err := r.reconcile(gctx, pc)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				r.fail(gctx, pc, err)
				return nil
			}
			r.succeed(pc, row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return r.summary, err
	}

	r.summary.Sort()
	logger.Info().
		Int("succeeded", len(r.summary.Succeeded)).
		Int("failed", len(r.summary.Failed)).
		Dur("duration", time.Since(start)).
		Msg("Run complete")
	return r.summary, nil
}

func selectContexts(app appcontext.Interface, opts *Options) ([]profile.Context, error) {
	reg, err := app.Profiles()
	if err != nil {
		return nil, err
	}

	classes := opts.AssetClasses
	if len(classes) == 0 {
		classes = reg.AssetClasses(opts.Regime)
		if len(classes) == 0 {
			return nil, errors.NewNotFoundError("regime", opts.Regime)
		}
	}

	contexts := make([]profile.Context, 0, len(classes))
	for _, ac := range classes {
		pc, err := reg.Lookup(opts.Regime, ac)
		if err != nil {
			return nil, err
		}
		contexts = append(contexts, pc)
	}
	return contexts, nil
}

// reconcile processes one business context. The returned row is nil for
// one-sided contexts, which are written but not summarized.
func (r *runner) reconcile(ctx context.Context, pc profile.Context) (*output.StatusRow, error) {
	ctx = logging.WithRegime(ctx, pc.Regime)
	ctx = logging.WithAssetClass(ctx, pc.AssetClass)
	log := logging.FromContext(ctx)

	row := output.StatusRow{Regime: pc.Regime, AssetClass: pc.AssetClass}

	primaryPaths, err := ingest.Discover(expand(r.opts.Primary, pc)...)
	if err != nil {
		return nil, err
	}

	row.ReportDate = r.opts.ReportDate
	if row.ReportDate == "" && r.opts.ReportDateLine > 0 {
		if row.ReportDate, err = ingest.ReportDate(primaryPaths[0], r.opts.ReportDateLine); err != nil {
			return nil, err
		}
	}

	primary, err := r.read(logging.WithSide(ctx, constants.SidePrimary), constants.SidePrimary, pc.Primary, primaryPaths, row.ReportDate)
	if err != nil {
		return nil, err
	}

	if pc.OneSided() {
		out, err := r.write(ctx, pc, &row, primary.Prefix(pc.Primary.Prefix))
		if err != nil {
			return nil, err
		}
		log.Info().
			Int("records", out.Len()).
			Str("file", row.Output).
			Msg("Written without matching")
		return nil, nil
	}

	referencePaths, err := ingest.Discover(expand(r.opts.Reference, pc)...)
	if err != nil {
		return nil, err
	}
	reference, err := r.read(logging.WithSide(ctx, constants.SideReference), constants.SideReference, pc.Reference, referencePaths, "")
	if err != nil {
		return nil, err
	}

	engine, err := tradematch.New(pc, r.engineOptions()...)
	if err != nil {
		return nil, err
	}
	res, err := engine.Reconcile(ctx, primary, reference)
	if err != nil {
		return nil, err
	}

	counts := res.Counts()
	row.Matched, row.LeftOnly, row.RightOnly = counts.Matched, counts.LeftOnly, counts.RightOnly
	for _, side := range []*tradematch.SideResult{res.Primary, res.Reference} {
		if side != nil && side.Dedup != nil {
			row.Dropped += side.Dedup.Dropped
		}
	}

	out, err := res.Output(r.mode, tradematch.OutputOptions{RelabelLeftOnly: r.opts.RelabelLeftOnly})
	if err != nil {
		return nil, err
	}
	if out, err = r.write(ctx, pc, &row, out); err != nil {
		return nil, err
	}

	log.Info().
		Int("records", out.Len()).
		Str("file", row.Output).
		Msg(res.Summary())
	return &row, nil
}

// read ingests one side and adds entity names for its LEI columns.
func (r *runner) read(ctx context.Context, name string, side profile.Side, paths []string, reportDate string) (*dataset.Dataset, error) {
	ds, err := ingest.ReadFiles(ctx, name, paths, ingest.Options{
		SkipHeader: side.SkipHeader,
		SkipFooter: side.SkipFooter,
		Rename:     side.Rename,
		ReportDate: reportDate,
	})
	if err != nil {
		return nil, err
	}
	if r.names == nil {
		return ds, nil
	}
	return r.names.Enrich(ctx, ds, side.EntityLEIColumns...)
}

// write renames, locks and writes a context's output to the configured
// sinks, setting row.Output when a file is written.
func (r *runner) write(ctx context.Context, pc profile.Context, row *output.StatusRow, out *dataset.Dataset) (*dataset.Dataset, error) {
	out, err := sink.Prepare(out, sink.WithRename(r.rename))
	if err != nil {
		return nil, err
	}
	if r.opts.LockDir != "" {
		lock, err := sink.ApplyLock(lockFile(r.opts.LockDir, pc), out, r.opts.UpdateColumns)
		if err != nil {
			return nil, err
		}
		logLock(logging.FromContext(ctx), lock)
		out = lock.Dataset
	}

	if r.opts.OutDir != "" {
		row.Output = outputFile(r.opts.OutDir, pc, row.ReportDate)
		if err := sink.WriteFile(row.Output, out); err != nil {
			return nil, err
		}
	}
	if r.db != nil {
		r.dbMu.Lock()
		err := r.db.Write(ctx, sink.TableName(pc.Regime, pc.AssetClass), out)
		r.dbMu.Unlock()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *runner) engineOptions() []tradematch.Option {
	opts := append([]tradematch.Option{}, r.app.EngineOptions()...)
	opts = append(opts, tradematch.WithMetrics(r.app.Metrics()))
	if r.opts.DedupPrimary != nil {
		opts = append(opts, tradematch.WithDedup(constants.SidePrimary, *r.opts.DedupPrimary))
	}
	if r.opts.DedupReference != nil {
		opts = append(opts, tradematch.WithDedup(constants.SideReference, *r.opts.DedupReference))
	}
	return opts
}

func logLock(log *zerolog.Logger, lock *sink.LockResult) {
	switch {
	case lock.Created:
		log.Debug().Int("columns", len(lock.Dataset.Fields())).Msg("Saved column lock")
	case len(lock.Added) > 0:
		log.Warn().Strs("columns", lock.Added).Msg("New columns are not in the column lock and were dropped; rerun with --update-columns to keep them")
	}
	if len(lock.Filled) > 0 {
		log.Warn().Strs("columns", lock.Filled).Msg("Locked columns missing from output were left empty")
	}
}

func (r *runner) succeed(pc profile.Context, row *output.StatusRow) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row != nil {
		r.summary.Rows = append(r.summary.Rows, *row)
	}
	r.summary.Succeeded = append(r.summary.Succeeded, pc.ID())
}

func (r *runner) fail(ctx context.Context, pc profile.Context, err error) {
	logging.FromContext(ctx).Error().Err(err).Str("context", pc.ID()).Msg("Reconciliation failed")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary.Failed = append(r.summary.Failed, output.Failure{Context: pc.ID(), Error: err.Error()})
}
