// Package prepare implements the stage commands that run key generation, and
// optionally deduplication, on a single side without matching.
package prepare

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/tradematch"
	"github.com/agentstation/tradematch/internal/appcontext"
	"github.com/agentstation/tradematch/internal/cmd/output"
	"github.com/agentstation/tradematch/internal/ingest"
	"github.com/agentstation/tradematch/internal/sink"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/logging"
	"github.com/agentstation/tradematch/pkg/profile"
)

// Options holds stage command flags.
type Options struct {
	Regime     string
	AssetClass string
	Side       string
	Input      string
	Output     string
	// Dedup runs deduplication after key generation.
	Dedup bool
}

// NewKeysCommand creates the keys command.
func NewKeysCommand(app appcontext.Interface) *cobra.Command {
	opts := &Options{Side: "primary"}
	cmd := &cobra.Command{
		Use:     "keys",
		GroupID: "stages",
		Short:   "Add derived matching keys to one side's records",
		Example: `  tradematch keys --regime ASIC --asset-class FX --input 'in/tsr_FX_*.csv' --output keyed.txt`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, app, opts)
		},
	}
	addFlags(cmd, opts)
	return cmd
}

// NewDedupCommand creates the dedup command.
func NewDedupCommand(app appcontext.Interface) *cobra.Command {
	opts := &Options{Side: "reference", Dedup: true}
	cmd := &cobra.Command{
		Use:     "dedup",
		GroupID: "stages",
		Short:   "Add derived keys and remove duplicate records from one side",
		Long: `Dedup keys one side's records and keeps the first record of every
deduplication identity. The identity is written to the deduplication_key column.

The output keeps the input headers and is comma-separated, so it can be passed
back to run as --reference.`,
		Example: `  tradematch dedup --regime MAS --asset-class IR --input in/deriv1_IR.csv --output dedup.txt`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd, app, opts)
		},
	}
	addFlags(cmd, opts)
	return cmd
}

func addFlags(cmd *cobra.Command, opts *Options) {
	flags := cmd.Flags()
	flags.StringVarP(&opts.Regime, "regime", "r", "", "regulatory regime")
	flags.StringVarP(&opts.AssetClass, "asset-class", "a", "", "asset class")
	flags.StringVar(&opts.Side, "side", opts.Side, "profile side describing the input: primary or reference")
	flags.StringVar(&opts.Input, "input", "", "input file pattern")
	flags.StringVar(&opts.Output, "output", "", "CSV output file, readable as run input")

	for _, name := range []string{"regime", "asset-class", "input", "output"} {
		_ = cmd.MarkFlagRequired(name)
	}
}

func execute(cmd *cobra.Command, app appcontext.Interface, opts *Options) error {
	summary, err := Prepare(cmd.Context(), app, opts)
	if err != nil {
		return err
	}
	return output.NewFormatter(output.Format(app.OutputFormat())).Format(cmd.OutOrStdout(), summary)
}

// Prepare reads the input, runs the stage and writes the output file.
func Prepare(ctx context.Context, app appcontext.Interface, opts *Options) (*output.StageSummary, error) {
	reg, err := app.Profiles()
	if err != nil {
		return nil, err
	}
	pc, err := reg.Lookup(opts.Regime, opts.AssetClass)
	if err != nil {
		return nil, err
	}
	side, err := pc.Side(opts.Side)
	if err != nil {
		return nil, err
	}
	if opts.Output == "" {
		return nil, errors.NewValidationError("output", opts.Output, "is required")
	}

	ctx = logging.WithLogger(ctx, app.Logger())
	ctx = logging.WithRegime(ctx, pc.Regime)
	ctx = logging.WithAssetClass(ctx, pc.AssetClass)
	ctx = logging.WithStage(ctx, "prepare")
	ctx = logging.WithSide(ctx, opts.Side)

	paths, err := ingest.Discover(opts.Input)
	if err != nil {
		return nil, err
	}
	ds, err := ingest.ReadFiles(ctx, opts.Side, paths, readOptions(side))
	if err != nil {
		return nil, err
	}

	engineOpts := append([]tradematch.Option{}, app.EngineOptions()...)
	engineOpts = append(engineOpts,
		tradematch.WithMetrics(app.Metrics()),
		tradematch.WithDedup(opts.Side, opts.Dedup),
	)
	engine, err := tradematch.New(pc, engineOpts...)
	if err != nil {
		return nil, err
	}
	res, err := engine.Prepare(ctx, opts.Side, ds)
	if err != nil {
		return nil, err
	}

	if err := sink.WriteFile(opts.Output, res.Dataset, sink.Intermediate()...); err != nil {
		return nil, err
	}
	return &output.StageSummary{
		Context: pc.ID(),
		Side:    opts.Side,
		Input:   res.Ingested,
		Output:  res.Dataset.Len(),
		Fields:  len(res.Dataset.Fields()),
		File:    opts.Output,
	}, nil
}

func readOptions(side profile.Side) ingest.Options {
	return ingest.Options{
		SkipHeader: side.SkipHeader,
		SkipFooter: side.SkipFooter,
		Rename:     side.Rename,
	}
}
