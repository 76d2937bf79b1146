// Package run implements the run command: reconcile one regime across its
// asset classes and write the matched output.
package run

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/tradematch/internal/appcontext"
	"github.com/agentstation/tradematch/internal/cmd/output"
	"github.com/agentstation/tradematch/pkg/match"
)

// NewCommand creates the run command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	opts := &Options{}
	var dedupPrimary, dedupReference bool

	cmd := &cobra.Command{
		Use:     "run",
		GroupID: "core",
		Short:   "Reconcile trade state reports against reference extracts",
		Long: `Run reconciles the primary and reference files of every selected asset
class of a regime. Each business context is keyed, deduplicated and matched key
pair by key pair; the unified output carries a match_outcome per record.

File patterns may be globs or regular expressions and may contain {regime}
and {asset_class}, replaced per business context. Repeat --primary or
--reference to read the union of several patterns for one side.

COLLATERAL contexts read the margin state report through --primary only: the
records are enriched and written without matching, and no summary row is
reported for them. --gleif adds an entity name column next to every LEI column
the profile lists.`,
		Example: `  tradematch run --regime ASIC --primary 'in/tsr_{asset_class}_*.csv' \
      --reference 'in/deriv1_{asset_class}.csv' --out out/
  tradematch run --regime MAS -a FX -a IR --primary ... --reference ... --sqlite out.db
  tradematch run --regime ASIC --primary 'in/tsr_{asset_class}_*.csv' \
      --reference 'in/deriv1_{asset_class}.csv' --reference 'in/late/deriv1_{asset_class}_*.csv' --out out/
  tradematch run --regime JFSA --mode inner --relabel-left-only ...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("dedup-primary") {
				opts.DedupPrimary = &dedupPrimary
			}
			if cmd.Flags().Changed("dedup-reference") {
				opts.DedupReference = &dedupReference
			}

			summary, err := Run(cmd.Context(), app, opts)
			if err != nil {
				return err
			}

			formatter := output.NewFormatter(output.Format(app.OutputFormat()))
			if err := formatter.Format(cmd.OutOrStdout(), summary); err != nil {
				return err
			}
			if n := len(summary.Failed); n > 0 {
				return fmt.Errorf("%d of %d business contexts failed", n, n+len(summary.Succeeded))
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.Regime, "regime", "r", "", "regulatory regime, e.g. ASIC, MAS, JFSA")
	flags.StringSliceVarP(&opts.AssetClasses, "asset-class", "a", nil, "asset classes to reconcile (default: all for the regime)")
	flags.StringArrayVar(&opts.Primary, "primary", nil, "primary (trade state report) file pattern, repeatable")
	flags.StringArrayVar(&opts.Reference, "reference", nil, "reference extract file pattern, repeatable (not needed for COLLATERAL)")
	flags.StringVar(&opts.OutDir, "out", "", "directory for pipe-delimited output files")
	flags.StringVar(&opts.Mode, "mode", string(match.ModeFull), "output mode: left, right, inner, full")
	flags.StringVar(&opts.SQLite, "sqlite", "", "also write one table per business context to this SQLite file")
	flags.StringVar(&opts.RenameFile, "rename", "", "JSON or YAML map of output column renames")
	flags.StringVar(&opts.GLEIF, "gleif", "", "GLEIF CSV (LEI, Entity Name) used to add entity names next to LEI columns")
	flags.StringVar(&opts.LockDir, "lock-dir", "", "directory of per-context column lock files")
	flags.BoolVar(&opts.UpdateColumns, "update-columns", false, "refresh column locks from this run's output")
	flags.StringVar(&opts.ReportDate, "report-date", "", "report date added to primary records and file names")
	flags.IntVar(&opts.ReportDateLine, "report-date-line", 0, "read the report date from this line of the first primary file")
	flags.BoolVar(&opts.RelabelLeftOnly, "relabel-left-only", false, "write unmatched instead of left-only")
	flags.IntVarP(&opts.Parallel, "parallel", "p", 0, "business contexts reconciled at once (default from config)")
	flags.BoolVar(&dedupPrimary, "dedup-primary", false, "override deduplication of the primary side")
	flags.BoolVar(&dedupReference, "dedup-reference", false, "override deduplication of the reference side")

	_ = cmd.MarkFlagRequired("regime")
	_ = cmd.MarkFlagRequired("primary")

	return cmd
}
