package run

import (
	"path/filepath"
	"strings"

	"github.com/agentstation/tradematch/internal/ingest"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/match"
	"github.com/agentstation/tradematch/pkg/profile"
)

// Options holds run command flags.
type Options struct {
	Regime       string
	AssetClasses []string

	// Primary and Reference are file patterns, each side reading the union
	// of its matches. {regime} and {asset_class} are replaced per business
	// context.
	Primary   []string
	Reference []string

	OutDir string
	Mode   string

	SQLite     string
	RenameFile string

	// GLEIF is a CSV extract of LEI to entity name, used to enrich the LEI
	// columns a profile lists.
	GLEIF string

	// LockDir holds one column lock file per business context.
	LockDir       string
	UpdateColumns bool

	ReportDate     string
	ReportDateLine int

	RelabelLeftOnly bool
	Parallel        int

	// Nil keeps the profile's dedup setting.
	DedupPrimary   *bool
	DedupReference *bool
}

// Validate checks flag values before any file is read.
func (o *Options) Validate() error {
	if o.Regime == "" {
		return errors.NewValidationError("regime", o.Regime, "is required")
	}
	if !hasPattern(o.Primary) {
		return errors.NewValidationError("primary", o.Primary, "is required")
	}
	if o.OutDir == "" && o.SQLite == "" {
		return errors.NewValidationError("out", o.OutDir, "an output directory or --sqlite file is required")
	}
	if _, err := match.ParseMode(o.Mode); err != nil {
		return err
	}
	if o.ReportDate != "" {
		if _, err := ingest.ParseReportDate(o.ReportDate); err != nil {
			return err
		}
	}
	if o.ReportDateLine < 0 {
		return errors.NewValidationError("report-date-line", o.ReportDateLine, "must not be negative")
	}
	return nil
}

func hasPattern(patterns []string) bool {
	for _, p := range patterns {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}

// validateContexts checks flags that depend on the selected contexts: only
// one-sided contexts run without a reference pattern.
func (o *Options) validateContexts(contexts []profile.Context) error {
	if hasPattern(o.Reference) {
		return nil
	}
	for _, pc := range contexts {
		if !pc.OneSided() {
			return errors.NewValidationError("reference", o.Reference, "is required for "+pc.ID())
		}
	}
	return nil
}

// expand substitutes the business context into file patterns, dropping
// blank ones.
func expand(patterns []string, pc profile.Context) []string {
	r := strings.NewReplacer(
		"{regime}", pc.Regime,
		"{asset_class}", pc.AssetClass,
	)
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if strings.TrimSpace(p) != "" {
			out = append(out, r.Replace(p))
		}
	}
	return out
}

// outputFile names the reconciliation file of a business context.
func outputFile(dir string, pc profile.Context, reportDate string) string {
	name := strings.ToLower(pc.Regime + "_" + pc.AssetClass + "_reconciliation")
	if reportDate != "" {
		name += "_" + reportDate
	}
	return filepath.Join(dir, name+".txt")
}

// lockFile names the column lock of a business context.
func lockFile(dir string, pc profile.Context) string {
	return filepath.Join(dir, strings.ToLower(pc.Regime+"_"+pc.AssetClass)+".columns.yaml")
}
