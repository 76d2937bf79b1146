package output

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/agentstation/tradematch/pkg/profile"
)

var (
	title   = cases.Title(language.English)
	printer = message.NewPrinter(language.English)
)

// Header turns a snake_case name into a table header.
func Header(name string) string {
	return title.String(strings.ReplaceAll(name, "_", " "))
}

// Count formats n with thousands separators.
func Count(n int) string {
	return printer.Sprintf("%d", n)
}

// StatusRow is one business context in the matching status summary.
type StatusRow struct {
	ReportDate string `json:"report_date,omitempty" yaml:"report_date,omitempty"`
	Regime     string `json:"regime" yaml:"regime"`
	AssetClass string `json:"asset_class" yaml:"asset_class"`
	Matched    int    `json:"matched" yaml:"matched"`
	LeftOnly   int    `json:"left_only" yaml:"left_only"`
	RightOnly  int    `json:"right_only" yaml:"right_only"`
	Dropped    int    `json:"dedup_dropped" yaml:"dedup_dropped"`
	Output     string `json:"output,omitempty" yaml:"output,omitempty"`
}

// Total returns the number of output records.
func (r StatusRow) Total() int { return r.Matched + r.LeftOnly + r.RightOnly }

// Failure records a business context that did not complete.
type Failure struct {
	Context string `json:"context" yaml:"context"`
	Error   string `json:"error" yaml:"error"`
}

// RunSummary is the result of a run command.
type RunSummary struct {
	RunID     string      `json:"run_id" yaml:"run_id"`
	Rows      []StatusRow `json:"rows" yaml:"rows"`
	Succeeded []string    `json:"succeeded" yaml:"succeeded"`
	Failed    []Failure   `json:"failed,omitempty" yaml:"failed,omitempty"`
	// LeftOnlyLabel names the left-only column in tables.
	LeftOnlyLabel string `json:"-" yaml:"-"`
}

// Sort orders rows by regime then asset class.
func (s *RunSummary) Sort() {
	slices.SortFunc(s.Rows, func(a, b StatusRow) int {
		if c := strings.Compare(a.Regime, b.Regime); c != 0 {
			return c
		}
		return strings.Compare(a.AssetClass, b.AssetClass)
	})
	slices.Sort(s.Succeeded)
	slices.SortFunc(s.Failed, func(a, b Failure) int { return strings.Compare(a.Context, b.Context) })
}

// TableData implements Tabular.
func (s RunSummary) TableData() Data {
	left := s.LeftOnlyLabel
	if left == "" {
		left = "left_only"
	}
	headers := []string{"report_date", "regime", "asset_class", "matched", left, "right_only", "total", "dedup_dropped"}
	d := Data{
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
	}
	for _, h := range headers {
		d.Headers = append(d.Headers, Header(h))
	}

	var total StatusRow
	for _, r := range s.Rows {
		d.Rows = append(d.Rows, []string{
			r.ReportDate, r.Regime, r.AssetClass,
			Count(r.Matched), Count(r.LeftOnly), Count(r.RightOnly), Count(r.Total()), Count(r.Dropped),
		})
		total.Matched += r.Matched
		total.LeftOnly += r.LeftOnly
		total.RightOnly += r.RightOnly
		total.Dropped += r.Dropped
	}
	if len(s.Rows) > 1 {
		d.Rows = append(d.Rows, []string{
			"", "", "Total",
			Count(total.Matched), Count(total.LeftOnly), Count(total.RightOnly), Count(total.Total()), Count(total.Dropped),
		})
	}
	return d
}

// ProfileList renders business contexts.
type ProfileList []profile.Context

// TableData implements Tabular.
func (l ProfileList) TableData() Data {
	d := Data{}
	for _, h := range []string{"regime", "asset_class", "family", "key_pairs", "primary_prefix", "reference_prefix", "dedup"} {
		d.Headers = append(d.Headers, Header(h))
	}
	for _, c := range l {
		d.Rows = append(d.Rows, []string{
			c.Regime,
			c.AssetClass,
			c.Family.String(),
			strings.Join(c.KeyPairs, ", "),
			c.Primary.Prefix,
			c.Reference.Prefix,
			dedupSides(c),
		})
	}
	return d
}

func dedupSides(c profile.Context) string {
	var sides []string
	if c.Primary.Dedup {
		sides = append(sides, "primary")
	}
	if c.Reference.Dedup {
		sides = append(sides, "reference")
	}
	if len(sides) == 0 {
		return "-"
	}
	return strings.Join(sides, ", ")
}

// StageSummary reports a standalone keys or dedup command.
type StageSummary struct {
	Context string `json:"context" yaml:"context"`
	Side    string `json:"side" yaml:"side"`
	Input   int    `json:"input" yaml:"input"`
	Output  int    `json:"output" yaml:"output"`
	Fields  int    `json:"fields" yaml:"fields"`
	File    string `json:"file" yaml:"file"`
}

// TableData implements Tabular.
func (s StageSummary) TableData() Data {
	return Data{
		Headers: []string{"Property", "Value"},
		Rows: [][]string{
			{"Context", s.Context},
			{"Side", s.Side},
			{"Input Records", Count(s.Input)},
			{"Output Records", Count(s.Output)},
			{"Fields", strconv.Itoa(s.Fields)},
			{"File", s.File},
		},
	}
}
