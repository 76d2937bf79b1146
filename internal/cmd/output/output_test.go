package output

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tradematch/pkg/profile"
)

func summary() RunSummary {
	return RunSummary{
		RunID: "run-1",
		Rows: []StatusRow{
			{ReportDate: "2024-06-28", Regime: "ASIC", AssetClass: "IR", Matched: 1200, LeftOnly: 3, RightOnly: 4, Dropped: 2},
			{ReportDate: "2024-06-28", Regime: "ASIC", AssetClass: "FX", Matched: 10, LeftOnly: 1},
		},
		Succeeded: []string{"ASIC/IR", "ASIC/FX"},
	}
}

func TestHeaderAndCount(t *testing.T) {
	assert.Equal(t, "Asset Class", Header("asset_class"))
	assert.Equal(t, "1,234,567", Count(1234567))
	assert.Equal(t, "12", Count(12))
}

func TestRunSummaryTableData(t *testing.T) {
	s := summary()
	s.Sort()
	assert.Equal(t, "FX", s.Rows[0].AssetClass)
	assert.Equal(t, []string{"ASIC/FX", "ASIC/IR"}, s.Succeeded)

	d := s.TableData()
	assert.Equal(t, "Left Only", d.Headers[4])
	require.Len(t, d.Rows, 3)
	assert.Equal(t, []string{"2024-06-28", "ASIC", "IR", "1,200", "3", "4", "1,207", "2"}, d.Rows[1])
	assert.Equal(t, []string{"", "", "Total", "1,210", "4", "4", "1,218", "2"}, d.Rows[2])

	s.LeftOnlyLabel = "unmatched"
	assert.Equal(t, "Unmatched", s.TableData().Headers[4])
}

func TestSingleRowHasNoTotal(t *testing.T) {
	s := RunSummary{Rows: []StatusRow{{Regime: "MAS", AssetClass: "CO", Matched: 1}}}
	assert.Len(t, s.TableData().Rows, 1)
}

func TestFormatters(t *testing.T) {
	s := summary()

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, s))
		assert.Contains(t, buf.String(), "1,207")
		assert.Contains(t, buf.String(), "ASIC")
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatJSON).Format(&buf, s))
		assert.Contains(t, buf.String(), `"run_id": "run-1"`)
		assert.Contains(t, buf.String(), `"left_only": 3`)
		assert.NotContains(t, buf.String(), "LeftOnlyLabel")
	})

	t.Run("yaml", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatYAML).Format(&buf, s))
		assert.Contains(t, buf.String(), "run_id: run-1")
		assert.Contains(t, buf.String(), "asset_class: IR")
	})

	t.Run("table falls back to json", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewFormatter(FormatTable).Format(&buf, map[string]int{"n": 1}))
		assert.Contains(t, buf.String(), `"n": 1`)
	})
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("YAML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)

	assert.Equal(t, FormatJSON, DetectFormat("json"))
}

func TestProfileList(t *testing.T) {
	reg, err := profile.Default()
	require.NoError(t, err)

	ctx, err := reg.Lookup("JFSA", "EQD")
	require.NoError(t, err)

	d := ProfileList{ctx}.TableData()
	require.Len(t, d.Rows, 1)
	assert.Equal(t, "JFSA", d.Rows[0][0])
	assert.Equal(t, "equity", d.Rows[0][2])
	assert.Equal(t, "reference", d.Rows[0][6])
	assert.Equal(t, "Reference Prefix", d.Headers[5])
}

func TestStageSummary(t *testing.T) {
	d := StageSummary{Context: "ASIC/FX", Side: "reference", Input: 2500, Output: 2400, Fields: 9, File: "out.txt"}.TableData()
	assert.Equal(t, []string{"Input Records", "2,500"}, d.Rows[2])
}
