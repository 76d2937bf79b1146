package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNew(t testing.TB, patternType PatternType, pattern string, opts ...Options) Matcher {
	t.Helper()
	m, err := New(patternType, pattern, opts...)
	require.NoError(t, err)
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		pattern     string
		patternType PatternType
		wantType    PatternType
		wantErr     bool
	}{
		{"glob", "*.csv", Glob, Glob, false},
		{"regex", `^sFTP_ASIC_.*\.csv$`, Regex, Regex, false},
		{"invalid regex", "[unclosed", Regex, Regex, true},
		{"invalid glob", "[unclosed", Glob, Glob, true},
		{"auto glob", "sFTP_ASIC_*_2024-06-28.*.csv", Auto, Glob, false},
		{"auto regex", `^DerivOne_\d+\.csv$`, Auto, Regex, false},
		{"unknown type", "x", PatternType(9), PatternType(9), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.patternType, tt.pattern)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, m.(*matcher).patternType)
		})
	}
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name        string
		patternType PatternType
		pattern     string
		opts        Options
		input       string
		matches     bool
	}{
		{"glob hit", Glob, "TSR_*.csv", Options{}, "TSR_FX.csv", true},
		{"glob miss", Glob, "TSR_*.csv", Options{}, "TSR_FX.txt", false},
		{"glob case", Glob, "tsr_*.CSV", Options{CaseInsensitive: true}, "TSR_fx.csv", true},
		{"regex hit", Regex, `FX_\d{8}`, Options{}, "DerivOne_FX_20240628.csv", true},
		{"regex anchored", Regex, `FX_\d{8}`, Options{Anchored: true}, "DerivOne_FX_20240628.csv", false},
		{"regex case", Regex, "derivone", Options{CaseInsensitive: true}, "DerivOne.csv", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustNew(t, tt.patternType, tt.pattern, tt.opts)
			assert.Equal(t, tt.matches, m.Match(tt.input))
		})
	}
}

func TestFilter(t *testing.T) {
	m := mustNew(t, Glob, "tsr_*.csv")
	got := m.Filter("deriv1_FX.csv", "tsr_FX.csv", "tsr_IR.csv", "tsr_IR.txt")
	assert.Equal(t, []string{"tsr_FX.csv", "tsr_IR.csv"}, got)
	assert.Empty(t, m.Filter("notes.txt"))
}

func TestAny(t *testing.T) {
	a, err := NewAny(Glob, []string{"*.csv", "*.txt"})
	require.NoError(t, err)
	assert.True(t, a.Match("a.txt"))
	assert.False(t, a.Match("a.json"))
	assert.Equal(t, []string{"a.csv", "b.txt"}, a.Filter("a.csv", "a.csv", "b.txt", "c.md"))

	mixed, err := NewAny(Auto, []string{"tsr_*.csv", `^deriv1_(FX|IR)\.csv$`}, Options{Anchored: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"tsr_FX.csv", "deriv1_IR.csv"},
		mixed.Filter("tsr_FX.csv", "deriv1_IR.csv", "deriv1_CR.csv"))

	_, err = NewAny(Regex, []string{"ok", "("})
	assert.Error(t, err)
}

func TestIsPattern(t *testing.T) {
	assert.True(t, IsPattern("*.csv"))
	assert.True(t, IsPattern(`^a\d$`))
	assert.False(t, IsPattern("data/tsr.csv"))
}

func TestPatternTypeString(t *testing.T) {
	assert.Equal(t, "glob", Glob.String())
	assert.Equal(t, "regex", Regex.String())
	assert.Equal(t, "auto", Auto.String())
	assert.Equal(t, "unknown", PatternType(7).String())
}

func BenchmarkGlobMatch(b *testing.B) {
	m := mustNew(b, Glob, "sFTP_ASIC_EOD_Trade_State_Report_*.csv")
	for i := 0; i < b.N; i++ {
		m.Match("sFTP_ASIC_EOD_Trade_State_Report_FX-2024-06-28.csv")
	}
}
