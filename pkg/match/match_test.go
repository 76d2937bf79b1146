package match_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/keys"
	"github.com/agentstation/tradematch/pkg/logging"
	"github.com/agentstation/tradematch/pkg/match"
)

func quiet() []match.Option {
	return []match.Option{match.WithLogger(logging.NewNopLogger())}
}

func newMatcher(t *testing.T, pairs []match.KeyPair, opts ...match.Option) *match.Matcher {
	t.Helper()
	m, err := match.New(pairs, append(quiet(), opts...)...)
	require.NoError(t, err)
	return m
}

func TestNewRejectsBadPairs(t *testing.T) {
	_, err := match.New(nil)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))

	_, err = match.New([]match.KeyPair{{Primary: "a", Reference: " "}})
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))

	_, err = match.New([]match.KeyPair{{Primary: "a", Reference: "b"}}, match.WithObserver(nil))
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

// Differently cased identifier parts normalize to the same key and match.
func TestScenarioNormalizedKeysMatch(t *testing.T) {
	shape := keys.Shape{Keys: []keys.Declaration{{Name: "key_usi", Fields: []string{"USI_Prefix", "USI_Value"}}}}
	gen, err := keys.New(shape, keys.WithLogger(logging.NewNopLogger()))
	require.NoError(t, err)

	primary, err := gen.Generate(dataset.MustNew("p", []string{"USI_Prefix", "USI_Value"}, [][]string{{"ABC", "123"}}))
	require.NoError(t, err)
	reference, err := gen.Generate(dataset.MustNew("r", []string{"USI_Prefix", "USI_Value"}, [][]string{{"abc", "123"}}))
	require.NoError(t, err)

	m := newMatcher(t, []match.KeyPair{{Primary: "P_key_usi", Reference: "R_key_usi", Label: "usi"}})
	res, err := m.Match(primary.Prefix("P_"), reference.Prefix("R_"))
	require.NoError(t, err)

	assert.Equal(t, match.Counts{Matched: 1}, res.Counts())
	out, err := res.Dataset(match.ModeFull)
	require.NoError(t, err)
	assert.Equal(t, "matched", out.Value(0, constants.MatchOutcomeColumn))
	assert.Equal(t, "usi", out.Value(0, constants.MatchKeyColumn))
	assert.Equal(t, "ABC123", out.Value(0, "P_key_usi"))
	assert.Equal(t, "ABC123", out.Value(0, "R_key_usi"))
}

// A record matched on an earlier key pair is not available to later ones.
func TestScenarioEarlierPairWins(t *testing.T) {
	primary := dataset.MustNew("p", []string{"p_id", "p_usi", "p_uti"}, [][]string{
		{"A", "U1", "T1"},
	})
	reference := dataset.MustNew("r", []string{"r_id", "r_usi", "r_uti"}, [][]string{
		{"X", "U1", ""},
		{"B", "", "T1"},
	})
	m := newMatcher(t, []match.KeyPair{
		{Primary: "p_usi", Reference: "r_usi", Label: "usi"},
		{Primary: "p_uti", Reference: "r_uti", Label: "uti"},
	})
	res, err := m.Match(primary, reference)
	require.NoError(t, err)

	assert.Equal(t, []match.Pair{{Primary: 0, Reference: 0, Pass: 0}}, res.Matches())
	assert.Equal(t, []int{1}, res.RightOnly())
	assert.Equal(t, map[string]int{"usi": 1, "uti": 0}, res.MatchedBy())

	out, err := res.Dataset(match.ModeFull)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	assert.Equal(t, "X", out.Value(0, "r_id"))
	assert.Equal(t, "right-only", out.Value(1, constants.MatchOutcomeColumn))
	assert.Equal(t, "B", out.Value(1, "r_id"))
	assert.Equal(t, "", out.Value(1, "p_id"))
}

// Inner mode yields exactly the successful joins across all passes.
func TestScenarioInnerCountsJoinsOnce(t *testing.T) {
	primary := dataset.MustNew("p", []string{"p_a", "p_b"}, [][]string{
		{"1", "x"},
		{"2", "y"},
		{"3", "z"},
		{"", "w"},
	})
	reference := dataset.MustNew("r", []string{"r_a", "r_b"}, [][]string{
		{"1", "y"},
		{"9", "y"},
		{"8", "w"},
		{"7", "q"},
	})
	m := newMatcher(t, []match.KeyPair{
		{Primary: "p_a", Reference: "r_a"},
		{Primary: "p_b", Reference: "r_b"},
	})
	res, err := m.Match(primary, reference)
	require.NoError(t, err)

	inner, err := res.Dataset(match.ModeInner)
	require.NoError(t, err)
	assert.Equal(t, 3, inner.Len())
	for i := 0; i < inner.Len(); i++ {
		assert.Equal(t, "matched", inner.Value(i, constants.MatchOutcomeColumn))
	}
	assert.Equal(t, len(res.Matches()), inner.Len())
}

func TestEmptyKeysNeverMatch(t *testing.T) {
	primary := dataset.MustNew("p", []string{"pk"}, [][]string{{""}, {"  "}, {"K"}})
	reference := dataset.MustNew("r", []string{"rk"}, [][]string{{""}, {"  "}, {"K"}})
	m := newMatcher(t, []match.KeyPair{{Primary: "pk", Reference: "rk"}})

	res, err := m.Match(primary, reference)
	require.NoError(t, err)
	assert.Equal(t, []match.Pair{{Primary: 2, Reference: 2}}, res.Matches())
	assert.Equal(t, match.Counts{Matched: 1, LeftOnly: 2, RightOnly: 2}, res.Counts())
}

func TestEqualValueGroupsPairInOrdinalOrder(t *testing.T) {
	primary := dataset.MustNew("p", []string{"pk"}, [][]string{{"K"}, {"K"}, {"K"}})
	reference := dataset.MustNew("r", []string{"rk"}, [][]string{{"J"}, {"K"}, {"K"}})
	m := newMatcher(t, []match.KeyPair{{Primary: "pk", Reference: "rk"}})

	res, err := m.Match(primary, reference)
	require.NoError(t, err)
	assert.Equal(t, []match.Pair{
		{Primary: 0, Reference: 1},
		{Primary: 1, Reference: 2},
	}, res.Matches())
	assert.Equal(t, []int{2}, res.LeftOnly())
	assert.Equal(t, []int{0}, res.RightOnly())
}

func TestConservationAndAtMostOneMatch(t *testing.T) {
	var prows, rrows [][]string
	for i := 0; i < 60; i++ {
		prows = append(prows, []string{fmt.Sprint(i), fmt.Sprint(i % 9), fmt.Sprint(i % 4)})
	}
	for i := 0; i < 45; i++ {
		rrows = append(rrows, []string{fmt.Sprint(i), fmt.Sprint(i % 7), fmt.Sprint(i % 5)})
	}
	primary := dataset.MustNew("p", []string{"p_id", "p_a", "p_b"}, prows)
	reference := dataset.MustNew("r", []string{"r_id", "r_a", "r_b"}, rrows)

	m := newMatcher(t, []match.KeyPair{
		{Primary: "p_a", Reference: "r_a"},
		{Primary: "p_b", Reference: "r_b"},
		{Primary: "p_id", Reference: "r_id"},
	})
	res, err := m.Match(primary, reference)
	require.NoError(t, err)

	full, err := res.Dataset(match.ModeFull)
	require.NoError(t, err)
	c := res.Counts()
	assert.Equal(t, full.Len(), c.Total())

	seenP := map[string]int{}
	seenR := map[string]int{}
	for _, r := range full.All() {
		if id := r.Get("p_id"); r.Get(constants.MatchOutcomeColumn) != "right-only" {
			seenP[id]++
		}
		if id := r.Get("r_id"); r.Get(constants.MatchOutcomeColumn) != "left-only" {
			seenR[id]++
		}
	}
	assert.Len(t, seenP, primary.Len())
	assert.Len(t, seenR, reference.Len())
	for id, n := range seenP {
		assert.Equal(t, 1, n, "primary %s", id)
	}
	for id, n := range seenR {
		assert.Equal(t, 1, n, "reference %s", id)
	}
	assert.Equal(t, primary.Len(), c.Matched+c.LeftOnly)
	assert.Equal(t, reference.Len(), c.Matched+c.RightOnly)
}

func TestModes(t *testing.T) {
	primary := dataset.MustNew("p", []string{"pk"}, [][]string{{"A"}, {"B"}})
	reference := dataset.MustNew("r", []string{"rk"}, [][]string{{"A"}, {"C"}, {"D"}})
	m := newMatcher(t, []match.KeyPair{{Primary: "pk", Reference: "rk"}})
	res, err := m.Match(primary, reference)
	require.NoError(t, err)

	tests := map[match.Mode][]string{
		match.ModeInner: {"matched"},
		match.ModeLeft:  {"matched", "left-only"},
		match.ModeRight: {"matched", "right-only", "right-only"},
		match.ModeFull:  {"matched", "left-only", "right-only", "right-only"},
	}
	for mode, want := range tests {
		t.Run(string(mode), func(t *testing.T) {
			out, err := res.Dataset(mode)
			require.NoError(t, err)
			got, _ := out.Column(constants.MatchOutcomeColumn)
			assert.Equal(t, want, got)
			assert.Equal(t, []string{"pk", "rk", constants.MatchOutcomeColumn, constants.MatchKeyColumn}, out.Fields())
		})
	}

	_, err = res.Dataset("outer")
	assert.True(t, errors.IsValidationError(err))
}

func TestOutcomeLabel(t *testing.T) {
	primary := dataset.MustNew("p", []string{"pk"}, [][]string{{"A"}})
	reference := dataset.MustNew("r", []string{"rk"}, nil)
	m := newMatcher(t, []match.KeyPair{{Primary: "pk", Reference: "rk"}})
	res, err := m.Match(primary, reference)
	require.NoError(t, err)

	out, err := res.Dataset(match.ModeLeft, match.WithOutcomeLabel(match.LeftOnly, constants.UnmatchedLabel))
	require.NoError(t, err)
	assert.Equal(t, "unmatched", out.Value(0, constants.MatchOutcomeColumn))
}

func TestParseMode(t *testing.T) {
	m, err := match.ParseMode(" FULL ")
	require.NoError(t, err)
	assert.Equal(t, match.ModeFull, m)
	_, err = match.ParseMode("outer")
	assert.Error(t, err)
	assert.Len(t, match.Modes(), 4)
}

func TestMatchMissingFields(t *testing.T) {
	primary := dataset.MustNew("primary", []string{"p_usi"}, nil)
	reference := dataset.MustNew("reference", []string{"r_usi"}, nil)
	m := newMatcher(t, []match.KeyPair{
		{Primary: "p_usi", Reference: "r_usi"},
		{Primary: "p_uti", Reference: "r_uti"},
	})

	_, err := m.Match(primary, reference)
	require.Error(t, err)
	var mfe *errors.MissingFieldError
	require.ErrorAs(t, err, &mfe)
	assert.Equal(t, []string{"primary.p_uti", "reference.r_uti"}, mfe.Fields)
}

func TestMatchRejectsCollisions(t *testing.T) {
	m := newMatcher(t, []match.KeyPair{{Primary: "k", Reference: "k"}})
	_, err := m.Match(
		dataset.MustNew("p", []string{"k"}, nil),
		dataset.MustNew("r", []string{"k"}, nil),
	)
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))

	m = newMatcher(t, []match.KeyPair{{Primary: "pk", Reference: "rk"}})
	_, err = m.Match(
		dataset.MustNew("p", []string{"pk"}, nil),
		dataset.MustNew("r", []string{"rk", constants.MatchOutcomeColumn}, nil),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), constants.MatchOutcomeColumn)
}

func TestCheckFields(t *testing.T) {
	require.NoError(t, match.CheckFields([]string{"TSR_a", "TSR_k"}, []string{"D1_a", "D1_k"}))

	err := match.CheckFields([]string{"a", "b", constants.MatchKeyColumn}, []string{"b", "c"})
	require.Error(t, err)
	assert.True(t, errors.IsConfiguration(err))
	assert.Contains(t, err.Error(), "b, "+constants.MatchKeyColumn)
}

func TestLogToKeepsPairs(t *testing.T) {
	tl := logging.NewTestLogger(t)
	m := newMatcher(t, []match.KeyPair{{Primary: "pk", Reference: "rk"}})
	logged := m.LogTo(tl.Logger)
	assert.Equal(t, m.Pairs(), logged.Pairs())

	_, err := logged.Match(
		dataset.MustNew("primary", []string{"pk"}, [][]string{{"A"}}),
		dataset.MustNew("reference", []string{"rk"}, nil),
	)
	require.NoError(t, err)
	tl.AssertContains(t, "dataset reference has no records")
}

func TestEmptyInputWarns(t *testing.T) {
	tl := logging.NewTestLogger(t)
	primary := dataset.MustNew("primary", []string{"pk"}, [][]string{{"A"}, {"B"}})
	reference := dataset.MustNew("reference", []string{"rk"}, nil)

	m, err := match.New([]match.KeyPair{{Primary: "pk", Reference: "rk"}}, match.WithLogger(tl.Logger))
	require.NoError(t, err)
	res, err := m.Match(primary, reference)
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.True(t, errors.IsEmptyInput(res.Warnings[0]))
	assert.Equal(t, match.Counts{LeftOnly: 2}, res.Counts())
	assert.Empty(t, res.Passes, "no pass runs against an empty pool")
	tl.AssertContains(t, "dataset reference has no records")
}

func TestObserverAndEarlyStop(t *testing.T) {
	primary := dataset.MustNew("p", []string{"pa", "pb"}, [][]string{{"1", "x"}})
	reference := dataset.MustNew("r", []string{"ra", "rb"}, [][]string{{"1", "x"}, {"2", "y"}})

	var reports []match.PassReport
	m := newMatcher(t,
		[]match.KeyPair{{Primary: "pa", Reference: "ra"}, {Primary: "pb", Reference: "rb"}},
		match.WithObserver(match.ObserverFunc(func(r match.PassReport) { reports = append(reports, r) })),
	)
	_, err := m.Match(primary, reference)
	require.NoError(t, err)

	require.Len(t, reports, 1, "primary pool is empty after the first pass")
	assert.Equal(t, 1, reports[0].Matched)
	assert.Equal(t, 0, reports[0].PrimaryRemaining)
	assert.Equal(t, 1, reports[0].ReferenceRemaining)
}

func TestLogObserver(t *testing.T) {
	tl := logging.NewTestLogger(t)
	primary := dataset.MustNew("p", []string{"pa"}, [][]string{{"1"}})
	reference := dataset.MustNew("r", []string{"ra"}, [][]string{{"1"}})

	m, err := match.New([]match.KeyPair{{Primary: "pa", Reference: "ra", Label: "usi"}}, match.WithLogger(tl.Logger))
	require.NoError(t, err)
	_, err = m.Match(primary, reference)
	require.NoError(t, err)

	tl.AssertContains(t, "Key pair pass complete")
	tl.AssertContains(t, `"key_pair":"usi"`)

	tl2 := logging.NewTestLogger(t)
	m, err = match.New([]match.KeyPair{{Primary: "pa", Reference: "ra"}}, match.WithLogger(tl2.Logger), match.WithoutPassLogging())
	require.NoError(t, err)
	_, err = m.Match(primary, reference)
	require.NoError(t, err)
	tl2.AssertNotContains(t, "Key pair pass complete")
}

func TestMatchDoesNotModifyInputs(t *testing.T) {
	primary := dataset.MustNew("p", []string{"pk"}, [][]string{{"A"}})
	reference := dataset.MustNew("r", []string{"rk"}, [][]string{{"A"}})
	m := newMatcher(t, []match.KeyPair{{Primary: "pk", Reference: "rk"}})

	res, err := m.Match(primary, reference)
	require.NoError(t, err)
	_, err = res.Dataset(match.ModeFull)
	require.NoError(t, err)

	assert.Equal(t, []string{"pk"}, primary.Fields())
	assert.Equal(t, []string{"rk"}, reference.Fields())
}

func TestKeyPairName(t *testing.T) {
	assert.Equal(t, "k", match.KeyPair{Primary: "k", Reference: "k"}.Name())
	assert.Equal(t, "a=b", match.KeyPair{Primary: "a", Reference: "b"}.Name())
	assert.Equal(t, "usi", match.KeyPair{Primary: "a", Reference: "b", Label: "usi"}.Name())
}
