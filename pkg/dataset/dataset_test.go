package dataset_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/errors"
)

func sample(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("trades", []string{"id", "usi"}, [][]string{
		{"1", "abc"},
		{"2", "def"},
		{"3", ""},
	})
	require.NoError(t, err)
	return ds
}

func TestNew(t *testing.T) {
	ds := sample(t)
	assert.Equal(t, "trades", ds.Name())
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, []string{"id", "usi"}, ds.Fields())
	assert.Equal(t, "def", ds.Value(1, "usi"))
	assert.Equal(t, "", ds.Value(1, "nope"))
}

func TestNewValidation(t *testing.T) {
	t.Run("ragged row", func(t *testing.T) {
		_, err := dataset.New("x", []string{"a", "b"}, [][]string{{"1"}})
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})
	t.Run("duplicate field", func(t *testing.T) {
		_, err := dataset.New("x", []string{"a", "a"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate field")
	})
	t.Run("empty field", func(t *testing.T) {
		_, err := dataset.Empty("x", []string{""})
		require.Error(t, err)
	})
}

func TestNewCopiesRows(t *testing.T) {
	rows := [][]string{{"1", "abc"}}
	ds, err := dataset.New("x", []string{"id", "usi"}, rows)
	require.NoError(t, err)
	rows[0][1] = "changed"
	assert.Equal(t, "abc", ds.Value(0, "usi"))

	values := ds.Record(0).Values()
	values[0] = "changed"
	assert.Equal(t, "1", ds.Value(0, "id"))
}

func TestFromRecords(t *testing.T) {
	ds, err := dataset.FromRecords("x", []string{"a", "b"}, []map[string]string{
		{"a": "1", "b": "2", "ignored": "z"},
		{"a": "3"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "3", "b": ""}, ds.Record(1).Map())
}

func TestMissing(t *testing.T) {
	ds := sample(t)
	assert.Empty(t, ds.Missing("id", "usi"))
	assert.Equal(t, []string{"uti", "lei"}, ds.Missing("uti", "id", "lei", "uti"))
	assert.Nil(t, ds.RequireFields("id"))

	err := ds.RequireFields("uti", "lei")
	require.NotNil(t, err)
	assert.Equal(t, "trades", err.Dataset)
	assert.Equal(t, []string{"uti", "lei"}, err.Fields)
}

func TestRecord(t *testing.T) {
	ds := sample(t)
	r := ds.Record(2)
	assert.Equal(t, 2, r.Ordinal())
	assert.Equal(t, "3", r.Get("id"))
	v, ok := r.Lookup("usi")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	_, ok = r.Lookup("nope")
	assert.False(t, ok)
}

func TestAll(t *testing.T) {
	ds := sample(t)
	var ids []string
	for i, r := range ds.All() {
		assert.Equal(t, i, r.Ordinal())
		ids = append(ids, r.Get("id"))
	}
	assert.Equal(t, []string{"1", "2", "3"}, ids)
}

func TestWindows(t *testing.T) {
	rows := make([][]string, 7)
	for i := range rows {
		rows[i] = []string{"v"}
	}
	ds := dataset.MustNew("x", []string{"a"}, rows)

	windows := slices.Collect(ds.Windows(3))
	assert.Equal(t, []dataset.Window{{Start: 0, End: 3}, {Start: 3, End: 6}, {Start: 6, End: 7}}, windows)
	assert.Equal(t, 1, windows[2].Len())

	assert.Equal(t, []dataset.Window{{Start: 0, End: 7}}, slices.Collect(ds.Windows(0)))

	empty := dataset.MustNew("x", []string{"a"}, nil)
	assert.Empty(t, slices.Collect(empty.Windows(3)))
}

func TestSelectAndSlice(t *testing.T) {
	ds := sample(t)
	sel := ds.Select([]int{2, 0})
	assert.Equal(t, 2, sel.Len())
	assert.Equal(t, "3", sel.Value(0, "id"))
	assert.Equal(t, "1", sel.Value(1, "id"))

	sl := ds.Slice(1, 3)
	assert.Equal(t, 2, sl.Len())
	assert.Equal(t, "2", sl.Value(0, "id"))
}

func TestWithColumns(t *testing.T) {
	ds := sample(t)

	out, err := ds.WithColumns(
		dataset.Column{Name: "key", Values: []string{"K1", "K2", "K3"}},
		dataset.Column{Name: "usi", Values: []string{"X", "Y", "Z"}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "usi", "key"}, out.Fields())
	assert.Equal(t, "Y", out.Value(1, "usi"))
	assert.Equal(t, "K3", out.Value(2, "key"))

	// Input is untouched.
	assert.Equal(t, []string{"id", "usi"}, ds.Fields())
	assert.Equal(t, "def", ds.Value(1, "usi"))

	_, err = ds.WithColumns(dataset.Column{Name: "short", Values: []string{"1"}})
	assert.Error(t, err)
}

func TestPrefix(t *testing.T) {
	ds := sample(t)
	p := ds.Prefix("TSR_")
	assert.Equal(t, []string{"TSR_id", "TSR_usi"}, p.Fields())
	assert.Equal(t, "abc", p.Value(0, "TSR_usi"))
	assert.Same(t, ds, ds.Prefix(""))
}

func TestRename(t *testing.T) {
	ds := sample(t)
	out, err := ds.Rename(map[string]string{"usi": "USI Value"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "USI Value"}, out.Fields())

	_, err = ds.Rename(map[string]string{"usi": "id"})
	assert.Error(t, err)
}

func TestProject(t *testing.T) {
	ds := sample(t)
	out, err := ds.Project([]string{"usi", "extra"})
	require.NoError(t, err)
	assert.Equal(t, []string{"usi", "extra"}, out.Fields())
	assert.Equal(t, []string{"abc", ""}, out.Record(0).Values())
}

func TestConcat(t *testing.T) {
	a := dataset.MustNew("a", []string{"id", "usi"}, [][]string{{"1", "x"}})
	b := dataset.MustNew("b", []string{"id", "uti"}, [][]string{{"2", "y"}})
	out := dataset.Concat("both", a, b)
	assert.Equal(t, "both", out.Name())
	assert.Equal(t, []string{"id", "usi", "uti"}, out.Fields())
	assert.Equal(t, []string{"1", "x", ""}, out.Record(0).Values())
	assert.Equal(t, []string{"2", "", "y"}, out.Record(1).Values())
}

func TestColumn(t *testing.T) {
	ds := sample(t)
	col, ok := ds.Column("usi")
	assert.True(t, ok)
	assert.Equal(t, []string{"abc", "def", ""}, col)
	_, ok = ds.Column("nope")
	assert.False(t, ok)
}
