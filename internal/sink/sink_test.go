package sink

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tradematch/internal/ingest"
	"github.com/agentstation/tradematch/pkg/dataset"
)

func sample(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New("asic_fx",
		[]string{"TSR_UTI Value", "Deriv1_Party1 LEI", "match_outcome"},
		[][]string{
			{"abc|1", "L1", "matched"},
			{"line\nbreak", "?", "left-only"},
			{`"q",1`, "", "right-only"},
		})
	require.NoError(t, err)
	return ds
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(t)))

	want := "tsr_uti_value|deriv1_party1_lei|match_outcome\n" +
		"abc_1|L1|matched\n" +
		"line_break||left-only\n" +
		"q1||right-only\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteOptions(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, sample(t),
		WithoutSanitize(),
		WithSeparator(','),
		WithRename(map[string]string{"match_outcome": "status"}),
	)
	require.NoError(t, err)

	lines := bytes.SplitN(buf.Bytes(), []byte("\n"), 2)
	assert.Equal(t, "TSR_UTI Value,Deriv1_Party1 LEI,status", string(lines[0]))
}

func TestWriteIntermediateReadsBack(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, sample(t), Intermediate()...))

	back, err := ingest.Read(&buf, "intermediate", ingest.Options{})
	require.NoError(t, err)
	assert.Equal(t, sample(t).Fields(), back.Fields())
	require.Equal(t, 3, back.Len())
	for i := range 3 {
		assert.Equal(t, sample(t).Record(i).Values(), back.Record(i).Values())
	}
}

func TestPrepare(t *testing.T) {
	ds, err := Prepare(sample(t), WithRename(map[string]string{"TSR_UTI Value": "UTI"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"uti", "deriv1_party1_lei", "match_outcome"}, ds.Fields())

	_, err = Prepare(sample(t), WithRename(map[string]string{"TSR_UTI Value": "match_outcome"}))
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "asic_fx.txt")
	require.NoError(t, WriteFile(path, sample(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "abc_1|L1|matched")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be renamed away")
}

func TestApplyLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "columns.yaml")
	first := dataset.MustNew("r", []string{"a", "b"}, [][]string{{"1", "2"}})

	res, err := ApplyLock(path, first, false)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Same(t, first, res.Dataset)

	lock, err := LoadLock(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lock.Columns)

	second := dataset.MustNew("r", []string{"b", "c"}, [][]string{{"2", "3"}})
	res, err = ApplyLock(path, second, false)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, []string{"c"}, res.Added)
	assert.Equal(t, []string{"a"}, res.Filled)
	assert.Equal(t, []string{"a", "b"}, res.Dataset.Fields())
	assert.Equal(t, []string{"", "2"}, res.Dataset.Record(0).Values())

	res, err = ApplyLock(path, second, true)
	require.NoError(t, err)
	assert.True(t, res.Created)
	lock, err = LoadLock(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, lock.Columns)
}

func TestLoadLockMissing(t *testing.T) {
	lock, err := LoadLock(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Nil(t, lock)
}

func TestSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.db")
	db, err := OpenSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	table := TableName("ASIC", "FX")
	assert.Equal(t, "asic_fx", table)

	ctx := context.Background()
	require.NoError(t, db.Write(ctx, table, sample(t)))
	// rewriting replaces the table
	require.NoError(t, db.Write(ctx, table, sample(t)))

	var n int
	require.NoError(t, db.DB().QueryRow(`SELECT COUNT(*) FROM asic_fx`).Scan(&n))
	assert.Equal(t, 3, n)

	var outcome string
	require.NoError(t, db.DB().QueryRow(`SELECT match_outcome FROM asic_fx WHERE "TSR_UTI Value" = ?`, "abc|1").Scan(&outcome))
	assert.Equal(t, "matched", outcome)

	empty := dataset.MustNew("e", nil, nil)
	assert.Error(t, db.Write(ctx, "e", empty))
}
