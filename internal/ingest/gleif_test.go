package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/logging"
)

const gleifCSV = `LEI,Entity Name,Country
5493001KJTIIGC8Y1R12,Bloomberg Finance L.P.,US
 529900t8bm49aursdo55 , Deutsche Bank AG ,DE
,Orphan Holdings,GB
5493001KJTIIGC8Y1R12,Bloomberg Finance LP,US
`

func TestLoadEntityNames(t *testing.T) {
	path := writeFile(t, t.TempDir(), "gleif.csv", gleifCSV)

	names, err := LoadEntityNames(path)
	require.NoError(t, err)
	assert.Len(t, names, 2, "blank LEIs are skipped")

	name, ok := names.Name("529900T8BM49AURSDO55")
	require.True(t, ok)
	assert.Equal(t, "Deutsche Bank AG", name)

	name, ok = names.Name(" 5493001kjtiigc8y1r12")
	require.True(t, ok)
	assert.Equal(t, "Bloomberg Finance LP", name, "the last row for an LEI wins")

	_, ok = names.Name("UNKNOWN")
	assert.False(t, ok)
}

func TestLoadEntityNamesRequiresColumns(t *testing.T) {
	path := writeFile(t, t.TempDir(), "gleif.csv", "LEI,Legal Name\nX,Y\n")
	_, err := LoadEntityNames(path)
	require.Error(t, err)
	assert.True(t, errors.IsMissingField(err))

	_, err = LoadEntityNames(writeFile(t, t.TempDir(), "empty.csv", ""))
	assert.Error(t, err)
}

func TestEnrich(t *testing.T) {
	names := EntityNames{"529900T8BM49AURSDO55": "Deutsche Bank AG"}
	ctx := logging.WithLogger(context.Background(), logging.NewNopLogger())

	ds := dataset.MustNew("msr",
		[]string{"UTI", "Reporting Counterparty LEI", "Other Counterparty LEI"},
		[][]string{
			{"U1", "529900t8bm49aursdo55", "X"},
			{"U2", "", "529900T8BM49AURSDO55"},
		})

	out, err := names.Enrich(ctx, ds, "Reporting Counterparty LEI", "Other Counterparty LEI")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"UTI", "Reporting Counterparty LEI", "Other Counterparty LEI",
		"Reporting Counterparty LEI Entity Name", "Other Counterparty LEI Entity Name",
	}, out.Fields())

	reporting, _ := out.Column("Reporting Counterparty LEI Entity Name")
	assert.Equal(t, []string{"Deutsche Bank AG", ""}, reporting)
	other, _ := out.Column("Other Counterparty LEI Entity Name")
	assert.Equal(t, []string{"", "Deutsche Bank AG"}, other)
	assert.False(t, ds.Has("Reporting Counterparty LEI Entity Name"), "input is unchanged")

	again, err := names.Enrich(ctx, out, "Reporting Counterparty LEI")
	require.NoError(t, err)
	assert.Equal(t, out.Fields(), again.Fields())

	same, err := names.Enrich(ctx, ds)
	require.NoError(t, err)
	assert.Same(t, ds, same)

	_, err = names.Enrich(ctx, ds, "Party1 LEI")
	require.Error(t, err)
	assert.True(t, errors.IsMissingField(err))
}
