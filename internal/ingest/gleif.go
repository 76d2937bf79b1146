package ingest

import (
	"context"
	"strings"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/logging"
	"github.com/agentstation/tradematch/pkg/normalize"
)

// EntityNames maps normalized LEIs to legal entity names.
type EntityNames map[string]string

// LoadEntityNames reads a GLEIF extract: a CSV file with LEI and Entity Name
// columns. Rows with a blank LEI are skipped; when an LEI repeats, the last
// row wins.
func LoadEntityNames(path string) (EntityNames, error) {
	ds, err := ReadFile(path, Options{})
	if err != nil {
		return nil, err
	}
	if err := ds.RequireFields(constants.GLEIFLEIColumn, constants.GLEIFNameColumn); err != nil {
		return nil, err
	}

	leis, _ := ds.Column(constants.GLEIFLEIColumn)
	names, _ := ds.Column(constants.GLEIFNameColumn)
	out := make(EntityNames, len(leis))
	for i, lei := range leis {
		if k := normalize.Identifier(lei); k != "" {
			out[k] = strings.TrimSpace(names[i])
		}
	}
	return out, nil
}

// Name returns the entity name for a raw LEI value.
func (n EntityNames) Name(lei string) (string, bool) {
	name, ok := n[normalize.Identifier(lei)]
	return name, ok
}

// Enrich returns ds with a "<column> Entity Name" column after the existing
// fields for every LEI column named. LEIs absent from n get an empty name.
// Every column must exist; re-enriching replaces earlier name columns.
func (n EntityNames) Enrich(ctx context.Context, ds *dataset.Dataset, columns ...string) (*dataset.Dataset, error) {
	if len(columns) == 0 {
		return ds, nil
	}
	if err := ds.RequireFields(columns...); err != nil {
		return nil, err
	}

	cols := make([]dataset.Column, len(columns))
	unknown := 0
	for k, c := range columns {
		leis, _ := ds.Column(c)
		values := make([]string, len(leis))
		for i, lei := range leis {
			if normalize.IsBlank(lei) {
				continue
			}
			name, ok := n.Name(lei)
			if !ok {
				unknown++
			}
			values[i] = name
		}
		cols[k] = dataset.Column{Name: c + constants.EntityNameSuffix, Values: values}
	}

	out, err := ds.WithColumns(cols...)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug().
		Str("dataset", ds.Name()).
		Strs("columns", columns).
		Int("unknown_leis", unknown).
		Msg("Added entity names")
	return out, nil
}
