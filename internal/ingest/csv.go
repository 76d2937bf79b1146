package ingest

import (
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/logging"
)

// Options configures CSV reading.
type Options struct {
	// Separator defaults to a comma.
	Separator rune

	// SkipHeader drops records before the header row.
	SkipHeader int

	// SkipFooter drops trailing records.
	SkipFooter int

	// Rename maps header names to new names.
	Rename map[string]string

	// ReportDate, when set, is added to every record as report_date.
	ReportDate string
}

// ReadFiles reads and concatenates files in order. name labels the result.
func ReadFiles(ctx context.Context, name string, paths []string, opts Options) (*dataset.Dataset, error) {
	log := logging.FromContext(ctx)

	parts := make([]*dataset.Dataset, 0, len(paths))
	for _, path := range paths {
		ds, err := ReadFile(path, opts)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("file", path).Int("records", ds.Len()).Msg("Read input file")
		parts = append(parts, ds)
	}

	out := dataset.Concat(name, parts...)
	log.Info().Str("dataset", name).Int("files", len(paths)).Int("records", out.Len()).Msg("Ingested")
	return out, nil
}

// ReadFile reads one delimited file.
func ReadFile(path string, opts Options) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck

	return Read(f, filepath.Base(path), opts)
}

// Read parses delimited records from r. Short records are padded with empty
// values; records longer than the header are an error.
func Read(r io.Reader, name string, opts Options) (*dataset.Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = constants.DefaultInputSeparator
	if opts.Separator != 0 {
		cr.Comma = opts.Separator
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var (
		header []string
		rows   [][]string
		line   int
	)
	for {
		rec, err := cr.Read()
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.WrapParse("csv", name, err)
		}
		line++
		if line <= opts.SkipHeader {
			continue
		}
		if header == nil {
			header = cleanHeader(rec)
			continue
		}
		if len(rec) > len(header) {
			return nil, &errors.ParseError{
				Format:  "csv",
				File:    name,
				Line:    line,
				Message: fmt.Sprintf("record has %d fields, header has %d", len(rec), len(header)),
			}
		}
		if len(rec) < len(header) {
			rec = append(rec, make([]string, len(header)-len(rec))...)
		}
		rows = append(rows, rec)
	}

	if header == nil {
		return nil, errors.NewParseError("csv", name, "no header row", nil)
	}
	if opts.SkipFooter > 0 {
		rows = rows[:max(0, len(rows)-opts.SkipFooter)]
	}

	ds, err := dataset.New(name, header, rows)
	if err != nil {
		return nil, errors.WrapParse("csv", name, err)
	}
	if len(opts.Rename) > 0 {
		if ds, err = ds.Rename(opts.Rename); err != nil {
			return nil, err
		}
	}
	if opts.ReportDate != "" {
		dates := make([]string, ds.Len())
		for i := range dates {
			dates[i] = opts.ReportDate
		}
		if ds, err = ds.WithColumns(dataset.Column{Name: constants.ReportDateColumn, Values: dates}); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func cleanHeader(rec []string) []string {
	out := make([]string, len(rec))
	for i, h := range rec {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.TrimSpace(h)
	}
	return out
}
