package sink

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/normalize"
)

// Prepare applies renaming and column sanitizing, returning the dataset
// that would be written.
func Prepare(ds *dataset.Dataset, opts ...Option) (*dataset.Dataset, error) {
	o := Defaults().Apply(opts...)
	return prepare(ds, &o)
}

func prepare(ds *dataset.Dataset, o *Options) (*dataset.Dataset, error) {
	var err error
	if len(o.rename) > 0 {
		if ds, err = ds.Rename(o.rename); err != nil {
			return nil, err
		}
	}
	if !o.sanitize {
		return ds, nil
	}

	mapping := make(map[string]string)
	for _, f := range ds.Fields() {
		if clean := normalize.SanitizeColumn(f); clean != f {
			mapping[f] = clean
		}
	}
	if len(mapping) == 0 {
		return ds, nil
	}
	return ds.Rename(mapping)
}

// Write writes ds to w as a header line followed by one line per record.
func Write(w io.Writer, ds *dataset.Dataset, opts ...Option) error {
	o := Defaults().Apply(opts...)
	ds, err := prepare(ds, &o)
	if err != nil {
		return err
	}

	if o.quote {
		return writeQuoted(w, ds, &o)
	}

	bw := bufio.NewWriter(w)
	sep := string(o.separator)
	clean := func(v string) string { return v }
	if o.sanitize {
		clean = normalize.SanitizeValue
	}

	if _, err := bw.WriteString(strings.Join(ds.Fields(), sep) + "\n"); err != nil {
		return err
	}
	for _, rec := range ds.All() {
		values := rec.Values()
		for i, v := range values {
			values[i] = clean(v)
		}
		if _, err := bw.WriteString(strings.Join(values, sep) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeQuoted(w io.Writer, ds *dataset.Dataset, o *Options) error {
	cw := csv.NewWriter(w)
	cw.Comma = o.separator
	if err := cw.Write(ds.Fields()); err != nil {
		return err
	}
	for _, rec := range ds.All() {
		values := rec.Values()
		if o.sanitize {
			for i, v := range values {
				values[i] = normalize.SanitizeValue(v)
			}
		}
		if err := cw.Write(values); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes ds to path. The file is written to a temporary sibling
// and renamed into place so readers never see a partial file.
func WriteFile(path string, ds *dataset.Dataset, opts ...Option) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tradematch-*.tmp")
	if err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck

	if err := Write(tmp, ds, opts...); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	if err := os.Chmod(tmpPath, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
