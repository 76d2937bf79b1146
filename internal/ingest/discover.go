// Package ingest turns delimited input files into datasets: file discovery by
// glob or regex, header and footer skipping, column renaming, report date
// extraction and LEI entity name enrichment.
package ingest

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/agentstation/tradematch/internal/matcher"
	"github.com/agentstation/tradematch/pkg/errors"
)

// Discover returns the files matching any of patterns, sorted by path and
// without duplicates. The directory part of a pattern is taken literally; the
// file name part may be a glob or a regular expression. A pattern without
// metacharacters names a single file that must exist. Patterns sharing a
// directory are matched together, and every directory must yield a file.
func Discover(patterns ...string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, errors.NewValidationError("pattern", "", "at least one file pattern is required")
	}

	var (
		paths []string
		dirs  []string
		bases = make(map[string][]string)
	)
	for _, pattern := range patterns {
		dir, base := filepath.Split(pattern)
		if dir == "" {
			dir = "."
		}
		if !matcher.IsPattern(base) {
			if _, err := os.Stat(pattern); err != nil {
				if os.IsNotExist(err) {
					return nil, errors.NewNotFoundError("input file", pattern)
				}
				return nil, errors.WrapIO("stat", pattern, err)
			}
			paths = append(paths, pattern)
			continue
		}
		if _, ok := bases[dir]; !ok {
			dirs = append(dirs, dir)
		}
		bases[dir] = append(bases[dir], base)
	}

	for _, dir := range dirs {
		found, err := discoverDir(dir, bases[dir])
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}

	slices.Sort(paths)
	return slices.Compact(paths), nil
}

// discoverDir lists the regular files of dir matching any of bases.
func discoverDir(dir string, bases []string) ([]string, error) {
	m, err := matcher.NewAny(matcher.Auto, bases, matcher.Options{Anchored: true})
	if err != nil {
		return nil, &errors.ValidationError{Field: "pattern", Value: strings.Join(bases, ", "), Message: err.Error()}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.WrapIO("read", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}

	matched := m.Filter(names...)
	if len(matched) == 0 {
		return nil, errors.NewNotFoundError("input file", filepath.Join(dir, strings.Join(bases, " | ")))
	}
	paths := make([]string, len(matched))
	for i, name := range matched {
		paths[i] = filepath.Join(dir, name)
	}
	return paths, nil
}
