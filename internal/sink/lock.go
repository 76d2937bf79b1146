package sink

import (
	"os"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/dataset"
	"github.com/agentstation/tradematch/pkg/errors"
)

// ColumnLock pins the output column list of a report across runs.
type ColumnLock struct {
	Columns []string `yaml:"columns" json:"columns"`
}

// LoadLock reads a lock file. A missing file returns a nil lock.
func LoadLock(path string) (*ColumnLock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapIO("read", path, err)
	}
	var lock ColumnLock
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return &lock, nil
}

// Save writes the lock to path.
func (l *ColumnLock) Save(path string) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

// LockResult describes what ApplyLock did.
type LockResult struct {
	Dataset *dataset.Dataset
	// Created is true when the lock was written by this call.
	Created bool
	// Added lists output columns absent from the lock. They are dropped.
	Added []string
	// Filled lists locked columns absent from the output. They are empty.
	Filled []string
}

// ApplyLock projects ds onto the columns recorded at path. When no lock
// exists, or update is set, the current columns are saved instead and ds is
// returned unchanged.
func ApplyLock(path string, ds *dataset.Dataset, update bool) (*LockResult, error) {
	lock, err := LoadLock(path)
	if err != nil {
		return nil, err
	}
	if lock == nil || update {
		lock = &ColumnLock{Columns: ds.Fields()}
		if err := lock.Save(path); err != nil {
			return nil, err
		}
		return &LockResult{Dataset: ds, Created: true}, nil
	}

	res := &LockResult{}
	for _, f := range ds.Fields() {
		if !slices.Contains(lock.Columns, f) {
			res.Added = append(res.Added, f)
		}
	}
	res.Filled = ds.Missing(lock.Columns...)

	if res.Dataset, err = ds.Project(lock.Columns); err != nil {
		return nil, err
	}
	return res, nil
}
