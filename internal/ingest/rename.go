package ingest

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/tradematch/pkg/errors"
)

// LoadRenameMap reads a column rename table. JSON and YAML are both accepted.
func LoadRenameMap(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	var m map[string]string
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	return m, nil
}
