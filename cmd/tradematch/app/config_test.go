package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/tradematch/pkg/constants"
)

func TestLoadConfig(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultChunkSize, config.ChunkSize)
	assert.Equal(t, constants.DefaultParallelContexts, config.Parallel)
	assert.NotEmpty(t, config.LogFormat)
}

func TestConfig_EnvironmentVariables(t *testing.T) {
	t.Setenv("TRADEMATCH_CHUNK_SIZE", "500")
	t.Setenv("TRADEMATCH_PROFILES", "/etc/tradematch/contexts.yaml")
	t.Setenv("TRADEMATCH_FORMAT", "json")
	t.Setenv("TRADEMATCH_VERBOSE", "true")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 500, config.ChunkSize)
	assert.Equal(t, "/etc/tradematch/contexts.yaml", config.ProfilesFile)
	assert.Equal(t, "json", config.Format)
	assert.True(t, config.Verbose)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tradematch.yaml")
	content := "chunk_size: 42\nspill_dir: /var/tmp/spill\nparallel: 3\nmetrics_file: out.prom\n"
	require.NoError(t, os.WriteFile(path, []byte(content), constants.FilePermissions))

	config, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, path, config.ConfigFile)
	assert.Equal(t, 42, config.ChunkSize)
	assert.Equal(t, "/var/tmp/spill", config.SpillDir)
	assert.Equal(t, 3, config.Parallel)
	assert.Equal(t, "out.prom", config.MetricsFile)
}

func TestLoadConfigFileLogging(t *testing.T) {
	t.Setenv("LOG_FORMAT", "console")
	path := filepath.Join(t.TempDir(), "tradematch.yaml")
	content := "log_format: json\nlog_output: logs/run.log\nlog_fields: use_case=diagnostic,env=uat\n"
	require.NoError(t, os.WriteFile(path, []byte(content), constants.FilePermissions))

	config, err := LoadConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "json", config.LogFormat, "the config file wins over LOG_FORMAT")
	assert.Equal(t, "logs/run.log", config.LogOutput)
	assert.Equal(t, map[string]any{"use_case": "diagnostic", "env": "uat"}, config.LogFields)
}

func TestLoadConfigFileErrors(t *testing.T) {
	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: [\n"), constants.FilePermissions))
	_, err = LoadConfigFile(path)
	assert.Error(t, err)
}

func TestUpdateFromFlags(t *testing.T) {
	config := &Config{Format: "yaml", LogLevel: "warn"}
	config.UpdateFromFlags(true, false, true, "", "")

	assert.True(t, config.Verbose)
	assert.True(t, config.NoColor)
	assert.Equal(t, "yaml", config.Format, "empty flag keeps configured format")
	assert.Equal(t, "warn", config.LogLevel)

	config.UpdateFromFlags(false, false, false, "json", "debug")
	assert.Equal(t, "json", config.Format)
	assert.Equal(t, "debug", config.LogLevel)
}
