package app

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/logging"
)

// EnvPrefix prefixes every environment variable read by the CLI.
const EnvPrefix = "TRADEMATCH"

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Engine configuration
	ProfilesFile string
	ChunkSize    int
	SpillDir     string
	Parallel     int
	MetricsFile  string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
	LogFields map[string]any
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables (TRADEMATCH_*)
//  3. .env files
//  4. Config file (.tradematch.yaml in the working or home directory)
//  5. Defaults
func LoadConfig() (*Config, error) {
	return loadConfig(viper.New(), "")
}

// LoadConfigFile loads configuration reading the given file instead of
// searching for .tradematch.yaml.
func LoadConfigFile(path string) (*Config, error) {
	return loadConfig(viper.New(), path)
}

func loadConfig(v *viper.Viper, configFile string) (*Config, error) {
	loadEnvFiles()

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	v.SetDefault("chunk_size", constants.DefaultChunkSize)
	v.SetDefault("parallel", constants.DefaultParallelContexts)

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".tradematch")
	}

	// only a missing, undeclared config file is fine
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.WrapParse("yaml", configFile, err)
		}
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		ProfilesFile: v.GetString("profiles"),
		ChunkSize:    v.GetInt("chunk_size"),
		SpillDir:     v.GetString("spill_dir"),
		Parallel:     v.GetInt("parallel"),
		MetricsFile:  v.GetString("metrics_file"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: stringOrEnv(v, "log_format", "LOG_FORMAT", "auto"),
		LogOutput: stringOrEnv(v, "log_output", "LOG_OUTPUT", "stderr"),
		LogFields: logging.ParseFields(stringOrEnv(v, "log_fields", "LOG_FIELDS", "")),
	}, nil
}

// UpdateFromFlags applies parsed command flags, which take precedence over
// config file and environment values.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads .env then .env.local. godotenv never overrides
// variables that are already set.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// stringOrEnv reads key from viper (config file or TRADEMATCH_ variable),
// then the unprefixed environment variable env, then def.
func stringOrEnv(v *viper.Viper, key, env, def string) string {
	if value := v.GetString(key); value != "" {
		return value
	}
	if value := os.Getenv(env); value != "" {
		return value
	}
	return def
}
