package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/tradematch/pkg/constants"
)

// Config holds logger configuration options.
//
// Batch runs usually log JSON to a file next to the reconciliation output,
// while interactive runs log to a terminal in console format. Format "auto"
// picks between the two by checking whether stderr is a terminal.
type Config struct {
	// Level is the minimum log level to output (trace, debug, info, warn,
	// error, or none)
	Level string

	// Format is the output format (json, console, pretty, auto)
	Format string

	// Output is where to write logs: stderr, stdout, discard, or a file path.
	// Missing parent directories of a file path are created.
	Output string

	// TimeFormat for console timestamps (kitchen, rfc3339, rfc3339nano,
	// unix, or a Go layout)
	TimeFormat string

	// NoColor disables color output in console mode
	NoColor bool

	// AddCaller includes file:line in log output
	AddCaller bool

	// Fields are default fields added to every entry, such as the use case
	// or environment of a scheduled run
	Fields map[string]any
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Level:      "info",
		Format:     "auto", // console on a terminal, json otherwise
		Output:     "stderr",
		TimeFormat: "kitchen",
		NoColor:    os.Getenv("NO_COLOR") != "",
		Fields:     make(map[string]any),
	}
}

// NewLoggerFromConfig creates a new logger from configuration. A nil config
// uses DefaultConfig. The global zerolog level is set to the configured level.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	logger := zerolog.New(getWriter(cfg)).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Debug runs always carry the caller.
	if cfg.AddCaller || level <= zerolog.DebugLevel {
		logger = logger.With().Caller().Logger()
	}

	if len(cfg.Fields) > 0 {
		ctx := logger.With()
		for k, v := range cfg.Fields {
			ctx = addField(ctx, k, v)
		}
		logger = ctx.Logger()
	}

	return logger
}

// Configure replaces the default logger with one built from cfg.
func Configure(cfg *Config) {
	SetDefault(NewLoggerFromConfig(cfg))
}

// ConfigureFromEnv configures the default logger from environment variables.
// Each setting is read from TRADEMATCH_LOG_<NAME>, then LOG_<NAME>:
//
//	LEVEL, FORMAT, OUTPUT, TIME_FORMAT, CALLER (true/false), FIELDS (k=v,k=v)
//
// NO_COLOR disables console colors.
func ConfigureFromEnv() {
	Configure(&Config{
		Level:      envOrDefault("LEVEL", "info"),
		Format:     envOrDefault("FORMAT", "auto"),
		Output:     envOrDefault("OUTPUT", "stderr"),
		TimeFormat: envOrDefault("TIME_FORMAT", "kitchen"),
		NoColor:    os.Getenv("NO_COLOR") != "",
		AddCaller:  envOrDefault("CALLER", "") == "true",
		Fields:     ParseFields(envOrDefault("FIELDS", "")),
	})
}

// ParseFields parses comma-separated key=value pairs such as
// "use_case=diagnostic,env=prod". Entries without '=' are ignored.
func ParseFields(fields string) map[string]any {
	result := make(map[string]any)
	if fields == "" {
		return result
	}

	for _, field := range strings.Split(fields, ",") {
		key, value, ok := strings.Cut(field, "=")
		if key = strings.TrimSpace(key); ok && key != "" {
			result[key] = strings.TrimSpace(value)
		}
	}
	return result
}

// getWriter resolves the destination and wraps it for console output when
// the format asks for it. An unwritable log file falls back to stderr.
func getWriter(cfg *Config) io.Writer {
	var output io.Writer
	tty := false

	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		output = os.Stderr
		tty = terminal(os.Stderr)
	case "stdout":
		output = os.Stdout
		tty = terminal(os.Stdout)
	case "discard", "none":
		output = io.Discard
	default:
		if file, err := openLogFile(cfg.Output); err == nil {
			output = file
		} else {
			output = os.Stderr
			tty = terminal(os.Stderr)
		}
	}

	format := strings.ToLower(cfg.Format)
	if format == "" || format == "auto" {
		format = "json"
		if tty {
			format = "console"
		}
	}

	switch format {
	case "console", "pretty":
		return zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: parseTimeFormat(cfg.TimeFormat),
			NoColor:    cfg.NoColor,
		}
	default:
		return output
	}
}

// openLogFile opens path for appending, creating it and its parent
// directories.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.FilePermissions)
}

// parseLevel accepts zerolog level names plus a few common aliases. Unknown
// levels fall back to info.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "warning":
		return zerolog.WarnLevel
	case "none", "off":
		return zerolog.Disabled
	}
	if l, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		return l
	}
	return zerolog.InfoLevel
}

// parseTimeFormat maps a time format name to a Go layout.
func parseTimeFormat(format string) string {
	switch strings.ToLower(format) {
	case "", "kitchen":
		return time.Kitchen
	case "rfc3339":
		return time.RFC3339
	case "rfc3339nano":
		return time.RFC3339Nano
	case "unix", "epoch":
		return "" // empty means Unix timestamp
	}
	// Use as-is if it looks like a layout
	if strings.Contains(format, "2006") || strings.Contains(format, "15:04") {
		return format
	}
	return time.Kitchen
}

// addField adds a field to the logger context based on its type.
func addField(ctx zerolog.Context, key string, value any) zerolog.Context {
	switch v := value.(type) {
	case string:
		return ctx.Str(key, v)
	case int:
		return ctx.Int(key, v)
	case int64:
		return ctx.Int64(key, v)
	case float64:
		return ctx.Float64(key, v)
	case bool:
		return ctx.Bool(key, v)
	case []string:
		return ctx.Strs(key, v)
	case time.Time:
		return ctx.Time(key, v)
	case error:
		if key == "error" || key == "err" {
			return ctx.Err(v)
		}
		return ctx.Str(key, v.Error())
	default:
		return ctx.Interface(key, v)
	}
}

// envOrDefault returns TRADEMATCH_LOG_<name>, then LOG_<name>, then def.
func envOrDefault(name, def string) string {
	for _, key := range []string{"TRADEMATCH_LOG_" + name, "LOG_" + name} {
		if value := os.Getenv(key); value != "" {
			return value
		}
	}
	return def
}
