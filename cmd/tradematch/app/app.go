// Package app provides the application context and dependency management
// for the tradematch CLI: configuration, logging, the business context
// registry and metrics, created once and shared by every command.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/tradematch"
	"github.com/agentstation/tradematch/internal/cmd/output"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/metrics"
	"github.com/agentstation/tradematch/pkg/profile"
)

// App represents the tradematch application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	// Lazily created, guarded by mu.
	mu       sync.Mutex
	profiles *profile.Registry
	metrics  *metrics.Metrics
}

// New creates a new App with configuration loaded from the environment.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}
	return app, nil
}

// Version returns the version information.
func (a *App) Version() string { return a.version }

// Commit returns the git commit hash.
func (a *App) Commit() string { return a.commit }

// Date returns the build date.
func (a *App) Date() string { return a.date }

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string { return a.builtBy }

// Config returns the application configuration.
func (a *App) Config() *Config { return a.config }

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger { return a.logger }

// OutputFormat returns the explicit format or one detected from the terminal.
func (a *App) OutputFormat() string {
	return string(output.DetectFormat(a.config.Format))
}

// Parallel returns the configured context parallelism, at least one.
func (a *App) Parallel() int {
	return max(1, a.config.Parallel)
}

// Profiles loads the business context registry on first use.
func (a *App) Profiles() (*profile.Registry, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.profiles != nil {
		return a.profiles, nil
	}

	var (
		reg *profile.Registry
		err error
	)
	if a.config.ProfilesFile != "" {
		reg, err = profile.LoadFile(a.config.ProfilesFile)
	} else {
		reg, err = profile.Default()
	}
	if err != nil {
		return nil, err
	}
	a.profiles = reg
	return reg, nil
}

// Metrics returns the process metrics, creating them on first use.
func (a *App) Metrics() *metrics.Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.metrics == nil {
		a.metrics = metrics.New(nil)
	}
	return a.metrics
}

// EngineOptions translates configuration into engine options.
func (a *App) EngineOptions() []tradematch.Option {
	var opts []tradematch.Option
	if a.config.ChunkSize > 0 {
		opts = append(opts, tradematch.WithChunkSize(a.config.ChunkSize))
	}
	if a.config.SpillDir != "" {
		opts = append(opts, tradematch.WithSpillDir(a.config.SpillDir))
	}
	return opts
}

// Shutdown flushes metrics to the configured textfile so failed runs still
// leave their counts behind.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	m := a.metrics
	a.mu.Unlock()

	if m == nil || a.config.MetricsFile == "" {
		return nil
	}
	if err := m.WriteTextfile(a.config.MetricsFile); err != nil {
		return errors.WrapIO("write", a.config.MetricsFile, err)
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithProfiles sets the business context registry (useful for testing).
func WithProfiles(reg *profile.Registry) Option {
	return func(a *App) error {
		a.profiles = reg
		return nil
	}
}

// WithMetrics sets the metrics set (useful for testing).
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *App) error {
		a.metrics = m
		return nil
	}
}
