// Package appcontext provides the application context interface shared by
// all commands, so command packages depend on an interface rather than on
// the concrete App.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tradematch"
	"github.com/agentstation/tradematch/pkg/metrics"
	"github.com/agentstation/tradematch/pkg/profile"
)

// Interface defines what commands need from the application.
type Interface interface {
	// Profiles returns the business context registry: the embedded
	// defaults, or the file named by --profiles.
	Profiles() (*profile.Registry, error)

	// Metrics returns the process-wide metrics set.
	Metrics() *metrics.Metrics

	// EngineOptions returns engine options derived from configuration,
	// such as chunk size and spill directory.
	EngineOptions() []tradematch.Option

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Parallel bounds concurrently reconciled business contexts.
	Parallel() int

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}
