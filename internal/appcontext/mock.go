package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tradematch"
	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/logging"
	"github.com/agentstation/tradematch/pkg/metrics"
	"github.com/agentstation/tradematch/pkg/profile"
)

// Mock provides a mock implementation of Interface for testing.
// Nil function fields fall back to working defaults: the embedded profiles,
// a fresh metrics set and a no-op logger.
type Mock struct {
	ProfilesFunc      func() (*profile.Registry, error)
	MetricsValue      *metrics.Metrics
	EngineOptionsFunc func() []tradematch.Option
	LoggerFunc        func() *zerolog.Logger
	Format            string
	ParallelValue     int
	VersionValue      string
}

// Profiles returns the mock registry or the embedded defaults.
func (m *Mock) Profiles() (*profile.Registry, error) {
	if m.ProfilesFunc != nil {
		return m.ProfilesFunc()
	}
	return profile.Default()
}

// Metrics returns the mock metrics, creating them on first use.
func (m *Mock) Metrics() *metrics.Metrics {
	if m.MetricsValue == nil {
		m.MetricsValue = metrics.New(nil)
	}
	return m.MetricsValue
}

// EngineOptions returns the mock options or none.
func (m *Mock) EngineOptions() []tradematch.Option {
	if m.EngineOptionsFunc != nil {
		return m.EngineOptionsFunc()
	}
	return nil
}

// Logger returns the mock logger or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	return logging.NewNopLogger()
}

// OutputFormat returns the mock format.
func (m *Mock) OutputFormat() string { return m.Format }

// Parallel returns the mock bound or the default.
func (m *Mock) Parallel() int {
	if m.ParallelValue > 0 {
		return m.ParallelValue
	}
	return constants.DefaultParallelContexts
}

// Version returns the mock version.
func (m *Mock) Version() string { return m.VersionValue }

// Commit returns a fixed commit.
func (m *Mock) Commit() string { return "mock" }

// Date returns a fixed date.
func (m *Mock) Date() string { return "mock" }

// BuiltBy returns a fixed builder.
func (m *Mock) BuiltBy() string { return "mock" }

var _ Interface = (*Mock)(nil)
