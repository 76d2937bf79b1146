package tradematch

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/match"
	"github.com/agentstation/tradematch/pkg/metrics"
)

// config holds engine settings assembled from options.
type config struct {
	chunkSize int
	spillDir  string
	useSpill  bool
	logger    *zerolog.Logger
	metrics   *metrics.Metrics
	observers []match.Observer

	// Per-side dedup overrides; nil keeps the profile setting.
	dedupPrimary   *bool
	dedupReference *bool
}

func defaultConfig() *config {
	return &config{chunkSize: constants.DefaultChunkSize}
}

// Option is a function that configures an Engine.
type Option func(*config) error

// WithChunkSize sets the window size for key generation and identity
// derivation.
func WithChunkSize(n int) Option {
	return func(c *config) error {
		if n < constants.MinChunkSize {
			return &errors.ValidationError{Field: "chunk_size", Value: n, Message: "must be positive"}
		}
		c.chunkSize = n
		return nil
	}
}

// WithSpillDir groups deduplication identities in SQLite files under dir.
func WithSpillDir(dir string) Option {
	return func(c *config) error {
		c.spillDir = dir
		c.useSpill = true
		return nil
	}
}

// WithLogger sets the engine logger. By default the logger is taken from the
// context passed to Reconcile.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// WithMetrics records stage counts, dedup statistics and per key pair matches.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) error {
		c.metrics = m
		return nil
	}
}

// WithObserver adds a match observer.
func WithObserver(o match.Observer) Option {
	return func(c *config) error {
		if o == nil {
			return &errors.ValidationError{Field: "observer", Message: "cannot be nil"}
		}
		c.observers = append(c.observers, o)
		return nil
	}
}

// WithDedup overrides the profile's deduplication toggle for one side.
func WithDedup(side string, enabled bool) Option {
	return func(c *config) error {
		switch side {
		case constants.SidePrimary:
			c.dedupPrimary = &enabled
		case constants.SideReference:
			c.dedupReference = &enabled
		default:
			return &errors.ValidationError{Field: "side", Value: side, Message: "must be primary or reference"}
		}
		return nil
	}
}
