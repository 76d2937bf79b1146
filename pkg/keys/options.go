package keys

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tradematch/pkg/constants"
	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/logging"
)

type options struct {
	chunkSize int
	logger    *zerolog.Logger
}

func defaultOptions() *options {
	return &options{
		chunkSize: constants.DefaultChunkSize,
	}
}

// Option configures a Generator.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = logging.Default()
	}
	return o, nil
}

func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithChunkSize sets how many records are keyed per window.
func WithChunkSize(n int) Option {
	return func(o *options) error {
		if n < constants.MinChunkSize {
			return &errors.ValidationError{
				Field:   "chunk_size",
				Value:   n,
				Message: "must be positive",
			}
		}
		o.chunkSize = n
		return nil
	}
}

// WithLogger sets the logger used for stage progress.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}
