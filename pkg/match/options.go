package match

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/tradematch/pkg/errors"
	"github.com/agentstation/tradematch/pkg/logging"
)

type options struct {
	observers []Observer
	logger    *zerolog.Logger
	quiet     bool
}

func defaultOptions() *options {
	return &options{}
}

// Option configures a Matcher.
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

// WithObserver adds an observer notified after every pass.
func WithObserver(observer Observer) Option {
	return func(o *options) error {
		if observer == nil {
			return &errors.ValidationError{
				Field:   "observer",
				Message: "cannot be nil",
			}
		}
		o.observers = append(o.observers, observer)
		return nil
	}
}

// WithLogger sets the logger. The default observer logs through it.
func WithLogger(logger *zerolog.Logger) Option {
	return func(o *options) error {
		o.logger = logger
		return nil
	}
}

// WithoutPassLogging drops the default per-pass log observer.
func WithoutPassLogging() Option {
	return func(o *options) error {
		o.quiet = true
		return nil
	}
}
