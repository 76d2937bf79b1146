// Package sink writes reconciled datasets: pipe-delimited files, CSV stage
// intermediates, SQLite tables and the column lock that keeps output schemas
// stable across runs.
package sink

import "github.com/agentstation/tradematch/pkg/constants"

// Options is the configuration for delimited output.
type Options struct {
	separator rune
	sanitize  bool
	quote     bool
	rename    map[string]string
}

// Separator returns the field separator.
func (o *Options) Separator() rune { return o.separator }

// Sanitize reports whether values and column names are cleaned.
func (o *Options) Sanitize() bool { return o.sanitize }

// Defaults returns the default output options.
func Defaults() *Options {
	return &Options{
		separator: constants.DefaultOutputSeparator,
		sanitize:  true,
	}
}

// Apply applies the given options.
func (o *Options) Apply(opts ...Option) Options {
	for _, opt := range opts {
		opt(o)
	}
	return *o
}

// Option is a function that configures output options.
type Option func(*Options)

// WithSeparator sets the field separator.
func WithSeparator(sep rune) Option {
	return func(o *Options) {
		if sep != 0 {
			o.separator = sep
		}
	}
}

// WithoutSanitize writes values and column names unchanged.
func WithoutSanitize() Option {
	return func(o *Options) {
		o.sanitize = false
	}
}

// WithQuoting writes RFC 4180 records, quoting values that contain the
// separator, quotes or line breaks, so the file reads back through ingest.
func WithQuoting() Option {
	return func(o *Options) {
		o.quote = true
	}
}

// Intermediate returns the options for stage files that are read back as
// input: comma-separated, quoted, with headers and values unchanged.
func Intermediate() []Option {
	return []Option{WithSeparator(constants.DefaultInputSeparator), WithoutSanitize(), WithQuoting()}
}

// WithRename renames columns before sanitizing.
func WithRename(m map[string]string) Option {
	return func(o *Options) {
		o.rename = m
	}
}
