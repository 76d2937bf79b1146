// Package logging provides structured logging for tradematch using zerolog.
// Engine stages log through a *zerolog.Logger taken from options or from the
// context; the CLI configures the process-wide default once at startup.
//
// Example usage:
//
//	ctx := logging.WithRunID(context.Background(), runID)
//	ctx = logging.WithAssetClass(ctx, "FX")
//	logging.FromContext(ctx).Info().Int("matched", 42).Msg("Key pair pass complete")
package logging

import (
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Nop discards everything.
var Nop = zerolog.Nop()

var defaultLogger = bootstrap()

// bootstrap builds the logger used until Configure runs: console output on a
// terminal, JSON otherwise, level from LOG_LEVEL.
func bootstrap() zerolog.Logger {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") != "" {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx := zerolog.New(os.Stderr).Level(level).With().Timestamp()
	if terminal(os.Stderr) && os.Getenv("LOG_FORMAT") != "json" {
		ctx = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.Kitchen,
			NoColor:    os.Getenv("NO_COLOR") != "",
		}).Level(level).With().Timestamp()
	}
	if level <= zerolog.DebugLevel {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// Default returns the process-wide logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the process-wide logger, including zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// OrDefault returns logger, or the default logger when logger is nil.
// Engine options use it so a zero-value option set still logs somewhere.
func OrDefault(logger *zerolog.Logger) *zerolog.Logger {
	if logger == nil {
		return Default()
	}
	return logger
}

func terminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
