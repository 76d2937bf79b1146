package match

import (
	"github.com/rs/zerolog"
)

// PassReport describes one completed key-pair pass.
type PassReport struct {
	Index              int
	Pair               KeyPair
	Matched            int
	PrimaryRemaining   int
	ReferenceRemaining int
}

// Observer is notified after every key-pair pass.
type Observer interface {
	PassCompleted(PassReport)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(PassReport)

// PassCompleted implements Observer.
func (f ObserverFunc) PassCompleted(r PassReport) { f(r) }

// LogObserver logs one info line per pass.
func LogObserver(logger *zerolog.Logger) Observer {
	return ObserverFunc(func(r PassReport) {
		logger.Info().
			Int("pass", r.Index+1).
			Str("key_pair", r.Pair.Name()).
			Int("matched", r.Matched).
			Int("primary_remaining", r.PrimaryRemaining).
			Int("reference_remaining", r.ReferenceRemaining).
			Msg("Key pair pass complete")
	})
}
