package tradematch

import (
	"sync"
	"time"
)

// Stage names reported to hooks, logs and metrics.
const (
	StageKeys  = "keys"
	StageDedup = "dedup"
	StageMatch = "match"
)

// StageReport describes one completed pipeline stage.
type StageReport struct {
	Stage    string
	Side     string // empty for the match stage
	Input    int
	Output   int
	Duration time.Duration
}

// StageHook is called after every pipeline stage.
type StageHook func(StageReport)

// hooks manages stage callbacks.
type hooks struct {
	mu      sync.RWMutex
	onStage []StageHook
}

func newHooks() *hooks {
	return &hooks{}
}

// OnStage registers a callback for completed stages.
func (h *hooks) OnStage(fn StageHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onStage = append(h.onStage, fn)
}

func (h *hooks) trigger(r StageReport) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.onStage {
		fn(r)
	}
}
