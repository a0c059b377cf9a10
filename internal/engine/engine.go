package engine

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/modelfile"
)

// State represents lifecycle state of the engine.
type State string

const (
	StateReady   State = "ready"
	StateLoading State = "loading"
	StateError   State = "error"
)

// Engine coordinates access to the single model instance this process
// serves. The model is loaded once at construction and shared read-only
// across request handlers; generation is serialized through the admission
// queue.
type Engine struct {
	mu      sync.RWMutex
	state   State
	lastErr string

	model   modelfile.Model
	runtime Runtime
	log     zerolog.Logger

	// Queueing primitives: queueCh bounds waiters, genCh is the single
	// in-flight generation slot.
	genCh   chan struct{}
	queueCh chan struct{}

	maxQueueDepth int
	maxWait       time.Duration

	cache *responseCache

	startTime   time.Time
	generations uint64
}

// New constructs an Engine for the resolved model with package defaults.
func New(m modelfile.Model) (*Engine, error) {
	return NewWithConfig(EngineConfig{Model: m})
}

// Ready reports whether the engine can serve inference requests.
func (e *Engine) Ready() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state == StateReady && e.runtime != nil
}

// Model returns the resolved checkpoint this engine serves.
func (e *Engine) Model() modelfile.Model {
	return e.model
}

// Close releases the runtime and stops the response cache.
func (e *Engine) Close() error {
	if e.cache != nil {
		e.cache.stop()
	}
	if e.runtime != nil {
		return e.runtime.Close()
	}
	return nil
}

func (e *Engine) setState(s State, errMsg string) {
	e.mu.Lock()
	e.state = s
	e.lastErr = errMsg
	e.mu.Unlock()
}

func (e *Engine) noteError(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	e.lastErr = err.Error()
	e.mu.Unlock()
}
