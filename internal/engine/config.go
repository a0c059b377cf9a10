package engine

import (
	"time"

	"github.com/rs/zerolog"

	"inferd/internal/modelfile"
)

// maxNewTokens caps every generation. The cap is fixed: it does not vary with
// prompt length or per request.
const maxNewTokens = 128

// Defaults applied when corresponding EngineConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultLlamaCtx      = 2048
	defaultLlamaThreads  = 4
)

// EngineConfig encapsulates all tunables for Engine construction.
type EngineConfig struct {
	// Model is the resolved checkpoint (id + local artifact path).
	Model modelfile.Model
	// Runtime overrides the default llama runtime; used by tests.
	Runtime Runtime
	// Logger for structured engine logs. Nop logger when unset.
	Logger *zerolog.Logger

	MaxQueueDepth int
	MaxWait       time.Duration
	// CacheTTL enables the prompt response cache when positive.
	CacheTTL time.Duration
	// llama.cpp configuration (no envs; set by callers)
	LlamaCtx     int
	LlamaThreads int
}

// NewWithConfig constructs an Engine from EngineConfig. The model runtime is
// initialized synchronously: when this returns without error the engine is
// ready to serve.
func NewWithConfig(cfg EngineConfig) (*Engine, error) {
	e := &Engine{
		model:     cfg.Model,
		state:     StateLoading,
		startTime: time.Now(),
	}
	if cfg.Logger != nil {
		e.log = *cfg.Logger
	} else {
		e.log = zerolog.Nop()
	}
	if cfg.MaxQueueDepth <= 0 {
		e.maxQueueDepth = defaultMaxQueueDepth
	} else {
		e.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxWait <= 0 {
		e.maxWait = defaultMaxWait
	} else {
		e.maxWait = cfg.MaxWait
	}
	e.genCh = make(chan struct{}, 1)
	e.queueCh = make(chan struct{}, e.maxQueueDepth)

	if cfg.CacheTTL > 0 {
		e.cache = newResponseCache(cfg.CacheTTL)
	}

	if cfg.Runtime != nil {
		e.runtime = cfg.Runtime
	} else {
		rt, err := NewLlamaRuntime(cfg.Model.Path, pick(cfg.LlamaCtx, defaultLlamaCtx), pick(cfg.LlamaThreads, defaultLlamaThreads))
		if err != nil {
			e.setState(StateError, err.Error())
			return nil, err
		}
		e.runtime = rt
	}
	e.setState(StateReady, "")
	return e, nil
}

func pick(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
