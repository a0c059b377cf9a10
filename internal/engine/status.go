package engine

import (
	"sync/atomic"
	"time"

	"inferd/pkg/types"
)

// Status returns a read-only projection of the engine state.
func (e *Engine) Status() types.StatusResponse {
	e.mu.RLock()
	state := e.state
	lastErr := e.lastErr
	e.mu.RUnlock()

	inflight := len(e.genCh)
	queued := len(e.queueCh) - inflight
	if queued < 0 {
		queued = 0
	}

	now := time.Now()
	return types.StatusResponse{
		ModelID:          e.model.ID,
		ModelPath:        e.model.Path,
		State:            string(state),
		LastError:        lastErr,
		QueueLen:         queued,
		Inflight:         inflight,
		MaxQueueDepth:    e.maxQueueDepth,
		GenerationsTotal: atomic.LoadUint64(&e.generations),
		UptimeSeconds:    int64(now.Sub(e.startTime).Seconds()),
		ServerTimeUnix:   now.Unix(),
	}
}
