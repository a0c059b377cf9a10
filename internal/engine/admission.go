package engine

import (
	"context"
	"time"
)

// beginGeneration reserves a queue slot and then the single in-flight slot.
// Returns a release func to be deferred.
func (e *Engine) beginGeneration(ctx context.Context) (func(), error) {
	// Try to reserve a queue slot with timeout
	select {
	case e.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-time.After(e.maxWait):
		return func() {}, tooBusyError{modelID: e.model.ID}
	}

	// Wait to acquire the single in-flight slot
	acquired := false
	defer func() {
		if !acquired {
			<-e.queueCh
		}
	}()
	select {
	case e.genCh <- struct{}{}:
		acquired = true
		return func() { <-e.genCh; <-e.queueCh }, nil
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-time.After(e.maxWait):
		return func() {}, tooBusyError{modelID: e.model.ID}
	}
}
