//go:build !llama

package engine

// This file provides a no-CGO stub for the llama runtime. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.
// The real runtime lives in adapter_llama.go (tagged 'llama').

import (
	"context"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = false

// llamaRuntime is a stub that satisfies Runtime but refuses to run inference
// without the 'llama' build tag. This avoids any mocked behavior in
// production binaries built without CGO support.
type llamaRuntime struct{}

// NewLlamaRuntime succeeds so the daemon can start and report its state, but
// every call on the returned runtime fails fast.
func NewLlamaRuntime(modelPath string, ctxSize, threads int) (Runtime, error) {
	return &llamaRuntime{}, nil
}

func (r *llamaRuntime) Tokenize(text string) ([]int32, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (r *llamaRuntime) Generate(ctx context.Context, prompt string, params GenParams, onToken func(string) error) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	return "", ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}

func (r *llamaRuntime) Close() error {
	// Nothing to free in the stub.
	return nil
}
