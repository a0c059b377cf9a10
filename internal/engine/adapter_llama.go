//go:build llama

package engine

import (
	"context"
	"errors"
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// llamaRuntime owns the loaded model for the lifetime of the process.
type llamaRuntime struct {
	model   *llama.LLama
	threads int
}

// NewLlamaRuntime loads the GGUF artifact at modelPath into memory. Loading
// happens once, before the server accepts connections.
func NewLlamaRuntime(modelPath string, ctxSize, threads int) (Runtime, error) {
	if strings.TrimSpace(modelPath) == "" {
		return nil, errors.New("model path is empty")
	}
	m, err := llama.New(modelPath, llama.SetContext(ctxSize))
	if err != nil {
		return nil, err
	}
	return &llamaRuntime{model: m, threads: threads}, nil
}

func (r *llamaRuntime) Tokenize(text string) ([]int32, error) {
	if r.model == nil {
		return nil, errors.New("llama model not initialized")
	}
	_, tokens, err := r.model.TokenizeString(text, llama.SetTokens(0))
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *llamaRuntime) Generate(ctx context.Context, prompt string, params GenParams, onToken func(string) error) (string, error) {
	if r.model == nil {
		return "", errors.New("llama model not initialized")
	}

	// Bridge token streaming to onToken and respect cancellation.
	r.model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		if onToken != nil {
			if err := onToken(tok); err != nil {
				return false
			}
		}
		return true
	})

	text, err := r.model.Predict(prompt, mapGenParams(params, r.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", err
	}
	return text, nil
}

func (r *llamaRuntime) Close() error {
	if r.model != nil {
		r.model.Free()
		r.model = nil
	}
	return nil
}

func pos(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func posf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}

// mapGenParams converts GenParams into go-llama.cpp predict options.
func mapGenParams(params GenParams, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(pos(params.MaxTokens, 1)),
		llama.SetThreads(pos(threads, 1)),
		llama.SetTopP(posf(params.TopP, llama.DefaultOptions.TopP)),
		llama.SetTopK(pos(params.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(posf(params.Temperature, llama.DefaultOptions.Temperature)),
		llama.SetPenalty(posf(params.RepeatPenalty, llama.DefaultOptions.Penalty)),
	}
	if params.Seed != 0 {
		po = append(po, llama.SetSeed(params.Seed))
	}
	return po
}
