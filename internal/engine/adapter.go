package engine

import "context"

// Runtime abstracts the model runtime backing the engine. It exposes the two
// capabilities the service needs: text -> token ids, and prompt -> new text.
// Concrete implementations (go-llama.cpp) satisfy this interface; tests use
// fakes.
type Runtime interface {
	// Tokenize converts text to token ids in the model vocabulary.
	Tokenize(text string) ([]int32, error)
	// Generate produces a completion for prompt. The onToken callback is
	// invoked for each decoded token as it is produced; implementations must
	// return promptly when the context is canceled. The returned string is
	// the full completion (prompt not included).
	Generate(ctx context.Context, prompt string, params GenParams, onToken func(string) error) (string, error)
	// Close releases runtime resources.
	Close() error
}

// GenParams captures generation parameters passed to the runtime.
type GenParams struct {
	MaxTokens     int
	Temperature   float32
	TopP          float32
	TopK          int
	Seed          int
	RepeatPenalty float32
}
