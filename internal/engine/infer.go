package engine

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"inferd/pkg/types"
)

// Infer runs one synchronous generation. Both prompt fields may be empty;
// the template is built regardless and handed to the runtime with the fixed
// new-token cap. The returned text is prompt + completion, matching a decode
// that does not strip the input portion of the generated sequence.
func (e *Engine) Infer(ctx context.Context, req types.InferRequest) (types.InferResponse, error) {
	prompt := BuildPrompt(req.SystemPrompt, req.UserPrompt)

	if e.cache != nil {
		if out, ok := e.cache.get(prompt); ok {
			promptCacheTotal.WithLabelValues("hit").Inc()
			return types.InferResponse{Response: out}, nil
		}
		promptCacheTotal.WithLabelValues("miss").Inc()
	}

	release, err := e.beginGeneration(ctx)
	if err != nil {
		generationsTotal.WithLabelValues("rejected").Inc()
		return types.InferResponse{}, err
	}
	defer release()

	genID := "gen_" + uuid.NewString()
	start := time.Now()

	var b strings.Builder
	tokens := 0
	completion, err := e.runtime.Generate(ctx, prompt, GenParams{MaxTokens: maxNewTokens}, func(tok string) error {
		b.WriteString(tok)
		tokens++
		return nil
	})
	dur := time.Since(start)
	generationDuration.Observe(dur.Seconds())
	if err != nil {
		e.noteError(err)
		generationsTotal.WithLabelValues("error").Inc()
		e.log.Error().Str("generation_id", genID).Dur("dur", dur).Err(err).Msg("generation failed")
		return types.InferResponse{}, err
	}
	if completion == "" {
		completion = b.String()
	}

	out := prompt + completion
	if e.cache != nil {
		e.cache.set(prompt, out)
	}
	atomic.AddUint64(&e.generations, 1)
	generationsTotal.WithLabelValues("ok").Inc()
	generatedTokensTotal.Add(float64(tokens))
	e.log.Info().Str("generation_id", genID).Str("model", e.model.ID).Int("tokens", tokens).Dur("dur", dur).Msg("generation done")

	return types.InferResponse{Response: out}, nil
}
