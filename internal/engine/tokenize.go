package engine

import (
	"context"

	"inferd/pkg/types"
)

// Tokenize converts text to model vocabulary token ids. Empty content is
// legal and yields an empty sequence.
func (e *Engine) Tokenize(ctx context.Context, req types.TokenizeRequest) (types.TokenizeResponse, error) {
	select {
	case <-ctx.Done():
		return types.TokenizeResponse{}, ctx.Err()
	default:
	}
	ids, err := e.runtime.Tokenize(req.Content)
	if err != nil {
		e.noteError(err)
		return types.TokenizeResponse{}, err
	}
	if ids == nil {
		ids = []int32{}
	}
	return types.TokenizeResponse{Tokens: ids, Count: len(ids)}, nil
}
