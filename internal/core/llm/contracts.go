package llm

import (
	"context"

	"github.com/joseph-ayodele/cards-extractor/constants"
)

// ChatRequest is one single-completion chat call.
type ChatRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
}

// Completer is the LLM black box: one request in, one completion string out.
// Any error is treated as transient by the caller.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// FieldAsker is what the card processor depends on: text + field -> value or "NA".
type FieldAsker interface {
	ExtractField(ctx context.Context, text string, field constants.FieldName) (string, error)
}

// CompleterFunc adapts a plain function to Completer.
type CompleterFunc func(ctx context.Context, req ChatRequest) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, req ChatRequest) (string, error) {
	return f(ctx, req)
}
