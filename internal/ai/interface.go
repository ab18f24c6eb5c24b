package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse is returned when a model answers with nothing usable.
var ErrEmptyResponse = errors.New("empty llm response")

// ErrUnavailable marks a call that was refused before reaching a model,
// such as an exhausted quota. Callers may fall back to non-model logic.
var ErrUnavailable = errors.New("llm unavailable")

// LLM is the single capability the intake flow needs from a language model:
// turn a prompt into text. Providers (Gemini, OpenAI) are swappable behind it.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Func adapts a plain function to LLM.
type Func func(ctx context.Context, prompt string) (string, error)

func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
