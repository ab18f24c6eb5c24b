package aiusage

import (
	"context"
	"fmt"

	"fria/internal/ai"
)

type tokenSpender interface {
	UseToken(ctx context.Context, uid string) error
}

// MeteredLLM charges one token to the context user before each call.
// Calls without a user in the context are not metered.
type MeteredLLM struct {
	next  ai.LLM
	quota tokenSpender
}

func NewMeteredLLM(next ai.LLM, quota tokenSpender) *MeteredLLM {
	return &MeteredLLM{next: next, quota: quota}
}

func (m *MeteredLLM) Complete(ctx context.Context, prompt string) (string, error) {
	if uid, ok := UserFrom(ctx); ok {
		if err := m.quota.UseToken(ctx, uid); err != nil {
			return "", fmt.Errorf("llm quota for %s: %w: %w", uid, ai.ErrUnavailable, err)
		}
	}
	return m.next.Complete(ctx, prompt)
}
