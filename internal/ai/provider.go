package ai

import (
	"context"
	"fmt"
	"log/slog"

	"fria/internal/config"
)

// NewFromConfig builds the configured provider wrapped in a Guarded retry layer.
// The returned close func releases provider resources.
func NewFromConfig(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (LLM, func(), error) {
	var (
		base    LLM
		closeFn = func() {}
	)
	switch cfg.Provider {
	case "openai":
		base = NewOpenAIProvider(cfg.OpenAIKey, cfg.OpenAIModel)
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		base, closeFn = p, p.Close
	default:
		return nil, nil, fmt.Errorf("unsupported ai provider %q", cfg.Provider)
	}
	retry := RetryPolicy{MaxRetries: cfg.Retries, Backoff: cfg.Backoff}
	return NewGuarded(base, cfg.Timeout, retry, log), closeFn, nil
}
