package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// RetryPolicy defines retry behavior for transient model failures.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// Guarded bounds every call with a timeout and retries failed attempts.
// Whitespace-only output counts as a failure.
type Guarded struct {
	next    LLM
	timeout time.Duration
	retry   RetryPolicy
	log     *slog.Logger
}

func NewGuarded(next LLM, timeout time.Duration, retry RetryPolicy, log *slog.Logger) *Guarded {
	if retry.MaxRetries < 0 {
		retry.MaxRetries = 0
	}
	if retry.Backoff <= 0 {
		retry.Backoff = 200 * time.Millisecond
	}
	if log == nil {
		log = slog.Default()
	}
	return &Guarded{next: next, timeout: timeout, retry: retry, log: log}
}

func (g *Guarded) Complete(ctx context.Context, prompt string) (string, error) {
	var err error
	for attempt := 0; attempt <= g.retry.MaxRetries; attempt++ {
		var out string
		out, err = g.once(ctx, prompt)
		if err == nil {
			return out, nil
		}
		g.log.Warn("llm call failed", "attempt", attempt+1, "error", err)
		if attempt == g.retry.MaxRetries || ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(g.retry.Backoff):
		}
	}
	return "", err
}

func (g *Guarded) once(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	out, err := g.next.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}
