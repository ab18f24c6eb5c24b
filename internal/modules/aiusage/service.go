package aiusage

import (
	"context"
	"errors"
)

type quotaStore interface {
	UseToken(ctx context.Context, uid string) error
	EnsureUser(ctx context.Context, uid string) error
	Remaining(ctx context.Context, uid string) (int, error)
}

// Service orchestrates LLM quota logic.
type Service struct {
	store quotaStore
}

// NewService creates a Service backed by the given store.
func NewService(store quotaStore) *Service {
	return &Service{store: store}
}

// UseToken deducts one call from the user's monthly allowance.
// If the user row does not exist yet it is initialised and the call is immediately consumed.
// Returns ErrInsufficientTokens when the quota for the current month is exhausted.
func (s *Service) UseToken(ctx context.Context, uid string) error {
	err := s.store.UseToken(ctx, uid)
	if !errors.Is(err, ErrInsufficientTokens) {
		return err
	}

	// Row may be missing: try to create it, then retry the deduction once.
	if initErr := s.store.EnsureUser(ctx, uid); initErr != nil {
		return initErr
	}
	return s.store.UseToken(ctx, uid)
}

// Remaining reports the calls left this month; unknown users have the full allowance.
func (s *Service) Remaining(ctx context.Context, uid string) (int, error) {
	return s.store.Remaining(ctx, uid)
}
