// README: Profile lookup with fallback to the demo account.
package profile

import (
	"context"
	"errors"
	"log/slog"
)

type Getter interface {
	Get(ctx context.Context, userID string) (Profile, error)
}

type Service struct {
	store    Getter
	fallback Profile
	log      *slog.Logger
}

// NewService accepts a nil store; every lookup then yields the fallback.
func NewService(store Getter, fallback Profile, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, fallback: fallback, log: log}
}

// Lookup never fails: a missing or unreadable profile degrades to the fallback,
// since an intake must still be able to start.
func (s *Service) Lookup(ctx context.Context, userID string) Profile {
	if s.store == nil || userID == "" {
		return s.fallback
	}
	p, err := s.store.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn("profile lookup failed", "user_id", userID, "error", err)
		}
		return s.fallback
	}
	return p
}
