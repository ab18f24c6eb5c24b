// README: Location service; validates and records GPS fixes sent during intake turns.
package location

import (
	"context"
	"errors"
	"time"
)

// minMoveM is the distance under which a repeat unresolved fix is dropped.
const minMoveM = 25.0

type FixStore interface {
	Append(ctx context.Context, f *Fix) error
	Latest(ctx context.Context, sessionID string) (*Fix, error)
}

type Service struct {
	store FixStore
	now   func() time.Time
}

func NewService(store FixStore) *Service {
	return &Service{store: store, now: time.Now}
}

// RecordFix stores f. An unresolved fix within minMoveM of the previous one
// for the same session is dropped and reported with recorded=false.
func (s *Service) RecordFix(ctx context.Context, f Fix) (recorded bool, err error) {
	if !f.Position.Valid() {
		return false, ErrInvalidPoint
	}
	if f.RecordedAt.IsZero() {
		f.RecordedAt = s.now()
	}
	if !f.Resolved() {
		prev, err := s.store.Latest(ctx, f.SessionID)
		switch {
		case err == nil && distanceM(prev.Position, f.Position) < minMoveM:
			return false, nil
		case err != nil && !errors.Is(err, ErrNotFound):
			return false, err
		}
	}
	if err := s.store.Append(ctx, &f); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) Latest(ctx context.Context, sessionID string) (*Fix, error) {
	return s.store.Latest(ctx, sessionID)
}
