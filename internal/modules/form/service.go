// README: Form service; the configured required-field list and the best-effort form mirror.
package form

import (
	"context"
	"errors"
	"fmt"
)

type Service struct {
	store    Store
	required []Field
}

// NewService validates the required-field list against the schema. A nil
// store disables the mirror.
func NewService(store Store, required []string) (*Service, error) {
	fields, err := ParseFields(required)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errors.New("no required fields configured")
	}
	return &Service{store: store, required: fields}, nil
}

// ListRequired returns the fields an intake must fill before it can finalize.
func (s *Service) ListRequired() []Field {
	out := make([]Field, len(s.required))
	copy(out, s.required)
	return out
}

// Save mirrors fm for sessionID. A failed write drops the mirrored copy so
// readers of the mirror never see a stale form.
func (s *Service) Save(ctx context.Context, sessionID string, fm *Form) error {
	if s.store == nil {
		return nil
	}
	err := s.store.Save(ctx, sessionID, fm.Snapshot())
	if err == nil {
		return nil
	}
	if derr := s.store.Delete(ctx, sessionID); derr != nil {
		return fmt.Errorf("mirror save: %w (drop stale copy: %v)", err, derr)
	}
	return fmt.Errorf("mirror save: %w", err)
}
