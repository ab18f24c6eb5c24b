// README: Tow request service; submission from a finished intake and dispatch status transitions.
package towrequest

import (
	"context"
	"errors"
	"time"

	"fria/internal/modules/form"
	"fria/internal/types"
)

type Service struct {
	store Repository
	now   func() time.Time
}

func NewService(store Repository) *Service {
	return &Service{store: store, now: time.Now}
}

type SubmitCommand struct {
	SessionID string
	UserID    string
	Values    form.Values
}

type TransitionCommand struct {
	ID        types.ID
	To        Status
	ActorType string
}

// Submit creates the tow request for a finished intake. Submitting the same
// session twice returns the existing request.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (*TowRequest, error) {
	if cmd.SessionID == "" {
		return nil, ErrBadRequest
	}
	if existing, err := s.store.GetBySession(ctx, cmd.SessionID); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	v := cmd.Values
	t := &TowRequest{
		ID:                      types.NewID(),
		SessionID:               cmd.SessionID,
		UserID:                  cmd.UserID,
		Status:                  StatusSubmitted,
		FullName:                v.Value(form.FullName),
		ContactNumber:           v.Value(form.ContactNumber),
		VehicleModel:            v.Value(form.VehicleModel),
		LicensePlate:            v.Value(form.LicensePlate),
		DamageDescription:       v.Value(form.DamageDescription),
		AccidentLocationAddress: v.Value(form.AccidentLocationAddress),
		IsVehicleOperable:       parseOperable(v.Value(form.IsVehicleOperable)),
		ReasonForTowing:         v.Value(form.ReasonForTowing),
		Details:                 Details(v.Wire()),
		CreatedAt:               s.now(),
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	_ = s.store.AppendEvent(ctx, &Event{
		TowRequestID: t.ID,
		ToStatus:     StatusSubmitted,
		ActorType:    "intake",
		CreatedAt:    t.CreatedAt,
	})
	return t, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*TowRequest, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) Transition(ctx context.Context, cmd TransitionCommand) (*TowRequest, error) {
	t, err := s.store.Get(ctx, cmd.ID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(t.Status, cmd.To) {
		return nil, ErrInvalidState
	}
	ok, err := s.store.UpdateStatus(ctx, t.ID, t.Status, cmd.To, t.StatusVersion)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	_ = s.store.AppendEvent(ctx, &Event{
		TowRequestID: t.ID,
		FromStatus:   t.Status,
		ToStatus:     cmd.To,
		ActorType:    cmd.ActorType,
		CreatedAt:    s.now(),
	})
	return s.store.Get(ctx, t.ID)
}

func parseOperable(v string) *bool {
	switch v {
	case "yes":
		b := true
		return &b
	case "no":
		b := false
		return &b
	}
	return nil
}
