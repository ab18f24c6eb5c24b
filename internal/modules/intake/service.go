// README: Intake service; loads, steps and checkpoints sessions around the turn executor.
package intake

import (
	"context"
	"errors"
	"log/slog"

	"fria/internal/logging"
	"fria/internal/modules/aiusage"
	"fria/internal/modules/form"
	"fria/internal/modules/location"
	"fria/internal/modules/profile"
	"fria/internal/modules/towrequest"
	"fria/internal/types"
)

type FixRecorder interface {
	RecordFix(ctx context.Context, f location.Fix) (bool, error)
}

type TowSubmitter interface {
	Submit(ctx context.Context, cmd towrequest.SubmitCommand) (*towrequest.TowRequest, error)
}

type FormMirror interface {
	Save(ctx context.Context, sessionID string, fm *form.Form) error
}

type ServiceDeps struct {
	Engine    *Engine
	Repo      Repository
	Profiles  *profile.Service
	Forms     FormMirror
	Locations FixRecorder
	Tows      TowSubmitter
	Log       *slog.Logger
}

// Service is safe for concurrent use; turns of one session are serialized.
type Service struct {
	engine    *Engine
	repo      Repository
	profiles  *profile.Service
	forms     FormMirror
	locations FixRecorder
	tows      TowSubmitter
	locks     *keyedMutex
	log       *slog.Logger
}

func NewService(deps ServiceDeps) *Service {
	log := deps.Log
	if log == nil {
		log = slog.Default()
	}
	profiles := deps.Profiles
	if profiles == nil {
		profiles = profile.NewService(nil, profile.Default, log)
	}
	return &Service{
		engine:    deps.Engine,
		repo:      deps.Repo,
		profiles:  profiles,
		forms:     deps.Forms,
		locations: deps.Locations,
		tows:      deps.Tows,
		locks:     newKeyedMutex(),
		log:       log,
	}
}

// Start opens a session for userID and returns it with the greeting.
func (s *Service) Start(ctx context.Context, userID string) (*Session, Outbound, error) {
	p := s.profiles.Lookup(ctx, userID)
	sess, out := s.engine.Start(string(types.NewID()), userID, p)
	if err := s.commit(ctx, &sess, 0); err != nil {
		return nil, Outbound{}, err
	}
	s.log.Info("intake started", "session_id", sess.ID, "user_id", userID)
	return &sess, out, nil
}

// Continue runs one turn. The session checkpoint and new transcript entries
// are committed before it returns.
func (s *Service) Continue(ctx context.Context, id string, in InboundTurn) (Outbound, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.repo.Load(ctx, id)
	if err != nil {
		return Outbound{}, err
	}
	seen := sess.Transcript.Len()

	turnCtx := aiusage.WithUser(ctx, sess.UserID)
	next, out, err := s.engine.Continue(turnCtx, *sess, in)
	if err != nil {
		return Outbound{}, err
	}
	s.log.Debug("turn",
		"session_id", id,
		"lane", out.Lane,
		"done", out.Done,
		"text", logging.Redact(in.Text),
	)

	if in.hasGPS() {
		s.recordFix(ctx, next, *in.Lat, *in.Lon, out.ResolvedAddress)
	}
	if next.Done && next.SafetyConfirmed != nil && *next.SafetyConfirmed && s.tows != nil {
		tr, err := s.tows.Submit(ctx, towrequest.SubmitCommand{
			SessionID: next.ID,
			UserID:    next.UserID,
			Values:    next.Form.Snapshot(),
		})
		if err != nil {
			return Outbound{}, err
		}
		next.TowRequestID = string(tr.ID)
		s.log.Info("tow request submitted", "session_id", id, "tow_request_id", tr.ID)
	}

	if err := s.commit(ctx, &next, seen); err != nil {
		return Outbound{}, err
	}
	return out, nil
}

// Restart resets the form and safety state and greets the user again.
// Sessions that already produced a tow request cannot be restarted.
func (s *Service) Restart(ctx context.Context, id string) (Outbound, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.repo.Load(ctx, id)
	if err != nil {
		return Outbound{}, err
	}
	if sess.TowRequestID != "" {
		// A submitted request is tracked through its own lifecycle.
		return Outbound{}, ErrInvalidState
	}
	seen := sess.Transcript.Len()
	next, out := s.engine.Restart(*sess, s.profiles.Lookup(ctx, sess.UserID))
	if err := s.commit(ctx, &next, seen); err != nil {
		return Outbound{}, err
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.repo.Load(ctx, id)
}

// SetField updates one form field outside the dialogue. Terminated sessions are read-only.
func (s *Service) SetField(ctx context.Context, id, field string, value *string) (map[string]*string, error) {
	f, err := form.ParseField(field)
	if err != nil {
		return nil, err
	}
	return s.mutateForm(ctx, id, func(fm *form.Form) error {
		return fm.Set(f, value)
	})
}

// ResetForm restores every field to its default without touching the dialogue state.
func (s *Service) ResetForm(ctx context.Context, id string) (map[string]*string, error) {
	return s.mutateForm(ctx, id, func(fm *form.Form) error {
		fm.Reset()
		return nil
	})
}

func (s *Service) mutateForm(ctx context.Context, id string, fn func(*form.Form) error) (map[string]*string, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	sess, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if sess.State == StateTerminated {
		return nil, ErrInvalidState
	}
	next := sess.Clone()
	if err := fn(next.Form); err != nil {
		return nil, err
	}
	next.UpdatedAt = s.engine.now()
	if err := s.commit(ctx, &next, next.Transcript.Len()); err != nil {
		return nil, err
	}
	return next.Form.Wire(), nil
}

// commit checkpoints sess and appends the transcript entries after seen.
func (s *Service) commit(ctx context.Context, sess *Session, seen int) error {
	if err := s.repo.Commit(ctx, sess, sess.Transcript.Since(seen)...); err != nil {
		return err
	}
	if s.forms != nil {
		if err := s.forms.Save(ctx, sess.ID, sess.Form); err != nil {
			s.log.Warn("form mirror update failed", "session_id", sess.ID, "error", err)
		}
	}
	return nil
}

func (s *Service) recordFix(ctx context.Context, sess Session, lat, lon float64, address string) {
	if s.locations == nil {
		return
	}
	_, err := s.locations.RecordFix(ctx, location.Fix{
		SessionID: sess.ID,
		UserID:    sess.UserID,
		Position:  types.Point{Lat: lat, Lng: lon},
		Address:   address,
	})
	if err != nil && !errors.Is(err, location.ErrInvalidPoint) {
		s.log.Warn("record gps fix failed", "session_id", sess.ID, "error", err)
	}
}
