// README: Turn executor; pure (Session, InboundTurn) -> (Session, Outbound) steps.
package intake

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"fria/internal/ai"
	"fria/internal/logging"
	"fria/internal/modules/form"
	"fria/internal/modules/profile"
)

// Geocoder resolves coordinates to an address. It reports failure with ok=false.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (string, bool)
}

const promptHistory = 6

type Engine struct {
	router    *Router
	llm       ai.LLM
	geocoder  Geocoder
	towReason *TowReasonValidator
	now       func() time.Time
	log       *slog.Logger
}

// NewEngine accepts a nil llm or geocoder: questions then fall back to canned
// copy, tow reasons to a heuristic, and GPS payloads are treated as failed lookups.
func NewEngine(router *Router, llm ai.LLM, geocoder Geocoder, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		router:    router,
		llm:       llm,
		geocoder:  geocoder,
		towReason: NewTowReasonValidator(llm, log),
		now:       time.Now,
		log:       log,
	}
}

// Start creates a session with a form reset to the profile defaults and
// greets the user with the safety question.
func (e *Engine) Start(id, userID string, p profile.Profile) (Session, Outbound) {
	now := e.now()
	s := Session{
		ID:        id,
		UserID:    userID,
		Lane:      LaneSafety,
		State:     StateAwaitingGreeting,
		Form:      form.New(p.FormDefaults()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	return e.greet(s, p)
}

// Restart resets the form and safety state of an existing session and greets again.
// The transcript is kept; the new greeting is appended to it.
func (e *Engine) Restart(s Session, p profile.Profile) (Session, Outbound) {
	next := s.Clone()
	next.Form = form.New(p.FormDefaults())
	next.Lane = LaneSafety
	next.SafetyConfirmed = nil
	next.UserSafe = false
	next.Done = false
	next.TowRequestID = ""
	next.State = StateAwaitingGreeting
	next.UpdatedAt = e.now()
	return e.greet(next, p)
}

func (e *Engine) greet(s Session, p profile.Profile) (Session, Outbound) {
	msg := greeting(p.FirstName(), p.VehicleModel)
	s.Transcript.Append(RoleAssistant, msg)
	s.State = StateAwaitingUser
	return s, Outbound{LastMessage: msg, Lane: s.Lane}
}

// Continue advances the session by exactly one turn. The input session is
// never modified. Only ErrInvalidState is returned; model, geocoder and
// extraction failures are absorbed into the next assistant message.
func (e *Engine) Continue(ctx context.Context, s Session, in InboundTurn) (Session, Outbound, error) {
	if s.State != StateAwaitingUser {
		return s, Outbound{}, ErrInvalidState
	}
	next := s.Clone()
	next.UpdatedAt = e.now()

	text := strings.TrimSpace(in.Text)
	if text == "" {
		text = strings.TrimSpace(in.AudioTranscript)
	}
	if text != "" {
		next.Transcript.Append(RoleUser, text)
	}

	values := next.Form.Snapshot()
	before := e.router.Derive(values, next.SafetyConfirmed)
	var (
		resolved      string
		geocodeFailed bool
	)
	if in.hasGPS() && !values.IsSet(form.AccidentLocationAddress) {
		if addr, ok := e.reverseGeocode(ctx, *in.Lat, *in.Lon); ok {
			_ = next.Form.Set(form.AccidentLocationAddress, form.Str(addr))
			resolved = addr
		} else {
			geocodeFailed = true
		}
	}

	if resolved == "" && text != "" && before != LaneFinalize {
		if unsafe := e.apply(ctx, &next, before, text); unsafe {
			next = e.finish(next, LaneSafety, emergencyMessage)
			return next, e.out(next, resolved), nil
		}
	}

	lane := e.router.Derive(next.Form.Snapshot(), next.SafetyConfirmed)
	if lane == LaneFinalize {
		next = e.finish(next, lane, closingMessage)
		return next, e.out(next, resolved), nil
	}

	var msg string
	switch {
	case geocodeFailed && lane == LaneLocation:
		msg = geocodeFailedMessage
	default:
		msg = e.nextQuestion(ctx, next, lane, lane == before && resolved == "")
	}
	next.Lane = lane
	next.Transcript.Append(RoleAssistant, msg)
	return next, e.out(next, resolved), nil
}

// apply runs the classifier of the active lane and stores what it extracts.
// It reports true when the user said they are not safe.
func (e *Engine) apply(ctx context.Context, s *Session, lane Lane, text string) (unsafe bool) {
	switch lane {
	case LaneSafety:
		safe, ok := ParseYesNo(text)
		if !ok {
			return false
		}
		s.SafetyConfirmed = boolPtr(safe)
		if !safe {
			e.log.Info("user reported unsafe", "session_id", s.ID)
			return true
		}
		s.UserSafe = true
	case LaneIncident:
		if LooksLikeIncident(text) && !isSkipAnswer(text) {
			_ = s.Form.Set(form.DamageDescription, form.Str(text))
		}
	case LaneLocation:
		if LooksLikeAddress(text) {
			_ = s.Form.Set(form.AccidentLocationAddress, form.Str(text))
		}
	case LaneOperability:
		if isSkipAnswer(text) {
			return false
		}
		if operable, ok := ParseOperable(text); ok {
			_ = s.Form.Set(form.IsVehicleOperable, form.Str(yesNo(operable)))
		}
	case LaneTowReason:
		if e.towReason.Validate(ctx, text) {
			_ = s.Form.Set(form.ReasonForTowing, form.Str(text))
		}
	default:
		if f, ok := e.router.Field(lane); ok && looksLikeValue(text) {
			_ = s.Form.Set(f, form.Str(text))
		}
	}
	return false
}

func (e *Engine) finish(s Session, lane Lane, msg string) Session {
	s.Lane = lane
	s.Done = true
	s.State = StateTerminated
	s.Transcript.Append(RoleAssistant, msg)
	return s
}

func (e *Engine) out(s Session, resolved string) Outbound {
	last, _ := s.Transcript.Last()
	return Outbound{LastMessage: last.Content, Done: s.Done, Lane: s.Lane, ResolvedAddress: resolved}
}

func (e *Engine) reverseGeocode(ctx context.Context, lat, lon float64) (string, bool) {
	if e.geocoder == nil {
		return "", false
	}
	addr, ok := e.geocoder.ReverseGeocode(ctx, lat, lon)
	addr = strings.TrimSpace(addr)
	return addr, ok && addr != ""
}

// nextQuestion asks the model for the lane question and falls back to canned
// copy when the model fails or returns something unusable.
func (e *Engine) nextQuestion(ctx context.Context, s Session, lane Lane, retry bool) string {
	field, _ := e.router.Field(lane)
	canned := cannedQuestion(lane, field, retry)
	if e.llm == nil {
		return canned
	}

	values := s.Form.Snapshot()
	data := questionPromptData{Topic: laneTopic(lane, field), Retry: retry}
	for _, f := range form.Schema {
		if values.IsSet(f) {
			data.Known = append(data.Known, promptField{Label: fieldLabel(f), Value: logging.Redact(values.Value(f))})
		}
	}
	for _, f := range s.Form.Missing(e.router.Required()) {
		data.Missing = append(data.Missing, fieldLabel(f))
	}
	for _, entry := range s.Transcript.Tail(promptHistory) {
		entry.Content = logging.Redact(entry.Content)
		data.History = append(data.History, entry)
	}

	prompt, err := renderQuestionPrompt(data)
	if err != nil {
		e.log.Error("render question prompt", "error", err)
		return canned
	}
	q, err := e.llm.Complete(ctx, prompt)
	if err != nil || !usableQuestion(q) {
		e.log.Warn("question generation fell back to canned copy", "lane", lane, "error", err)
		return canned
	}
	return strings.TrimSpace(q)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
