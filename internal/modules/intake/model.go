// README: Intake session aggregate, machine states, and turn payloads.
package intake

import (
	"errors"
	"time"

	"fria/internal/modules/form"
)

var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidState = errors.New("invalid session state")
)

type State string

const (
	StateAwaitingGreeting State = "awaiting_greeting"
	StateAwaitingUser     State = "awaiting_user"
	StateTerminated       State = "terminated"
)

type Session struct {
	ID              string
	UserID          string
	Lane            Lane
	SafetyConfirmed *bool
	// UserSafe mirrors a confirmed safety answer for downstream consumers.
	UserSafe     bool
	Done         bool
	State        State
	Form         *form.Form
	Transcript   Transcript
	TowRequestID string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Clone returns a deep copy so a step never mutates its input.
func (s Session) Clone() Session {
	out := s
	if s.SafetyConfirmed != nil {
		v := *s.SafetyConfirmed
		out.SafetyConfirmed = &v
	}
	if s.Form != nil {
		out.Form = s.Form.Clone()
	}
	out.Transcript = s.Transcript.clone()
	return out
}

// InboundTurn resumes a session. Text wins over AudioTranscript when both
// are present. GPS is used only when both coordinates are given.
type InboundTurn struct {
	Text            string
	AudioTranscript string
	Lat             *float64
	Lon             *float64
}

func (in InboundTurn) hasGPS() bool {
	return in.Lat != nil && in.Lon != nil
}

type Outbound struct {
	LastMessage string `json:"last_message"`
	Done        bool   `json:"done"`
	Lane        Lane   `json:"lane"`
	// ResolvedAddress is set when GPS coordinates filled the address this turn.
	ResolvedAddress string `json:"resolved_address,omitempty"`
}

func boolPtr(v bool) *bool {
	return &v
}
