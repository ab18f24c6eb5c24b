// README: Tow request aggregate and status definitions.
package towrequest

import (
	"errors"
	"time"

	"fria/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("tow request not found")
	ErrConflict     = errors.New("tow request state conflict")
	ErrBadRequest   = errors.New("bad request")
)

type Status string

const (
	StatusSubmitted  Status = "submitted"
	StatusDispatched Status = "dispatched"
	StatusEnRoute    Status = "en_route"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type TowRequest struct {
	ID                      types.ID   `json:"id"`
	SessionID               string     `json:"session_id"`
	UserID                  string     `json:"user_id"`
	Status                  Status     `json:"status"`
	StatusVersion           int        `json:"status_version"`
	FullName                string     `json:"full_name"`
	ContactNumber           string     `json:"contact_number"`
	VehicleModel            string     `json:"vehicle_model"`
	LicensePlate            string     `json:"license_plate"`
	DamageDescription       string     `json:"damage_description"`
	AccidentLocationAddress string     `json:"accident_location_address"`
	IsVehicleOperable       *bool      `json:"is_vehicle_operable"`
	ReasonForTowing         string     `json:"reason_for_towing"`
	Details                 Details    `json:"details"`
	CreatedAt               time.Time  `json:"created_at"`
	DispatchedAt            *time.Time `json:"dispatched_at,omitempty"`
	CompletedAt             *time.Time `json:"completed_at,omitempty"`
	CancelledAt             *time.Time `json:"cancelled_at,omitempty"`
}

// Details carries the full form snapshot at submission time.
type Details map[string]*string

type Event struct {
	ID           int64
	TowRequestID types.ID
	FromStatus   Status
	ToStatus     Status
	ActorType    string
	CreatedAt    time.Time
}

// AllowedTransitions represents the tow request flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusSubmitted:  {StatusDispatched, StatusCancelled},
	StatusDispatched: {StatusEnRoute, StatusCancelled},
	StatusEnRoute:    {StatusCompleted, StatusCancelled},
}

func (s Status) Valid() bool {
	switch s {
	case StatusSubmitted, StatusDispatched, StatusEnRoute, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
