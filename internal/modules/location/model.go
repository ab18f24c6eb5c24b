// README: GPS fix captured during an intake, with the address it resolved to.
package location

import (
	"errors"
	"time"

	"fria/internal/types"
)

var (
	ErrInvalidPoint = errors.New("coordinates out of range")
	ErrNotFound     = errors.New("no fix recorded")
)

type Fix struct {
	ID         int64       `json:"id"`
	SessionID  string      `json:"session_id"`
	UserID     string      `json:"user_id"`
	Position   types.Point `json:"position"`
	Address    string      `json:"address,omitempty"`
	RecordedAt time.Time   `json:"recorded_at"`
}

// Resolved reports whether the fix was turned into a street address.
func (f Fix) Resolved() bool {
	return f.Address != ""
}
