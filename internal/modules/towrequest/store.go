// README: Tow request store backed by PostgreSQL, plus an in-memory variant for the console demo.
package towrequest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fria/internal/types"
)

type Repository interface {
	Create(ctx context.Context, t *TowRequest) error
	Get(ctx context.Context, id types.ID) (*TowRequest, error)
	GetBySession(ctx context.Context, sessionID string) (*TowRequest, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, t *TowRequest) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO tow_requests (
			id, session_id, user_id, status, status_version,
			full_name, contact_number, vehicle_model, license_plate,
			damage_description, accident_location_address, is_vehicle_operable,
			reason_for_towing, details, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9,
			$10, $11, $12,
			$13, $14, $15
		)`,
		string(t.ID), t.SessionID, t.UserID, string(t.Status), t.StatusVersion,
		t.FullName, t.ContactNumber, t.VehicleModel, t.LicensePlate,
		t.DamageDescription, t.AccidentLocationAddress, t.IsVehicleOperable,
		t.ReasonForTowing, map[string]*string(t.Details), t.CreatedAt,
	)
	return err
}

const selectColumns = `
	SELECT id, session_id, user_id, status, status_version,
	       full_name, contact_number, vehicle_model, license_plate,
	       damage_description, accident_location_address, is_vehicle_operable,
	       reason_for_towing, details, created_at, dispatched_at, completed_at, cancelled_at
	FROM tow_requests`

func (s *Store) Get(ctx context.Context, id types.ID) (*TowRequest, error) {
	return s.scanOne(s.db.QueryRow(ctx, selectColumns+` WHERE id = $1`, string(id)))
}

func (s *Store) GetBySession(ctx context.Context, sessionID string) (*TowRequest, error) {
	return s.scanOne(s.db.QueryRow(ctx, selectColumns+` WHERE session_id = $1`, sessionID))
}

func (s *Store) scanOne(row pgx.Row) (*TowRequest, error) {
	var (
		t       TowRequest
		id      string
		status  string
		details map[string]*string
	)
	err := row.Scan(
		&id, &t.SessionID, &t.UserID, &status, &t.StatusVersion,
		&t.FullName, &t.ContactNumber, &t.VehicleModel, &t.LicensePlate,
		&t.DamageDescription, &t.AccidentLocationAddress, &t.IsVehicleOperable,
		&t.ReasonForTowing, &details, &t.CreatedAt, &t.DispatchedAt, &t.CompletedAt, &t.CancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	t.ID = types.ID(id)
	t.Status = Status(status)
	t.Details = Details(details)
	return &t, nil
}

func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE tow_requests
		SET status = $1,
			status_version = status_version + 1,
			dispatched_at = CASE WHEN $1 = 'dispatched' THEN NOW() ELSE dispatched_at END,
			completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END,
			cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to), string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO tow_request_events (
			tow_request_id, from_status, to_status, actor_type, created_at
		) VALUES ($1, $2, $3, $4, $5)`,
		string(e.TowRequestID), string(e.FromStatus), string(e.ToStatus), e.ActorType, e.CreatedAt,
	)
	return err
}

type MemoryStore struct {
	mu       sync.Mutex
	requests map[types.ID]TowRequest
	events   []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{requests: make(map[types.ID]TowRequest)}
}

func (m *MemoryStore) Create(_ context.Context, t *TowRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.requests {
		if existing.SessionID == t.SessionID {
			return ErrConflict
		}
	}
	m.requests[t.ID] = *t
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*TowRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.requests[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MemoryStore) GetBySession(_ context.Context, sessionID string) (*TowRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.requests {
		if t.SessionID == sessionID {
			out := t
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.requests[id]
	if !ok || t.Status != from || t.StatusVersion != version {
		return false, nil
	}
	now := time.Now()
	t.Status = to
	t.StatusVersion++
	switch to {
	case StatusDispatched:
		t.DispatchedAt = &now
	case StatusCompleted:
		t.CompletedAt = &now
	case StatusCancelled:
		t.CancelledAt = &now
	}
	m.requests[id] = t
	return true, nil
}

func (m *MemoryStore) AppendEvent(_ context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.events) + 1)
	m.events = append(m.events, *e)
	return nil
}
