// README: Session repository; Postgres snapshot + message log, and an in-memory variant.
package intake

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"fria/internal/modules/form"
)

// Repository persists session checkpoints. Load returns the session with its
// full transcript. Commit writes the session row and appends entries to the
// transcript atomically; the transcript only grows through Commit.
type Repository interface {
	Load(ctx context.Context, id string) (*Session, error)
	Commit(ctx context.Context, s *Session, entries ...Entry) error
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Commit(ctx context.Context, sess *Session, entries ...Entry) error {
	return pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		if err := saveSession(ctx, tx, sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if err := appendMessages(ctx, tx, sess.ID, entries); err != nil {
			return fmt.Errorf("append messages: %w", err)
		}
		return nil
	})
}

func saveSession(ctx context.Context, tx pgx.Tx, sess *Session) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO sessions (
			id, user_id, lane, safety_confirmed, user_safe, done, state,
			form, form_defaults, tow_request_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			lane = EXCLUDED.lane,
			safety_confirmed = EXCLUDED.safety_confirmed,
			user_safe = EXCLUDED.user_safe,
			done = EXCLUDED.done,
			state = EXCLUDED.state,
			form = EXCLUDED.form,
			form_defaults = EXCLUDED.form_defaults,
			tow_request_id = EXCLUDED.tow_request_id,
			updated_at = EXCLUDED.updated_at`,
		sess.ID, sess.UserID, string(sess.Lane), sess.SafetyConfirmed, sess.UserSafe, sess.Done, string(sess.State),
		sess.Form.Wire(), sess.Form.Defaults().Wire(), sess.TowRequestID, sess.CreatedAt, sess.UpdatedAt,
	)
	return err
}

func (s *Store) Load(ctx context.Context, id string) (*Session, error) {
	var (
		sess            Session
		lane, state     string
		values, initial map[string]*string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, user_id, lane, safety_confirmed, user_safe, done, state,
		       form, form_defaults, tow_request_id, created_at, updated_at
		FROM sessions WHERE id = $1`, id,
	).Scan(
		&sess.ID, &sess.UserID, &lane, &sess.SafetyConfirmed, &sess.UserSafe, &sess.Done, &state,
		&values, &initial, &sess.TowRequestID, &sess.CreatedAt, &sess.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	sess.Lane = Lane(lane)
	sess.State = State(state)
	sess.Form = restoreForm(initial, values)

	rows, err := s.db.Query(ctx, `
		SELECT role, content FROM messages WHERE session_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	entries, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Entry, error) {
		var (
			e    Entry
			role string
		)
		err := row.Scan(&role, &e.Content)
		e.Role = Role(role)
		return e, err
	})
	if err != nil {
		return nil, err
	}
	sess.Transcript = NewTranscript(entries...)
	return &sess, nil
}

func appendMessages(ctx context.Context, tx pgx.Tx, sessionID string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, e := range entries {
		batch.Queue(`
			INSERT INTO messages (session_id, user_id, role, content)
			SELECT $1, user_id, $2, $3 FROM sessions WHERE id = $1`,
			sessionID, string(e.Role), e.Content)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// restoreForm rebuilds a form from persisted JSON, healing missing or unknown keys.
func restoreForm(defaults, values map[string]*string) *form.Form {
	d := form.Values{}
	for k, v := range defaults {
		d[form.Field(k)] = v
	}
	fm := form.New(d)
	fm.Restore(values)
	return fm
}

type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	messages map[string][]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		messages: make(map[string][]Entry),
	}
}

func (m *MemoryStore) Commit(_ context.Context, s *Session, entries ...Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := s.Clone()
	c.Transcript = Transcript{}
	m.sessions[s.ID] = c
	m.messages[s.ID] = append(m.messages[s.ID], entries...)
	return nil
}

func (m *MemoryStore) Load(_ context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := s.Clone()
	c.Transcript = NewTranscript(m.messages[id]...)
	return &c, nil
}
