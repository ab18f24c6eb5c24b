// README: Fix store; Postgres history plus a Redis hash holding each session's latest fix.
package location

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const latestTTL = 24 * time.Hour

type Store struct {
	db    *pgxpool.Pool
	redis *redis.Client
}

func NewStore(db *pgxpool.Pool, redis *redis.Client) *Store {
	return &Store{db: db, redis: redis}
}

func latestKey(sessionID string) string {
	return "fix:latest:" + sessionID
}

func (s *Store) Append(ctx context.Context, f *Fix) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO geo_locations (session_id, user_id, lat, lon, address, recorded_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
		RETURNING id`,
		f.SessionID, f.UserID, f.Position.Lat, f.Position.Lng, f.Address, f.RecordedAt,
	).Scan(&f.ID)
	if err != nil {
		return err
	}
	if s.redis == nil {
		return nil
	}
	key := latestKey(f.SessionID)
	_, err = s.redis.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, map[string]any{
			"id":          f.ID,
			"user_id":     f.UserID,
			"lat":         f.Position.Lat,
			"lon":         f.Position.Lng,
			"address":     f.Address,
			"recorded_at": f.RecordedAt.UTC().Format(time.RFC3339Nano),
		})
		p.Expire(ctx, key, latestTTL)
		return nil
	})
	return err
}

// Latest reads the cached fix first and falls back to Postgres.
func (s *Store) Latest(ctx context.Context, sessionID string) (*Fix, error) {
	if s.redis != nil {
		if f, ok := s.latestCached(ctx, sessionID); ok {
			return f, nil
		}
	}
	var (
		f       Fix
		address *string
	)
	err := s.db.QueryRow(ctx, `
		SELECT id, session_id, user_id, lat, lon, address, recorded_at
		FROM geo_locations
		WHERE session_id = $1
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1`, sessionID,
	).Scan(&f.ID, &f.SessionID, &f.UserID, &f.Position.Lat, &f.Position.Lng, &address, &f.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if address != nil {
		f.Address = *address
	}
	return &f, nil
}

func (s *Store) latestCached(ctx context.Context, sessionID string) (*Fix, bool) {
	raw, err := s.redis.HGetAll(ctx, latestKey(sessionID)).Result()
	if err != nil || len(raw) == 0 {
		return nil, false
	}
	f := Fix{SessionID: sessionID, UserID: raw["user_id"], Address: raw["address"]}
	var perr error
	parse := func(v string) float64 {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			perr = err
		}
		return n
	}
	f.Position.Lat = parse(raw["lat"])
	f.Position.Lng = parse(raw["lon"])
	f.ID, _ = strconv.ParseInt(raw["id"], 10, 64)
	f.RecordedAt, _ = time.Parse(time.RFC3339Nano, raw["recorded_at"])
	if perr != nil {
		return nil, false
	}
	return &f, true
}
