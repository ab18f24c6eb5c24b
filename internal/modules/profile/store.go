// README: Profile store backed by PostgreSQL (user, vehicle and insurance tables).
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mitchellh/mapstructure"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, userID string) (Profile, error) {
	rows, err := s.db.Query(ctx, `
		SELECT u.user_id, u.full_name, u.contact_number, u.email_address,
		       COALESCE(v.model, '') AS vehicle_model,
		       COALESCE(v.vin, '') AS vin_number,
		       COALESCE(v.license_plate, '') AS license_plate,
		       COALESCE(v.color, '') AS vehicle_color,
		       COALESCE(i.company_name, '') AS insurance_company_name,
		       COALESCE(i.policy_number, '') AS insurance_policy_number
		FROM user_profiles u
		LEFT JOIN vehicle_info v ON v.user_id = u.user_id
		LEFT JOIN insurance_policy_details i ON i.user_id = u.user_id
		WHERE u.user_id = $1
		ORDER BY v.created_at DESC NULLS LAST, i.created_at DESC NULLS LAST
		LIMIT 1`, userID)
	if err != nil {
		return Profile{}, err
	}
	row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, err
	}
	return decodeRow(row)
}

func (s *Store) Upsert(ctx context.Context, p Profile) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `
		INSERT INTO user_profiles (user_id, full_name, contact_number, email_address)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			contact_number = EXCLUDED.contact_number,
			email_address = EXCLUDED.email_address`,
		p.UserID, p.FullName, p.ContactNumber, p.EmailAddress); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO vehicle_info (user_id, model, vin, license_plate, color)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (vin) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			model = EXCLUDED.model,
			license_plate = EXCLUDED.license_plate,
			color = EXCLUDED.color`,
		p.UserID, p.VehicleModel, p.VINNumber, p.LicensePlate, p.VehicleColor); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO insurance_policy_details (user_id, company_name, policy_number)
		VALUES ($1, $2, $3)
		ON CONFLICT (policy_number) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			company_name = EXCLUDED.company_name`,
		p.UserID, p.InsuranceName, p.InsurancePolicy); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// decodeRow maps a column-name keyed row onto Profile.
func decodeRow(row map[string]any) (Profile, error) {
	var p Profile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Profile{}, err
	}
	if err := dec.Decode(row); err != nil {
		return Profile{}, fmt.Errorf("decode profile row: %w", err)
	}
	return p, nil
}
