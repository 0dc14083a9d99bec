package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/groovemind/djbooth/internal/models"
)

// ProfileRepository handles DJ profile database operations.
type ProfileRepository struct {
	db *DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, name, personality, voice_id, active, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*models.DJProfile, error) {
	profile := &models.DJProfile{}
	err := row.Scan(
		&profile.ID,
		&profile.Name,
		&profile.Personality,
		&profile.VoiceID,
		&profile.Active,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// GetByID retrieves a profile by ID. A missing profile returns
// (nil, nil).
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DJProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM dj_profiles WHERE id = $1`

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

// GetActive retrieves the currently active profile, or (nil, nil)
// when none is active.
func (r *ProfileRepository) GetActive(ctx context.Context) (*models.DJProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM dj_profiles WHERE active LIMIT 1`

	profile, err := scanProfile(r.db.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active profile: %w", err)
	}
	return profile, nil
}

// List returns all profiles ordered by name.
func (r *ProfileRepository) List(ctx context.Context) ([]*models.DJProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM dj_profiles ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var profiles []*models.DJProfile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profiles: %w", err)
	}
	return profiles, nil
}

// Upsert creates a profile or updates the one with the same name.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.DJProfile) error {
	query := `
		INSERT INTO dj_profiles (id, name, personality, voice_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (name) DO UPDATE
		SET personality = EXCLUDED.personality,
		    voice_id = EXCLUDED.voice_id,
		    updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`

	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		profile.ID,
		profile.Name,
		profile.Personality,
		profile.VoiceID,
		profile.Active,
		now,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

// Activate marks one profile active and deactivates the rest, in a
// single transaction.
func (r *ProfileRepository) Activate(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin activation: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE dj_profiles SET active = FALSE, updated_at = $1 WHERE active`, time.Now()); err != nil {
		return fmt.Errorf("failed to deactivate profiles: %w", err)
	}

	result, err := tx.ExecContext(ctx, `UPDATE dj_profiles SET active = TRUE, updated_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("failed to activate profile: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("profile not found")
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit activation: %w", err)
	}
	return nil
}

// Delete removes a profile by ID.
func (r *ProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM dj_profiles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("profile not found")
	}
	return nil
}
