package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// KeyLoginMessageShown is the per-user flag controlling whether the login
// welcome message has already been shown.
const KeyLoginMessageShown = "login_message_shown"

// PreferenceRepository is the key-value preference store backing the flags
// the clients used to keep locally.
type PreferenceRepository interface {
	GetBool(ctx context.Context, userID, key string) (bool, error)
	SetBool(ctx context.Context, userID, key string, value bool) error
}

type preferenceRepository struct {
	db DB
}

// NewPreferenceRepository creates a new PreferenceRepository
func NewPreferenceRepository(db DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

// GetBool reads a boolean preference; an unset key reads as false.
func (r *preferenceRepository) GetBool(ctx context.Context, userID, key string) (bool, error) {
	var value bool
	sql := `SELECT value FROM preferences WHERE user_id = $1 AND key = $2`
	err := r.db.QueryRow(ctx, sql, userID, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read preference: %w", err)
	}
	return value, nil
}

// SetBool upserts a boolean preference.
func (r *preferenceRepository) SetBool(ctx context.Context, userID, key string, value bool) error {
	sql := `INSERT INTO preferences (user_id, key, value) VALUES ($1, $2, $3)
            ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value`
	if _, err := r.db.Exec(ctx, sql, userID, key, value); err != nil {
		return fmt.Errorf("failed to write preference: %w", err)
	}
	return nil
}
