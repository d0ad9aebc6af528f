package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jumakrk/IST-MOBILE-APP/internal/model"

	"github.com/jackc/pgx/v5"
)

// TokenRepository stores the single-use tokens mailed for email verification
// and password resets.
type TokenRepository interface {
	Create(ctx context.Context, token *model.ActionToken) error
	Find(ctx context.Context, token, purpose string) (*model.ActionToken, error)
	Delete(ctx context.Context, token string) error
	DeleteForUser(ctx context.Context, userID, purpose string) error
}

type tokenRepository struct {
	db DB
}

// NewTokenRepository creates a new TokenRepository
func NewTokenRepository(db DB) TokenRepository {
	return &tokenRepository{db: db}
}

// Create inserts a new action token
func (r *tokenRepository) Create(ctx context.Context, t *model.ActionToken) error {
	sql := `INSERT INTO action_tokens (token, user_id, purpose, expires_at, created_at)
            VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, sql, t.Token, t.UserID, t.Purpose, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create action token: %w", err)
	}
	return nil
}

// Find retrieves a token by value and purpose
func (r *tokenRepository) Find(ctx context.Context, token, purpose string) (*model.ActionToken, error) {
	t := &model.ActionToken{}
	sql := `SELECT token, user_id, purpose, expires_at, created_at
            FROM action_tokens WHERE token = $1 AND purpose = $2`
	err := r.db.QueryRow(ctx, sql, token, purpose).Scan(
		&t.Token, &t.UserID, &t.Purpose, &t.ExpiresAt, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to find action token: %w", err)
	}
	return t, nil
}

// Delete removes a consumed token
func (r *tokenRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM action_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete action token: %w", err)
	}
	return nil
}

// DeleteForUser invalidates every outstanding token of one purpose for a
// user, used before issuing a fresh one.
func (r *tokenRepository) DeleteForUser(ctx context.Context, userID, purpose string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM action_tokens WHERE user_id = $1 AND purpose = $2`, userID, purpose); err != nil {
		return fmt.Errorf("failed to delete action tokens for user: %w", err)
	}
	return nil
}
