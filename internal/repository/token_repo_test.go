package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/jumakrk/IST-MOBILE-APP/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepository_Find(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTokenRepository(mock)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM action_tokens WHERE token = $1 AND purpose = $2`)).
		WithArgs("tok123", model.TokenPurposeVerifyEmail).
		WillReturnRows(pgxmock.NewRows([]string{"token", "user_id", "purpose", "expires_at", "created_at"}).
			AddRow("tok123", "u1", model.TokenPurposeVerifyEmail, now.Add(time.Hour), now))

	tok, err := repo.Find(context.Background(), "tok123", model.TokenPurposeVerifyEmail)

	require.NoError(t, err)
	require.NotNil(t, tok)
	assert.Equal(t, "u1", tok.UserID)
	assert.False(t, tok.Expired(now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_Find_NotFoundIsNil(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTokenRepository(mock)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM action_tokens WHERE token = $1 AND purpose = $2`)).
		WithArgs("bogus", model.TokenPurposeResetPassword).
		WillReturnError(pgx.ErrNoRows)

	tok, err := repo.Find(context.Background(), "bogus", model.TokenPurposeResetPassword)

	require.NoError(t, err)
	assert.Nil(t, tok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_DeleteForUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTokenRepository(mock)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM action_tokens WHERE user_id = $1 AND purpose = $2`)).
		WithArgs("u1", model.TokenPurposeVerifyEmail).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	require.NoError(t, repo.DeleteForUser(context.Background(), "u1", model.TokenPurposeVerifyEmail))
	assert.NoError(t, mock.ExpectationsWereMet())
}
