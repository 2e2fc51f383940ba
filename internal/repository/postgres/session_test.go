package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	apperrors "github.com/spartak030506-hash/fastapi-shop-1/pkg/errors"
)

func newSessionTestFixture(t *testing.T) (*SessionRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	repo := NewSessionRepository(mock)
	return repo, mock
}

func sampleSession() *domain.Session {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Session{
		ID:         "0b8f8a38-41e1-4f7e-b176-2e1e9a8c1d02",
		UserID:     "7b7e2b9e-0c6d-4f42-9a4a-0a2a3c1f5d01",
		TokenHash:  "fingerprint-abc",
		ExpiresAt:  now.Add(24 * time.Hour),
		DeviceInfo: "test-agent",
		CreatedAt:  now,
	}
}

func TestSessionRepository_Create_Success(t *testing.T) {
	repo, mock := newSessionTestFixture(t)
	defer mock.Close()

	s := sampleSession()

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(s.ID, s.UserID, s.TokenHash, s.ExpiresAt, s.IsRevoked, s.IsDeleted, s.DeviceInfo, s.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Create(context.Background(), s)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetByHash_Success(t *testing.T) {
	repo, mock := newSessionTestFixture(t)
	defer mock.Close()

	s := sampleSession()

	mock.ExpectQuery("SELECT .+ FROM sessions").
		WithArgs(s.TokenHash).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "token_hash", "expires_at", "is_revoked", "is_deleted", "device_info", "created_at",
		}).AddRow(s.ID, s.UserID, s.TokenHash, s.ExpiresAt, s.IsRevoked, s.IsDeleted, s.DeviceInfo, s.CreatedAt))

	got, err := repo.GetByHash(context.Background(), s.TokenHash)
	require.NoError(t, err)
	assert.Equal(t, s.UserID, got.UserID)
	assert.False(t, got.IsRevoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_GetByHash_NotFound(t *testing.T) {
	repo, mock := newSessionTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT .+ FROM sessions").
		WithArgs("unknown-hash").
		WillReturnError(pgx.ErrNoRows)

	got, err := repo.GetByHash(context.Background(), "unknown-hash")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// The revoke is a conditional update keyed on NOT is_revoked, so whoever runs
// it second sees zero rows affected.

func TestSessionRepository_Revoke_FirstCallerWins(t *testing.T) {
	repo, mock := newSessionTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE sessions SET is_revoked = true").
		WithArgs("fingerprint-abc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	revoked, err := repo.Revoke(context.Background(), "fingerprint-abc")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_Revoke_AlreadyRevoked(t *testing.T) {
	repo, mock := newSessionTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE sessions SET is_revoked = true").
		WithArgs("fingerprint-abc").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	revoked, err := repo.Revoke(context.Background(), "fingerprint-abc")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_RevokeAllForUser(t *testing.T) {
	repo, mock := newSessionTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("UPDATE sessions SET is_revoked = true").
		WithArgs("user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	count, err := repo.RevokeAllForUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_IsValid(t *testing.T) {
	repo, mock := newSessionTestFixture(t)
	defer mock.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("fingerprint-abc", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	valid, err := repo.IsValid(context.Background(), "fingerprint-abc")
	require.NoError(t, err)
	assert.True(t, valid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepository_DeleteExpired(t *testing.T) {
	repo, mock := newSessionTestFixture(t)
	defer mock.Close()

	mock.ExpectExec("DELETE FROM sessions").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 5))

	count, err := repo.DeleteExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
