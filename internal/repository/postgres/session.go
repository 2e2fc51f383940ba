package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/database"
	apperrors "github.com/spartak030506-hash/fastapi-shop-1/pkg/errors"
)

// SessionRepository implements repository.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool database.DBTX
}

// NewSessionRepository creates a new PostgreSQL-backed session repository.
func NewSessionRepository(pool database.DBTX) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session record.
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token_hash, expires_at, is_revoked, is_deleted, device_info, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.UserID,
		s.TokenHash,
		s.ExpiresAt,
		s.IsRevoked,
		s.IsDeleted,
		s.DeviceInfo,
		s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("session", "token_hash", s.TokenHash)
		}
		return fmt.Errorf("insert session: %w", err)
	}

	return nil
}

// GetByHash retrieves a non-deleted session by its token fingerprint.
func (r *SessionRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, token_hash, expires_at, is_revoked, is_deleted, device_info, created_at
		FROM sessions
		WHERE token_hash = $1 AND NOT is_deleted`

	var s domain.Session
	err := r.pool.QueryRow(ctx, query, tokenHash).Scan(
		&s.ID,
		&s.UserID,
		&s.TokenHash,
		&s.ExpiresAt,
		&s.IsRevoked,
		&s.IsDeleted,
		&s.DeviceInfo,
		&s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	return &s, nil
}

// IsValid reports whether an active, unexpired session exists for this
// fingerprint.
func (r *SessionRepository) IsValid(ctx context.Context, tokenHash string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM sessions
			WHERE token_hash = $1 AND NOT is_revoked AND NOT is_deleted AND expires_at > $2
		)`

	var valid bool
	if err := r.pool.QueryRow(ctx, query, tokenHash, time.Now().UTC()).Scan(&valid); err != nil {
		return false, fmt.Errorf("check session validity: %w", err)
	}
	return valid, nil
}

// Revoke flips is_revoked on the one matching active session. The WHERE
// clause makes this a conditional update: of two concurrent racers on the
// same token, at most one sees a row affected.
func (r *SessionRepository) Revoke(ctx context.Context, tokenHash string) (bool, error) {
	query := `
		UPDATE sessions SET is_revoked = true
		WHERE token_hash = $1 AND NOT is_revoked AND NOT is_deleted`

	ct, err := r.pool.Exec(ctx, query, tokenHash)
	if err != nil {
		return false, fmt.Errorf("revoke session: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

// RevokeAllForUser revokes every active session for the user and returns how
// many were revoked.
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE sessions SET is_revoked = true
		WHERE user_id = $1 AND NOT is_revoked AND NOT is_deleted`

	ct, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke sessions for user: %w", err)
	}

	return ct.RowsAffected(), nil
}

// DeleteExpired hard-deletes sessions whose expiry has passed.
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	query := `DELETE FROM sessions WHERE expires_at <= $1`

	ct, err := r.pool.Exec(ctx, query, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	return ct.RowsAffected(), nil
}
