package repository

import (
	"context"

	"github.com/spartak030506-hash/fastapi-shop-1/internal/domain"
	"github.com/spartak030506-hash/fastapi-shop-1/pkg/pagination"
)

// UserRepository defines persistence operations for user accounts. All
// lookups exclude soft-deleted rows.
type UserRepository interface {
	// Create inserts a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique identifier.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// EmailInUse reports whether a non-deleted user already has this email.
	EmailInUse(ctx context.Context, email string) (bool, error)

	// Update modifies an existing user.
	Update(ctx context.Context, user *domain.User) error

	// SoftDelete marks a user as deleted without removing the row.
	SoftDelete(ctx context.Context, id string) error

	// List returns a page of users and the total non-deleted count.
	List(ctx context.Context, params pagination.Params) ([]domain.User, int, error)
}

// SessionRepository defines persistence operations for refresh-token
// sessions, keyed by token fingerprint.
type SessionRepository interface {
	// Create stores a new session record.
	Create(ctx context.Context, session *domain.Session) error

	// GetByHash retrieves a session by its token fingerprint. Revoked
	// sessions are returned; soft-deleted ones are not.
	GetByHash(ctx context.Context, tokenHash string) (*domain.Session, error)

	// IsValid reports whether a session with this fingerprint exists and is
	// neither revoked, deleted, nor expired.
	IsValid(ctx context.Context, tokenHash string) (bool, error)

	// Revoke flips is_revoked on the one matching active session. It returns
	// false when no active session matched, which callers treat as the token
	// having already been used or revoked.
	Revoke(ctx context.Context, tokenHash string) (bool, error)

	// RevokeAllForUser revokes every active session for the user and returns
	// how many were revoked.
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired hard-deletes sessions whose expiry has passed and returns
	// how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// CategoryRepository defines persistence operations for product categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	ListChildren(ctx context.Context, parentID string) ([]domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	SoftDelete(ctx context.Context, id string) error
}

// ProductRepository defines persistence operations for catalog products,
// including the conditional stock adjustment.
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter, params pagination.Params) ([]domain.Product, int, error)
	Update(ctx context.Context, product *domain.Product) error
	SoftDelete(ctx context.Context, id string) error

	// AdjustStock applies stock_quantity += delta as a single conditional
	// update that only succeeds when the result stays non-negative. The
	// second return value is false when no row matched, either because the
	// product does not exist or because the guard rejected the delta; the
	// caller must re-check existence to tell the two apart.
	AdjustStock(ctx context.Context, id string, delta int) (*domain.Product, bool, error)

	// ListLowStock returns non-deleted active products at or below the given
	// stock threshold.
	ListLowStock(ctx context.Context, threshold int) ([]domain.Product, error)
}
