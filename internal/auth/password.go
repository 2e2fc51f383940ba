package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/spartak030506-hash/fastapi-shop-1/pkg/errors"
)

// bcryptCost is the cost factor for bcrypt password hashing.
const bcryptCost = 12

// maxPasswordBytes is the bcrypt input limit. Passwords longer than this are
// rejected rather than silently truncated, so two passwords sharing a 72-byte
// prefix can never verify against each other's hash.
const maxPasswordBytes = 72

// PasswordHasher hashes and verifies passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher with the default cost.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcryptCost}
}

// NewPasswordHasherWithCost creates a hasher with an explicit cost. Tests use
// bcrypt.MinCost to keep hashing fast.
func NewPasswordHasherWithCost(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of the given password. Passwords exceeding
// 72 bytes of UTF-8 are rejected with InvalidInput.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > maxPasswordBytes {
		return "", apperrors.InvalidInput(fmt.Sprintf("password must not exceed %d bytes", maxPasswordBytes))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether the password matches the stored hash. It never
// returns an error: empty passwords, over-length passwords, malformed hashes,
// and comparison failures all yield false.
func (h *PasswordHasher) Verify(password, hash string) bool {
	if password == "" || len(password) > maxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
