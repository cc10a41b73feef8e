// Package auth implements password hashing and JWT token issuance and
// verification for the AgriKlima backend.
package auth

import (
	"golang.org/x/crypto/bcrypt"

	"agriklima/internal/types"
)

// PasswordHasher hashes and verifies user passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a PasswordHasher with the given bcrypt cost.
// Costs outside bcrypt's valid range fall back to the library default.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of the given plaintext password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to hash password", err)
	}
	return string(hashed), nil
}

// Compare verifies a plaintext password against a stored hash. Returns an
// auth_invalid_credentials AppError on mismatch so handlers can surface a
// uniform 401 without leaking whether the account exists.
func (h *PasswordHasher) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return types.NewAppError(types.ErrCodeAuthInvalidCreds, "invalid email or password", err)
	}
	return nil
}
