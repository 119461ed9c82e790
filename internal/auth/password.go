package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"dashboard-api/internal/model"
)

const DefaultBcryptCost = 12

// PasswordHasher wraps bcrypt with a tunable cost factor. The salt is
// generated per call and embedded in the digest, so hashing the same
// password twice yields distinct digests that both verify.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("password cannot be empty: %w", model.ErrInvalidInput)
	}

	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. It never returns an
// error: empty input, a malformed digest, and a genuine mismatch all
// come back false, so the hot authentication path leaks nothing beyond
// "did not match".
func (h *PasswordHasher) Verify(plaintext string, digest string) bool {
	if plaintext == "" || digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
