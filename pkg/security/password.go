package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLen is the floor enforced on account passwords. Request
// binding checks it too; the hasher is the last gate before a credential
// reaches storage.
const MinPasswordLen = 8

var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", MinPasswordLen)

// PasswordHasher hashes account passwords at registration and verifies them
// at login.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt-backed hasher. The cost comes from
// PETPLAN_BCRYPT_COST; values outside bcrypt's accepted range fall back to
// the library default rather than failing at startup.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	if len(password) < MinPasswordLen {
		return "", ErrPasswordTooShort
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// Compare returns a non-nil error on mismatch. Callers collapse it into a
// single invalid-credentials response.
func (b *bcryptHasher) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
