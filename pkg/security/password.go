package security

import (
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/meditrack/authorization-api/pkg/errors"
)

// MinPasswordLen is the shortest plaintext password accepted at
// registration.
const MinPasswordLen = 8

// bcrypt truncates input beyond 72 bytes; reject instead of silently
// hashing a prefix.
const maxPasswordBytes = 72

// PasswordHasher hashes credentials at rest and verifies login attempts.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashedPassword, password string) error
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a bcrypt-backed hasher. Costs outside the
// bcrypt range fall back to the library default.
func NewBcryptHasher(cost int) PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptHasher{cost: cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return "", errors.Validation("password must have at least %d characters", MinPasswordLen)
	}
	if len(password) > maxPasswordBytes {
		return "", errors.Validation("password is too long")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", errors.Internal(err)
	}
	return string(hashed), nil
}

func (b *bcryptHasher) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
