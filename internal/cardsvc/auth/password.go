package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultHashCost is the bcrypt work factor used for stored passwords.
const DefaultHashCost = 12

var (
	ErrEmptyPassword             = errors.New("password can not be empty")
	ErrMismatchedHashAndPassword = errors.New("password does not match")
)

// PasswordHasher hashes and checks passwords with bcrypt.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultHashCost
	}
	return &PasswordHasher{cost: cost}
}

func (p *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	return string(h), err
}

// Compare returns ErrMismatchedHashAndPassword when password does not
// produce hash, or the bcrypt error for a malformed hash.
func (p *PasswordHasher) Compare(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}
