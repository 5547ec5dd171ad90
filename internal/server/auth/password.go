package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 10

// PasswordHasher wraps bcrypt with a fixed cost.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password. Passwords over 72 bytes are a
// validation error.
func (h *PasswordHasher) Hash(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is longer than 72 bytes", common.ErrValidation)
		}
		return nil, err
	}
	return hash, nil
}

// Compare reports common.ErrInvalidCredentials on any mismatch.
func (h *PasswordHasher) Compare(hash []byte, password string) error {
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return common.ErrInvalidCredentials
		}
		return fmt.Errorf("%w: %v", common.ErrInvalidCredentials, err)
	}
	return nil
}
