package auth

import (
	"errors"

	"github.com/dmitrijs2005/firewatch/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher wraps bcrypt with a fixed cost.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	b := []byte(password)
	defer common.WipeByteArray(b)

	hash, err := bcrypt.GenerateFromPassword(b, h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Compare reports whether password matches hash. A mismatch is (false, nil);
// a malformed hash or oversized password is an error.
func (h *PasswordHasher) Compare(hash, password string) (bool, error) {
	b := []byte(password)
	defer common.WipeByteArray(b)

	err := bcrypt.CompareHashAndPassword([]byte(hash), b)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
