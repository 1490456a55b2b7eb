package security

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type BcryptHash struct {
	Cost int
}

func NewBcrypt() *BcryptHash {
	return &BcryptHash{Cost: bcrypt.DefaultCost}
}

func (b *BcryptHash) Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), b.Cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password, %w", err)
	}

	return string(h), nil
}

func (b *BcryptHash) Verify(password, encoded string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w, %w", ErrInvalidHash, err)
	}
}
