package security

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHash  = errors.New("invalid hash format")
	ErrInvalidToken = errors.New("invalid token")
)

// Hasher turns passwords into opaque encoded strings and checks them later
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// NewHasher returns the hasher for the configured algorithm name
func NewHasher(kind string) (Hasher, error) {
	switch kind {
	case "argon2id", "":
		return NewArgon(), nil
	case "bcrypt":
		return NewBcrypt(), nil
	default:
		return nil, fmt.Errorf("unknown password hash %q", kind)
	}
}
