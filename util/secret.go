// Package util contains small helpers used across the application that don't
// fit any other package
package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// RandomHex returns n random bytes encoded as a hex string
func RandomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes, %w", err)
	}

	return hex.EncodeToString(b), nil
}
