// Package tokens issues the opaque access tokens that gate the self-service forms.
package tokens

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ByteLength is the amount of randomness per token; tokens are twice as long in hex.
const ByteLength = 16

// Issue returns a fresh random hex token with no relation to any candidate identifier.
func Issue() (string, error) {
	buf := make([]byte, ByteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
