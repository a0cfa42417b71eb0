package collaboration

import (
	"crypto/rand"
	"encoding/hex"
)

// generateToken returns a 64-hex-char single-use token. Uniqueness is
// enforced by the unique index on the token column.
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
