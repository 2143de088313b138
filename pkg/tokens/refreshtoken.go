package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// OpaqueBytes is the entropy of refresh and reset tokens; hex encoding
// doubles it to 96 characters.
const OpaqueBytes = 48

// NewOpaque returns a random token for the client. Only HashOpaque of it is
// ever stored.
func NewOpaque() (string, error) {
	buf := make([]byte, OpaqueBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func HashOpaque(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
