package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// resetTokenBytes is the entropy of a password reset token. 20 random
// bytes hex-encode to a 40 character opaque string.
const resetTokenBytes = 20

// GenerateResetToken returns a cryptographically random hex token for the
// password reset flow.
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	return hex.EncodeToString(buf), nil
}
