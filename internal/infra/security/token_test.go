package security

import (
	"regexp"
	"testing"
)

func TestGenerateResetToken(t *testing.T) {
	format := regexp.MustCompile(`^[0-9a-f]{40}$`)

	seen := make(map[string]struct{})
	for i := 0; i < 64; i++ {
		token, err := GenerateResetToken()
		if err != nil {
			t.Fatalf("GenerateResetToken() error = %v", err)
		}
		if !format.MatchString(token) {
			t.Fatalf("token %q is not 40 lowercase hex characters", token)
		}
		if _, dup := seen[token]; dup {
			t.Fatalf("token %q generated twice", token)
		}
		seen[token] = struct{}{}
	}
}
