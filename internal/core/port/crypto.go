package port

// PasswordHasher hashes and verifies secrets using the configured algorithm.
// Verify must compare in constant time regardless of where a mismatch occurs.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password string, encoded string) (bool, error)
}
