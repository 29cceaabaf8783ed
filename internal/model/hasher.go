package model

// PasswordHasher provides one-way password hashing and verification.
// No plaintext password is retained past the call that consumes it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	// Verify compares in constant time relative to the digest length.
	Verify(plaintext, digest string) bool
}
