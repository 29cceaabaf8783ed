package model

import "github.com/google/uuid"

// TokenPurpose distinguishes the expiry class a token was issued for.
// A token issued for one purpose never verifies where the other is required.
type TokenPurpose string

const (
	PurposeSession  TokenPurpose = "session"
	PurposeRecovery TokenPurpose = "recovery"
)

// TokenManager signs and verifies bearer tokens.
type TokenManager interface {
	Generate(userID uuid.UUID, purpose TokenPurpose) (string, error)
	// Parse verifies the token for the given purpose and returns the
	// embedded user ID. Failures are one of ErrTokenExpired,
	// ErrTokenBadSignature or ErrTokenMalformed.
	Parse(token string, purpose TokenPurpose) (uuid.UUID, error)
}
