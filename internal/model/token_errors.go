package model

import "errors"

var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenMalformed    = errors.New("token not valid")
	ErrTokenBadSignature = errors.New("token signature not valid")

	// ErrTokenMismatch signals a recovery token that verifies
	// cryptographically but was superseded by a newer request.
	ErrTokenMismatch = errors.New("token does not match latest request")
)
