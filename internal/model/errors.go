package model

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that the requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrEmailTaken signals a unique-email violation at the storage layer.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned for both an unknown email and a
	// wrong password so that login failures cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrUserNotActive is returned only after credentials verified.
	ErrUserNotActive = errors.New("user not active")

	// ErrUserNotVerified is returned only after credentials verified.
	ErrUserNotVerified = errors.New("user not verified, check your email")

	// ErrMailDispatch signals that the mail collaborator failed.
	ErrMailDispatch = errors.New("mail dispatch failed")
)

// ValidationError describes malformed input with field-level detail.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
