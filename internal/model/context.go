package model

import "context"

// ContextManager moves the authenticated account in and out of a request
// context. The stored account is always sanitized.
type ContextManager interface {
	SetUserToContext(ctx context.Context, user User) context.Context
	GetUserFromContext(ctx context.Context) (User, bool)
}
