package model

import "context"

// MailDispatcher delivers account lifecycle emails. Both methods fail with
// a generic dispatch error; callers treat it like any downstream failure.
type MailDispatcher interface {
	SendConfirmation(ctx context.Context, user User, token string) error
	SendRecovery(ctx context.Context, user User, token string) error
}
