// Package context moves the authenticated account between the
// authorization middleware and downstream handlers.
package context

import (
	"context"

	"github.com/Salo-Quispe/backend-poli-path/internal/model"
)

type contextKey int

const userKey contextKey = iota

// Manager implements model.ContextManager over request contexts.
type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// SetUserToContext stores the account on the context.
func (m *Manager) SetUserToContext(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUserFromContext returns the account stored by the authorization
// middleware, if any.
func (m *Manager) GetUserFromContext(ctx context.Context) (model.User, bool) {
	user, ok := ctx.Value(userKey).(model.User)
	return user, ok
}
