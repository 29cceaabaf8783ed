package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Salo-Quispe/backend-poli-path/internal/logger"
	"github.com/Salo-Quispe/backend-poli-path/internal/model"
)

// Authenticate resolves bearer tokens to accounts and enforces role
// membership before a protected handler executes. Every check re-resolves
// the account from the store, so deactivation and role changes take effect
// on the next request.
type Authenticate struct {
	tokens model.TokenManager
	users  model.UserStore
	ctxmgr model.ContextManager
	logger *logger.Logger
}

// NewAuthenticate creates the authorization middleware.
func NewAuthenticate(tokens model.TokenManager, users model.UserStore, ctxmgr model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{tokens: tokens, users: users, ctxmgr: ctxmgr, logger: logger}
}

// RequireRoles returns a middleware that admits only requests whose bearer
// token resolves to an active account holding at least one of the given
// roles. With no roles, any authenticated active account passes.
func (m *Authenticate) RequireRoles(roles ...model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := BearerToken(r)
			if tokenString == "" {
				writeError(w, http.StatusUnauthorized, "missing authorization token")
				return
			}

			userID, err := m.tokens.Parse(tokenString, model.PurposeSession)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "token not valid")
				return
			}

			user, err := m.users.GetByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					// Deliberately not "account deleted".
					writeError(w, http.StatusUnauthorized, "token not valid")
					return
				}
				m.logger.Error("Authenticate middleware: failed to resolve account",
					"error", err.Error())
				writeError(w, http.StatusInternalServerError, "internal server error")
				return
			}

			if !user.IsActive {
				writeError(w, http.StatusUnauthorized, "user not active")
				return
			}

			if !user.HasAnyRole(roles...) {
				writeError(w, http.StatusForbidden, "insufficient role")
				return
			}

			ctx := m.ctxmgr.SetUserToContext(r.Context(), user.Sanitized())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the bearer token from the Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "message": message})
}
