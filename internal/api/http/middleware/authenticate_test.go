package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appcontext "github.com/Salo-Quispe/backend-poli-path/internal/api/http/context"
	"github.com/Salo-Quispe/backend-poli-path/internal/mocks"
	"github.com/Salo-Quispe/backend-poli-path/internal/model"
	"github.com/Salo-Quispe/backend-poli-path/internal/testutil"
)

type authenticateFixture struct {
	tokens *mocks.TokenManager
	users  *mocks.UserStore
	mw     *Authenticate
}

func newAuthenticateFixture() *authenticateFixture {
	f := &authenticateFixture{
		tokens: &mocks.TokenManager{},
		users:  &mocks.UserStore{},
	}
	f.mw = NewAuthenticate(f.tokens, f.users, appcontext.NewManager(), testutil.MakeNoopLogger())
	return f
}

func (f *authenticateFixture) do(t *testing.T, token string, roles ...model.Role) *httptest.ResponseRecorder {
	t.Helper()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.mw.RequireRoles(roles...)(next).ServeHTTP(rec, req)
	return rec
}

func TestRequireRoles_MissingToken(t *testing.T) {
	f := newAuthenticateFixture()

	rec := f.do(t, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing authorization token")
}

func TestRequireRoles_InvalidToken(t *testing.T) {
	f := newAuthenticateFixture()

	f.tokens.On("Parse", "bad", model.PurposeSession).Return(uuid.Nil, model.ErrTokenMalformed).Once()

	rec := f.do(t, "bad")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token not valid")
}

func TestRequireRoles_RecoveryTokenRejected(t *testing.T) {
	f := newAuthenticateFixture()

	// The token manager reports a recovery token presented here as malformed.
	f.tokens.On("Parse", "recovery", model.PurposeSession).Return(uuid.Nil, model.ErrTokenMalformed).Once()

	rec := f.do(t, "recovery")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoles_DeletedAccountMasked(t *testing.T) {
	f := newAuthenticateFixture()
	userID := uuid.New()

	f.tokens.On("Parse", "tok", model.PurposeSession).Return(userID, nil).Once()
	f.users.On("GetByID", mock.Anything, userID).Return(model.User{}, model.ErrNotFound).Once()

	rec := f.do(t, "tok")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token not valid")
}

func TestRequireRoles_StoreFailure(t *testing.T) {
	f := newAuthenticateFixture()
	userID := uuid.New()

	f.tokens.On("Parse", "tok", model.PurposeSession).Return(userID, nil).Once()
	f.users.On("GetByID", mock.Anything, userID).Return(model.User{}, assert.AnError).Once()

	rec := f.do(t, "tok")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRequireRoles_InactiveAccount(t *testing.T) {
	f := newAuthenticateFixture()
	userID := uuid.New()

	f.tokens.On("Parse", "tok", model.PurposeSession).Return(userID, nil).Once()
	f.users.On("GetByID", mock.Anything, userID).
		Return(model.User{ID: userID, IsActive: false, Roles: []model.Role{model.RoleUser}}, nil).Once()

	rec := f.do(t, "tok")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not active")
}

func TestRequireRoles_InsufficientRole(t *testing.T) {
	f := newAuthenticateFixture()
	userID := uuid.New()

	f.tokens.On("Parse", "tok", model.PurposeSession).Return(userID, nil).Once()
	f.users.On("GetByID", mock.Anything, userID).
		Return(model.User{ID: userID, IsActive: true, Roles: []model.Role{model.RoleUser}}, nil).Once()

	rec := f.do(t, "tok", model.RoleAdmin)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient role")
}

func TestRequireRoles_AdmitsMatchingRole(t *testing.T) {
	f := newAuthenticateFixture()
	userID := uuid.New()

	f.tokens.On("Parse", "tok", model.PurposeSession).Return(userID, nil).Once()
	f.users.On("GetByID", mock.Anything, userID).
		Return(model.User{ID: userID, IsActive: true, Roles: []model.Role{model.RoleUser}, PasswordHash: "hashed"}, nil).Once()

	ctxmgr := appcontext.NewManager()
	var fromCtx model.User
	var ok bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx, ok = ctxmgr.GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer tok")
	rec := httptest.NewRecorder()
	f.mw.RequireRoles(model.RoleUser, model.RoleAdmin)(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, userID, fromCtx.ID)
	assert.Empty(t, fromCtx.PasswordHash)
}

func TestRequireRoles_NoRolesMeansAnyAuthenticated(t *testing.T) {
	f := newAuthenticateFixture()
	userID := uuid.New()

	f.tokens.On("Parse", "tok", model.PurposeSession).Return(userID, nil).Once()
	f.users.On("GetByID", mock.Anything, userID).
		Return(model.User{ID: userID, IsActive: true, Roles: []model.Role{model.RoleUser}}, nil).Once()

	rec := f.do(t, "tok")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer abc123")
	assert.Equal(t, "abc123", BearerToken(req))
}
