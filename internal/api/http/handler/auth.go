package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Salo-Quispe/backend-poli-path/internal/api/http/middleware"
	"github.com/Salo-Quispe/backend-poli-path/internal/logger"
	"github.com/Salo-Quispe/backend-poli-path/internal/model"
	"github.com/Salo-Quispe/backend-poli-path/internal/service"
)

// AuthService defines the identity lifecycle operations.
type AuthService interface {
	Register(ctx context.Context, in service.RegisterInput) (model.User, error)
	AdminRegister(ctx context.Context, in service.RegisterInput) (model.User, error)
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	ConfirmEmail(ctx context.Context, token string) (string, error)
	ChangePassword(ctx context.Context, user model.User, oldPassword, newPassword string) error
	RecoverPasswordRequest(ctx context.Context, email string) error
	CheckRecoveryToken(ctx context.Context, token string) error
	RecoverPassword(ctx context.Context, token, password string) error
	CheckAuthStatus(ctx context.Context, user model.User) (service.LoginResult, error)
}

// Auth handles the /auth endpoints.
type Auth struct {
	authService AuthService
	ctxmgr      model.ContextManager
	logger      *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, ctxmgr model.ContextManager, logger *logger.Logger) *Auth {
	return &Auth{
		authService: authService,
		ctxmgr:      ctxmgr,
		logger:      logger,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	userResponse
	Token string `json:"token"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type recoverPasswordRequest struct {
	Password string `json:"password"`
}

// Register handles POST /auth/register.
func (h *Auth) Register(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.authService.Register)
}

// AdminRegister handles POST /auth/admin-register.
func (h *Auth) AdminRegister(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, h.authService.AdminRegister)
}

func (h *Auth) register(w http.ResponseWriter, r *http.Request, create func(context.Context, service.RegisterInput) (model.User, error)) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, h.logger, &model.ValidationError{Field: "body", Message: "invalid request body"})
		return
	}

	_, err := create(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Lastname: req.Lastname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusCreated, "account created, check your email to activate it")
}

// Login handles POST /auth/login.
func (h *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, h.logger, &model.ValidationError{Field: "body", Message: "invalid request body"})
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		userResponse: toUserResponse(result.User),
		Token:        result.Token,
	})
}

// ConfirmEmail handles GET /auth/confirm-email/{token}.
func (h *Auth) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	message, err := h.authService.ConfirmEmail(r.Context(), token)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, message)
}

// ChangePassword handles PATCH /auth/change-password.
func (h *Auth) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := h.ctxmgr.GetUserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "missing authorization token", "")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, h.logger, &model.ValidationError{Field: "body", Message: "invalid request body"})
		return
	}

	if err := h.authService.ChangePassword(r.Context(), user, req.OldPassword, req.NewPassword); err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, "password updated")
}

// RecoverPasswordRequest handles GET /auth/recover-password/{email}.
func (h *Auth) RecoverPasswordRequest(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	if err := h.authService.RecoverPasswordRequest(r.Context(), email); err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, "recovery email sent")
}

// CheckRecoveryToken handles GET /auth/confirm-token?token=.
func (h *Auth) CheckRecoveryToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	if err := h.authService.CheckRecoveryToken(r.Context(), token); err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, "token valid")
}

// RecoverPassword handles POST /auth/recover-password. It authenticates
// with the recovery token itself rather than a session token.
func (h *Auth) RecoverPassword(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		writeErr(w, http.StatusUnauthorized, "missing authorization token", "")
		return
	}

	var req recoverPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, h.logger, &model.ValidationError{Field: "body", Message: "invalid request body"})
		return
	}

	if err := h.authService.RecoverPassword(r.Context(), token, req.Password); err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondMessage(w, http.StatusOK, "password updated")
}

// CheckAuthStatus handles GET /auth/check-auth-status.
func (h *Auth) CheckAuthStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := h.ctxmgr.GetUserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "missing authorization token", "")
		return
	}

	result, err := h.authService.CheckAuthStatus(r.Context(), user)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		userResponse: toUserResponse(result.User),
		Token:        result.Token,
	})
}
