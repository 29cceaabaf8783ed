package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Salo-Quispe/backend-poli-path/internal/logger"
	"github.com/Salo-Quispe/backend-poli-path/internal/model"
	"github.com/Salo-Quispe/backend-poli-path/internal/validate"
)

// mailDispatchTimeout bounds every call into the mail collaborator so a
// non-responsive SMTP server cannot hang registration or recovery.
const mailDispatchTimeout = 10 * time.Second

// Auth orchestrates the account lifecycle: registration with deferred
// activation, login, password change and password recovery.
type Auth struct {
	users     model.UserStore
	hasher    model.PasswordHasher
	tokens    model.TokenManager
	mail      model.MailDispatcher
	validator *validate.Validator
	logger    *logger.Logger
}

func NewAuth(
	users model.UserStore,
	hasher model.PasswordHasher,
	tokens model.TokenManager,
	mail model.MailDispatcher,
	validator *validate.Validator,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		mail:      mail,
		validator: validator,
		logger:    logger,
	}
}

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Name     string
	Lastname string
	Email    string
	Password string
}

// Register creates an unverified account with the user role and sends the
// activation email.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	return a.register(ctx, in, []model.Role{model.RoleUser})
}

// AdminRegister is Register with the admin role added. Route-level
// authorization restricts it to admins.
func (a *Auth) AdminRegister(ctx context.Context, in RegisterInput) (model.User, error) {
	return a.register(ctx, in, []model.Role{model.RoleAdmin, model.RoleUser})
}

// register persists the account and dispatches the confirmation email.
// Persistence and notification are two non-atomic external calls; if the
// dispatch fails the freshly created account is deleted so registration
// stays all-or-nothing for the caller.
func (a *Auth) register(ctx context.Context, in RegisterInput, roles []model.Role) (model.User, error) {
	a.logger.Debug("Auth service: starting registration", "email", in.Email)

	if !a.validator.OrganizationEmail(in.Email) {
		return model.User{}, &model.ValidationError{Field: "email", Message: "must be an organizational email"}
	}
	if !validate.StrongPassword(in.Password) {
		return model.User{}, &model.ValidationError{Field: "password", Message: "must be 6-50 characters with an uppercase letter, a lowercase letter and a digit or symbol"}
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := model.User{
		ID:           uuid.New(),
		Name:         in.Name,
		Lastname:     in.Lastname,
		Email:        strings.ToLower(in.Email),
		PasswordHash: hash,
		IsActive:     true,
		IsVerified:   false,
		Roles:        roles,
		RegisterDate: time.Now(),
	}

	created, err := a.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, model.ErrEmailTaken) {
			return model.User{}, err
		}
		a.logger.Error("Auth service: failed to create user",
			"email", user.Email,
			"error", err.Error())
		return model.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	confirmToken, err := a.tokens.Generate(created.ID, model.PurposeSession)
	if err != nil {
		a.compensateRegistration(ctx, created.ID)
		return model.User{}, fmt.Errorf("failed to issue confirmation token: %w", err)
	}

	mailCtx, cancel := context.WithTimeout(ctx, mailDispatchTimeout)
	defer cancel()
	if err := a.mail.SendConfirmation(mailCtx, created, confirmToken); err != nil {
		a.logger.Error("Auth service: confirmation mail dispatch failed",
			"email", created.Email,
			"error", err.Error())
		a.compensateRegistration(ctx, created.ID)
		return model.User{}, fmt.Errorf("%w: %s", model.ErrMailDispatch, "confirmation email")
	}

	a.logger.Info("Auth service: registration completed", "email", created.Email)

	return created.Sanitized(), nil
}

// compensateRegistration undoes the account creation after a later step of
// the registration saga failed.
func (a *Auth) compensateRegistration(ctx context.Context, id uuid.UUID) {
	if err := a.users.Delete(ctx, id); err != nil {
		a.logger.Error("Auth service: failed to roll back registration",
			"user_id", id.String(),
			"error", err.Error())
	}
}

// LoginResult bundles the sanitized account with a fresh session token.
type LoginResult struct {
	User  model.User
	Token string
}

// Login verifies credentials and issues a session token. An unknown email
// and a wrong password both fail with ErrInvalidCredentials; the active
// and verified checks run only after the credentials matched, so neither
// can be used to enumerate registered emails.
func (a *Auth) Login(ctx context.Context, email, password string) (LoginResult, error) {
	a.logger.Debug("Auth service: login attempt", "email", email)

	user, err := a.users.GetByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return LoginResult{}, model.ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		return LoginResult{}, model.ErrInvalidCredentials
	}

	if !user.IsActive {
		return LoginResult{}, model.ErrUserNotActive
	}
	if !user.IsVerified {
		return LoginResult{}, model.ErrUserNotVerified
	}

	sessionToken, err := a.tokens.Generate(user.ID, model.PurposeSession)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	a.logger.Info("Auth service: login succeeded", "user_id", user.ID.String())

	return LoginResult{User: user.Sanitized(), Token: sessionToken}, nil
}

// ConfirmEmail flips the verified flag for the account embedded in the
// token. Confirming an already verified account succeeds idempotently.
func (a *Auth) ConfirmEmail(ctx context.Context, tokenString string) (string, error) {
	userID, err := a.tokens.Parse(tokenString, model.PurposeSession)
	if err != nil {
		return "", err
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", model.ErrTokenMalformed
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsVerified {
		return "email already confirmed", nil
	}

	verified := true
	if _, err := a.users.Update(ctx, user.ID, model.UserUpdate{IsVerified: &verified}); err != nil {
		return "", fmt.Errorf("failed to mark user verified: %w", err)
	}

	a.logger.Info("Auth service: email confirmed", "user_id", user.ID.String())

	return "email confirmed", nil
}

// ChangePassword replaces the password of an authenticated account. The
// old password must verify and the new one must differ from it (compared
// via Verify, not hash equality) and meet the strength policy. Only the
// password column is written.
func (a *Auth) ChangePassword(ctx context.Context, user model.User, oldPassword, newPassword string) error {
	stored, err := a.users.GetByEmailWithPassword(ctx, user.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if !a.hasher.Verify(oldPassword, stored.PasswordHash) {
		return &model.ValidationError{Field: "oldPassword", Message: "old password is incorrect"}
	}
	if a.hasher.Verify(newPassword, stored.PasswordHash) {
		return &model.ValidationError{Field: "newPassword", Message: "new password must differ from the old one"}
	}
	if !validate.StrongPassword(newPassword) {
		return &model.ValidationError{Field: "newPassword", Message: "must be 6-50 characters with an uppercase letter, a lowercase letter and a digit or symbol"}
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := a.users.Update(ctx, stored.ID, model.UserUpdate{PasswordHash: &hash}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	a.logger.Info("Auth service: password changed", "user_id", stored.ID.String())

	return nil
}

// RecoverPasswordRequest issues a recovery token and emails it. The token
// is persisted on the account only after the mail was dispatched, so a
// failed dispatch never leaves a live token behind. Issuing a new token
// supersedes any earlier one: only the latest stored value passes the
// equality check in CheckRecoveryToken.
func (a *Auth) RecoverPasswordRequest(ctx context.Context, email string) error {
	if !a.validator.OrganizationEmail(email) {
		return &model.ValidationError{Field: "email", Message: "must be an organizational email"}
	}

	user, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to get user by email: %w", err)
	}

	recoveryToken, err := a.tokens.Generate(user.ID, model.PurposeRecovery)
	if err != nil {
		return fmt.Errorf("failed to issue recovery token: %w", err)
	}

	mailCtx, cancel := context.WithTimeout(ctx, mailDispatchTimeout)
	defer cancel()
	if err := a.mail.SendRecovery(mailCtx, user, recoveryToken); err != nil {
		a.logger.Error("Auth service: recovery mail dispatch failed",
			"email", user.Email,
			"error", err.Error())
		return fmt.Errorf("%w: %s", model.ErrMailDispatch, "recovery email")
	}

	if _, err := a.users.Update(ctx, user.ID, model.UserUpdate{RecoverPasswordToken: &recoveryToken}); err != nil {
		return fmt.Errorf("failed to store recovery token: %w", err)
	}

	a.logger.Info("Auth service: recovery email sent", "user_id", user.ID.String())

	return nil
}

// CheckRecoveryToken verifies a recovery token cryptographically and
// against the value stored on the account, rejecting tokens superseded by
// a newer request.
func (a *Auth) CheckRecoveryToken(ctx context.Context, tokenString string) error {
	_, err := a.resolveRecoveryToken(ctx, tokenString)
	return err
}

func (a *Auth) resolveRecoveryToken(ctx context.Context, tokenString string) (model.User, error) {
	userID, err := a.tokens.Parse(tokenString, model.PurposeRecovery)
	if err != nil {
		return model.User{}, err
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, model.ErrTokenMalformed
		}
		return model.User{}, fmt.Errorf("failed to get user: %w", err)
	}

	if user.RecoverPasswordToken == nil || *user.RecoverPasswordToken != tokenString {
		return model.User{}, model.ErrTokenMismatch
	}

	return user, nil
}

// RecoverPassword completes the recovery flow: the presented token must be
// the latest issued one, the new password must meet the strength policy,
// and the stored token is cleared in the same write that replaces the hash
// so it cannot be replayed.
func (a *Auth) RecoverPassword(ctx context.Context, tokenString, newPassword string) error {
	user, err := a.resolveRecoveryToken(ctx, tokenString)
	if err != nil {
		return err
	}

	if !validate.StrongPassword(newPassword) {
		return &model.ValidationError{Field: "password", Message: "must be 6-50 characters with an uppercase letter, a lowercase letter and a digit or symbol"}
	}

	hash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	update := model.UserUpdate{PasswordHash: &hash, ClearRecoverPasswordToken: true}
	if _, err := a.users.Update(ctx, user.ID, update); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	a.logger.Info("Auth service: password recovered", "user_id", user.ID.String())

	return nil
}

// CheckAuthStatus returns the sanitized account with a fresh session token.
func (a *Auth) CheckAuthStatus(ctx context.Context, user model.User) (LoginResult, error) {
	sessionToken, err := a.tokens.Generate(user.ID, model.PurposeSession)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to issue session token: %w", err)
	}

	return LoginResult{User: user.Sanitized(), Token: sessionToken}, nil
}
