package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Salo-Quispe/backend-poli-path/internal/logger"
	"github.com/Salo-Quispe/backend-poli-path/internal/model"
)

// User provides account administration: role management, listing and the
// unverified-account cleanup sweep.
type User struct {
	users  model.UserStore
	logger *logger.Logger
}

func NewUser(users model.UserStore, logger *logger.Logger) *User {
	return &User{users: users, logger: logger}
}

// UpdateRoles atomically replaces the account's role set. The input must
// be a non-empty list of known wire values.
func (s *User) UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) (model.User, error) {
	parsed, err := model.ParseRoles(roles)
	if err != nil {
		return model.User{}, err
	}

	user, err := s.users.Update(ctx, id, model.UserUpdate{Roles: parsed})
	if err != nil {
		return model.User{}, err
	}

	s.logger.Info("User service: roles updated",
		"user_id", id.String(),
		"roles", model.RolesToStrings(parsed))

	return user.Sanitized(), nil
}

// GetByID returns a sanitized account.
func (s *User) GetByID(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	return user.Sanitized(), nil
}

// List returns all accounts, sanitized.
func (s *User) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	for i := range users {
		users[i] = users[i].Sanitized()
	}
	return users, nil
}

// RunSweep periodically deletes accounts that never confirmed their email
// within the retention window. It blocks until ctx is cancelled.
// Only unverified accounts are ever purged.
func (s *User) RunSweep(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.SweepUnverified(ctx, retention); err != nil {
				s.logger.Error("User service: sweep failed", "error", err.Error())
			}
		}
	}
}

// SweepUnverified performs one cleanup pass.
func (s *User) SweepUnverified(ctx context.Context, retention time.Duration) error {
	cutoff := time.Now().Add(-retention)

	stale, err := s.users.ListUnverifiedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to list unverified users: %w", err)
	}

	deleted := 0
	for _, user := range stale {
		if user.IsVerified {
			// ListUnverifiedBefore must never return these.
			continue
		}
		if err := s.users.Delete(ctx, user.ID); err != nil {
			s.logger.Error("User service: failed to delete unverified user",
				"user_id", user.ID.String(),
				"error", err.Error())
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.logger.Info("User service: unverified users deleted", "count", deleted)
	}

	return nil
}
