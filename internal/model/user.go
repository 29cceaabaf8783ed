package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserStore defines persistence operations for user accounts.
//
// GetByEmail and GetByEmailWithPassword match emails case-insensitively.
// Only GetByEmailWithPassword ever populates User.PasswordHash; every other
// accessor returns the record with the hash stripped.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (User, error)
	Create(ctx context.Context, user User) (User, error)
	Update(ctx context.Context, id uuid.UUID, update UserUpdate) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]User, error)
	ListUnverifiedBefore(ctx context.Context, cutoff time.Time) ([]User, error)
}

// User represents a registered account.
type User struct {
	ID                   uuid.UUID
	Name                 string
	Lastname             string
	Email                string
	PasswordHash         string
	IsActive             bool
	IsVerified           bool
	Roles                []Role
	RecoverPasswordToken *string
	ProfileImageName     string
	ProfileImageURL      string
	RegisterDate         time.Time
}

// UserUpdate describes a partial update. Nil fields are left untouched.
// ClearRecoverPasswordToken nulls the stored recovery token and takes
// precedence over RecoverPasswordToken.
type UserUpdate struct {
	PasswordHash              *string
	IsVerified                *bool
	IsActive                  *bool
	Roles                     []Role
	RecoverPasswordToken      *string
	ClearRecoverPasswordToken bool
	ProfileImageName          *string
	ProfileImageURL           *string
}

// Sanitized returns a copy safe to hand outside the identity core:
// the password hash and the stored recovery token are stripped.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.RecoverPasswordToken = nil
	return u
}

// HasAnyRole reports whether the user holds at least one of the given roles.
// An empty required set means no role restriction.
func (u User) HasAnyRole(roles ...Role) bool {
	if len(roles) == 0 {
		return true
	}
	for _, required := range roles {
		for _, held := range u.Roles {
			if held == required {
				return true
			}
		}
	}
	return false
}
