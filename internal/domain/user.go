package domain

import (
	"context"
	"time"
)

type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// AdminUser is an account of the admin panel.
type AdminUser struct {
	ID           int64     `json:"id"`
	Firstname    string    `json:"firstname"`
	Lastname     string    `json:"lastname"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"isActive"`
	Roles        []Role    `json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *AdminUser) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// AccountUpdate carries the account fields editable from the profile page.
// Nil fields are left unchanged.
type AccountUpdate struct {
	Firstname *string
	Lastname  *string
	Email     *string
}

func (a AccountUpdate) Empty() bool {
	return a.Firstname == nil && a.Lastname == nil && a.Email == nil
}

type UserRepository interface {
	// Create inserts the user and its role assignments, filling ID and timestamps.
	Create(ctx context.Context, user *AdminUser) error
	GetByID(ctx context.Context, id int64) (*AdminUser, error)
	GetByEmail(ctx context.Context, email string) (*AdminUser, error)
	UpdateAccount(ctx context.Context, id int64, update AccountUpdate) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*Role, error)
}

type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expiresAt"`
	User      *AdminUser `json:"user"`
}

// LoginGuard locks an email out after repeated failed logins.
type LoginGuard interface {
	// Blocked returns how long the email stays locked, zero when it is not.
	Blocked(ctx context.Context, email string) (time.Duration, error)
	// Fail counts one failed attempt and reports whether it triggered a lock.
	Fail(ctx context.Context, email string) (bool, error)
	Reset(ctx context.Context, email string) error
}

type AuthUsecase interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	// Authenticate resolves a bearer token to an active user.
	Authenticate(ctx context.Context, token string) (*AdminUser, error)
}
