// Package auth provides the identity store: user accounts, password
// verification and bearer token issuance.
package auth

import (
	"strings"
	"time"
	"unicode/utf8"

	"laluna/internal/core/apperror"
	appctx "laluna/internal/core/context"
	"laluna/internal/core/id"
)

// Role of a user.
type Role string

const (
	RoleAdmin       Role = appctx.RoleAdmin
	RoleSalesperson Role = appctx.RoleSalesperson
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleSalesperson
}

const (
	usernameMinLen    = 3
	usernameMaxLen    = 50
	passwordMinLength = 6
)

// User represents a back office account.
type User struct {
	ID           id.ID      `db:"id"`
	Username     string     `db:"username"`
	PasswordHash string     `db:"password_hash"`
	Name         *string    `db:"name"`
	Email        *string    `db:"email"`
	Role         Role       `db:"role"`
	Active       bool       `db:"active"`
	LastLoginAt  *time.Time `db:"last_login_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// NewUser creates an active user.
func NewUser(username, passwordHash string, role Role) *User {
	now := time.Now().UTC()
	return &User{
		ID:           id.New(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Credentials for login.
type Credentials struct {
	Username string
	Password string
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

// CreateUserInput holds the fields of a new account.
type CreateUserInput struct {
	Username string
	Password string
	Name     *string
	Email    *string
	Role     Role
}

// SeedUser is an account provisioned by the seed command.
type SeedUser struct {
	Username string
	Password string
	Name     string
	Role     Role
}

func validateUsername(username string) error {
	if n := utf8.RuneCountInString(username); n < usernameMinLen || n > usernameMaxLen {
		return apperror.NewInvalidInput("username", "username must be between 3 and 50 characters")
	}
	if strings.ContainsAny(username, " \t\n") {
		return apperror.NewInvalidInput("username", "username must not contain spaces")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < passwordMinLength {
		return apperror.NewInvalidInput("password", "password must be at least 6 characters")
	}
	return nil
}
