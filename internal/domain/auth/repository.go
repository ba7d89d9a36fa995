package auth

import (
	"context"
	"time"

	"laluna/internal/core/id"
)

// UserRepository defines data access for users.
type UserRepository interface {
	// Create inserts a user. A taken username yields a Duplicate error.
	Create(ctx context.Context, user *User) error

	GetByID(ctx context.Context, userID id.ID) (*User, error)

	GetByUsername(ctx context.Context, username string) (*User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)

	// ListActive returns active users ordered by username.
	ListActive(ctx context.Context) ([]User, error)

	// Upsert inserts the user or, when the username exists, resets its
	// password, name and role and reactivates it.
	Upsert(ctx context.Context, user *User) error

	UpdateLastLogin(ctx context.Context, userID id.ID, at time.Time) error
}
