package memory

import (
	"context"
	"sort"
	"time"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/domain/auth"
)

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	store *Store
}

func findUsername(st *state, username string) (auth.User, bool) {
	for _, u := range st.users {
		if u.Username == username {
			return u, true
		}
	}
	return auth.User{}, false
}

func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	return r.store.view(ctx, func(st *state) error {
		if _, taken := findUsername(st, user.Username); taken {
			return apperror.NewDuplicate("user", "username", user.Username)
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	var out auth.User
	err := r.store.view(ctx, func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return apperror.NewNotFound("user", userID)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	var out auth.User
	err := r.store.view(ctx, func(st *state) error {
		u, ok := findUsername(st, username)
		if !ok {
			return apperror.NewNotFound("user", username)
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var found bool
	err := r.store.view(ctx, func(st *state) error {
		_, found = findUsername(st, username)
		return nil
	})
	return found, err
}

func (r *UserRepo) ListActive(ctx context.Context) ([]auth.User, error) {
	var out []auth.User
	err := r.store.view(ctx, func(st *state) error {
		for _, u := range st.users {
			if u.Active {
				out = append(out, u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, err
}

func (r *UserRepo) Upsert(ctx context.Context, user *auth.User) error {
	return r.store.view(ctx, func(st *state) error {
		if existing, ok := findUsername(st, user.Username); ok {
			existing.PasswordHash = user.PasswordHash
			existing.Name = user.Name
			existing.Role = user.Role
			existing.Active = true
			existing.UpdatedAt = user.UpdatedAt
			st.users[existing.ID] = existing
			user.ID = existing.ID
			return nil
		}
		st.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID id.ID, at time.Time) error {
	return r.store.view(ctx, func(st *state) error {
		u, ok := st.users[userID]
		if !ok {
			return apperror.NewNotFound("user", userID)
		}
		u.LastLoginAt = &at
		st.users[userID] = u
		return nil
	})
}
