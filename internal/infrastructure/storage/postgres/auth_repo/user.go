// Package auth_repo provides the PostgreSQL implementation of auth.UserRepository.
package auth_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/domain/auth"
	"laluna/internal/infrastructure/storage/postgres"
)

const tableName = "users"

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txManager *postgres.TxManager) *UserRepo {
	return &UserRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[auth.User](),
	}
}

func duplicateError(err error, user *auth.User) error {
	if postgres.PgErrorCode(err) != postgres.CodeUniqueViolation {
		return nil
	}
	if postgres.ConstraintName(err) == "uq_users_email" && user.Email != nil {
		return apperror.NewDuplicate("user", "email", *user.Email).WithCause(err)
	}
	return apperror.NewDuplicate("user", "username", user.Username).WithCause(err)
}

func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	sql, args, err := r.builder.Insert(tableName).SetMap(postgres.StructToMap(user)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if dup := duplicateError(err, user); dup != nil {
			return dup
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"id": userID}, userID)
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"username": username}, username)
}

func (r *UserRepo) getOne(ctx context.Context, where squirrel.Eq, key any) (*auth.User, error) {
	sql, args, err := r.builder.Select(r.columns...).From(tableName).Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (r *UserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return exists, nil
}

func (r *UserRepo) ListActive(ctx context.Context) ([]auth.User, error) {
	sql, args, err := r.listActiveQuery().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	var users []auth.User
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &users, sql, args...); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepo) listActiveQuery() squirrel.SelectBuilder {
	return r.builder.Select(r.columns...).
		From(tableName).
		Where(squirrel.Eq{"active": true}).
		OrderBy("username")
}

// Upsert keys on username. On conflict user.ID is replaced by the stored id.
func (r *UserRepo) Upsert(ctx context.Context, user *auth.User) error {
	sql, args, err := r.upsertQuery(user).ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&user.ID); err != nil {
		if dup := duplicateError(err, user); dup != nil {
			return dup
		}
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (r *UserRepo) upsertQuery(user *auth.User) squirrel.InsertBuilder {
	return r.builder.Insert(tableName).
		SetMap(postgres.StructToMap(user)).
		Suffix(`ON CONFLICT (username) DO UPDATE SET
			password_hash = EXCLUDED.password_hash,
			name = EXCLUDED.name,
			role = EXCLUDED.role,
			active = true,
			updated_at = EXCLUDED.updated_at
		RETURNING id`)
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID id.ID, at time.Time) error {
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx,
		`UPDATE users SET last_login_at = $2 WHERE id = $1`, userID, at)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", userID)
	}
	return nil
}
