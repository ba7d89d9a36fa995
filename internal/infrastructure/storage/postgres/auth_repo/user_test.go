package auth_repo

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laluna/internal/core/apperror"
	"laluna/internal/domain/auth"
)

func TestUpsertQuery(t *testing.T) {
	repo := NewUserRepo(nil)
	user := auth.NewUser("admin", "hash", auth.RoleAdmin)

	sql, _, err := repo.upsertQuery(user).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "INSERT INTO users")
	assert.Contains(t, sql, "ON CONFLICT (username) DO UPDATE SET")
	assert.Contains(t, sql, "RETURNING id")
}

func TestListActiveQuery(t *testing.T) {
	sql, args, err := NewUserRepo(nil).listActiveQuery().ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE active = $1 ORDER BY username")
	assert.Equal(t, []any{true}, args)
}

func TestDuplicateError(t *testing.T) {
	email := "ana@laluna.com"
	user := auth.NewUser("ana", "hash", auth.RoleSalesperson)
	user.Email = &email

	tests := []struct {
		name      string
		err       error
		wantField string
	}{
		{
			name:      "username taken",
			err:       &pgconn.PgError{Code: "23505", ConstraintName: "uq_users_username"},
			wantField: "username",
		},
		{
			name:      "email taken",
			err:       &pgconn.PgError{Code: "23505", ConstraintName: "uq_users_email"},
			wantField: "email",
		},
		{
			name: "other error",
			err:  errors.New("connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := duplicateError(tt.err, user)
			if tt.wantField == "" {
				assert.Nil(t, got)
				return
			}
			appErr, ok := apperror.AsAppError(got)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeDuplicate, appErr.Code)
			assert.Equal(t, tt.wantField, appErr.Details["field"])
		})
	}
}
