package customer_repo

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/domain/customer"
)

func TestListQuery(t *testing.T) {
	repo := NewCustomerRepo(nil)
	inactive := customer.StateInactive

	tests := []struct {
		name      string
		filter    customer.ListFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "default",
			filter:    customer.ListFilter{},
			wantWhere: "WHERE is_deleted = $1 ORDER BY name, id",
			wantArgs:  []any{false},
		},
		{
			name:      "state",
			filter:    customer.ListFilter{State: &inactive},
			wantWhere: "WHERE is_deleted = $1 AND state = $2 ORDER BY name, id",
			wantArgs:  []any{false, customer.StateInactive},
		},
		{
			name:      "search",
			filter:    customer.ListFilter{Search: " ana "},
			wantWhere: "WHERE is_deleted = $1 AND (name ILIKE $2 OR phone LIKE $3) ORDER BY name, id",
			wantArgs:  []any{false, "%ana%", "%ana%"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.listQuery(tt.filter).ToSql()
			require.NoError(t, err)
			assert.Contains(t, sql, "FROM customers "+tt.wantWhere)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestColumnsMatchSchema(t *testing.T) {
	repo := NewCustomerRepo(nil)
	assert.Equal(t, []string{
		"id", "name", "address", "phone", "email", "notes", "state",
		"total_billed", "order_count", "last_order_date",
		"registered_at", "updated_at", "is_deleted", "deleted_at",
	}, repo.columns)
}

func TestMapRecomputeError(t *testing.T) {
	customerID := id.New()

	err := mapRecomputeError(customerID, &pgconn.PgError{Code: "22003"})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeInvalidInput, appErr.Code)
	assert.Equal(t, "totalBilled", appErr.Details["field"])

	assert.True(t, apperror.IsNotFound(mapRecomputeError(customerID, pgx.ErrNoRows)))

	boom := errors.New("boom")
	assert.ErrorIs(t, mapRecomputeError(customerID, boom), boom)
}
