package inventory_repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laluna/internal/core/id"
)

func TestListProductsQuery(t *testing.T) {
	repo := NewInventoryRepo(nil)

	tests := []struct {
		name       string
		activeOnly bool
		wantWhere  bool
	}{
		{name: "all products", activeOnly: false, wantWhere: false},
		{name: "active only", activeOnly: true, wantWhere: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := repo.listProductsQuery(tt.activeOnly).ToSql()
			require.NoError(t, err)
			assert.Contains(t, sql, "ORDER BY category, sort_order, name")
			if tt.wantWhere {
				assert.Contains(t, sql, "WHERE active = $1")
				assert.Equal(t, []any{true}, args)
			} else {
				assert.NotContains(t, sql, "WHERE")
				assert.Empty(t, args)
			}
		})
	}
}

func TestLockStockQuery(t *testing.T) {
	repo := NewInventoryRepo(nil)
	productID := id.New()

	sql, args, err := repo.lockStockQuery(productID, 2).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE product_id = $1 AND branch_id = $2 FOR UPDATE")
	assert.Equal(t, []any{productID.String(), 2}, args)
}

func TestStockForBranchQuery(t *testing.T) {
	repo := NewInventoryRepo(nil)

	sql, args, err := repo.stockForBranchQuery(3).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "LEFT JOIN stock s ON s.product_id = p.id AND s.branch_id = $1")
	assert.Contains(t, sql, "WHERE p.active = $2")
	assert.Contains(t, sql, "ORDER BY p.category, p.sort_order, p.name")
	assert.Equal(t, []any{3, true}, args)
}

func TestHistoryQuery(t *testing.T) {
	repo := NewInventoryRepo(nil)

	sql, args, err := repo.historyQuery(1, 50).ToSql()
	require.NoError(t, err)
	assert.Contains(t, sql, "JOIN products p ON p.id = a.product_id")
	assert.Contains(t, sql, "ORDER BY a.created_at DESC, a.id DESC LIMIT 50")
	assert.Equal(t, []any{1}, args)
}
