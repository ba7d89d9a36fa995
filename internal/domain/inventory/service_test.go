package inventory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laluna/internal/core/apperror"
	"laluna/internal/core/events"
	"laluna/internal/core/id"
	"laluna/internal/domain/inventory"
	"laluna/internal/infrastructure/storage/memory"
)

type recordingNotifier struct {
	mu      sync.Mutex
	changes []inventory.StockChange
}

func (n *recordingNotifier) NotifyStock(branchID int, change inventory.StockChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func setup(t *testing.T) (*inventory.Service, *memory.Store, *recordingNotifier, *inventory.Product) {
	t.Helper()
	store := memory.New()
	notifier := &recordingNotifier{}
	svc := inventory.NewService(store.Inventory(), store, store, notifier)
	p, err := svc.CreateProduct(context.Background(), inventory.ProductInput{
		Name:     "Tomate",
		Category: inventory.CategoryVegetables,
	})
	require.NoError(t, err)
	return svc, store, notifier, p
}

func TestNextQuantity(t *testing.T) {
	tests := []struct {
		name    string
		current string
		qty     string
		mode    inventory.AdjustMode
		want    string
	}{
		{"set", "5", "12.5", inventory.ModeSet, "12.5"},
		{"set negative floors", "5", "-3", inventory.ModeSet, "0"},
		{"delta add", "5", "2.25", inventory.ModeDelta, "7.25"},
		{"delta floors at zero", "5", "-1000", inventory.ModeDelta, "0"},
		{"rounds to grams", "0", "1.23456", inventory.ModeSet, "1.235"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := inventory.NextQuantity(qty(tt.current), qty(tt.qty), tt.mode)
			assert.True(t, qty(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestAdjustStock_SetOnNewRow(t *testing.T) {
	ctx := context.Background()
	svc, store, notifier, p := setup(t)
	user := id.New()

	res, err := svc.AdjustStock(ctx, inventory.AdjustInput{
		BranchID: 1, ProductID: p.ID, Quantity: qty("10"), Mode: inventory.ModeSet, UserID: &user,
	})
	require.NoError(t, err)
	assert.True(t, res.Quantity.Equal(qty("10")))
	assert.True(t, res.Adjustment.QuantityBefore.IsZero())
	assert.True(t, res.Adjustment.QuantityAfter.Equal(qty("10")))
	assert.True(t, res.Adjustment.Delta.Equal(qty("10")))
	assert.Equal(t, &user, res.Adjustment.UserID)

	require.Len(t, notifier.changes, 1)
	assert.Equal(t, "Tomate", notifier.changes[0].ProductName)
	assert.Equal(t, "10.000", notifier.changes[0].Quantity)

	evs := store.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.StockAdjusted, evs[0].Type)
}

func TestAdjustStock_DeltaFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	svc, _, _, p := setup(t)

	_, err := svc.AdjustStock(ctx, inventory.AdjustInput{BranchID: 2, ProductID: p.ID, Quantity: qty("5"), Mode: inventory.ModeSet})
	require.NoError(t, err)

	res, err := svc.AdjustStock(ctx, inventory.AdjustInput{BranchID: 2, ProductID: p.ID, Quantity: qty("-1000"), Mode: inventory.ModeDelta})
	require.NoError(t, err)
	assert.True(t, res.Quantity.IsZero())
	assert.True(t, res.Adjustment.Delta.Equal(qty("-5")))

	history, err := svc.History(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].Delta.Equal(qty("-5")))
	assert.Equal(t, "Tomate", history[0].ProductName)
	assert.Equal(t, inventory.UnitKg, history[0].ProductUnit)

	other, err := svc.History(ctx, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestAdjustStock_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _, notifier, p := setup(t)

	tests := []struct {
		name  string
		in    inventory.AdjustInput
		field string
	}{
		{"branch", inventory.AdjustInput{BranchID: 0, ProductID: p.ID, Quantity: qty("1"), Mode: inventory.ModeSet}, "branchId"},
		{"mode", inventory.AdjustInput{BranchID: 1, ProductID: p.ID, Quantity: qty("1"), Mode: "add"}, "mode"},
		{"range", inventory.AdjustInput{BranchID: 1, ProductID: p.ID, Quantity: qty("10000000"), Mode: inventory.ModeSet}, "quantity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AdjustStock(ctx, tt.in)
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, appErr.Details["field"])
		})
	}

	_, err := svc.AdjustStock(ctx, inventory.AdjustInput{BranchID: 1, ProductID: id.New(), Quantity: qty("1"), Mode: inventory.ModeSet})
	assert.True(t, apperror.IsNotFound(err))
	assert.Empty(t, notifier.changes)
}

func TestStockForBranch_IncludesUnadjustedProducts(t *testing.T) {
	ctx := context.Background()
	svc, _, _, p := setup(t)
	other, err := svc.CreateProduct(ctx, inventory.ProductInput{Name: "Banana", Category: inventory.CategoryFruits})
	require.NoError(t, err)

	_, err = svc.AdjustStock(ctx, inventory.AdjustInput{BranchID: 3, ProductID: other.ID, Quantity: qty("4"), Mode: inventory.ModeSet})
	require.NoError(t, err)

	rows, err := svc.StockForBranch(ctx, 3)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, p.ID, rows[0].Product.ID)
	assert.True(t, rows[0].Quantity.IsZero())
	assert.Nil(t, rows[0].StockID)

	assert.Equal(t, other.ID, rows[1].Product.ID)
	assert.True(t, rows[1].Quantity.Equal(qty("4")))
	assert.NotNil(t, rows[1].StockID)
}

func TestUpdateProduct_Deactivate(t *testing.T) {
	ctx := context.Background()
	svc, _, _, p := setup(t)

	off := false
	updated, err := svc.UpdateProduct(ctx, p.ID, inventory.ProductPatch{Active: &off})
	require.NoError(t, err)
	assert.False(t, updated.Active)

	active, err := svc.ListProducts(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, active)

	bad := inventory.Category("meat")
	_, err = svc.UpdateProduct(ctx, p.ID, inventory.ProductPatch{Category: &bad})
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}

func TestSeedCatalog_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := inventory.NewService(store.Inventory(), store, store, nil)

	first, err := svc.SeedCatalog(ctx)
	require.NoError(t, err)
	catalog, err := inventory.LoadCatalog()
	require.NoError(t, err)
	assert.Equal(t, len(catalog), first.Inserted)

	second, err := svc.SeedCatalog(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Inserted)
	assert.Equal(t, len(catalog), second.Existing)
	assert.Contains(t, second.Message, "already exist")
}
