package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/domain/customer"
	"laluna/internal/domain/inventory"
	"laluna/internal/domain/order"
)

func newCustomer(name string) *customer.Customer {
	return &customer.Customer{
		ID:      id.New(),
		Name:    name,
		Address: "Calle Falsa 123",
		Phone:   "11 5555-0000",
		State:   customer.StateActive,
	}
}

func newOrder(customerID id.ID, price string, day time.Time) *order.Order {
	o := &order.Order{
		ID:         id.New(),
		CustomerID: customerID,
		Price:      decimal.RequireFromString(price),
		AmountPaid: decimal.Zero,
		OrderDate:  day,
		Version:    1,
		CreatedAt:  day,
	}
	o.SetAmountPaid(decimal.Zero)
	return o
}

func TestRunInTransaction_RollbackRestoresSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()
	c := newCustomer("Ana")
	require.NoError(t, s.Customers().Create(ctx, c))

	boom := errors.New("boom")
	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, s.Orders().Create(ctx, newOrder(c.ID, "100", time.Now())))
		require.NoError(t, s.Customers().SoftDelete(ctx, c.ID, time.Now()))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Customers().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDeleted)

	_, total, err := s.Orders().List(ctx, order.ListFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestRunInTransaction_Nested(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.Customers().Create(ctx, newCustomer("Beto"))
		})
	})
	require.NoError(t, err)

	list, err := s.Customers().List(ctx, customer.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestOrderRepo_UpdateVersionCheck(t *testing.T) {
	s := New()
	ctx := context.Background()
	o := newOrder(id.New(), "50", time.Now())
	require.NoError(t, s.Orders().Create(ctx, o))

	first := *o
	stale := *o

	require.NoError(t, s.Orders().Update(ctx, &first))
	assert.Equal(t, 2, first.Version)

	err := s.Orders().Update(ctx, &stale)
	assert.True(t, apperror.IsConcurrentModification(err))
}

func TestOrderRepo_ListSortAndDeletedCustomer(t *testing.T) {
	s := New()
	ctx := context.Background()
	kept := newCustomer("Carla")
	gone := newCustomer("Dario")
	require.NoError(t, s.Customers().Create(ctx, kept))
	require.NoError(t, s.Customers().Create(ctx, gone))

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	older := newOrder(kept.ID, "10", day.AddDate(0, 0, -1))
	newer := newOrder(gone.ID, "20", day)
	require.NoError(t, s.Orders().Create(ctx, older))
	require.NoError(t, s.Orders().Create(ctx, newer))
	require.NoError(t, s.Customers().SoftDelete(ctx, gone.ID, day))

	items, total, err := s.Orders().List(ctx, order.ListFilter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, items[0].ID)
	assert.Nil(t, items[0].Customer)
	require.NotNil(t, items[1].Customer)
	assert.Equal(t, "Carla", items[1].Customer.Name)

	page, total, err := s.Orders().List(ctx, order.ListFilter{Page: 2, PageSize: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)
	assert.Equal(t, older.ID, page[0].ID)
}

func TestInventoryRepo_LockStockCreatesZeroRow(t *testing.T) {
	s := New()
	ctx := context.Background()
	productID := id.New()

	st, err := s.Inventory().LockStock(ctx, productID, 1)
	require.NoError(t, err)
	assert.True(t, st.Quantity.IsZero())

	again, err := s.Inventory().LockStock(ctx, productID, 1)
	require.NoError(t, err)
	assert.Equal(t, st.ID, again.ID)

	other, err := s.Inventory().LockStock(ctx, productID, 2)
	require.NoError(t, err)
	assert.NotEqual(t, st.ID, other.ID)
}

func TestInventoryRepo_ListProductsOrder(t *testing.T) {
	s := New()
	ctx := context.Background()
	products := []inventory.Product{
		{ID: id.New(), Name: "Banana", Category: inventory.CategoryFruits, SortOrder: 1, Active: true},
		{ID: id.New(), Name: "Papa", Category: inventory.CategoryVegetables, SortOrder: 2, Active: true},
		{ID: id.New(), Name: "Cebolla", Category: inventory.CategoryVegetables, SortOrder: 1, Active: true},
		{ID: id.New(), Name: "Huevos", Category: inventory.CategoryAssorted, SortOrder: 1, Active: false},
	}
	require.NoError(t, s.Inventory().InsertProducts(ctx, products))

	active, err := s.Inventory().ListProducts(ctx, true)
	require.NoError(t, err)
	names := make([]string, 0, len(active))
	for _, p := range active {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Cebolla", "Papa", "Banana"}, names)

	all, err := s.Inventory().ListProducts(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
