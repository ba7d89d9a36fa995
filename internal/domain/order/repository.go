package order

import (
	"context"
	"math"
	"time"

	"laluna/internal/core/id"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListFilter selects orders. Date bounds are inclusive and either may be nil.
type ListFilter struct {
	CustomerID   *id.ID
	PaymentState *PaymentState
	DateFrom     *time.Time
	DateTo       *time.Time
	Page         int
	PageSize     int
}

// Normalize applies paging defaults and limits.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	// Pages past this point would overflow Offset; they are empty anyway.
	if maxPage := math.MaxInt32 / f.PageSize; f.Page > maxPage {
		f.Page = maxPage
	}
}

// Offset returns the number of rows to skip.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// Repository defines data access for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error

	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// GetForUpdate loads the order and locks it until the transaction ends.
	GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error)

	// Update writes mutable fields when the stored version equals o.Version,
	// then bumps o.Version. A stale version yields ConcurrentModification.
	Update(ctx context.Context, o *Order) error

	Delete(ctx context.Context, orderID id.ID) error

	// List returns a page ordered by order date then creation time, newest first.
	List(ctx context.Context, filter ListFilter) ([]ListItem, int64, error)

	Statistics(ctx context.Context, filter ListFilter) (Statistics, error)

	MonthlyReport(ctx context.Context, since time.Time) ([]MonthlyRow, error)

	TopCustomers(ctx context.Context, limit int) ([]TopCustomer, error)
}
