package customer

import (
	"context"
	"time"

	"laluna/internal/core/id"
)

// ListFilter narrows List results. Soft-deleted customers are never listed.
type ListFilter struct {
	Search string
	State  *State
}

// Repository defines data access for customers.
type Repository interface {
	Create(ctx context.Context, c *Customer) error

	// GetByID returns the customer even when soft-deleted.
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)

	// List returns non-deleted customers ordered by name.
	List(ctx context.Context, filter ListFilter) ([]Customer, error)

	// Update persists contact fields and state. Aggregates are left untouched.
	Update(ctx context.Context, c *Customer) error

	SoftDelete(ctx context.Context, customerID id.ID, at time.Time) error

	// RecomputeStatistics rewrites the cached aggregates from the orders table
	// and returns the new values.
	RecomputeStatistics(ctx context.Context, customerID id.ID) (Statistics, error)
}
