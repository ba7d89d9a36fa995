package inventory

import (
	"context"

	"laluna/internal/core/id"
)

// Repository defines data access for products, stock and adjustments.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	InsertProducts(ctx context.Context, products []Product) error
	UpdateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, productID id.ID) (*Product, error)

	// ListProducts orders by category, sort order, then name.
	ListProducts(ctx context.Context, activeOnly bool) ([]Product, error)
	CountProducts(ctx context.Context) (int, error)

	// LockStock returns the stock row for (product, branch), creating a zero
	// row if none exists, and locks it until the transaction ends.
	LockStock(ctx context.Context, productID id.ID, branchID int) (*Stock, error)
	SaveStock(ctx context.Context, s *Stock) error

	AppendAdjustment(ctx context.Context, a *Adjustment) error

	// StockForBranch joins every active product with its stock at the branch.
	StockForBranch(ctx context.Context, branchID int) ([]BranchStock, error)

	// History returns the newest adjustments for a branch first.
	History(ctx context.Context, branchID int, limit int) ([]HistoryEntry, error)
}
