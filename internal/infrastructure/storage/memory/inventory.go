package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/domain/inventory"
)

var _ inventory.Repository = (*InventoryRepo)(nil)

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	store *Store
}

func (r *InventoryRepo) CreateProduct(ctx context.Context, p *inventory.Product) error {
	return r.store.view(ctx, func(st *state) error {
		st.products[p.ID] = *p
		return nil
	})
}

func (r *InventoryRepo) InsertProducts(ctx context.Context, products []inventory.Product) error {
	return r.store.view(ctx, func(st *state) error {
		for _, p := range products {
			st.products[p.ID] = p
		}
		return nil
	})
}

func (r *InventoryRepo) UpdateProduct(ctx context.Context, p *inventory.Product) error {
	return r.store.view(ctx, func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return apperror.NewNotFound("product", p.ID)
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *InventoryRepo) GetProduct(ctx context.Context, productID id.ID) (*inventory.Product, error) {
	var out inventory.Product
	err := r.store.view(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return apperror.NewNotFound("product", productID)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *InventoryRepo) ListProducts(ctx context.Context, activeOnly bool) ([]inventory.Product, error) {
	var out []inventory.Product
	err := r.store.view(ctx, func(st *state) error {
		for _, p := range st.products {
			if activeOnly && !p.Active {
				continue
			}
			out = append(out, p)
		}
		return nil
	})
	sortProducts(out)
	return out, err
}

func (r *InventoryRepo) CountProducts(ctx context.Context) (int, error) {
	var n int
	err := r.store.view(ctx, func(st *state) error {
		n = len(st.products)
		return nil
	})
	return n, err
}

func (r *InventoryRepo) LockStock(ctx context.Context, productID id.ID, branchID int) (*inventory.Stock, error) {
	var out inventory.Stock
	err := r.store.view(ctx, func(st *state) error {
		key := stockKey{productID: productID, branchID: branchID}
		s, ok := st.stock[key]
		if !ok {
			s = inventory.Stock{ID: id.New(), ProductID: productID, BranchID: branchID, Quantity: decimal.Zero}
			st.stock[key] = s
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *InventoryRepo) SaveStock(ctx context.Context, s *inventory.Stock) error {
	return r.store.view(ctx, func(st *state) error {
		st.stock[stockKey{productID: s.ProductID, branchID: s.BranchID}] = *s
		return nil
	})
}

func (r *InventoryRepo) AppendAdjustment(ctx context.Context, a *inventory.Adjustment) error {
	return r.store.view(ctx, func(st *state) error {
		st.adjustments = append(st.adjustments, *a)
		return nil
	})
}

func (r *InventoryRepo) StockForBranch(ctx context.Context, branchID int) ([]inventory.BranchStock, error) {
	var products []inventory.Product
	var out []inventory.BranchStock
	err := r.store.view(ctx, func(st *state) error {
		for _, p := range st.products {
			if p.Active {
				products = append(products, p)
			}
		}
		sortProducts(products)
		for _, p := range products {
			row := inventory.BranchStock{Product: p, Quantity: decimal.Zero}
			if s, ok := st.stock[stockKey{productID: p.ID, branchID: branchID}]; ok {
				stockID, updatedAt := s.ID, s.UpdatedAt
				row.Quantity = s.Quantity
				row.StockID = &stockID
				row.UpdatedAt = &updatedAt
			}
			out = append(out, row)
		}
		return nil
	})
	return out, err
}

func (r *InventoryRepo) History(ctx context.Context, branchID int, limit int) ([]inventory.HistoryEntry, error) {
	var out []inventory.HistoryEntry
	err := r.store.view(ctx, func(st *state) error {
		// Appended in commit order, so walking backwards is newest first.
		for i := len(st.adjustments) - 1; i >= 0 && len(out) < limit; i-- {
			a := st.adjustments[i]
			if a.BranchID != branchID {
				continue
			}
			entry := inventory.HistoryEntry{Adjustment: a}
			if p, ok := st.products[a.ProductID]; ok {
				entry.ProductName = p.Name
				entry.ProductUnit = p.Unit
			}
			out = append(out, entry)
		}
		return nil
	})
	return out, err
}

func sortProducts(ps []inventory.Product) {
	sort.Slice(ps, func(i, j int) bool {
		a, b := ps[i], ps[j]
		if a.Category != b.Category {
			return a.Category.Rank() < b.Category.Rank()
		}
		if a.SortOrder != b.SortOrder {
			return a.SortOrder < b.SortOrder
		}
		return a.Name < b.Name
	})
}
