package dto

import (
	"time"

	"laluna/internal/core/types"
	"laluna/internal/domain/inventory"
)

// CreateProductRequest for POST /inventory/products.
type CreateProductRequest struct {
	Name      string             `json:"name" binding:"required"`
	Category  inventory.Category `json:"category" binding:"required"`
	Unit      inventory.Unit     `json:"unit"`
	SortOrder int                `json:"order"`
}

// ToInput converts the request to a domain input.
func (r CreateProductRequest) ToInput() inventory.ProductInput {
	return inventory.ProductInput{
		Name:      r.Name,
		Category:  r.Category,
		Unit:      r.Unit,
		SortOrder: r.SortOrder,
	}
}

// UpdateProductRequest for PATCH /inventory/products/:id.
type UpdateProductRequest struct {
	Name      *string             `json:"name"`
	Category  *inventory.Category `json:"category"`
	Unit      *inventory.Unit     `json:"unit"`
	SortOrder *int                `json:"order"`
	Active    *bool               `json:"active"`
}

// ToPatch converts the request to a domain patch.
func (r UpdateProductRequest) ToPatch() inventory.ProductPatch {
	return inventory.ProductPatch{
		Name:      r.Name,
		Category:  r.Category,
		Unit:      r.Unit,
		SortOrder: r.SortOrder,
		Active:    r.Active,
	}
}

// AdjustStockRequest for PATCH /inventory/branches/:branchId/stock/:productId.
type AdjustStockRequest struct {
	Quantity types.Quantity       `json:"quantity"`
	Mode     inventory.AdjustMode `json:"mode"`
}

// HistoryQuery for GET /inventory/branches/:branchId/history.
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// ProductResponse is a catalog product.
type ProductResponse struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Category  inventory.Category `json:"category"`
	Unit      inventory.Unit     `json:"unit"`
	Active    bool               `json:"active"`
	SortOrder int                `json:"order"`
}

// FromProduct converts a domain product.
func FromProduct(p *inventory.Product) ProductResponse {
	return ProductResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Category:  p.Category,
		Unit:      p.Unit,
		Active:    p.Active,
		SortOrder: p.SortOrder,
	}
}

// FromProducts converts a slice of products.
func FromProducts(list []inventory.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(list))
	for i := range list {
		out = append(out, FromProduct(&list[i]))
	}
	return out
}

// StockItemResponse is a product with its quantity at a branch.
type StockItemResponse struct {
	ProductResponse
	Quantity  types.Quantity `json:"quantity"`
	StockID   *string        `json:"stockId"`
	UpdatedAt *time.Time     `json:"updatedAt"`
}

// FromBranchStock converts the stock board of a branch.
func FromBranchStock(list []inventory.BranchStock) []StockItemResponse {
	out := make([]StockItemResponse, 0, len(list))
	for i := range list {
		s := &list[i]
		out = append(out, StockItemResponse{
			ProductResponse: FromProduct(&s.Product),
			Quantity:        s.Quantity,
			StockID:         IDString(s.StockID),
			UpdatedAt:       s.UpdatedAt,
		})
	}
	return out
}

// AdjustmentResponse is one stock change.
type AdjustmentResponse struct {
	ID             string         `json:"id"`
	ProductID      string         `json:"productId"`
	ProductName    string         `json:"productName,omitempty"`
	ProductUnit    inventory.Unit `json:"productUnit,omitempty"`
	BranchID       int            `json:"branchId"`
	QuantityBefore types.Quantity `json:"quantityBefore"`
	QuantityAfter  types.Quantity `json:"quantityAfter"`
	Delta          types.Quantity `json:"delta"`
	UserID         *string        `json:"userId"`
	CreatedAt      time.Time      `json:"createdAt"`
}

func fromAdjustment(a *inventory.Adjustment) AdjustmentResponse {
	return AdjustmentResponse{
		ID:             a.ID.String(),
		ProductID:      a.ProductID.String(),
		BranchID:       a.BranchID,
		QuantityBefore: a.QuantityBefore,
		QuantityAfter:  a.QuantityAfter,
		Delta:          a.Delta,
		UserID:         IDString(a.UserID),
		CreatedAt:      a.CreatedAt,
	}
}

// FromHistory converts history entries.
func FromHistory(list []inventory.HistoryEntry) []AdjustmentResponse {
	out := make([]AdjustmentResponse, 0, len(list))
	for i := range list {
		r := fromAdjustment(&list[i].Adjustment)
		r.ProductName = list[i].ProductName
		r.ProductUnit = list[i].ProductUnit
		out = append(out, r)
	}
	return out
}

// AdjustStockResponse is returned after an adjustment.
type AdjustStockResponse struct {
	Quantity   types.Quantity     `json:"quantity"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	Adjustment AdjustmentResponse `json:"adjustment"`
}

// FromAdjustResult converts the result of an adjustment.
func FromAdjustResult(r *inventory.AdjustResult) AdjustStockResponse {
	return AdjustStockResponse{
		Quantity:   r.Quantity,
		UpdatedAt:  r.UpdatedAt,
		Adjustment: fromAdjustment(&r.Adjustment),
	}
}

// SeedResponse reports the catalog seed outcome.
type SeedResponse struct {
	Inserted int    `json:"inserted"`
	Existing int    `json:"existing"`
	Message  string `json:"message"`
}
