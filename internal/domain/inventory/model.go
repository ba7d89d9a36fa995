// Package inventory implements the inventory ledger: the product catalog,
// per-branch stock and the append-only adjustment history.
package inventory

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/core/types"
)

// Category groups products on the shop's price board.
type Category string

const (
	CategoryVegetables  Category = "vegetables"
	CategoryFruits      Category = "fruits"
	CategoryLeafyGreens Category = "leafy_greens"
	CategoryAssorted    Category = "assorted"
)

// Categories in display order. The database enum is declared in the same order.
var Categories = []Category{CategoryVegetables, CategoryFruits, CategoryLeafyGreens, CategoryAssorted}

// Rank returns the display position of c, or -1 when unknown.
func (c Category) Rank() int {
	for i, v := range Categories {
		if v == c {
			return i
		}
	}
	return -1
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool { return c.Rank() >= 0 }

// Unit is how a product is measured.
type Unit string

const (
	UnitKg    Unit = "kg"
	UnitPiece Unit = "unit"
)

// IsValid reports whether u is a known unit.
func (u Unit) IsValid() bool { return u == UnitKg || u == UnitPiece }

// AdjustMode selects how AdjustStock interprets the quantity.
type AdjustMode string

const (
	ModeSet   AdjustMode = "set"
	ModeDelta AdjustMode = "delta"
)

// IsValid reports whether m is a known mode.
func (m AdjustMode) IsValid() bool { return m == ModeSet || m == ModeDelta }

// maxQuantity is the largest value numeric(10,3) holds.
var maxQuantity = decimal.RequireFromString("9999999.999")

const productNameMaxLen = 150

// Product is a sellable item. Products are deactivated, never deleted.
type Product struct {
	ID        id.ID     `db:"id" yaml:"-"`
	Name      string    `db:"name" yaml:"name"`
	Category  Category  `db:"category" yaml:"category"`
	Unit      Unit      `db:"unit" yaml:"unit"`
	Active    bool      `db:"active" yaml:"-"`
	SortOrder int       `db:"sort_order" yaml:"order"`
	CreatedAt time.Time `db:"created_at" yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" yaml:"-"`
}

// Validate checks product fields.
func (p *Product) Validate() error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" || utf8.RuneCountInString(p.Name) > productNameMaxLen {
		return apperror.NewInvalidInput("name", "name is required and must be at most 150 characters")
	}
	if !p.Category.IsValid() {
		return apperror.NewInvalidInput("category", "unknown category").WithDetail("value", p.Category)
	}
	if !p.Unit.IsValid() {
		return apperror.NewInvalidInput("unit", "unit must be kg or unit").WithDetail("value", p.Unit)
	}
	if p.SortOrder < 0 {
		return apperror.NewInvalidInput("order", "order must not be negative")
	}
	return nil
}

// Stock is the current quantity of a product at a branch.
// There is at most one row per (product, branch).
type Stock struct {
	ID        id.ID          `db:"id"`
	ProductID id.ID          `db:"product_id"`
	BranchID  int            `db:"branch_id"`
	Quantity  types.Quantity `db:"quantity"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// Adjustment is an immutable record of one stock change.
type Adjustment struct {
	ID             id.ID          `db:"id"`
	ProductID      id.ID          `db:"product_id"`
	BranchID       int            `db:"branch_id"`
	QuantityBefore types.Quantity `db:"quantity_before"`
	QuantityAfter  types.Quantity `db:"quantity_after"`
	Delta          types.Quantity `db:"delta"`
	UserID         *id.ID         `db:"user_id"`
	CreatedAt      time.Time      `db:"created_at"`
}

// BranchStock is a product with its stock at one branch. StockID and
// UpdatedAt are nil when the product was never adjusted there.
type BranchStock struct {
	Product   Product
	Quantity  types.Quantity
	StockID   *id.ID
	UpdatedAt *time.Time
}

// HistoryEntry is an adjustment with the product it refers to.
type HistoryEntry struct {
	Adjustment
	ProductName string
	ProductUnit Unit
}

// AdjustResult is returned by AdjustStock.
type AdjustResult struct {
	Quantity   types.Quantity
	UpdatedAt  time.Time
	Adjustment Adjustment
}

// SeedResult reports the outcome of SeedCatalog.
type SeedResult struct {
	Inserted int
	Existing int
	Message  string
}

// NextQuantity computes the quantity after an adjustment, floored at zero.
func NextQuantity(current, quantity types.Quantity, mode AdjustMode) types.Quantity {
	next := quantity
	if mode == ModeDelta {
		next = current.Add(quantity)
	}
	return types.RoundQuantity(types.Max(next, decimal.Zero))
}
