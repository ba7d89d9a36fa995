package inventory

import (
	"context"
	"fmt"
	"time"

	"laluna/internal/core/apperror"
	"laluna/internal/core/events"
	"laluna/internal/core/id"
	"laluna/internal/core/tx"
	"laluna/internal/core/types"
	"laluna/pkg/logger"
)

const (
	DefaultHistoryLimit = 200
	MaxHistoryLimit     = 1000
)

// StockChange is broadcast to live clients of a branch after an adjustment commits.
type StockChange struct {
	BranchID       int       `json:"branchId"`
	ProductID      string    `json:"productId"`
	ProductName    string    `json:"productName"`
	QuantityBefore string    `json:"quantityBefore"`
	Quantity       string    `json:"quantity"`
	Delta          string    `json:"delta"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// StockNotifier pushes committed stock changes to live clients.
type StockNotifier interface {
	NotifyStock(branchID int, change StockChange)
}

// ProductInput holds the fields of a new product.
type ProductInput struct {
	Name      string
	Category  Category
	Unit      Unit
	SortOrder int
}

// ProductPatch holds a partial product update. Nil fields are left unchanged.
type ProductPatch struct {
	Name      *string
	Category  *Category
	Unit      *Unit
	SortOrder *int
	Active    *bool
}

// AdjustInput describes one stock adjustment.
type AdjustInput struct {
	BranchID  int
	ProductID id.ID
	Quantity  types.Quantity
	Mode      AdjustMode
	UserID    *id.ID
}

// Service implements the inventory ledger.
type Service struct {
	repo      Repository
	txManager tx.Manager
	publisher events.Publisher
	notifier  StockNotifier
}

// NewService creates a new inventory service. notifier may be nil.
func NewService(repo Repository, txManager tx.Manager, publisher events.Publisher, notifier StockNotifier) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		publisher: publisher,
		notifier:  notifier,
	}
}

// ListProducts returns the catalog ordered for display.
func (s *Service) ListProducts(ctx context.Context, activeOnly bool) ([]Product, error) {
	return s.repo.ListProducts(ctx, activeOnly)
}

// CreateProduct adds an active product.
func (s *Service) CreateProduct(ctx context.Context, in ProductInput) (*Product, error) {
	now := time.Now().UTC()
	p := &Product{
		ID:        id.New(),
		Name:      in.Name,
		Category:  in.Category,
		Unit:      in.Unit,
		Active:    true,
		SortOrder: in.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.Unit == "" {
		p.Unit = UnitKg
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	logger.Info(ctx, "product created", logger.ProductID(p.ID), "name", p.Name)
	return p, nil
}

// UpdateProduct edits or deactivates a product.
func (s *Service) UpdateProduct(ctx context.Context, productID id.ID, patch ProductPatch) (*Product, error) {
	p, err := s.repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Unit != nil {
		p.Unit = *patch.Unit
	}
	if patch.SortOrder != nil {
		p.SortOrder = *patch.SortOrder
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return p, nil
}

// AdjustStock sets or shifts the quantity of a product at a branch and
// records the change. Results below zero are raised to zero.
func (s *Service) AdjustStock(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if err := validateBranch(in.BranchID); err != nil {
		return nil, err
	}
	if !in.Mode.IsValid() {
		return nil, apperror.NewInvalidInput("mode", "mode must be set or delta")
	}
	if in.Quantity.Abs().GreaterThan(maxQuantity) {
		return nil, apperror.NewInvalidInput("quantity", "quantity is out of range")
	}

	var (
		product *Product
		result  AdjustResult
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		product, err = s.repo.GetProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}

		stock, err := s.repo.LockStock(ctx, in.ProductID, in.BranchID)
		if err != nil {
			return fmt.Errorf("lock stock: %w", err)
		}

		before := stock.Quantity
		after := NextQuantity(before, in.Quantity, in.Mode)
		if after.GreaterThan(maxQuantity) {
			return apperror.NewInvalidInput("quantity", "resulting quantity is out of range")
		}
		now := time.Now().UTC()

		stock.Quantity = after
		stock.UpdatedAt = now
		if err := s.repo.SaveStock(ctx, stock); err != nil {
			return fmt.Errorf("save stock: %w", err)
		}

		adj := Adjustment{
			ID:             id.New(),
			ProductID:      in.ProductID,
			BranchID:       in.BranchID,
			QuantityBefore: before,
			QuantityAfter:  after,
			Delta:          after.Sub(before),
			UserID:         in.UserID,
			CreatedAt:      now,
		}
		if err := s.repo.AppendAdjustment(ctx, &adj); err != nil {
			return fmt.Errorf("append adjustment: %w", err)
		}

		result = AdjustResult{Quantity: after, UpdatedAt: now, Adjustment: adj}
		return s.publisher.Publish(ctx, events.Event{
			AggregateType: events.AggregateStock,
			AggregateID:   stock.ID,
			Type:          events.StockAdjusted,
			Payload:       changeOf(product, adj),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock adjusted",
		logger.BranchID(in.BranchID),
		logger.ProductID(in.ProductID),
		"mode", in.Mode,
		logger.Quantity("before", result.Adjustment.QuantityBefore),
		logger.Quantity("after", result.Quantity),
	)

	if s.notifier != nil {
		s.notifier.NotifyStock(in.BranchID, changeOf(product, result.Adjustment))
	}
	return &result, nil
}

// StockForBranch lists every active product with its stock at the branch.
func (s *Service) StockForBranch(ctx context.Context, branchID int) ([]BranchStock, error) {
	if err := validateBranch(branchID); err != nil {
		return nil, err
	}
	return s.repo.StockForBranch(ctx, branchID)
}

// History returns the latest adjustments of a branch, newest first.
func (s *Service) History(ctx context.Context, branchID, limit int) ([]HistoryEntry, error) {
	if err := validateBranch(branchID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.repo.History(ctx, branchID, limit)
}

// SeedCatalog inserts the starter catalog when no product exists yet.
func (s *Service) SeedCatalog(ctx context.Context) (*SeedResult, error) {
	catalog, err := LoadCatalog()
	if err != nil {
		return nil, err
	}

	var result SeedResult
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		count, err := s.repo.CountProducts(ctx)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if count > 0 {
			result = SeedResult{
				Existing: count,
				Message:  fmt.Sprintf("%d products already exist, nothing inserted", count),
			}
			return nil
		}

		now := time.Now().UTC()
		for i := range catalog {
			catalog[i].ID = id.New()
			catalog[i].CreatedAt = now
			catalog[i].UpdatedAt = now
		}
		if err := s.repo.InsertProducts(ctx, catalog); err != nil {
			return fmt.Errorf("insert catalog: %w", err)
		}
		result = SeedResult{
			Inserted: len(catalog),
			Existing: len(catalog),
			Message:  fmt.Sprintf("%d products inserted", len(catalog)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "catalog seed finished", "inserted", result.Inserted, "existing", result.Existing)
	return &result, nil
}

func changeOf(p *Product, adj Adjustment) StockChange {
	return StockChange{
		BranchID:       adj.BranchID,
		ProductID:      adj.ProductID.String(),
		ProductName:    p.Name,
		QuantityBefore: adj.QuantityBefore.StringFixed(types.QuantityScale),
		Quantity:       adj.QuantityAfter.StringFixed(types.QuantityScale),
		Delta:          adj.Delta.StringFixed(types.QuantityScale),
		UpdatedAt:      adj.CreatedAt,
	}
}

func validateBranch(branchID int) error {
	if branchID <= 0 {
		return apperror.NewInvalidInput("branchId", "branch id must be a positive integer")
	}
	return nil
}
