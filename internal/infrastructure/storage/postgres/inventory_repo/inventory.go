// Package inventory_repo provides the PostgreSQL implementation of inventory.Repository.
package inventory_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/core/types"
	"laluna/internal/domain/inventory"
	"laluna/internal/infrastructure/storage/postgres"
)

const (
	productsTable    = "products"
	stockTable       = "stock"
	adjustmentsTable = "stock_adjustments"
)

var _ inventory.Repository = (*InventoryRepo)(nil)

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct {
	txManager         *postgres.TxManager
	batch             *postgres.BatchInserter
	builder           squirrel.StatementBuilderType
	productColumns    []string
	stockColumns      []string
	adjustmentColumns []string
}

// NewInventoryRepo creates a new inventory repository.
func NewInventoryRepo(txManager *postgres.TxManager) *InventoryRepo {
	return &InventoryRepo{
		txManager:         txManager,
		batch:             postgres.NewBatchInserter(txManager),
		builder:           squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		productColumns:    postgres.ExtractDBColumns[inventory.Product](),
		stockColumns:      postgres.ExtractDBColumns[inventory.Stock](),
		adjustmentColumns: postgres.ExtractDBColumns[inventory.Adjustment](),
	}
}

// --- Products ---

func (r *InventoryRepo) CreateProduct(ctx context.Context, p *inventory.Product) error {
	sql, args, err := r.builder.Insert(productsTable).SetMap(postgres.StructToMap(p)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// InsertProducts copies the whole slice in one round trip.
func (r *InventoryRepo) InsertProducts(ctx context.Context, products []inventory.Product) error {
	if len(products) == 0 {
		return nil
	}
	n, err := r.batch.CopyFromSlice(ctx, productsTable, r.productColumns, postgres.RowsOf(products, r.productColumns))
	if err != nil {
		return fmt.Errorf("copy products: %w", err)
	}
	if int(n) != len(products) {
		return fmt.Errorf("copy products: wrote %d of %d rows", n, len(products))
	}
	return nil
}

func (r *InventoryRepo) UpdateProduct(ctx context.Context, p *inventory.Product) error {
	sql, args, err := r.builder.Update(productsTable).
		SetMap(map[string]any{
			"name":       p.Name,
			"category":   p.Category,
			"unit":       p.Unit,
			"active":     p.Active,
			"sort_order": p.SortOrder,
			"updated_at": p.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": p.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID)
	}
	return nil
}

func (r *InventoryRepo) GetProduct(ctx context.Context, productID id.ID) (*inventory.Product, error) {
	sql, args, err := r.builder.Select(r.productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var p inventory.Product
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (r *InventoryRepo) ListProducts(ctx context.Context, activeOnly bool) ([]inventory.Product, error) {
	sql, args, err := r.listProductsQuery(activeOnly).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	var products []inventory.Product
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// listProductsQuery relies on product_category being declared in display order.
func (r *InventoryRepo) listProductsQuery(activeOnly bool) squirrel.SelectBuilder {
	q := r.builder.Select(r.productColumns...).From(productsTable)
	if activeOnly {
		q = q.Where(squirrel.Eq{"active": true})
	}
	return q.OrderBy("category", "sort_order", "name")
}

func (r *InventoryRepo) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := r.txManager.GetQuerier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// --- Stock ---

// LockStock inserts a zero row when missing and then takes the row lock, so
// two first-time adjustments of the same product serialize on the unique key.
func (r *InventoryRepo) LockStock(ctx context.Context, productID id.ID, branchID int) (*inventory.Stock, error) {
	q := r.txManager.GetQuerier(ctx)

	insertSQL, insertArgs, err := r.builder.Insert(stockTable).
		Columns("id", "product_id", "branch_id", "quantity", "updated_at").
		Values(id.New(), productID, branchID, types.Zero(), time.Now().UTC()).
		Suffix("ON CONFLICT (product_id, branch_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stock insert: %w", err)
	}
	if _, err := q.Exec(ctx, insertSQL, insertArgs...); err != nil {
		if postgres.PgErrorCode(err) == postgres.CodeForeignKeyViolation {
			return nil, apperror.NewNotFound("product", productID)
		}
		return nil, fmt.Errorf("ensure stock row: %w", err)
	}

	sql, args, err := r.lockStockQuery(productID, branchID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stock select: %w", err)
	}
	var s inventory.Stock
	if err := pgxscan.Get(ctx, q, &s, sql, args...); err != nil {
		return nil, fmt.Errorf("lock stock: %w", err)
	}
	return &s, nil
}

func (r *InventoryRepo) lockStockQuery(productID id.ID, branchID int) squirrel.SelectBuilder {
	return r.builder.Select(r.stockColumns...).
		From(stockTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.Eq{"branch_id": branchID}).
		Suffix("FOR UPDATE")
}

func (r *InventoryRepo) SaveStock(ctx context.Context, s *inventory.Stock) error {
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx,
		`UPDATE stock SET quantity = $2, updated_at = $3 WHERE id = $1`,
		s.ID, s.Quantity, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("stock", s.ID)
	}
	return nil
}

func (r *InventoryRepo) AppendAdjustment(ctx context.Context, a *inventory.Adjustment) error {
	sql, args, err := r.builder.Insert(adjustmentsTable).SetMap(postgres.StructToMap(a)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert adjustment: %w", err)
	}
	return nil
}

// branchStockRow is a product LEFT JOINed with its stock at one branch.
type branchStockRow struct {
	inventory.Product
	StockID        *id.ID          `db:"stock_id"`
	Quantity       *types.Quantity `db:"quantity"`
	StockUpdatedAt *time.Time      `db:"stock_updated_at"`
}

func (r *InventoryRepo) StockForBranch(ctx context.Context, branchID int) ([]inventory.BranchStock, error) {
	sql, args, err := r.stockForBranchQuery(branchID).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build stock query: %w", err)
	}
	var rows []branchStockRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("stock for branch: %w", err)
	}

	out := make([]inventory.BranchStock, 0, len(rows))
	for _, row := range rows {
		item := inventory.BranchStock{
			Product:   row.Product,
			Quantity:  types.Zero(),
			StockID:   row.StockID,
			UpdatedAt: row.StockUpdatedAt,
		}
		if row.Quantity != nil {
			item.Quantity = *row.Quantity
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *InventoryRepo) stockForBranchQuery(branchID int) squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.productColumns)+3)
	for _, c := range r.productColumns {
		cols = append(cols, "p."+c)
	}
	cols = append(cols, "s.id AS stock_id", "s.quantity", "s.updated_at AS stock_updated_at")

	return r.builder.Select(cols...).
		From(productsTable+" p").
		LeftJoin("stock s ON s.product_id = p.id AND s.branch_id = ?", branchID).
		Where(squirrel.Eq{"p.active": true}).
		OrderBy("p.category", "p.sort_order", "p.name")
}

// historyRow is an adjustment with its product's name and unit.
type historyRow struct {
	inventory.Adjustment
	ProductName string         `db:"product_name"`
	ProductUnit inventory.Unit `db:"product_unit"`
}

func (r *InventoryRepo) History(ctx context.Context, branchID int, limit int) ([]inventory.HistoryEntry, error) {
	sql, args, err := r.historyQuery(branchID, limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build history query: %w", err)
	}
	var rows []historyRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("stock history: %w", err)
	}

	out := make([]inventory.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, inventory.HistoryEntry{
			Adjustment:  row.Adjustment,
			ProductName: row.ProductName,
			ProductUnit: row.ProductUnit,
		})
	}
	return out, nil
}

func (r *InventoryRepo) historyQuery(branchID int, limit int) squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.adjustmentColumns)+2)
	for _, c := range r.adjustmentColumns {
		cols = append(cols, "a."+c)
	}
	cols = append(cols, "p.name AS product_name", "p.unit AS product_unit")

	return r.builder.Select(cols...).
		From(adjustmentsTable+" a").
		Join("products p ON p.id = a.product_id").
		Where(squirrel.Eq{"a.branch_id": branchID}).
		OrderBy("a.created_at DESC", "a.id DESC").
		Limit(uint64(limit))
}
