// Package order_repo provides the PostgreSQL implementation of order.Repository.
package order_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/domain/order"
	"laluna/internal/infrastructure/storage/postgres"
)

const tableName = "orders"

var _ order.Repository = (*OrderRepo)(nil)

// OrderRepo implements order.Repository.
type OrderRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo(txManager *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[order.Order](),
	}
}

// mapWriteError turns CHECK violations into input errors. The service
// validates first, so these only fire on a race or a bug.
func mapWriteError(op string, err error) error {
	switch postgres.PgErrorCode(err) {
	case postgres.CodeCheckViolation:
		return apperror.NewInvalidInput("amountPaid", "order amounts violate a constraint").
			WithDetail("constraint", postgres.ConstraintName(err)).
			WithCause(err)
	case postgres.CodeForeignKeyViolation:
		return apperror.NewNotFound("customer", postgres.ConstraintName(err)).WithCause(err)
	case postgres.CodeNumericOutOfRange:
		return apperror.NewInvalidInput("price", "amount exceeds the storable range").WithCause(err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	sql, args, err := r.builder.Insert(tableName).SetMap(postgres.StructToMap(o)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return mapWriteError("insert order", err)
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.get(ctx, r.builder.Select(r.columns...).From(tableName).Where(squirrel.Eq{"id": orderID}), orderID)
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.get(ctx, r.builder.Select(r.columns...).From(tableName).Where(squirrel.Eq{"id": orderID}).Suffix("FOR UPDATE"), orderID)
}

func (r *OrderRepo) get(ctx context.Context, q squirrel.SelectBuilder, orderID id.ID) (*order.Order, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var o order.Order
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

func (r *OrderRepo) Update(ctx context.Context, o *order.Order) error {
	sql, args, err := r.updateQuery(o).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return mapWriteError("update order", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, o.ID); apperror.IsNotFound(getErr) {
			return getErr
		}
		return apperror.NewConcurrentModification("order", o.ID)
	}

	o.Version++
	return nil
}

func (r *OrderRepo) updateQuery(o *order.Order) squirrel.UpdateBuilder {
	return r.builder.Update(tableName).
		SetMap(map[string]any{
			"description":   o.Description,
			"price":         o.Price,
			"amount_paid":   o.AmountPaid,
			"payment_state": o.PaymentState,
			"whatsapp_sent": o.WhatsAppSent,
			"updated_at":    o.UpdatedAt,
		}).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": o.ID}).
		Where(squirrel.Eq{"version": o.Version})
}

func (r *OrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("order", orderID)
	}
	return nil
}

// listRow is an order row with the LEFT JOINed customer columns.
type listRow struct {
	order.Order
	CustName    *string `db:"cust_name"`
	CustPhone   *string `db:"cust_phone"`
	CustAddress *string `db:"cust_address"`
}

func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) ([]order.ListItem, int64, error) {
	q := r.txManager.GetQuerier(ctx)

	countSQL, countArgs, err := r.countQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count: %w", err)
	}
	var total int64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	if total == 0 {
		return []order.ListItem{}, 0, nil
	}

	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list: %w", err)
	}
	var rows []listRow
	if err := pgxscan.Select(ctx, q, &rows, sql, args...); err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	items := make([]order.ListItem, 0, len(rows))
	for _, row := range rows {
		item := order.ListItem{Order: row.Order}
		if row.CustName != nil {
			item.Customer = &order.CustomerSummary{
				ID:      row.CustomerID,
				Name:    *row.CustName,
				Phone:   deref(row.CustPhone),
				Address: deref(row.CustAddress),
			}
		}
		items = append(items, item)
	}
	return items, total, nil
}

func (r *OrderRepo) listQuery(filter order.ListFilter) squirrel.SelectBuilder {
	cols := make([]string, 0, len(r.columns)+3)
	for _, c := range r.columns {
		cols = append(cols, "o."+c)
	}
	cols = append(cols, "c.name AS cust_name", "c.phone AS cust_phone", "c.address AS cust_address")

	q := r.builder.Select(cols...).
		From(tableName + " o").
		LeftJoin("customers c ON c.id = o.customer_id AND NOT c.is_deleted")
	return applyFilter(q, filter).
		OrderBy("o.order_date DESC", "o.created_at DESC", "o.id DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(filter.Offset()))
}

func (r *OrderRepo) countQuery(filter order.ListFilter) squirrel.SelectBuilder {
	return applyFilter(r.builder.Select("COUNT(*)").From(tableName+" o"), filter)
}

func applyFilter(q squirrel.SelectBuilder, f order.ListFilter) squirrel.SelectBuilder {
	if f.CustomerID != nil {
		q = q.Where(squirrel.Eq{"o.customer_id": *f.CustomerID})
	}
	if f.PaymentState != nil {
		q = q.Where(squirrel.Eq{"o.payment_state": *f.PaymentState})
	}
	if f.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"o.order_date": *f.DateFrom})
	}
	if f.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"o.order_date": *f.DateTo})
	}
	return q
}

func (r *OrderRepo) Statistics(ctx context.Context, filter order.ListFilter) (order.Statistics, error) {
	sql, args, err := r.statisticsQuery(filter).ToSql()
	if err != nil {
		return order.Statistics{}, fmt.Errorf("build statistics: %w", err)
	}
	var stats order.Statistics
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &stats, sql, args...); err != nil {
		return order.Statistics{}, fmt.Errorf("order statistics: %w", err)
	}
	return stats, nil
}

func (r *OrderRepo) statisticsQuery(filter order.ListFilter) squirrel.SelectBuilder {
	q := r.builder.Select(
		"COALESCE(SUM(o.price), 0) AS total_billed",
		"COALESCE(SUM(o.amount_paid), 0) AS total_collected",
		"COUNT(*) FILTER (WHERE o.payment_state = 'paid')::int AS count_paid",
		"COUNT(*) FILTER (WHERE o.payment_state = 'unpaid')::int AS count_unpaid",
		"COUNT(*)::int AS count_total",
	).From(tableName + " o")
	return applyFilter(q, filter)
}

func (r *OrderRepo) MonthlyReport(ctx context.Context, since time.Time) ([]order.MonthlyRow, error) {
	sql, args, err := r.monthlyQuery(since).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build monthly report: %w", err)
	}
	var rows []order.MonthlyRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	return rows, nil
}

func (r *OrderRepo) monthlyQuery(since time.Time) squirrel.SelectBuilder {
	return r.builder.Select(
		"EXTRACT(YEAR FROM order_date)::int AS year",
		"EXTRACT(MONTH FROM order_date)::int AS month",
		"SUM(price) AS total_billed",
		"SUM(amount_paid) AS total_collected",
		"COUNT(*)::int AS order_count",
		"COUNT(*) FILTER (WHERE payment_state = 'paid')::int AS paid_count",
		"COUNT(*) FILTER (WHERE payment_state = 'unpaid')::int AS unpaid_count",
	).
		From(tableName).
		Where(squirrel.GtOrEq{"order_date": since}).
		GroupBy("year", "month").
		OrderBy("year", "month")
}

func (r *OrderRepo) TopCustomers(ctx context.Context, limit int) ([]order.TopCustomer, error) {
	sql, args, err := r.topCustomersQuery(limit).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top customers: %w", err)
	}
	var rows []order.TopCustomer
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}
	return rows, nil
}

func (r *OrderRepo) topCustomersQuery(limit int) squirrel.SelectBuilder {
	return r.builder.Select(
		"o.customer_id",
		"COALESCE(c.name, '') AS name",
		"SUM(o.price) AS total_billed",
		"SUM(o.amount_paid) AS total_collected",
		"COUNT(*)::int AS order_count",
	).
		From(tableName + " o").
		LeftJoin("customers c ON c.id = o.customer_id").
		GroupBy("o.customer_id", "c.name").
		OrderBy("total_billed DESC", "name").
		Limit(uint64(limit))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
