// Package customer_repo provides the PostgreSQL implementation of customer.Repository.
package customer_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/domain/customer"
	"laluna/internal/infrastructure/storage/postgres"
)

const tableName = "customers"

var _ customer.Repository = (*CustomerRepo)(nil)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
	columns   []string
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txManager *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		columns:   postgres.ExtractDBColumns[customer.Customer](),
	}
}

func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	sql, args, err := r.builder.Insert(tableName).SetMap(postgres.StructToMap(c)).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	sql, args, err := r.builder.Select(r.columns...).From(tableName).
		Where(squirrel.Eq{"id": customerID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c customer.Customer
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("customer", customerID)
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

func (r *CustomerRepo) List(ctx context.Context, filter customer.ListFilter) ([]customer.Customer, error) {
	sql, args, err := r.listQuery(filter).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	var out []customer.Customer
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return out, nil
}

func (r *CustomerRepo) listQuery(filter customer.ListFilter) squirrel.SelectBuilder {
	q := r.builder.Select(r.columns...).From(tableName).
		Where(squirrel.Eq{"is_deleted": false})

	if filter.State != nil {
		q = q.Where(squirrel.Eq{"state": *filter.State})
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": pattern},
			squirrel.Like{"phone": pattern},
		})
	}
	return q.OrderBy("name", "id")
}

func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	sql, args, err := r.builder.Update(tableName).
		SetMap(map[string]any{
			"name":       c.Name,
			"address":    c.Address,
			"phone":      c.Phone,
			"email":      c.Email,
			"notes":      c.Notes,
			"state":      c.State,
			"updated_at": c.UpdatedAt,
		}).
		Where(squirrel.Eq{"id": c.ID, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", c.ID)
	}
	return nil
}

func (r *CustomerRepo) SoftDelete(ctx context.Context, customerID id.ID, at time.Time) error {
	sql, args, err := r.builder.Update(tableName).
		Set("is_deleted", true).
		Set("deleted_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": customerID, "is_deleted": false}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build soft delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("soft delete customer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID)
	}
	return nil
}

// recomputeSQL rewrites the cached aggregates from the orders table in one statement.
const recomputeSQL = `
	UPDATE customers c SET
		total_billed    = agg.total_billed,
		order_count     = agg.order_count,
		last_order_date = agg.last_order_date,
		updated_at      = now()
	FROM (
		SELECT COALESCE(SUM(price), 0) AS total_billed,
		       COUNT(*)::int           AS order_count,
		       MAX(order_date)         AS last_order_date
		FROM orders
		WHERE customer_id = $1
	) agg
	WHERE c.id = $1
	RETURNING c.total_billed, c.order_count, c.last_order_date`

func (r *CustomerRepo) RecomputeStatistics(ctx context.Context, customerID id.ID) (customer.Statistics, error) {
	var stats customer.Statistics
	err := r.txManager.GetQuerier(ctx).QueryRow(ctx, recomputeSQL, customerID).
		Scan(&stats.TotalBilled, &stats.OrderCount, &stats.LastOrderDate)
	if err != nil {
		return stats, mapRecomputeError(customerID, err)
	}
	return stats, nil
}

func mapRecomputeError(customerID id.ID, err error) error {
	if pgxscan.NotFound(err) {
		return apperror.NewNotFound("customer", customerID)
	}
	if postgres.PgErrorCode(err) == postgres.CodeNumericOutOfRange {
		return apperror.NewInvalidInput("totalBilled", "total billed exceeds the storable range").WithCause(err)
	}
	return fmt.Errorf("recompute customer statistics: %w", err)
}
