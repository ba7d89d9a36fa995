package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/domain/order"
)

var _ order.Repository = (*OrderRepo)(nil)

// OrderRepo implements order.Repository.
type OrderRepo struct {
	store *Store
}

func (r *OrderRepo) Create(ctx context.Context, o *order.Order) error {
	return r.store.view(ctx, func(st *state) error {
		st.orders[o.ID] = *o
		return nil
	})
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*order.Order, error) {
	var out order.Order
	err := r.store.view(ctx, func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok {
			return apperror.NewNotFound("order", orderID)
		}
		out = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetForUpdate is GetByID: the store lock already serializes transactions.
func (r *OrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.GetByID(ctx, orderID)
}

func (r *OrderRepo) Update(ctx context.Context, o *order.Order) error {
	return r.store.view(ctx, func(st *state) error {
		stored, ok := st.orders[o.ID]
		if !ok {
			return apperror.NewNotFound("order", o.ID)
		}
		if stored.Version != o.Version {
			return apperror.NewConcurrentModification("order", o.ID)
		}
		o.Version++
		st.orders[o.ID] = *o
		return nil
	})
}

func (r *OrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	return r.store.view(ctx, func(st *state) error {
		if _, ok := st.orders[orderID]; !ok {
			return apperror.NewNotFound("order", orderID)
		}
		delete(st.orders, orderID)
		return nil
	})
}

func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) ([]order.ListItem, int64, error) {
	var items []order.ListItem
	err := r.store.view(ctx, func(st *state) error {
		for _, o := range matching(st, filter) {
			item := order.ListItem{Order: o}
			if c, ok := st.customers[o.CustomerID]; ok && !c.IsDeleted {
				item.Customer = &order.CustomerSummary{ID: c.ID, Name: c.Name, Phone: c.Phone, Address: c.Address}
			}
			items = append(items, item)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].Order, items[j].Order
		if !a.OrderDate.Equal(b.OrderDate) {
			return a.OrderDate.After(b.OrderDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() > b.ID.String()
	})

	total := int64(len(items))
	start := min(max(filter.Offset(), 0), len(items))
	end := min(start+filter.PageSize, len(items))
	return items[start:end], total, nil
}

func (r *OrderRepo) Statistics(ctx context.Context, filter order.ListFilter) (order.Statistics, error) {
	stats := order.Statistics{TotalBilled: decimal.Zero, TotalCollected: decimal.Zero}
	err := r.store.view(ctx, func(st *state) error {
		for _, o := range matching(st, filter) {
			stats.TotalBilled = stats.TotalBilled.Add(o.Price)
			stats.TotalCollected = stats.TotalCollected.Add(o.AmountPaid)
			stats.CountTotal++
			if o.PaymentState == order.PaymentStatePaid {
				stats.CountPaid++
			} else {
				stats.CountUnpaid++
			}
		}
		return nil
	})
	return stats, err
}

func (r *OrderRepo) MonthlyReport(ctx context.Context, since time.Time) ([]order.MonthlyRow, error) {
	type ym struct{ y, m int }
	rows := make(map[ym]*order.MonthlyRow)
	err := r.store.view(ctx, func(st *state) error {
		for _, o := range st.orders {
			if o.OrderDate.Before(since) {
				continue
			}
			k := ym{o.OrderDate.Year(), int(o.OrderDate.Month())}
			row, ok := rows[k]
			if !ok {
				row = &order.MonthlyRow{Year: k.y, Month: k.m}
				rows[k] = row
			}
			row.TotalBilled = row.TotalBilled.Add(o.Price)
			row.TotalCollected = row.TotalCollected.Add(o.AmountPaid)
			row.OrderCount++
			if o.PaymentState == order.PaymentStatePaid {
				row.PaidCount++
			} else {
				row.UnpaidCount++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]order.MonthlyRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out, nil
}

func (r *OrderRepo) TopCustomers(ctx context.Context, limit int) ([]order.TopCustomer, error) {
	byCustomer := make(map[id.ID]*order.TopCustomer)
	err := r.store.view(ctx, func(st *state) error {
		for _, o := range st.orders {
			row, ok := byCustomer[o.CustomerID]
			if !ok {
				row = &order.TopCustomer{CustomerID: o.CustomerID}
				if c, found := st.customers[o.CustomerID]; found {
					row.Name = c.Name
				}
				byCustomer[o.CustomerID] = row
			}
			row.TotalBilled = row.TotalBilled.Add(o.Price)
			row.TotalCollected = row.TotalCollected.Add(o.AmountPaid)
			row.OrderCount++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]order.TopCustomer, 0, len(byCustomer))
	for _, row := range byCustomer {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].TotalBilled.Cmp(out[j].TotalBilled); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func matching(st *state, f order.ListFilter) []order.Order {
	var out []order.Order
	for _, o := range st.orders {
		if f.CustomerID != nil && o.CustomerID != *f.CustomerID {
			continue
		}
		if f.PaymentState != nil && o.PaymentState != *f.PaymentState {
			continue
		}
		if f.DateFrom != nil && o.OrderDate.Before(*f.DateFrom) {
			continue
		}
		if f.DateTo != nil && o.OrderDate.After(*f.DateTo) {
			continue
		}
		out = append(out, o)
	}
	return out
}
