package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/domain/customer"
)

var _ customer.Repository = (*CustomerRepo)(nil)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	store *Store
}

func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	return r.store.view(ctx, func(st *state) error {
		st.customers[c.ID] = *c
		return nil
	})
}

func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	var out customer.Customer
	err := r.store.view(ctx, func(st *state) error {
		c, ok := st.customers[customerID]
		if !ok {
			return apperror.NewNotFound("customer", customerID)
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *CustomerRepo) List(ctx context.Context, filter customer.ListFilter) ([]customer.Customer, error) {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []customer.Customer
	err := r.store.view(ctx, func(st *state) error {
		for _, c := range st.customers {
			if c.IsDeleted {
				continue
			}
			if filter.State != nil && c.State != *filter.State {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(c.Name), search) &&
				!strings.Contains(c.Phone, search) {
				continue
			}
			out = append(out, c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, err
}

func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	return r.store.view(ctx, func(st *state) error {
		stored, ok := st.customers[c.ID]
		if !ok {
			return apperror.NewNotFound("customer", c.ID)
		}
		stored.Name = c.Name
		stored.Address = c.Address
		stored.Phone = c.Phone
		stored.Email = c.Email
		stored.Notes = c.Notes
		stored.State = c.State
		stored.UpdatedAt = c.UpdatedAt
		st.customers[c.ID] = stored
		return nil
	})
}

func (r *CustomerRepo) SoftDelete(ctx context.Context, customerID id.ID, at time.Time) error {
	return r.store.view(ctx, func(st *state) error {
		c, ok := st.customers[customerID]
		if !ok {
			return apperror.NewNotFound("customer", customerID)
		}
		c.IsDeleted = true
		c.DeletedAt = &at
		c.UpdatedAt = at
		st.customers[customerID] = c
		return nil
	})
}

func (r *CustomerRepo) RecomputeStatistics(ctx context.Context, customerID id.ID) (customer.Statistics, error) {
	var stats customer.Statistics
	err := r.store.view(ctx, func(st *state) error {
		c, ok := st.customers[customerID]
		if !ok {
			return apperror.NewNotFound("customer", customerID)
		}
		for _, o := range st.orders {
			if o.CustomerID != customerID {
				continue
			}
			stats.TotalBilled = stats.TotalBilled.Add(o.Price)
			stats.OrderCount++
			if stats.LastOrderDate == nil || o.OrderDate.After(*stats.LastOrderDate) {
				d := o.OrderDate
				stats.LastOrderDate = &d
			}
		}
		c.TotalBilled = stats.TotalBilled
		c.OrderCount = stats.OrderCount
		c.LastOrderDate = stats.LastOrderDate
		st.customers[customerID] = c
		return nil
	})
	return stats, err
}
