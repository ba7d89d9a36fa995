package dto

import (
	"time"

	"laluna/internal/core/types"
	"laluna/internal/domain/customer"
)

// CreateCustomerRequest for POST /customers.
type CreateCustomerRequest struct {
	Name    string         `json:"name" binding:"required"`
	Address string         `json:"address" binding:"required"`
	Phone   string         `json:"phone" binding:"required"`
	Email   *string        `json:"email"`
	Notes   *string        `json:"notes"`
	State   customer.State `json:"state"`
}

// ToInput converts the request to a domain input.
func (r CreateCustomerRequest) ToInput() customer.CreateInput {
	return customer.CreateInput{
		Name:    r.Name,
		Address: r.Address,
		Phone:   r.Phone,
		Email:   r.Email,
		Notes:   r.Notes,
		State:   r.State,
	}
}

// UpdateCustomerRequest for PATCH /customers/:id. Absent fields are kept.
type UpdateCustomerRequest struct {
	Name    *string         `json:"name"`
	Address *string         `json:"address"`
	Phone   *string         `json:"phone"`
	Email   *string         `json:"email"`
	Notes   *string         `json:"notes"`
	State   *customer.State `json:"state"`
}

// ToInput converts the request to a domain input.
func (r UpdateCustomerRequest) ToInput() customer.UpdateInput {
	return customer.UpdateInput{
		Name:    r.Name,
		Address: r.Address,
		Phone:   r.Phone,
		Email:   r.Email,
		Notes:   r.Notes,
		State:   r.State,
	}
}

// CustomerListQuery for GET /customers.
type CustomerListQuery struct {
	Search string `form:"search"`
	State  string `form:"state" binding:"omitempty,oneof=active inactive"`
}

// ToFilter converts the query to a domain filter.
func (q CustomerListQuery) ToFilter() customer.ListFilter {
	f := customer.ListFilter{Search: q.Search}
	if q.State != "" {
		s := customer.State(q.State)
		f.State = &s
	}
	return f
}

// CustomerResponse is a customer with its cached aggregates.
type CustomerResponse struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Address       string         `json:"address"`
	Phone         string         `json:"phone"`
	Email         *string        `json:"email,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	State         customer.State `json:"state"`
	TotalBilled   types.Money    `json:"totalBilled"`
	OrderCount    int            `json:"orderCount"`
	LastOrderDate *string        `json:"lastOrderDate"`
	RegisteredAt  time.Time      `json:"registeredAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// FromCustomer converts a domain customer.
func FromCustomer(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:            c.ID.String(),
		Name:          c.Name,
		Address:       c.Address,
		Phone:         c.Phone,
		Email:         c.Email,
		Notes:         c.Notes,
		State:         c.State,
		TotalBilled:   c.TotalBilled,
		OrderCount:    c.OrderCount,
		LastOrderDate: FormatOptionalDate(c.LastOrderDate),
		RegisteredAt:  c.RegisteredAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

// FromCustomers converts a slice of customers.
func FromCustomers(list []customer.Customer) []CustomerResponse {
	out := make([]CustomerResponse, 0, len(list))
	for i := range list {
		out = append(out, FromCustomer(&list[i]))
	}
	return out
}
