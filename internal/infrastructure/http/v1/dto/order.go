package dto

import (
	"time"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/core/types"
	"laluna/internal/domain/order"
)

// CreateOrderRequest for POST /orders.
type CreateOrderRequest struct {
	CustomerID  string       `json:"customerId" binding:"required,uuid"`
	Description string       `json:"description" binding:"required"`
	Price       types.Money  `json:"price"`
	AmountPaid  *types.Money `json:"amountPaid"`
	OrderDate   string       `json:"orderDate"`
}

// ToInput converts the request to a domain input.
func (r CreateOrderRequest) ToInput(createdBy *id.ID) (order.PlaceInput, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return order.PlaceInput{}, apperror.NewInvalidInput("customerId", "customerId must be a UUID")
	}
	in := order.PlaceInput{
		CustomerID:  customerID,
		Description: r.Description,
		Price:       r.Price,
		AmountPaid:  types.Zero(),
		CreatedBy:   createdBy,
	}
	if r.AmountPaid != nil {
		in.AmountPaid = *r.AmountPaid
	}
	if r.OrderDate != "" {
		d, err := ParseDate(r.OrderDate)
		if err != nil {
			return order.PlaceInput{}, apperror.NewInvalidInput("orderDate", "orderDate must be YYYY-MM-DD")
		}
		in.OrderDate = &d
	}
	return in, nil
}

// PaymentRequest for PATCH /orders/:id/payments.
type PaymentRequest struct {
	Amount types.Money `json:"amount"`
}

// AmountPaidRequest for PATCH /orders/:id/amount-paid.
type AmountPaidRequest struct {
	AmountPaid types.Money `json:"amountPaid"`
}

// OrderListQuery for GET /orders and GET /orders/statistics.
type OrderListQuery struct {
	PaginationRequest
	CustomerID   string `form:"customerId" binding:"omitempty,uuid"`
	PaymentState string `form:"paymentState"`
	DateFrom     string `form:"dateFrom"`
	DateTo       string `form:"dateTo"`
}

// ToFilter converts the query to a domain filter.
func (q OrderListQuery) ToFilter() (order.ListFilter, error) {
	f := order.ListFilter{Page: q.Page, PageSize: q.PageSize}

	customerID, err := ParseOptionalID(q.CustomerID)
	if err != nil {
		return f, apperror.NewInvalidInput("customerId", "customerId must be a UUID")
	}
	f.CustomerID = customerID

	if f.PaymentState, err = order.ParsePaymentState(q.PaymentState); err != nil {
		return f, err
	}
	if q.DateFrom != "" {
		d, err := ParseDate(q.DateFrom)
		if err != nil {
			return f, apperror.NewInvalidInput("dateFrom", "dateFrom must be YYYY-MM-DD")
		}
		f.DateFrom = &d
	}
	if q.DateTo != "" {
		d, err := ParseDate(q.DateTo)
		if err != nil {
			return f, apperror.NewInvalidInput("dateTo", "dateTo must be YYYY-MM-DD")
		}
		f.DateTo = &d
	}
	return f, nil
}

// ReportsQuery for GET /orders/reports.
type ReportsQuery struct {
	Months int `form:"months" binding:"omitempty,min=1,max=24"`
}

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// CustomerSummaryResponse is the customer shown next to an order.
type CustomerSummaryResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// OrderResponse is an order with derived amounts.
type OrderResponse struct {
	ID           string                   `json:"id"`
	CustomerID   string                   `json:"customerId"`
	Customer     *CustomerSummaryResponse `json:"customer"`
	Description  string                   `json:"description"`
	Price        types.Money              `json:"price"`
	AmountPaid   types.Money              `json:"amountPaid"`
	Outstanding  types.Money              `json:"outstanding"`
	PaymentState order.PaymentState       `json:"paymentState"`
	OrderDate    string                   `json:"orderDate"`
	CreatedBy    *string                  `json:"createdBy,omitempty"`
	WhatsAppSent bool                     `json:"whatsappSent"`
	Version      int                      `json:"version"`
	CreatedAt    time.Time                `json:"createdAt"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}

// FromOrder converts a domain order.
func FromOrder(o *order.Order) OrderResponse {
	return OrderResponse{
		ID:           o.ID.String(),
		CustomerID:   o.CustomerID.String(),
		Description:  o.Description,
		Price:        o.Price,
		AmountPaid:   o.AmountPaid,
		Outstanding:  o.Outstanding(),
		PaymentState: o.PaymentState,
		OrderDate:    FormatDate(o.OrderDate),
		CreatedBy:    IDString(o.CreatedBy),
		WhatsAppSent: o.WhatsAppSent,
		Version:      o.Version,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// FromListItem converts a listed order; customer is null when soft-deleted.
func FromListItem(item *order.ListItem) OrderResponse {
	resp := FromOrder(&item.Order)
	if c := item.Customer; c != nil {
		resp.Customer = &CustomerSummaryResponse{
			ID:      c.ID.String(),
			Name:    c.Name,
			Phone:   c.Phone,
			Address: c.Address,
		}
	}
	return resp
}

// FromPage converts a page of orders.
func FromPage(p *order.Page) PageResponse[OrderResponse] {
	items := make([]OrderResponse, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, FromListItem(&p.Items[i]))
	}
	return PageResponse[OrderResponse]{
		Success:    true,
		Data:       items,
		Total:      p.Total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: p.TotalPages,
	}
}

// CreateOrderResponse is returned by POST /orders.
type CreateOrderResponse struct {
	Order        OrderResponse `json:"order"`
	WhatsAppLink string        `json:"whatsappLink"`
}

// FromPlaceResult converts the result of placing an order.
func FromPlaceResult(r *order.PlaceResult) CreateOrderResponse {
	o := FromOrder(r.Order)
	if c := r.Customer; c != nil {
		o.Customer = &CustomerSummaryResponse{
			ID:      c.ID.String(),
			Name:    c.Name,
			Phone:   c.Phone,
			Address: c.Address,
		}
	}
	return CreateOrderResponse{Order: o, WhatsAppLink: r.WhatsAppLink}
}

// WhatsAppLinkResponse for GET /orders/:id/whatsapp-link.
type WhatsAppLinkResponse struct {
	WhatsAppLink string `json:"whatsappLink"`
}
