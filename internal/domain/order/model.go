// Package order implements the order ledger: order placement, partial payments,
// deletion and the reporting reads built on top of them.
package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"laluna/internal/core/apperror"
	"laluna/internal/core/id"
	"laluna/internal/core/types"
)

// PaymentState is derived from price and amount paid; it is never set directly.
type PaymentState string

// MaxPrice is the largest price the orders table stores (numeric(12,2)).
// Amounts paid are clamped to the price, so it bounds them too.
var MaxPrice = decimal.RequireFromString("9999999999.99")

const (
	PaymentStatePaid   PaymentState = "paid"
	PaymentStateUnpaid PaymentState = "unpaid"
)

// ParsePaymentState accepts "paid", "unpaid" and "all" (or empty) for no filter.
func ParsePaymentState(s string) (*PaymentState, error) {
	switch PaymentState(strings.ToLower(strings.TrimSpace(s))) {
	case "", "all":
		return nil, nil
	case PaymentStatePaid:
		v := PaymentStatePaid
		return &v, nil
	case PaymentStateUnpaid:
		v := PaymentStateUnpaid
		return &v, nil
	default:
		return nil, apperror.NewInvalidInput("paymentState", "paymentState must be paid, unpaid or all")
	}
}

// Order is a customer purchase with a running paid amount.
type Order struct {
	ID           id.ID        `db:"id"`
	CustomerID   id.ID        `db:"customer_id"`
	Description  string       `db:"description"`
	Price        types.Money  `db:"price"`
	AmountPaid   types.Money  `db:"amount_paid"`
	PaymentState PaymentState `db:"payment_state"`
	OrderDate    time.Time    `db:"order_date"`
	CreatedBy    *id.ID       `db:"created_by"`
	WhatsAppSent bool         `db:"whatsapp_sent"`
	Version      int          `db:"version"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// Outstanding returns price minus amount paid.
func (o *Order) Outstanding() types.Money {
	return o.Price.Sub(o.AmountPaid)
}

// CustomerSummary is the customer data shown next to a listed order.
type CustomerSummary struct {
	ID      id.ID
	Name    string
	Phone   string
	Address string
}

// ListItem is an order row with its resolved customer. Customer is nil when
// the customer has been soft-deleted.
type ListItem struct {
	Order
	Customer *CustomerSummary
}

// Page is one page of List results.
type Page struct {
	Items      []ListItem
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
}

// Statistics aggregates a filtered set of orders.
type Statistics struct {
	TotalBilled      types.Money `db:"total_billed"`
	TotalCollected   types.Money `db:"total_collected"`
	TotalOutstanding types.Money `db:"-"`
	CountPaid        int         `db:"count_paid"`
	CountUnpaid      int         `db:"count_unpaid"`
	CountTotal       int         `db:"count_total"`
}

// MonthlyRow is one calendar month of sales.
type MonthlyRow struct {
	Year           int         `db:"year"`
	Month          int         `db:"month"`
	TotalBilled    types.Money `db:"total_billed"`
	TotalCollected types.Money `db:"total_collected"`
	OrderCount     int         `db:"order_count"`
	PaidCount      int         `db:"paid_count"`
	UnpaidCount    int         `db:"unpaid_count"`
}

// TopCustomer ranks customers by total billed.
type TopCustomer struct {
	CustomerID       id.ID       `db:"customer_id"`
	Name             string      `db:"name"`
	TotalBilled      types.Money `db:"total_billed"`
	TotalCollected   types.Money `db:"total_collected"`
	TotalOutstanding types.Money `db:"-"`
	OrderCount       int         `db:"order_count"`
}

// Reports bundles the dashboard reads.
type Reports struct {
	Statistics   Statistics
	Monthly      []MonthlyRow
	TopCustomers []TopCustomer
	MonthsBack   int
	GeneratedAt  time.Time
}
