package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"laluna/internal/core/apperror"
	"laluna/internal/core/events"
	"laluna/internal/core/id"
	"laluna/internal/core/tx"
	"laluna/internal/core/types"
	"laluna/internal/domain/customer"
	"laluna/internal/domain/notify"
	"laluna/pkg/logger"
)

const (
	DefaultMonthsBack = 6
	MaxMonthsBack     = 24
	DefaultTopLimit   = 5
	MaxTopLimit       = 50
)

// CustomerLedger is the part of the customer ledger the order ledger needs.
type CustomerLedger interface {
	Get(ctx context.Context, customerID id.ID) (*customer.Customer, error)
	RecomputeStatistics(ctx context.Context, customerID id.ID) error
}

// LinkBuilder renders the confirmation deep link for an order.
type LinkBuilder interface {
	OrderLink(msg notify.OrderMessage) string
}

// PlaceInput holds the fields of a new order.
type PlaceInput struct {
	CustomerID  id.ID
	Description string
	Price       types.Money
	AmountPaid  types.Money
	OrderDate   *time.Time
	CreatedBy   *id.ID
}

// PlaceResult is returned by PlaceOrder.
type PlaceResult struct {
	Order        *Order
	Customer     *customer.Customer
	WhatsAppLink string
}

// Service implements the order ledger. Every write runs in one transaction
// together with the customer statistics recompute and the outbox event.
type Service struct {
	repo      Repository
	customers CustomerLedger
	txManager tx.Manager
	publisher events.Publisher
	links     LinkBuilder
}

// NewService creates a new order service.
func NewService(
	repo Repository,
	customers CustomerLedger,
	txManager tx.Manager,
	publisher events.Publisher,
	links LinkBuilder,
) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		txManager: txManager,
		publisher: publisher,
		links:     links,
	}
}

// PlaceOrder validates and stores a new order for an existing customer.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceInput) (*PlaceResult, error) {
	in.Description = strings.TrimSpace(in.Description)
	if in.Description == "" {
		return nil, apperror.NewInvalidInput("description", "description is required")
	}
	if in.Price.IsNegative() {
		return nil, apperror.NewInvalidInput("price", "price must not be negative")
	}
	if in.AmountPaid.IsNegative() {
		return nil, apperror.NewInvalidInput("amountPaid", "amount paid must not be negative")
	}
	price := types.RoundMoney(in.Price)
	if price.GreaterThan(MaxPrice) {
		return nil, apperror.NewInvalidInput("price", "price is too large").
			WithDetail("max", MaxPrice.StringFixed(2))
	}
	paid := types.RoundMoney(in.AmountPaid)
	if paid.GreaterThan(price) {
		return nil, apperror.NewInvalidInput("amountPaid", "amount paid cannot exceed the price").
			WithDetail("price", price.StringFixed(2)).
			WithDetail("amountPaid", paid.StringFixed(2))
	}

	now := time.Now().UTC()
	orderDate := truncateDate(now)
	if in.OrderDate != nil {
		orderDate = truncateDate(*in.OrderDate)
	}

	o := &Order{
		ID:          id.New(),
		CustomerID:  in.CustomerID,
		Description: in.Description,
		Price:       price,
		OrderDate:   orderDate,
		CreatedBy:   in.CreatedBy,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	o.SetAmountPaid(paid)

	var cust *customer.Customer
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		cust, err = s.customers.Get(ctx, in.CustomerID)
		if err != nil {
			return err
		}
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.customers.RecomputeStatistics(ctx, o.CustomerID); err != nil {
			return err
		}
		return s.publish(ctx, events.OrderPlaced, o)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order placed",
		logger.OrderID(o.ID),
		logger.CustomerID(o.CustomerID),
		logger.Money("price", o.Price),
		"payment_state", o.PaymentState,
	)

	return &PlaceResult{
		Order:        o,
		Customer:     cust,
		WhatsAppLink: s.links.OrderLink(orderMessage(o, cust)),
	}, nil
}

// Get returns an order by id, including orders of soft-deleted customers.
func (s *Service) Get(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.repo.GetByID(ctx, orderID)
}

// RecordPayment adds delta to the amount paid, capped at the price.
func (s *Service) RecordPayment(ctx context.Context, orderID id.ID, delta types.Money) (*Order, error) {
	if delta.IsNegative() {
		return nil, apperror.NewInvalidInput("amount", "payment amount must not be negative")
	}
	return s.mutate(ctx, orderID, events.OrderPaymentRecorded, func(o *Order) {
		o.AddPayment(delta)
	})
}

// SetAmountPaid overwrites the amount paid, capped at the price.
func (s *Service) SetAmountPaid(ctx context.Context, orderID id.ID, amount types.Money) (*Order, error) {
	if amount.IsNegative() {
		return nil, apperror.NewInvalidInput("amountPaid", "amount paid must not be negative")
	}
	return s.mutate(ctx, orderID, events.OrderPaymentRecorded, func(o *Order) {
		o.SetAmountPaid(amount)
	})
}

// MarkFullyPaid sets the amount paid to the price.
func (s *Service) MarkFullyPaid(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.mutate(ctx, orderID, events.OrderPaymentRecorded, func(o *Order) {
		o.MarkFullyPaid()
	})
}

// MarkWhatsAppSent records that the confirmation was sent to the customer.
func (s *Service) MarkWhatsAppSent(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.mutate(ctx, orderID, events.OrderWhatsAppSent, func(o *Order) {
		o.WhatsAppSent = true
	})
}

// mutate locks the order, applies fn and persists it with a version check.
func (s *Service) mutate(ctx context.Context, orderID id.ID, eventType string, fn func(o *Order)) (*Order, error) {
	var o *Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		o, err = s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		fn(o)
		o.UpdatedAt = time.Now().UTC()

		if err := s.repo.Update(ctx, o); err != nil {
			return err
		}
		if err := s.customers.RecomputeStatistics(ctx, o.CustomerID); err != nil {
			return err
		}
		return s.publish(ctx, eventType, o)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "order updated",
		logger.OrderID(o.ID),
		"event", eventType,
		logger.Money("amount_paid", o.AmountPaid),
		"payment_state", o.PaymentState,
	)
	return o, nil
}

// DeleteOrder removes the order and refreshes its customer's aggregates.
func (s *Service) DeleteOrder(ctx context.Context, orderID id.ID) error {
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := s.repo.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, orderID); err != nil {
			return fmt.Errorf("delete order: %w", err)
		}
		if err := s.customers.RecomputeStatistics(ctx, o.CustomerID); err != nil {
			return err
		}
		return s.publish(ctx, events.OrderDeleted, o)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "order deleted", logger.OrderID(orderID))
	return nil
}

// WhatsAppLink regenerates the confirmation link of an existing order.
func (s *Service) WhatsAppLink(ctx context.Context, orderID id.ID) (string, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	cust, err := s.customers.Get(ctx, o.CustomerID)
	if err != nil {
		return "", err
	}
	return s.links.OrderLink(orderMessage(o, cust)), nil
}

// List returns one page of orders.
func (s *Service) List(ctx context.Context, filter ListFilter) (*Page, error) {
	if err := normalizeRange(&filter); err != nil {
		return nil, err
	}
	filter.Normalize()

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	totalPages := int(total) / filter.PageSize
	if int(total)%filter.PageSize > 0 {
		totalPages++
	}
	return &Page{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Statistics aggregates the orders matching filter; paging is ignored.
func (s *Service) Statistics(ctx context.Context, filter ListFilter) (Statistics, error) {
	if err := normalizeRange(&filter); err != nil {
		return Statistics{}, err
	}
	stats, err := s.repo.Statistics(ctx, filter)
	if err != nil {
		return Statistics{}, fmt.Errorf("order statistics: %w", err)
	}
	stats.TotalOutstanding = stats.TotalBilled.Sub(stats.TotalCollected)
	return stats, nil
}

// MonthlyReport groups orders from the last monthsBack months by calendar month.
func (s *Service) MonthlyReport(ctx context.Context, monthsBack int) ([]MonthlyRow, error) {
	if monthsBack == 0 {
		monthsBack = DefaultMonthsBack
	}
	if monthsBack < 1 || monthsBack > MaxMonthsBack {
		return nil, apperror.NewInvalidInput("months", "months must be between 1 and 24")
	}
	since := truncateDate(time.Now().UTC()).AddDate(0, -monthsBack, 0)

	rows, err := s.repo.MonthlyReport(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("monthly report: %w", err)
	}
	return rows, nil
}

// TopCustomers ranks customers by total billed.
func (s *Service) TopCustomers(ctx context.Context, limit int) ([]TopCustomer, error) {
	if limit == 0 {
		limit = DefaultTopLimit
	}
	if limit < 1 || limit > MaxTopLimit {
		return nil, apperror.NewInvalidInput("limit", "limit must be between 1 and 50")
	}

	rows, err := s.repo.TopCustomers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}
	for i := range rows {
		rows[i].TotalOutstanding = rows[i].TotalBilled.Sub(rows[i].TotalCollected)
	}
	return rows, nil
}

// Reports combines overall statistics, the monthly report and the top five customers.
func (s *Service) Reports(ctx context.Context, monthsBack int) (*Reports, error) {
	if monthsBack == 0 {
		monthsBack = DefaultMonthsBack
	}
	stats, err := s.Statistics(ctx, ListFilter{})
	if err != nil {
		return nil, err
	}
	monthly, err := s.MonthlyReport(ctx, monthsBack)
	if err != nil {
		return nil, err
	}
	top, err := s.TopCustomers(ctx, DefaultTopLimit)
	if err != nil {
		return nil, err
	}
	return &Reports{
		Statistics:   stats,
		Monthly:      monthly,
		TopCustomers: top,
		MonthsBack:   monthsBack,
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

type orderEventPayload struct {
	OrderID      string       `json:"orderId"`
	CustomerID   string       `json:"customerId"`
	Price        string       `json:"price"`
	AmountPaid   string       `json:"amountPaid"`
	PaymentState PaymentState `json:"paymentState"`
	OrderDate    string       `json:"orderDate"`
	Version      int          `json:"version"`
}

func (s *Service) publish(ctx context.Context, eventType string, o *Order) error {
	err := s.publisher.Publish(ctx, events.Event{
		AggregateType: events.AggregateOrder,
		AggregateID:   o.ID,
		Type:          eventType,
		Payload: orderEventPayload{
			OrderID:      o.ID.String(),
			CustomerID:   o.CustomerID.String(),
			Price:        o.Price.StringFixed(2),
			AmountPaid:   o.AmountPaid.StringFixed(2),
			PaymentState: o.PaymentState,
			OrderDate:    o.OrderDate.Format(time.DateOnly),
			Version:      o.Version,
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

func orderMessage(o *Order, c *customer.Customer) notify.OrderMessage {
	return notify.OrderMessage{
		OrderID:      o.ID.String(),
		Description:  o.Description,
		Total:        o.Price,
		CustomerName: c.Name,
		Phone:        c.Phone,
		Address:      c.Address,
	}
}

// normalizeRange reduces both bounds to calendar dates so they compare
// inclusively against order dates.
func normalizeRange(f *ListFilter) error {
	if f.DateFrom != nil {
		d := truncateDate(*f.DateFrom)
		f.DateFrom = &d
	}
	if f.DateTo != nil {
		d := truncateDate(*f.DateTo)
		f.DateTo = &d
	}
	if f.DateFrom != nil && f.DateTo != nil && f.DateFrom.After(*f.DateTo) {
		return apperror.NewInvalidInput("dateFrom", "dateFrom must not be after dateTo")
	}
	return nil
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
