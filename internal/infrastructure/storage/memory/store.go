// Package memory is an in-process implementation of every repository and of
// tx.Manager. It backs STORAGE=memory for local demos and the service tests.
// Transactions are serialized by a single mutex and rolled back by restoring
// a snapshot taken at BEGIN.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"laluna/internal/core/events"
	"laluna/internal/core/id"
	"laluna/internal/core/tx"
	"laluna/internal/domain/auth"
	"laluna/internal/domain/customer"
	"laluna/internal/domain/inventory"
	"laluna/internal/domain/order"
)

var (
	_ tx.Manager       = (*Store)(nil)
	_ events.Publisher = (*Store)(nil)
)

type stockKey struct {
	productID id.ID
	branchID  int
}

type state struct {
	customers   map[id.ID]customer.Customer
	orders      map[id.ID]order.Order
	products    map[id.ID]inventory.Product
	stock       map[stockKey]inventory.Stock
	adjustments []inventory.Adjustment
	users       map[id.ID]auth.User
	outbox      []events.Event
}

func newState() *state {
	return &state{
		customers: make(map[id.ID]customer.Customer),
		orders:    make(map[id.ID]order.Order),
		products:  make(map[id.ID]inventory.Product),
		stock:     make(map[stockKey]inventory.Stock),
		users:     make(map[id.ID]auth.User),
	}
}

// clone copies every table. Records are stored by value and never mutated
// through shared pointers, so a shallow copy per map is a full snapshot.
func (s *state) clone() *state {
	return &state{
		customers:   maps.Clone(s.customers),
		orders:      maps.Clone(s.orders),
		products:    maps.Clone(s.products),
		stock:       maps.Clone(s.stock),
		adjustments: slices.Clone(s.adjustments),
		users:       maps.Clone(s.users),
		outbox:      slices.Clone(s.outbox),
	}
}

// Store holds all tables.
type Store struct {
	mu   sync.Mutex
	data *state
}

// New creates an empty store.
func New() *Store {
	return &Store{data: newState()}
}

type txKey struct{}

func (s *Store) inTx(ctx context.Context) bool {
	owner, _ := ctx.Value(txKey{}).(*Store)
	return owner == s
}

// RunInTransaction runs fn holding the store lock; on error every change made
// inside fn is discarded.
func (s *Store) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// view runs fn against the current tables, taking the lock unless ctx
// already holds it through RunInTransaction.
func (s *Store) view(ctx context.Context, fn func(st *state) error) error {
	if s.inTx(ctx) {
		return fn(s.data)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// Publish appends the event to the in-memory outbox.
func (s *Store) Publish(ctx context.Context, event events.Event) error {
	return s.view(ctx, func(st *state) error {
		st.outbox = append(st.outbox, event)
		return nil
	})
}

// Events returns a copy of every published event in order.
func (s *Store) Events() []events.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.data.outbox)
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Customers returns the customer repository view of the store.
func (s *Store) Customers() *CustomerRepo { return &CustomerRepo{store: s} }

// Orders returns the order repository view of the store.
func (s *Store) Orders() *OrderRepo { return &OrderRepo{store: s} }

// Inventory returns the inventory repository view of the store.
func (s *Store) Inventory() *InventoryRepo { return &InventoryRepo{store: s} }

// Users returns the user repository view of the store.
func (s *Store) Users() *UserRepo { return &UserRepo{store: s} }
