// Package events defines domain events written to the transactional outbox.
package events

import (
	"context"

	"laluna/internal/core/id"
)

// Aggregate types.
const (
	AggregateOrder = "order"
	AggregateStock = "stock"
)

// Event types.
const (
	OrderPlaced          = "order.placed"
	OrderPaymentRecorded = "order.payment_recorded"
	OrderDeleted         = "order.deleted"
	OrderWhatsAppSent    = "order.whatsapp_sent"
	StockAdjusted        = "stock.adjusted"
)

// Event is a fact recorded by a ledger.
type Event struct {
	AggregateType string
	AggregateID   id.ID
	Type          string
	Payload       any
}

// Publisher records events. Implementations must write within the
// transaction carried by ctx so the event commits with the state change.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
