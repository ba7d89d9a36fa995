package order

import (
	"laluna/internal/core/types"
)

// ClampPaid bounds paid to [0, price].
func ClampPaid(price, paid types.Money) types.Money {
	return types.Max(types.Zero(), types.Min(paid, price))
}

// DerivePaymentState returns Paid iff paid >= price.
func DerivePaymentState(price, paid types.Money) PaymentState {
	if paid.GreaterThanOrEqual(price) {
		return PaymentStatePaid
	}
	return PaymentStateUnpaid
}

// applyPaid stores amount (clamped) and recomputes the payment state.
// Every write path goes through here.
func (o *Order) applyPaid(amount types.Money) {
	o.AmountPaid = types.RoundMoney(ClampPaid(o.Price, amount))
	o.PaymentState = DerivePaymentState(o.Price, o.AmountPaid)
}

// AddPayment adds delta to the amount paid; any excess over the price is dropped.
func (o *Order) AddPayment(delta types.Money) {
	o.applyPaid(o.AmountPaid.Add(delta))
}

// SetAmountPaid replaces the amount paid; values above the price are capped.
func (o *Order) SetAmountPaid(amount types.Money) {
	o.applyPaid(amount)
}

// MarkFullyPaid sets amount paid to the price.
func (o *Order) MarkFullyPaid() {
	o.applyPaid(o.Price)
}
