package service

import "github.com/shopspring/decimal"

// SplitPayment divides price between the buyer's internal balance and an
// external on-chain payment, exhausting the balance first. The parts are
// exact: internal + external == price, both non-negative.
func SplitPayment(available, price decimal.Decimal) (internal, external decimal.Decimal) {
	if available.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, price
	}
	if available.GreaterThanOrEqual(price) {
		return price, decimal.Zero
	}
	return available, price.Sub(available)
}
