package service

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// NanoDecimals is the number of base-unit decimals of one whole coin
const NanoDecimals = 9

var (
	// CheckinTransferAmount is sent to the product address on every checkin
	CheckinTransferAmount = decimal.RequireFromString("0.008")

	// CheckinMinBalance is the balance below which an account skips its checkin
	CheckinMinBalance = decimal.RequireFromString("0.01")

	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ComputeBorrowAmount derives the borrow entitlement from a live balance.
// The raw amount is balance * floorPercent / 100. A raw amount below one whole unit is
// raised to exactly one when the balance covers it; anything else is floored.
func ComputeBorrowAmount(balance, floorPercent decimal.Decimal) (decimal.Decimal, error) {
	raw := balance.Mul(floorPercent).Div(hundred)
	if !raw.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidAmount, raw)
	}

	if raw.LessThan(one) && balance.GreaterThanOrEqual(one) {
		return one, nil
	}

	amount := raw.Floor()
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s floors to zero", ErrInvalidAmount, raw)
	}
	return amount, nil
}

// ToNano converts whole units to base units
func ToNano(amount decimal.Decimal) decimal.Decimal {
	return amount.Shift(NanoDecimals).Truncate(0)
}
