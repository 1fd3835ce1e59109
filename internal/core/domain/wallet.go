package domain

import (
	"time"

	"github.com/govalues/decimal"
)

// Wallet is the payout balance of a tutor. Available never goes below zero and
// already excludes amounts reserved by pending withdrawals.
type Wallet struct {
	PayeeID   uint64
	Available decimal.Decimal
	UpdatedAt time.Time
}

// AmountScale is the number of decimal places stored for every amount.
const AmountScale = 2

// NormalizeAmount strips trailing zeros past AmountScale. Amounts that are not
// positive or carry a fraction of a cent are rejected with ErrInvalidAmount.
func NormalizeAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	amount = amount.Trim(AmountScale)
	if !amount.IsPos() || amount.Scale() > AmountScale {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}
