package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type Money struct {
	Amount   decimal.Decimal
	Currency currency.Unit
}

// MulInt returns the price of n units.
func (m Money) MulInt(n int) Money {
	return Money{
		Amount:   m.Amount.Mul(decimal.NewFromInt(int64(n))),
		Currency: m.Currency,
	}
}

// Add sums two amounts of the same currency. The catalog carries a single
// currency; mixed currencies indicate corrupted data.
func (m Money) Add(other Money) (Money, error) {
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}

	return Money{
		Amount:   m.Amount.Add(other.Amount),
		Currency: m.Currency,
	}, nil
}
