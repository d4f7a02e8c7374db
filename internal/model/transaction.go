package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankTransaction represents a parsed bank CSV row.
type BankTransaction struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal // negative = money out, positive = money in
	// Reference identifies the row across repeated imports of the same
	// statement.
	Reference string
}

// IsDebit reports whether the transaction spent money.
func (t BankTransaction) IsDebit() bool {
	return t.Amount.IsNegative()
}

// Spent returns the absolute amount of a debit, or zero for credits.
func (t BankTransaction) Spent() decimal.Decimal {
	if !t.IsDebit() {
		return decimal.Zero
	}
	return t.Amount.Abs()
}
