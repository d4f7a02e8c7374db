package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ReceiptUploaded is the wire marker for an expense with an attached receipt.
const ReceiptUploaded = "uploaded"

var (
	ErrEmptyID          = errors.New("empty id")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
	ErrMissingDate      = errors.New("missing date")
	ErrInvalidCategory  = errors.New("invalid category")
)

// Expense is a single recorded purchase. Records are immutable; an edit is
// a delete followed by a new insert.
type Expense struct {
	ID          string
	Description string
	Amount      decimal.Decimal
	Date        Date
	Category    Category
	Receipt     bool      // attachment storage is external; only presence is tracked
	Timestamp   time.Time // creation instant, ordering only
}

// Validate checks the record invariants.
func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.Date.IsZero() {
		return ErrMissingDate
	}
	if !e.Category.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, e.Category)
	}
	return nil
}

type expenseJSON struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      json.RawMessage `json:"amount"`
	Date        Date            `json:"date"`
	Category    Category        `json:"category"`
	Receipt     *string         `json:"receipt"`
	Timestamp   time.Time       `json:"timestamp"`
}

// MarshalJSON writes the amount as a JSON number and the receipt as
// "uploaded" or null.
func (e Expense) MarshalJSON() ([]byte, error) {
	w := expenseJSON{
		ID:          e.ID,
		Description: e.Description,
		Amount:      json.RawMessage(e.Amount.String()),
		Date:        e.Date,
		Category:    e.Category,
		Timestamp:   e.Timestamp,
	}
	if e.Receipt {
		marker := ReceiptUploaded
		w.Receipt = &marker
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts amounts as JSON numbers or numeric strings.
func (e *Expense) UnmarshalJSON(data []byte) error {
	var w expenseJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	var amount decimal.Decimal
	if len(w.Amount) > 0 && string(w.Amount) != "null" {
		if err := amount.UnmarshalJSON(w.Amount); err != nil {
			return fmt.Errorf("parsing amount %s: %w", w.Amount, err)
		}
	}
	*e = Expense{
		ID:          w.ID,
		Description: w.Description,
		Amount:      amount,
		Date:        w.Date,
		Category:    w.Category,
		Receipt:     w.Receipt != nil && *w.Receipt != "",
		Timestamp:   w.Timestamp,
	}
	return nil
}
