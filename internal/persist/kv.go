// Package persist stores the serialized expense collection in a durable
// key-value backend.
package persist

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/expenseiq/expenseiq/internal/model"
)

// ExpensesKey is the single key under which the expense array is kept.
const ExpensesKey = "expenseiq_expenses"

// KV is a durable text store. Load reports found=false for a missing key.
type KV interface {
	Load(ctx context.Context, key string) (value string, found bool, err error)
	Save(ctx context.Context, key, value string) error
}

// EncodeExpenses serializes expenses as a JSON array.
func EncodeExpenses(expenses []model.Expense) (string, error) {
	if expenses == nil {
		expenses = []model.Expense{}
	}
	data, err := json.Marshal(expenses)
	if err != nil {
		return "", fmt.Errorf("encoding expenses: %w", err)
	}
	return string(data), nil
}

// DecodeExpenses parses a JSON array written by EncodeExpenses and checks
// every record.
func DecodeExpenses(value string) ([]model.Expense, error) {
	var expenses []model.Expense
	if err := json.Unmarshal([]byte(value), &expenses); err != nil {
		return nil, fmt.Errorf("decoding expenses: %w", err)
	}
	for i, e := range expenses {
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("expense %d (%s): %w", i, e.ID, err)
		}
	}
	return expenses, nil
}
