package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseiq/expenseiq/internal/categorizer"
	"github.com/expenseiq/expenseiq/internal/model"
)

// Reference keys a spend by day, description and amount. A bank row and
// the expense ingested from it share a reference, which is how a
// statement dropped in twice is recognized.
func Reference(d model.Date, description string, amount decimal.Decimal) string {
	words := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, description)
	return fmt.Sprintf("%s_%s_%s", d.String(), strings.ToUpper(words), amount.Abs().StringFixed(2))
}

// cleanDescription trims a bank memo and collapses its runs of padding.
func cleanDescription(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func newTransaction(date time.Time, description string, amount decimal.Decimal) model.BankTransaction {
	desc := cleanDescription(description)
	return model.BankTransaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Reference:   Reference(model.DateOf(date), desc, amount),
	}
}

// ToExpenses converts debits into categorized expenses, in input order.
// Credits and blank rows are skipped, and so is every debit that matches an
// existing expense by Reference; each existing expense absorbs at most one
// row. duplicates counts the rows skipped that way.
func ToExpenses(txns []model.BankTransaction, existing []model.Expense, newID func() string, now time.Time) (expenses []model.Expense, duplicates int) {
	seen := make(map[string]int, len(existing))
	for _, e := range existing {
		seen[Reference(e.Date, e.Description, e.Amount)]++
	}
	for _, t := range txns {
		if !t.IsDebit() || t.Description == "" {
			continue
		}
		if seen[t.Reference] > 0 {
			seen[t.Reference]--
			duplicates++
			continue
		}
		expenses = append(expenses, model.Expense{
			ID:          newID(),
			Description: t.Description,
			Amount:      t.Spent(),
			Date:        model.DateOf(t.Date),
			Category:    categorizer.Categorize(t.Description),
			Timestamp:   now,
		})
	}
	return expenses, duplicates
}
