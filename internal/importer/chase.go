package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseiq/expenseiq/internal/model"
)

// ChaseParser reads Chase checking activity exports:
//
//	Details,Posting Date,Description,Amount,Type,Balance,Check or Slip #
//
// Only the date, description and amount columns feed an expense.
type ChaseParser struct{}

const (
	chaseDateLayout = "01/02/2006"
	chaseFields     = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

func (p *ChaseParser) Format() string { return "chase" }

// Parse skips the header row and converts every other row. Any bad row
// fails the whole file so a statement is never half ingested.
func (p *ChaseParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseFields

	var txns []model.BankTransaction
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return txns, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading chase CSV: %w", err)
		}
		if line == 1 {
			continue
		}
		txn, err := chaseTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		txns = append(txns, txn)
	}
}

func chaseTransaction(rec []string) (model.BankTransaction, error) {
	date, err := time.Parse(chaseDateLayout, strings.TrimSpace(rec[chaseColDate]))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(rec[chaseColAmount]))
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}
	return newTransaction(date, rec[chaseColDesc], amount), nil
}
