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

// GenericParser reads any CSV whose header names date, description and
// amount columns, in any order. Negative amounts are money out.
type GenericParser struct{}

var genericDateFormats = []string{"2006-01-02", "01/02/2006", "1/2/2006", "02 Jan 2006"}

var errNoHeader = errors.New("header must name date, description and amount columns")

func (p *GenericParser) Format() string { return "generic" }

func (p *GenericParser) Parse(r io.Reader) ([]model.BankTransaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols, err := genericColumns(records[0])
	if err != nil {
		return nil, err
	}

	var txns []model.BankTransaction
	for i, rec := range records[1:] {
		txn, err := cols.parse(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

type columns struct {
	date, desc, amount int
}

func genericColumns(header []string) (columns, error) {
	c := columns{date: -1, desc: -1, amount: -1}
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "date", "posting date", "transaction date":
			c.date = i
		case "description", "memo", "payee", "name":
			c.desc = i
		case "amount":
			c.amount = i
		}
	}
	if c.date < 0 || c.desc < 0 || c.amount < 0 {
		return c, errNoHeader
	}
	return c, nil
}

func (c columns) parse(rec []string) (model.BankTransaction, error) {
	for _, i := range []int{c.date, c.desc, c.amount} {
		if i >= len(rec) {
			return model.BankTransaction{}, fmt.Errorf("expected at least %d fields, got %d", i+1, len(rec))
		}
	}
	date, err := parseGenericDate(rec[c.date])
	if err != nil {
		return model.BankTransaction{}, err
	}
	raw := strings.NewReplacer("$", "", ",", "").Replace(strings.TrimSpace(rec[c.amount]))
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.BankTransaction{}, fmt.Errorf("parsing amount %q: %w", rec[c.amount], err)
	}
	return newTransaction(date, rec[c.desc], amount), nil
}

func parseGenericDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range genericDateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parsing date %q: unrecognized format", s)
}
