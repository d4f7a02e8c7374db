package snapshot

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseiq/expenseiq/internal/model"
)

// CSVHeader is the header row of a CSV export.
const CSVHeader = "id,date,description,category,amount,receipt,timestamp"

const (
	numFields    = 7
	colID        = 0
	colDate      = 1
	colDesc      = 2
	colCategory  = 3
	colAmount    = 4
	colReceipt   = 5
	colTimestamp = 6
)

// WriteCSV writes expenses with a header row.
func WriteCSV(w io.Writer, expenses []model.Expense) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(CSVHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, e := range expenses {
		if err := cw.Write(MarshalExpense(e)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV reads expenses written by WriteCSV.
func ReadCSV(r io.Reader) ([]model.Expense, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading expense CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var out []model.Expense
	for i, rec := range records[1:] {
		e, err := UnmarshalExpense(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// MarshalExpense converts an expense to a CSV row.
func MarshalExpense(e model.Expense) []string {
	row := make([]string, numFields)
	row[colID] = e.ID
	row[colDate] = e.Date.String()
	row[colDesc] = e.Description
	row[colCategory] = string(e.Category)
	row[colAmount] = e.Amount.StringFixed(2)
	if e.Receipt {
		row[colReceipt] = model.ReceiptUploaded
	}
	if !e.Timestamp.IsZero() {
		row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	}
	return row
}

// UnmarshalExpense converts a CSV row to an expense.
func UnmarshalExpense(record []string) (model.Expense, error) {
	if len(record) != numFields {
		return model.Expense{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := model.ParseDate(record[colDate])
	if err != nil {
		return model.Expense{}, err
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}
	var ts time.Time
	if record[colTimestamp] != "" {
		ts, err = time.Parse(time.RFC3339, record[colTimestamp])
		if err != nil {
			return model.Expense{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
		}
	}

	return model.Expense{
		ID:          record[colID],
		Date:        date,
		Description: record[colDesc],
		Category:    model.Category(record[colCategory]),
		Amount:      amount,
		Receipt:     record[colReceipt] != "",
		Timestamp:   ts,
	}, nil
}
