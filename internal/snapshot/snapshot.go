// Package snapshot reads and writes portable export documents.
package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/expenseiq/expenseiq/internal/model"
)

// FormatVersion is written into every export.
const FormatVersion = "1.0"

// supportedMajor is the only major format version Decode accepts.
const supportedMajor = "1"

// Build wraps expenses in an export document stamped with now.
func Build(expenses []model.Expense, now time.Time) model.Snapshot {
	out := make([]model.Expense, len(expenses))
	copy(out, expenses)
	return model.Snapshot{
		Expenses:      out,
		ExportedAt:    now.UTC(),
		FormatVersion: FormatVersion,
	}
}

// Encode renders s as indented JSON.
func Encode(s model.Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return append(data, '\n'), nil
}

// document accepts both current and legacy field names.
type document struct {
	Expenses      *[]json.RawMessage `json:"expenses"`
	ExportedAt    *time.Time         `json:"exportedAt"`
	ExportDate    *time.Time         `json:"exportDate"`
	FormatVersion string             `json:"formatVersion"`
	Version       string             `json:"version"`
}

// FormatError describes why a document was rejected.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return e.Reason + ": " + e.Err.Error()
	}
	return e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// Decode parses an export document. It fails with *FormatError unless the
// document is a supported version holding a sequence of valid expenses
// with unique ids.
func Decode(data []byte) (model.Snapshot, error) {
	var doc document
	if err := json.Unmarshal(bytes.TrimSpace(data), &doc); err != nil {
		return model.Snapshot{}, &FormatError{Reason: "document is not a JSON object", Err: err}
	}
	if doc.Expenses == nil {
		return model.Snapshot{}, &FormatError{Reason: "document has no expenses array"}
	}

	version := doc.FormatVersion
	if version == "" {
		version = doc.Version
	}
	if version != "" {
		major, _, _ := strings.Cut(version, ".")
		if major != supportedMajor {
			return model.Snapshot{}, &FormatError{Reason: fmt.Sprintf("unsupported format version %q", version)}
		}
	}

	expenses := make([]model.Expense, 0, len(*doc.Expenses))
	seen := make(map[string]struct{}, len(*doc.Expenses))
	for i, raw := range *doc.Expenses {
		var e model.Expense
		if err := json.Unmarshal(raw, &e); err != nil {
			return model.Snapshot{}, &FormatError{Reason: fmt.Sprintf("expense %d is malformed", i), Err: err}
		}
		if err := e.Validate(); err != nil {
			return model.Snapshot{}, &FormatError{Reason: fmt.Sprintf("expense %d is invalid", i), Err: err}
		}
		if _, dup := seen[e.ID]; dup {
			return model.Snapshot{}, &FormatError{Reason: fmt.Sprintf("expense %d repeats id %q", i, e.ID)}
		}
		seen[e.ID] = struct{}{}
		expenses = append(expenses, e)
	}

	s := model.Snapshot{Expenses: expenses, FormatVersion: version}
	switch {
	case doc.ExportedAt != nil:
		s.ExportedAt = *doc.ExportedAt
	case doc.ExportDate != nil:
		s.ExportedAt = *doc.ExportDate
	}
	return s, nil
}
