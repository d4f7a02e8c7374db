package model

import "time"

// Snapshot is a serializable document holding the whole expense history.
type Snapshot struct {
	Expenses      []Expense `json:"expenses"`
	ExportedAt    time.Time `json:"exportedAt"`
	FormatVersion string    `json:"formatVersion"`
}
