package tracker

import (
	"github.com/expenseiq/expenseiq/internal/model"
	"github.com/expenseiq/expenseiq/internal/snapshot"
)

func encodeSnapshot(s model.Snapshot) ([]byte, error) {
	return snapshot.Encode(s)
}
