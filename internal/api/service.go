package api

import (
	"context"

	"github.com/expenseiq/expenseiq/internal/chart"
	"github.com/expenseiq/expenseiq/internal/model"
	"github.com/expenseiq/expenseiq/internal/store"
	"github.com/expenseiq/expenseiq/internal/tracker"
)

// Service is the slice of the tracker the HTTP API needs.
type Service interface {
	AddExpense(ctx context.Context, in tracker.NewExpense) (model.Expense, error)
	DeleteExpense(ctx context.Context, expenseID string) error
	Get(expenseID string) (model.Expense, error)
	List(q store.Query) []model.Expense
	Suggestion(description string) (tracker.Suggestion, bool)
	DashboardSummary() tracker.Summary
	CategoryChartSeries() []chart.Point
	TrendChartSeries() []chart.Point
	Insights() []model.Insight
	ExportSnapshot() model.Snapshot
	ImportSnapshot(ctx context.Context, data []byte) (int, error)
}

var _ Service = (*tracker.Tracker)(nil)
