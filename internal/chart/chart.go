// Package chart shapes aggregates into series for plotting.
package chart

import (
	"github.com/shopspring/decimal"

	"github.com/expenseiq/expenseiq/internal/aggregate"
	"github.com/expenseiq/expenseiq/internal/lexicon"
	"github.com/expenseiq/expenseiq/internal/model"
)

// TrendDays is the length of the trend series.
const TrendDays = 7

// LabelLayout formats trend labels, e.g. "Jan 2".
const LabelLayout = "Jan 2"

type Point struct {
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
	Color string          `json:"color,omitempty"`
	Date  model.Date      `json:"date,omitzero"`
}

// CategorySeries returns one point per active category in the order the
// categories first appear in expenses.
func CategorySeries(expenses []model.Expense) []Point {
	totals := aggregate.CategoryTotals(expenses)
	out := make([]Point, 0, totals.Len())
	for _, c := range totals.Categories() {
		out = append(out, Point{
			Label: lexicon.Name(c),
			Value: totals.Get(c),
			Color: lexicon.Color(c),
		})
	}
	return out
}

// TrendSeries returns exactly TrendDays points, oldest first, ending today.
func TrendSeries(expenses []model.Expense, today model.Date) []Point {
	out := make([]Point, 0, TrendDays)
	for i := TrendDays - 1; i >= 0; i-- {
		d := today.AddDays(-i)
		out = append(out, Point{
			Label: d.Format(LabelLayout),
			Value: aggregate.TotalForPeriod(expenses, aggregate.OnDate(d)),
			Date:  d,
		})
	}
	return out
}
