// Package aggregate computes read-only statistics over a slice of expenses.
// Every function rescans its input; nothing is cached.
package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/expenseiq/expenseiq/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Predicate selects expenses by date.
type Predicate func(model.Date) bool

// InMonth matches dates in the given calendar month.
func InMonth(year int, month time.Month) Predicate {
	return func(d model.Date) bool {
		return d.Year() == year && d.Month() == month
	}
}

// ThisMonth matches dates in today's calendar month.
func ThisMonth(today model.Date) Predicate {
	return InMonth(today.Year(), today.Month())
}

// LastMonth matches dates in the month before today's, crossing year
// boundaries.
func LastMonth(today model.Date) Predicate {
	first := model.NewDate(today.Year(), today.Month(), 1).AddDays(-1)
	return InMonth(first.Year(), first.Month())
}

// LastNDays matches the n calendar days ending today, inclusive.
func LastNDays(today model.Date, n int) Predicate {
	from := today.AddDays(-(n - 1))
	return func(d model.Date) bool {
		return !d.Before(from) && !d.After(today)
	}
}

// OnDate matches a single calendar date.
func OnDate(day model.Date) Predicate {
	return func(d model.Date) bool { return d.Same(day) }
}

// Filter returns the expenses whose date satisfies p, in input order.
func Filter(expenses []model.Expense, p Predicate) []model.Expense {
	var out []model.Expense
	for _, e := range expenses {
		if p(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// Total sums the amounts of expenses.
func Total(expenses []model.Expense) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}

// TotalForPeriod sums the amounts of expenses matching p.
func TotalForPeriod(expenses []model.Expense, p Predicate) decimal.Decimal {
	sum := decimal.Zero
	for _, e := range expenses {
		if p(e.Date) {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

// Totals maps categories to summed amounts and remembers the order in
// which each category was first seen.
type Totals struct {
	order  []model.Category
	amount map[model.Category]decimal.Decimal
}

// Get returns the total for c, zero when c has no activity.
func (t Totals) Get(c model.Category) decimal.Decimal {
	if v, ok := t.amount[c]; ok {
		return v
	}
	return decimal.Zero
}

// Has reports whether c has any recorded expense.
func (t Totals) Has(c model.Category) bool {
	_, ok := t.amount[c]
	return ok
}

// Categories returns the active categories in discovery order.
func (t Totals) Categories() []model.Category {
	out := make([]model.Category, len(t.order))
	copy(out, t.order)
	return out
}

// Len returns the number of active categories.
func (t Totals) Len() int { return len(t.order) }

// CategoryTotals sums amounts per category. Categories without expenses
// are omitted.
func CategoryTotals(expenses []model.Expense) Totals {
	t := Totals{amount: make(map[model.Category]decimal.Decimal)}
	for _, e := range expenses {
		if _, ok := t.amount[e.Category]; !ok {
			t.order = append(t.order, e.Category)
			t.amount[e.Category] = decimal.Zero
		}
		t.amount[e.Category] = t.amount[e.Category].Add(e.Amount)
	}
	return t
}

// TopCategory returns the category with the largest positive total. Ties
// go to the category listed first in model.Categories.
func TopCategory(t Totals) (model.Category, bool) {
	var (
		top   model.Category
		found bool
		max   = decimal.Zero
	)
	for _, c := range model.Categories() {
		v := t.Get(c)
		if v.GreaterThan(max) {
			top, max, found = c, v, true
		}
	}
	return top, found
}

// AverageDaily divides the total by the number of distinct dates present.
func AverageDaily(expenses []model.Expense) decimal.Decimal {
	days := make(map[model.Date]struct{})
	for _, e := range expenses {
		days[e.Date] = struct{}{}
	}
	return safeDiv(Total(expenses), decimal.NewFromInt(int64(len(days))))
}

// WeekdayAverage is the mean expense amount on one day of the week.
type WeekdayAverage struct {
	Day     time.Weekday
	Average decimal.Decimal
	Count   int
}

// WeekdayAverages returns per-weekday mean amounts, Sunday first. Days
// without expenses are omitted.
func WeekdayAverages(expenses []model.Expense) []WeekdayAverage {
	var (
		sums   [7]decimal.Decimal
		counts [7]int
	)
	for _, e := range expenses {
		wd := e.Date.Weekday()
		sums[wd] = sums[wd].Add(e.Amount)
		counts[wd]++
	}
	var out []WeekdayAverage
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if counts[wd] == 0 {
			continue
		}
		out = append(out, WeekdayAverage{
			Day:     wd,
			Average: sums[wd].Div(decimal.NewFromInt(int64(counts[wd]))),
			Count:   counts[wd],
		})
	}
	return out
}

// HighestWeekday returns the weekday with the strictly highest positive
// average; the earliest day in the week wins ties.
func HighestWeekday(expenses []model.Expense) (WeekdayAverage, bool) {
	var (
		best  WeekdayAverage
		found bool
	)
	for _, w := range WeekdayAverages(expenses) {
		if w.Average.GreaterThan(best.Average) {
			best, found = w, true
		}
	}
	return best, found
}

// Direction is the sign of a month-over-month change.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Comparison describes this month against last month.
type Comparison struct {
	Direction     Direction
	PercentChange int64
}

// MonthOverMonth compares two monthly totals. A zero last month counts
// as a 100% increase. Equal totals report down 0%.
func MonthOverMonth(this, last decimal.Decimal) Comparison {
	if last.IsZero() {
		return Comparison{Direction: Up, PercentChange: 100}
	}
	diff := this.Sub(last)
	pct := diff.Abs().Div(last).Mul(hundred).Round(0).IntPart()
	if diff.IsPositive() {
		return Comparison{Direction: Up, PercentChange: pct}
	}
	return Comparison{Direction: Down, PercentChange: pct}
}

// MinProjectionDay is the last day of the month on which a projection is
// still considered noise.
const MinProjectionDay = 7

// ProjectedMonthTotal extrapolates totalSoFar linearly to the whole month.
func ProjectedMonthTotal(totalSoFar decimal.Decimal, dayOfMonth, daysInMonth int) decimal.Decimal {
	return safeDiv(totalSoFar, decimal.NewFromInt(int64(dayOfMonth))).
		Mul(decimal.NewFromInt(int64(daysInMonth)))
}

// ShowProjection reports whether a projection should be surfaced.
func ShowProjection(dayOfMonth int) bool {
	return dayOfMonth > MinProjectionDay
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// SharePercent returns part as a whole-number percentage of whole.
func SharePercent(part, whole decimal.Decimal) int64 {
	return safeDiv(part, whole).Mul(hundred).Round(0).IntPart()
}

// UnusedCategories lists categories with no activity in lexicon order,
// excluding other.
func UnusedCategories(t Totals) []model.Category {
	var out []model.Category
	for _, c := range model.Categories() {
		if c == model.CategoryOther || t.Has(c) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func safeDiv(num, den decimal.Decimal) decimal.Decimal {
	if den.IsZero() {
		return decimal.Zero
	}
	return num.Div(den)
}
