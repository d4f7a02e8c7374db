// Package tracker is the expense tracking facade used by the CLI and the
// HTTP API. It owns the in-memory store, persists every mutation and
// derives dashboards, charts and insights on demand.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/expenseiq/expenseiq/internal/activity"
	"github.com/expenseiq/expenseiq/internal/aggregate"
	"github.com/expenseiq/expenseiq/internal/categorizer"
	"github.com/expenseiq/expenseiq/internal/chart"
	"github.com/expenseiq/expenseiq/internal/clock"
	apperrors "github.com/expenseiq/expenseiq/internal/errors"
	"github.com/expenseiq/expenseiq/internal/id"
	"github.com/expenseiq/expenseiq/internal/insights"
	"github.com/expenseiq/expenseiq/internal/lexicon"
	"github.com/expenseiq/expenseiq/internal/logger"
	"github.com/expenseiq/expenseiq/internal/model"
	"github.com/expenseiq/expenseiq/internal/money"
	"github.com/expenseiq/expenseiq/internal/persist"
	"github.com/expenseiq/expenseiq/internal/random"
	"github.com/expenseiq/expenseiq/internal/snapshot"
	"github.com/expenseiq/expenseiq/internal/store"
	"github.com/expenseiq/expenseiq/internal/validator"
)

// Recorder appends to an activity history.
type Recorder interface {
	Record(entries ...activity.Entry) error
}

// Options wires a Tracker. Zero fields get working defaults.
type Options struct {
	KV         persist.KV
	Clock      clock.Clock
	Random     random.Source
	Notifier   Notifier
	Activity   Recorder
	Thresholds insights.Thresholds
	Logger     *zap.SugaredLogger
	NewID      func() string
}

// Tracker serializes all access to the expense store.
type Tracker struct {
	mu        sync.Mutex
	store     *store.Store
	kv        persist.KV
	clock     clock.Clock
	rnd       random.Source
	notifier  Notifier
	activity  Recorder
	generator *insights.Generator
	log       *zap.SugaredLogger
	newID     func() string
}

// Open builds a Tracker and loads saved expenses. Unreadable saved data
// yields an empty store and one warning; Open itself never fails.
func Open(ctx context.Context, opts Options) *Tracker {
	if opts.KV == nil {
		opts.KV = persist.NewMemoryKV()
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Random == nil {
		opts.Random = random.NewTimeSeeded()
	}
	if opts.Notifier == nil {
		opts.Notifier = discard{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}
	if opts.NewID == nil {
		opts.NewID = id.New
	}
	if opts.Thresholds.HighSpending.IsZero() && opts.Thresholds.Saving.IsZero() {
		opts.Thresholds = insights.DefaultThresholds()
	}

	t := &Tracker{
		kv:        opts.KV,
		clock:     opts.Clock,
		rnd:       opts.Random,
		notifier:  opts.Notifier,
		activity:  opts.Activity,
		generator: insights.NewGenerator(opts.Random, opts.Thresholds),
		log:       opts.Logger,
		newID:     opts.NewID,
	}
	t.store, _ = store.New(nil)
	t.load(ctx)
	return t
}

func (t *Tracker) load(ctx context.Context) {
	value, found, err := t.kv.Load(ctx, persist.ExpensesKey)
	if err != nil {
		t.warn(ctx, "Could not load saved expenses; starting empty", err)
		return
	}
	if !found {
		return
	}
	expenses, err := persist.DecodeExpenses(value)
	if err != nil {
		t.warn(ctx, "Saved expenses are unreadable; starting empty", err)
		return
	}
	if err := t.store.Replace(expenses); err != nil {
		t.warn(ctx, "Saved expenses are inconsistent; starting empty", err)
		return
	}
	t.log.Debugw("loaded expenses", "count", len(expenses), "key", persist.ExpensesKey)
}

// save persists the whole collection. Failure leaves memory authoritative
// and is reported once.
func (t *Tracker) save(ctx context.Context) {
	value, err := persist.EncodeExpenses(t.store.All())
	if err == nil {
		err = t.kv.Save(ctx, persist.ExpensesKey, value)
	}
	if err != nil {
		t.warn(ctx, "Failed to save data", err)
	}
}

// warn reports a degraded operation to the Notifier carried by ctx, or to
// the Tracker's own when ctx has none.
func (t *Tracker) warn(ctx context.Context, msg string, cause error) {
	err := apperrors.Wrap(apperrors.ErrPersistence, cause)
	t.log.Warnw(msg, "code", err.Code, "error", cause)
	n, ok := notifierFrom(ctx)
	if !ok {
		n = t.notifier
	}
	n.Notify(Notice{Level: LevelWarning, Message: msg, Err: err})
}

func (t *Tracker) record(entries ...activity.Entry) {
	if t.activity == nil {
		return
	}
	if err := t.activity.Record(entries...); err != nil {
		t.log.Warnw("recording activity", "error", err)
	}
}

// NewExpense carries user input for AddExpense. An empty Category asks
// the categorizer.
type NewExpense struct {
	Description string          `json:"description" validate:"notblank,max=200"`
	Amount      decimal.Decimal `json:"amount" validate:"gt=0"`
	Date        model.Date      `json:"date" validate:"required"`
	Category    model.Category  `json:"category" validate:"omitempty,category"`
	Receipt     bool            `json:"receipt"`
}

// AddExpense validates in and stores it at the front of the collection.
func (t *Tracker) AddExpense(ctx context.Context, in NewExpense) (model.Expense, error) {
	if err := validator.Struct(in); err != nil {
		return model.Expense{}, apperrors.WrapWithMessage(apperrors.ErrValidation, err.Error(), err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	e := model.Expense{
		ID:          t.newID(),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Date:        in.Date,
		Category:    in.Category,
		Receipt:     in.Receipt,
		Timestamp:   t.clock.Now(),
	}
	if e.Category == "" {
		e.Category = categorizer.Categorize(e.Description)
	}
	if err := t.store.Prepend(e); err != nil {
		return model.Expense{}, apperrors.Wrap(apperrors.ErrInternal, err)
	}
	t.save(ctx)
	t.record(activity.Entry{
		Timestamp: e.Timestamp,
		Action:    activity.ActionAdd,
		ExpenseID: e.ID,
		Details:   fmt.Sprintf("%s, %s, %s", e.Description, money.Format(e.Amount), e.Category),
	})
	t.log.Infow("expense added", "expense_id", e.ID, "category", e.Category)
	return e, nil
}

// AddExpenses stores pre-built expenses, such as rows from a bank export,
// all or nothing. source names their origin in the activity log.
func (t *Tracker) AddExpenses(ctx context.Context, expenses []model.Expense, source string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(expenses) == 0 {
		return 0, nil
	}
	next := t.store.All()
	for i, e := range expenses {
		if err := e.Validate(); err != nil {
			return 0, apperrors.WrapWithMessage(apperrors.ErrValidation, fmt.Sprintf("expense %d: %v", i, err), err)
		}
	}
	for _, e := range expenses {
		next = append([]model.Expense{e}, next...)
	}
	if err := t.store.Replace(next); err != nil {
		return 0, apperrors.WrapWithMessage(apperrors.ErrValidation, err.Error(), err)
	}
	t.save(ctx)
	t.record(activity.Entry{
		Timestamp: t.clock.Now(),
		Action:    activity.ActionIngest,
		Details:   fmt.Sprintf("%d expenses from %s totaling %s", len(expenses), source, money.Format(aggregate.Total(expenses))),
	})
	t.log.Infow("expenses ingested", "count", len(expenses), "source", source)
	return len(expenses), nil
}

// DeleteExpense removes the expense with the given id. A missing id
// leaves the store unchanged and returns ErrNotFound.
func (t *Tracker) DeleteExpense(ctx context.Context, expenseID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed, err := t.store.Remove(expenseID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrNotFound, err)
	}
	t.save(ctx)
	t.record(activity.Entry{
		Timestamp: t.clock.Now(),
		Action:    activity.ActionDelete,
		ExpenseID: removed.ID,
		Details:   fmt.Sprintf("%s, %s", removed.Description, money.Format(removed.Amount)),
	})
	t.log.Infow("expense deleted", "expense_id", removed.ID)
	return nil
}

// SuggestCategory returns the categorizer's pick for description.
func (t *Tracker) SuggestCategory(description string) model.Category {
	return categorizer.Categorize(description)
}

// Suggestion is an advisory category with a display message.
type Suggestion struct {
	Category model.Category `json:"category"`
	Name     string         `json:"name"`
	Icon     string         `json:"icon"`
	Message  string         `json:"message"`
}

// Suggestion returns an advisory category once description is long
// enough to be meaningful.
func (t *Tracker) Suggestion(description string) (Suggestion, bool) {
	if !categorizer.ShouldSuggest(description) {
		return Suggestion{}, false
	}
	c := categorizer.Categorize(description)

	t.mu.Lock()
	msg := categorizer.SuggestionMessage(t.rnd, c)
	t.mu.Unlock()

	return Suggestion{Category: c, Name: lexicon.Name(c), Icon: lexicon.Icon(c), Message: msg}, true
}

// Summary is the dashboard headline for the current month.
type Summary struct {
	TotalThisMonth            decimal.Decimal
	TransactionCountThisMonth int
	TopCategoryThisMonth      model.Category // empty when nothing was spent
}

func (t *Tracker) DashboardSummary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	thisMonth := aggregate.Filter(t.store.All(), aggregate.ThisMonth(t.today()))
	s := Summary{
		TotalThisMonth:            aggregate.Total(thisMonth),
		TransactionCountThisMonth: len(thisMonth),
	}
	if top, ok := aggregate.TopCategory(aggregate.CategoryTotals(thisMonth)); ok {
		s.TopCategoryThisMonth = top
	}
	return s
}

func (t *Tracker) CategoryChartSeries() []chart.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return chart.CategorySeries(t.store.All())
}

func (t *Tracker) TrendChartSeries() []chart.Point {
	t.mu.Lock()
	defer t.mu.Unlock()
	return chart.TrendSeries(t.store.All(), t.today())
}

// Insights returns at most insights.MaxInsights observations.
func (t *Tracker) Insights() []model.Insight {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.generator.Generate(t.store.All(), t.today())
}

// ExportSnapshot returns the whole collection as an export document.
func (t *Tracker) ExportSnapshot() model.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return snapshot.Build(t.store.All(), t.clock.Now())
}

// ImportSnapshot replaces the collection with the expenses in data. On any
// format problem the existing data is untouched and ErrImportFormat is
// returned.
func (t *Tracker) ImportSnapshot(ctx context.Context, data []byte) (int, error) {
	doc, err := snapshot.Decode(data)
	if err != nil {
		return 0, apperrors.WrapWithMessage(apperrors.ErrImportFormat, "Error importing data: "+err.Error(), err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.store.Replace(doc.Expenses); err != nil {
		return 0, apperrors.Wrap(apperrors.ErrImportFormat, err)
	}
	t.save(ctx)
	t.record(activity.Entry{
		Timestamp: t.clock.Now(),
		Action:    activity.ActionImport,
		Details:   fmt.Sprintf("%d expenses, format %s", len(doc.Expenses), doc.FormatVersion),
	})
	t.log.Infow("snapshot imported", "count", len(doc.Expenses), "format_version", doc.FormatVersion)
	return len(doc.Expenses), nil
}

// List returns expenses matching q, newest first.
func (t *Tracker) List(q store.Query) []model.Expense {
	t.mu.Lock()
	defer t.mu.Unlock()
	return store.Filter(t.store.All(), q)
}

// Expenses returns a copy of the full collection.
func (t *Tracker) Expenses() []model.Expense {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.All()
}

// Get looks up one expense.
func (t *Tracker) Get(expenseID string) (model.Expense, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.store.Get(expenseID)
	if !ok {
		return model.Expense{}, apperrors.Wrap(apperrors.ErrNotFound, fmt.Errorf("%w: %s", store.ErrNotFound, expenseID))
	}
	return e, nil
}

// Revision changes whenever the collection does.
func (t *Tracker) Revision() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Revision()
}

// Today is the tracker clock's calendar date.
func (t *Tracker) Today() model.Date {
	return t.today()
}

func (t *Tracker) today() model.Date {
	return clock.Today(t.clock)
}
