// Package insights turns an expense history into short observations about
// spending behavior.
package insights

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/expenseiq/expenseiq/internal/aggregate"
	"github.com/expenseiq/expenseiq/internal/lexicon"
	"github.com/expenseiq/expenseiq/internal/model"
	"github.com/expenseiq/expenseiq/internal/money"
	"github.com/expenseiq/expenseiq/internal/random"
)

// MaxInsights caps the number of insights returned by Generate.
const MaxInsights = 5

// maxSavingTips caps saving-opportunity tips within one pool.
const maxSavingTips = 2

// recentWindowDays is the length of the "recent activity" window.
const recentWindowDays = 7

// Thresholds tune which alerts fire.
type Thresholds struct {
	HighSpending decimal.Decimal // monthly total above which an alert fires
	Saving       decimal.Decimal // per-category total above which a saving tip applies
}

// DefaultThresholds returns the stock alert levels.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighSpending: decimal.NewFromInt(1000),
		Saving:       decimal.NewFromInt(500),
	}
}

var onboarding = []model.Insight{
	{Icon: "🚀", Title: "Getting Started", Content: "Add some expenses to unlock powerful AI insights about your spending patterns!"},
	{Icon: "📊", Title: "Smart Analytics", Content: "Our AI will analyze your spending habits and provide personalized recommendations."},
	{Icon: "💡", Title: "Pro Tip", Content: "The more expenses you track, the smarter our insights become. Start with your daily purchases!"},
}

var categoryAdvice = map[model.Category]model.Insight{
	model.CategoryFood:          {Icon: "🍽️", Title: "Food Spending Insight", Content: "Consider meal planning and cooking at home more often to reduce dining expenses."},
	model.CategoryTransport:     {Icon: "🚗", Title: "Transport Optimization", Content: "Look into carpooling or public transport options to reduce transportation costs."},
	model.CategoryShopping:      {Icon: "🛒", Title: "Shopping Smart", Content: "Try creating shopping lists and comparing prices before making purchases."},
	model.CategoryEntertainment: {Icon: "🎭", Title: "Entertainment Balance", Content: "Look for free or low-cost entertainment options like parks or community events."},
}

var savingAdvice = map[model.Category]string{
	model.CategoryFood:          "🍳 Cook more meals at home to reduce food expenses",
	model.CategoryShopping:      "🏷️ Use coupon apps and compare prices before buying",
	model.CategoryEntertainment: "📺 Consider sharing streaming subscriptions with family",
	model.CategoryTransport:     "⛽ Track fuel efficiency and consider carpooling",
}

// Onboarding returns the fixed insights shown before any expense exists.
func Onboarding() []model.Insight {
	out := make([]model.Insight, len(onboarding))
	copy(out, onboarding)
	return out
}

// Generator builds insights. The random source only decides order and
// which candidates are cut.
type Generator struct {
	src        random.Source
	thresholds Thresholds
}

func NewGenerator(src random.Source, th Thresholds) *Generator {
	return &Generator{src: src, thresholds: th}
}

// Generate returns at most MaxInsights insights for expenses as of today.
func (g *Generator) Generate(expenses []model.Expense, today model.Date) []model.Insight {
	if len(expenses) == 0 {
		return Onboarding()
	}
	pool := g.Pool(expenses, today)
	g.src.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > MaxInsights {
		pool = pool[:MaxInsights]
	}
	return pool
}

// Pool returns every candidate insight in its unshuffled order.
func (g *Generator) Pool(expenses []model.Expense, today model.Date) []model.Insight {
	if len(expenses) == 0 {
		return Onboarding()
	}
	var pool []model.Insight
	pool = append(pool, g.spendingPatterns(expenses, today)...)
	pool = append(pool, g.categories(expenses)...)
	pool = append(pool, g.trends(expenses, today)...)
	pool = append(pool, g.budget(expenses, today)...)
	pool = append(pool, personalTips(len(expenses))...)
	return pool
}

func (g *Generator) spendingPatterns(expenses []model.Expense, today model.Date) []model.Insight {
	thisMonth := aggregate.Filter(expenses, aggregate.ThisMonth(today))
	if len(thisMonth) == 0 {
		return nil
	}
	total := aggregate.Total(thisMonth)
	out := []model.Insight{{
		Icon:    "📈",
		Title:   "Daily Spending Average",
		Content: fmt.Sprintf("You're spending an average of %s per day this month.", money.Format(aggregate.AverageDaily(thisMonth))),
	}}
	if total.GreaterThan(g.thresholds.HighSpending) {
		out = append(out, model.Insight{
			Icon:    "💰",
			Title:   "High Spending Alert",
			Content: fmt.Sprintf("You've spent %s this month. Consider reviewing your largest expenses.", money.Format(total)),
		})
	}
	lastMonth := aggregate.Filter(expenses, aggregate.LastMonth(today))
	if len(lastMonth) > 0 {
		cmp := aggregate.MonthOverMonth(total, aggregate.Total(lastMonth))
		icon := "📉"
		if cmp.Direction == aggregate.Up {
			icon = "📈"
		}
		out = append(out, model.Insight{
			Icon:    icon,
			Title:   "Monthly Trend",
			Content: fmt.Sprintf("Your spending is %d%% %s compared to last month.", cmp.PercentChange, cmp.Direction),
		})
	}
	return out
}

func (g *Generator) categories(expenses []model.Expense) []model.Insight {
	var out []model.Insight
	totals := aggregate.CategoryTotals(expenses)
	if top, ok := aggregate.TopCategory(totals); ok {
		pct := aggregate.SharePercent(totals.Get(top), aggregate.Total(expenses))
		out = append(out, model.Insight{
			Icon:    lexicon.Icon(top),
			Title:   "Top Spending Category",
			Content: fmt.Sprintf("%s accounts for %d%% of your total spending.", lexicon.Name(top), pct),
		})
		if advice, ok := categoryAdvice[top]; ok {
			out = append(out, advice)
		}
	}
	if unused := aggregate.UnusedCategories(totals); len(unused) > 0 {
		out = append(out, model.Insight{
			Icon:    "🎯",
			Title:   "Expense Tracking Tip",
			Content: fmt.Sprintf("You haven't tracked any %s expenses yet. Don't forget to log all spending!", lexicon.Name(unused[0])),
		})
	}
	return out
}

func (g *Generator) trends(expenses []model.Expense, today model.Date) []model.Insight {
	var out []model.Insight
	if best, ok := aggregate.HighestWeekday(expenses); ok {
		out = append(out, model.Insight{
			Icon:    "📅",
			Title:   "Spending Pattern",
			Content: fmt.Sprintf("You tend to spend the most on %ss. Average: %s", best.Day, money.Format(best.Average)),
		})
	}
	recent := aggregate.Filter(expenses, aggregate.LastNDays(today, recentWindowDays))
	if len(recent) > 0 {
		out = append(out, model.Insight{
			Icon:    "⏰",
			Title:   "Recent Activity",
			Content: fmt.Sprintf("You've logged %d expenses in the last %d days totaling %s.", len(recent), recentWindowDays, money.Format(aggregate.Total(recent))),
		})
	}
	return out
}

func (g *Generator) budget(expenses []model.Expense, today model.Date) []model.Insight {
	var out []model.Insight
	if aggregate.ShowProjection(today.Day()) {
		soFar := aggregate.TotalForPeriod(expenses, aggregate.ThisMonth(today))
		projected := aggregate.ProjectedMonthTotal(soFar, today.Day(), aggregate.DaysInMonth(today.Year(), today.Month()))
		out = append(out, model.Insight{
			Icon:    "🎯",
			Title:   "Monthly Projection",
			Content: fmt.Sprintf("Based on current spending, you're projected to spend %s this month.", money.Format(projected)),
		})
	}
	return append(out, g.savingTips(aggregate.CategoryTotals(expenses))...)
}

func (g *Generator) savingTips(totals aggregate.Totals) []model.Insight {
	var out []model.Insight
	for _, c := range totals.Categories() {
		if len(out) == maxSavingTips {
			break
		}
		advice, ok := savingAdvice[c]
		if !ok || !totals.Get(c).GreaterThan(g.thresholds.Saving) {
			continue
		}
		out = append(out, model.Insight{Icon: "💰", Title: "Saving Opportunity", Content: advice})
	}
	return out
}

func personalTips(count int) []model.Insight {
	return []model.Insight{
		{Icon: "💡", Title: "Smart Tip", Content: "Track recurring expenses like subscriptions to better understand your fixed costs."},
		{Icon: "🏆", Title: "Achievement Unlocked", Content: fmt.Sprintf("You've tracked %d expenses! Keep building this healthy financial habit.", count)},
		{Icon: "📱", Title: "Mobile Tip", Content: "Take photos of receipts right after purchases to never forget an expense!"},
		{Icon: "🔍", Title: "Analysis Ready", Content: "With more data, our AI can provide even more personalized insights about your spending habits."},
	}
}
