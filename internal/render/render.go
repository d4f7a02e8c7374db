// Package render prints tracker data to a terminal with lipgloss.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/expenseiq/expenseiq/internal/activity"
	"github.com/expenseiq/expenseiq/internal/chart"
	"github.com/expenseiq/expenseiq/internal/lexicon"
	"github.com/expenseiq/expenseiq/internal/model"
	"github.com/expenseiq/expenseiq/internal/money"
	"github.com/expenseiq/expenseiq/internal/tracker"
)

// barWidth is the length of the longest chart bar in cells.
const barWidth = 30

type Styles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Muted   lipgloss.Style
	Card    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Border  lipgloss.Style
}

func defaultStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa")),
		Label:   r.NewStyle().Foreground(lipgloss.Color("#bac2de")),
		Value:   r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("#6c7086")),
		Card:    r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2),
		Success: r.NewStyle().Foreground(lipgloss.Color("#a6e3a1")),
		Warning: r.NewStyle().Foreground(lipgloss.Color("#f9e2af")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("#f38ba8")).Bold(true),
		Border:  r.NewStyle().Foreground(lipgloss.Color("#585b70")),
	}
}

// Printer writes styled output to one writer. Color is used only when the
// writer is a capable terminal.
type Printer struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	Styles   Styles
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{w: w, renderer: r, Styles: defaultStyles(r)}
}

func (p *Printer) println(s string) {
	fmt.Fprintln(p.w, s)
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	p.println(p.Styles.Success.Render("✓ " + fmt.Sprintf(format, args...)))
}

// Muted prints a de-emphasized line.
func (p *Printer) Muted(format string, args ...any) {
	p.println(p.Styles.Muted.Render(fmt.Sprintf(format, args...)))
}

// Notice prints a tracker notice.
func (p *Printer) Notice(n tracker.Notice) {
	style := p.Styles.Warning
	prefix := "! "
	if n.Level == tracker.LevelError {
		style = p.Styles.Error
		prefix = "✗ "
	}
	p.println(style.Render(prefix + n.Message))
}

// Summary prints the three dashboard cards side by side.
func (p *Printer) Summary(s tracker.Summary) {
	top := "None"
	if s.TopCategoryThisMonth != "" {
		top = lexicon.Icon(s.TopCategoryThisMonth) + " " + lexicon.Name(s.TopCategoryThisMonth)
	}
	cards := []string{
		p.card("Total Spent", money.Format(s.TotalThisMonth)),
		p.card("Transactions", fmt.Sprintf("%d", s.TransactionCountThisMonth)),
		p.card("Top Category", top),
	}
	p.println(p.Styles.Title.Render("This month"))
	p.println(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
}

func (p *Printer) card(label, value string) string {
	return p.Styles.Card.Render(p.Styles.Label.Render(label) + "\n" + p.Styles.Value.Render(value))
}

// Insights prints one block per insight.
func (p *Printer) Insights(insights []model.Insight) {
	p.println(p.Styles.Title.Render("AI Insights"))
	for _, in := range insights {
		p.println(in.Icon + " " + p.Styles.Value.Render(in.Title))
		p.println("   " + in.Content)
	}
}

// Expenses prints a table of expenses.
func (p *Printer) Expenses(expenses []model.Expense) {
	if len(expenses) == 0 {
		p.println(p.Styles.Muted.Render("No expenses found."))
		return
	}
	rows := make([][]string, 0, len(expenses))
	total := decimal.Zero
	for _, e := range expenses {
		receipt := ""
		if e.Receipt {
			receipt = "📎"
		}
		rows = append(rows, []string{
			e.Date.String(),
			e.Description,
			lexicon.Icon(e.Category) + " " + lexicon.Name(e.Category),
			money.Format(e.Amount),
			receipt,
			e.ID,
		})
		total = total.Add(e.Amount)
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.Styles.Border).
		Headers("DATE", "DESCRIPTION", "CATEGORY", "AMOUNT", "", "ID").
		Rows(rows...)
	p.println(t.Render())
	p.println(p.Styles.Muted.Render(fmt.Sprintf("%d expenses, %s", len(expenses), money.Format(total))))
}

// Bars prints a horizontal bar chart scaled to the largest value.
func (p *Printer) Bars(title string, points []chart.Point) {
	p.println(p.Styles.Title.Render(title))
	if len(points) == 0 {
		p.println(p.Styles.Muted.Render("No data yet."))
		return
	}
	labelWidth := 0
	peak := decimal.Zero
	for _, pt := range points {
		labelWidth = max(labelWidth, lipgloss.Width(pt.Label))
		if pt.Value.GreaterThan(peak) {
			peak = pt.Value
		}
	}
	for _, pt := range points {
		style := p.renderer.NewStyle()
		if pt.Color != "" {
			style = style.Foreground(lipgloss.Color(pt.Color))
		} else {
			style = style.Foreground(lipgloss.Color("#89b4fa"))
		}
		bar := style.Render(strings.Repeat("█", barLength(pt.Value, peak)))
		label := p.Styles.Label.Render(pt.Label + strings.Repeat(" ", labelWidth-lipgloss.Width(pt.Label)))
		p.println(fmt.Sprintf("%s │ %s %s", label, bar, money.Format(pt.Value)))
	}
}

func barLength(v, peak decimal.Decimal) int {
	if peak.IsZero() || !v.IsPositive() {
		return 0
	}
	n := int(v.Div(peak).Mul(decimal.NewFromInt(barWidth)).Round(0).IntPart())
	if n == 0 {
		n = 1
	}
	return n
}

// Suggestion prints an advisory category message.
func (p *Printer) Suggestion(s tracker.Suggestion) {
	p.println(s.Message)
	p.println(p.Styles.Muted.Render("category: " + string(s.Category)))
}

// Categories prints the category lexicon.
func (p *Printer) Categories() {
	rows := make([][]string, 0, len(lexicon.All()))
	for _, e := range lexicon.All() {
		keywords := strings.Join(e.Keywords, ", ")
		if len(keywords) > 48 {
			keywords = keywords[:45] + "..."
		}
		rows = append(rows, []string{string(e.Category), e.Icon + " " + e.Name, e.Color, keywords})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.Styles.Border).
		Headers("TAG", "NAME", "COLOR", "KEYWORDS").
		Rows(rows...)
	p.println(t.Render())
}

// Activity prints activity log entries, oldest first.
func (p *Printer) Activity(entries []activity.Entry) {
	if len(entries) == 0 {
		p.println(p.Styles.Muted.Render("No activity recorded."))
		return
	}
	for _, e := range entries {
		p.println(fmt.Sprintf("%s  %-7s %s %s",
			p.Styles.Muted.Render(e.Timestamp.Local().Format("2006-01-02 15:04")),
			string(e.Action),
			e.Details,
			p.Styles.Muted.Render(e.ExpenseID),
		))
	}
}
