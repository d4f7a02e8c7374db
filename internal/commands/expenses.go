package commands

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/expenseiq/expenseiq/internal/clock"
	"github.com/expenseiq/expenseiq/internal/lexicon"
	"github.com/expenseiq/expenseiq/internal/model"
	"github.com/expenseiq/expenseiq/internal/money"
	"github.com/expenseiq/expenseiq/internal/store"
	"github.com/expenseiq/expenseiq/internal/tracker"
)

func newAddCommand(opts *options) *cobra.Command {
	var date string
	var category string
	var receipt bool

	cmd := &cobra.Command{
		Use:   "add <description> <amount>",
		Short: "Record an expense",
		Long: "Record an expense. Without --category the description is " +
			"categorized automatically.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := parseNewExpense(args[0], args[1], date, category, receipt, opts.clock)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				e, err := a.tracker.AddExpense(cmd.Context(), in)
				if err != nil {
					return err
				}
				a.out.Success("Added %s (%s) as %s %s [%s]",
					e.Description, money.Format(e.Amount),
					lexicon.Icon(e.Category), lexicon.Name(e.Category), e.ID)
				a.commit(cmd.Context(), "add: %s %s", e.Description, money.Format(e.Amount))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "expense date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&category, "category", "", "category tag or name (default: automatic)")
	cmd.Flags().BoolVar(&receipt, "receipt", false, "mark a receipt as attached")

	return cmd
}

func parseNewExpense(description, amount, date, category string, receipt bool, c clock.Clock) (tracker.NewExpense, error) {
	in := tracker.NewExpense{Description: description, Receipt: receipt}

	amt, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(amount), money.Symbol))
	if err != nil {
		return in, fmt.Errorf("invalid amount %q", amount)
	}
	in.Amount = amt

	in.Date = clock.Today(c)
	if date != "" {
		d, err := model.ParseDate(date)
		if err != nil {
			return in, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", date)
		}
		in.Date = d
	}

	if category != "" {
		cat, err := lexicon.Parse(category)
		if err != nil {
			return in, err
		}
		in.Category = cat
	}
	return in, nil
}

func newDeleteCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				e, err := a.tracker.Get(args[0])
				if err != nil {
					return err
				}
				if err := a.tracker.DeleteExpense(cmd.Context(), e.ID); err != nil {
					return err
				}
				a.out.Success("Deleted %s (%s)", e.Description, money.Format(e.Amount))
				a.commit(cmd.Context(), "delete: %s %s", e.Description, money.Format(e.Amount))
				return nil
			})
		},
	}
}

func newListCommand(opts *options) *cobra.Command {
	var search string
	var category string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List expenses, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := store.Query{Search: search, Limit: limit}
			if category != "" {
				cat, err := lexicon.Parse(category)
				if err != nil {
					return err
				}
				q.Category = cat
			}
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			return opts.withApp(cmd, func(a *app) error {
				a.out.Expenses(a.tracker.List(q))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive description filter")
	cmd.Flags().StringVarP(&category, "category", "c", "", "only this category")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show at most n expenses (0 for all)")

	return cmd
}

func newSuggestCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <description>",
		Short: "Suggest a category for a description",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				s, ok := a.tracker.Suggestion(strings.Join(args, " "))
				if !ok {
					a.out.Muted("Description is too short to suggest a category.")
					return nil
				}
				a.out.Suggestion(s)
				return nil
			})
		},
	}
}
