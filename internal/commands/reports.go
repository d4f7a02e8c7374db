package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/expenseiq/expenseiq/internal/chart"
	"github.com/expenseiq/expenseiq/internal/render"
)

const (
	categoryChartTitle = "Spending by category"
	trendChartTitle    = "Last 7 days"
)

func newDashboardCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show this month's totals and both charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				a.out.Summary(a.tracker.DashboardSummary())
				a.out.Bars(categoryChartTitle, a.tracker.CategoryChartSeries())
				a.out.Bars(trendChartTitle, a.tracker.TrendChartSeries())
				return nil
			})
		},
	}
}

func newInsightsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show spending insights and tips",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(a *app) error {
				a.out.Insights(a.tracker.Insights())
				return nil
			})
		},
	}
}

func newChartCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Draw spending charts",
	}

	series := func(use, short, title string, fn func(a *app) []chart.Point) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return opts.withApp(cmd, func(a *app) error {
					a.out.Bars(title, fn(a))
					return nil
				})
			},
		}
	}

	cmd.AddCommand(
		series("category", "Total spending per category", categoryChartTitle,
			func(a *app) []chart.Point { return a.tracker.CategoryChartSeries() }),
		series("trend", "Daily spending over the last 7 days", trendChartTitle,
			func(a *app) []chart.Point { return a.tracker.TrendChartSeries() }),
	)
	return cmd
}

func newCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List the categories and their keywords",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			render.New(cmd.OutOrStdout()).Categories()
			return nil
		},
	}
}

func newHistoryCommand(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the activity log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must not be negative")
			}
			return opts.withApp(cmd, func(a *app) error {
				entries, err := a.activity.Read()
				if err != nil {
					return err
				}
				if limit > 0 && len(entries) > limit {
					entries = entries[len(entries)-limit:]
				}
				a.out.Activity(entries)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "show only the last n entries (0 for all)")
	return cmd
}
