package commands

import (
	"github.com/spf13/cobra"

	"github.com/expenseiq/expenseiq/internal/buildinfo"
	"github.com/expenseiq/expenseiq/internal/clock"
	"github.com/expenseiq/expenseiq/internal/id"
	"github.com/expenseiq/expenseiq/internal/random"
)

// options carries the non-deterministic inputs of every command.
type options struct {
	clock  clock.Clock
	random random.Source
	newID  func() string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&options{
		clock:  clock.System{},
		random: random.NewTimeSeeded(),
		newID:  id.New,
	})
}

func newRootCommand(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "expenseiq",
		Short:   "Personal expense tracking with automatic categorization",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("dir", ".", "project directory containing expenseiq.yaml")

	rootCmd.AddCommand(
		newInitCommand(),
		newAddCommand(opts),
		newDeleteCommand(opts),
		newListCommand(opts),
		newSuggestCommand(opts),
		newDashboardCommand(opts),
		newInsightsCommand(opts),
		newChartCommand(opts),
		newCategoriesCommand(),
		newExportCommand(opts),
		newImportCommand(opts),
		newIngestCommand(opts),
		newHistoryCommand(opts),
		newServeCommand(opts),
	)

	return rootCmd
}
