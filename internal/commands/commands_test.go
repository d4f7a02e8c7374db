package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/expenseiq/expenseiq/internal/clock"
	"github.com/expenseiq/expenseiq/internal/config"
	"github.com/expenseiq/expenseiq/internal/importer"
	"github.com/expenseiq/expenseiq/internal/model"
	"github.com/expenseiq/expenseiq/internal/persist"
	"github.com/expenseiq/expenseiq/internal/random"
	"github.com/expenseiq/expenseiq/internal/snapshot"
)

var now = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

func testOptions() *options {
	n := 0
	return &options{
		clock:  clock.Fixed{T: now},
		random: random.New(1),
		newID:  func() string { n++; return fmt.Sprintf("exp-%03d", n) },
	}
}

type result struct {
	out    string
	errOut string
	err    error
}

func runWith(t *testing.T, opts *options, args ...string) result {
	t.Helper()
	cmd := newRootCommand(opts)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

// project initializes a project in a temp dir and returns a runner bound to it.
func project(t *testing.T, initArgs ...string) (string, func(args ...string) result) {
	t.Helper()
	dir := t.TempDir()
	opts := testOptions()
	r := runWith(t, opts, append([]string{"init", dir}, initArgs...)...)
	require.NoError(t, r.err, r.errOut)
	return dir, func(args ...string) result {
		t.Helper()
		return runWith(t, opts, append(args, "--dir", dir)...)
	}
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	r := runWith(t, testOptions(), "init", dir)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Initialized ExpenseIQ project at "+dir)

	for _, d := range []string{"data", "data/logs", "data/import", "data/import/processed"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.BackendFile, cfg.Storage.Backend)
	assert.False(t, cfg.Git.AutoCommit)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	assert.True(t, os.IsNotExist(err), "git is opt-in")
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available, skipping")
	}
}

func lastCommit(t *testing.T, dir string) string {
	t.Helper()
	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	return strings.TrimSpace(string(out))
}

func TestInit_GitCommitsEveryChange(t *testing.T) {
	requireGit(t)
	dir, run := project(t, "--git")
	assert.Equal(t, "init: ExpenseIQ project", lastCommit(t, dir))

	require.NoError(t, run("add", "Coffee", "3").err)
	assert.Equal(t, "add: Coffee $3.00", lastCommit(t, dir))

	require.NoError(t, run("delete", "exp-001").err)
	assert.Equal(t, "delete: Coffee $3.00", lastCommit(t, dir))

	r := run("list")
	require.NoError(t, r.err)
	assert.Equal(t, "delete: Coffee $3.00", lastCommit(t, dir), "reads do not commit")
}

func TestInit_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, runWith(t, testOptions(), "init", dir).err)

	r := runWith(t, testOptions(), "init", dir)
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "already exists")

	require.NoError(t, runWith(t, testOptions(), "init", dir, "--force", "--backend", "sqlite").err)
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, config.BackendSQLite, cfg.Storage.Backend)
}

func TestInit_RejectsUnknownBackend(t *testing.T) {
	r := runWith(t, testOptions(), "init", t.TempDir(), "--backend", "s3")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), `storage.backend must be "file" or "sqlite"`)
}

func TestAddAndList(t *testing.T) {
	dir, run := project(t)

	r := run("add", "Starbucks latte", "4.75", "--date", "2024-03-14")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Added Starbucks latte ($4.75) as 🍔 Food & Dining [exp-001]")

	r = run("add", "Monthly rent", "$1,200", "--category", "bills")
	require.Error(t, r.err, "thousands separators are not accepted")

	r = run("add", "Monthly rent", "1200", "--category", "Bills & Utilities", "--receipt")
	require.NoError(t, r.err, r.errOut)

	r = run("list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Starbucks latte")
	assert.Contains(t, r.out, "Monthly rent")
	assert.Contains(t, r.out, "2 expenses, $1,204.75")
	assert.Less(t, strings.Index(r.out, "Monthly rent"), strings.Index(r.out, "Starbucks latte"), "newest first")

	r = run("list", "--category", "food")
	require.NoError(t, r.err)
	assert.NotContains(t, r.out, "Monthly rent")
	assert.Contains(t, r.out, "1 expenses, $4.75")

	r = run("list", "--search", "RENT", "-n", "1")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "1 expenses, $1,200.00")

	saved, err := os.ReadFile(persist.NewFileKV(filepath.Join(dir, "data")).Path(persist.ExpensesKey))
	require.NoError(t, err)
	expenses, err := persist.DecodeExpenses(string(saved))
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, model.NewDate(2024, time.March, 15), expenses[0].Date, "date defaults to today")
	assert.True(t, expenses[0].Receipt)
}

func TestAdd_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		msg  string
	}{
		{"bad amount", []string{"add", "coffee", "abc"}, `invalid amount "abc"`},
		{"zero amount", []string{"add", "coffee", "0"}, "amount must be greater than 0"},
		{"bad date", []string{"add", "coffee", "3", "--date", "15/03/2024"}, `invalid date "15/03/2024"`},
		{"category typo", []string{"add", "coffee", "3", "--category", "fod"}, `unknown category "fod" (did you mean "food"?)`},
		{"too many args", []string{"add", "coffee", "3", "extra"}, "accepts 2 arg(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, run := project(t)
			r := run(tt.args...)
			require.Error(t, r.err)
			assert.Contains(t, r.err.Error(), tt.msg)

			list := run("list")
			require.NoError(t, list.err)
			assert.Contains(t, list.out, "No expenses found.")
		})
	}
}

func TestDelete(t *testing.T) {
	_, run := project(t)
	require.NoError(t, run("add", "Cinema tickets", "24", "--date", "2024-03-10").err)

	r := run("delete", "exp-001")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Deleted Cinema tickets ($24.00)")

	r = run("delete", "exp-001")
	require.Error(t, r.err)
	assert.Equal(t, "Expense not found", r.err.Error())
}

func TestSuggest(t *testing.T) {
	_, run := project(t)

	r := run("suggest", "uber", "ride", "home")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Transportation")
	assert.Contains(t, r.out, "category: transport")

	r = run("suggest", "bus")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "too short")
}

func TestDashboardAndCharts(t *testing.T) {
	_, run := project(t)
	require.NoError(t, run("add", "Pizza dinner", "30", "--date", "2024-03-15").err)
	require.NoError(t, run("add", "Taxi", "12.5", "--date", "2024-03-11").err)
	require.NoError(t, run("add", "Old flight", "300", "--date", "2024-02-02").err)

	r := run("dashboard")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Total Spent")
	assert.Contains(t, r.out, "$42.50")
	assert.Contains(t, r.out, "Food & Dining")
	assert.Contains(t, r.out, "Spending by category")
	assert.Contains(t, r.out, "Last 7 days")

	r = run("chart", "trend")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Mar 9")
	assert.Contains(t, r.out, "Mar 15")
	assert.NotContains(t, r.out, "Mar 8")
	assert.Contains(t, r.out, "$30.00")

	r = run("chart", "category")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Transportation")
	assert.Contains(t, r.out, "$312.50")
}

func TestInsights(t *testing.T) {
	_, run := project(t)

	r := run("insights")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Getting Started")

	require.NoError(t, run("add", "Groceries", "1500", "--date", "2024-03-03").err)
	r = run("insights")
	require.NoError(t, r.err)
	assert.NotContains(t, r.out, "Getting Started")
}

func TestCategories(t *testing.T) {
	r := runWith(t, testOptions(), "categories")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "TAG")
	assert.Contains(t, r.out, "Bills & Utilities")
	assert.Contains(t, r.out, "#9966FF")
}

func TestExportImport(t *testing.T) {
	_, run := project(t)
	require.NoError(t, run("add", "Hotel booking", "210", "--date", "2024-03-08").err)
	require.NoError(t, run("add", "Gym membership", "40", "--date", "2024-03-09").err)

	r := run("export")
	require.NoError(t, r.err)
	doc, err := snapshot.Decode([]byte(r.out))
	require.NoError(t, err)
	assert.Len(t, doc.Expenses, 2)
	assert.Equal(t, snapshot.FormatVersion, doc.FormatVersion)

	jsonPath := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(r.out), 0o644))

	csvPath := filepath.Join(t.TempDir(), "backup.csv")
	r = run("export", "--format", "csv", "-o", csvPath)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Exported 2 expenses to "+csvPath)
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), snapshot.CSVHeader+"\n"))

	for _, path := range []string{jsonPath, csvPath} {
		t.Run(filepath.Ext(path), func(t *testing.T) {
			_, other := project(t)
			require.NoError(t, other("add", "to be replaced", "1").err)

			r := other("import", path)
			require.NoError(t, r.err, r.errOut)
			assert.Contains(t, r.out, "Imported 2 expenses")

			list := other("list")
			require.NoError(t, list.err)
			assert.Contains(t, list.out, "Hotel booking")
			assert.NotContains(t, list.out, "to be replaced")
		})
	}
}

func TestImport_InvalidLeavesDataAlone(t *testing.T) {
	_, run := project(t)
	require.NoError(t, run("add", "Coffee", "3").err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"expenses": "nope"}`), 0o644))

	r := run("import", bad)
	require.Error(t, r.err)
	assert.True(t, strings.HasPrefix(r.err.Error(), "Error importing data: "))

	list := run("list")
	require.NoError(t, list.err)
	assert.Contains(t, list.out, "Coffee")
}

func TestExport_UnknownFormat(t *testing.T) {
	_, run := project(t)
	r := run("export", "--format", "xml")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), `unknown export format "xml"`)
}

func TestIngest(t *testing.T) {
	dir, run := project(t)

	r := run("ingest")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "No CSV files")

	src, err := os.ReadFile(filepath.Join("..", "importer", "testdata", "chase_checking.csv"))
	require.NoError(t, err)
	importDir := filepath.Join(dir, "data", "import")
	require.NoError(t, os.WriteFile(filepath.Join(importDir, "chase_checking.csv"), src, 0o644))

	r = run("ingest")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Ingested 5 of 6 transactions from chase_checking.csv ($93.46)")

	_, err = os.Stat(filepath.Join(importDir, "chase_checking.csv"))
	assert.True(t, os.IsNotExist(err), "file moved out of import/")
	_, err = os.Stat(filepath.Join(importDir, "processed", "chase_checking.csv"))
	require.NoError(t, err)

	r = run("list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "5 expenses, $93.46")
	assert.NotContains(t, r.out, "PAYROLL")

	r = run("history")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "ingest")
	assert.Contains(t, r.out, "5 expenses from chase_checking.csv totaling $93.46")

	require.NoError(t, os.WriteFile(filepath.Join(importDir, "chase_again.csv"), src, 0o644))
	r = run("ingest")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Ingested 0 of 6 transactions from chase_again.csv ($0.00)")
	assert.Contains(t, r.out, "Skipped 5 already recorded")

	r = run("list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "5 expenses, $93.46", "a statement dropped in twice adds nothing")
}

func TestIngest_UnknownFormat(t *testing.T) {
	_, run := project(t)
	r := run("ingest", "--format", "barclays")
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "available: chase, generic")
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]string{
		"Chase_Activity_2024.CSV": "chase",
		"export.csv":              "generic",
	}
	for name, want := range tests {
		assert.Equal(t, want, detectFormat(name, importer.DefaultRegistry()), name)
	}
}

func TestHistory(t *testing.T) {
	_, run := project(t)

	r := run("history")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "No activity recorded.")

	require.NoError(t, run("add", "Coffee", "3").err)
	require.NoError(t, run("add", "Bagel", "2").err)
	require.NoError(t, run("delete", "exp-001").err)

	r = run("history", "-n", "1")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "delete")
	assert.NotContains(t, r.out, "Bagel")
}

func TestSQLiteBackend(t *testing.T) {
	dir, run := project(t, "--backend", "sqlite")
	_, err := os.Stat(filepath.Join(dir, "data", "expenseiq.db"))
	require.NoError(t, err)

	require.NoError(t, run("add", "Electric bill", "80.25", "--date", "2024-03-05").err)

	r := run("list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Electric bill")
	assert.Contains(t, r.out, "Bills & Utilities")

	_, err = os.Stat(filepath.Join(dir, "data", "expenseiq_expenses.json"))
	assert.True(t, os.IsNotExist(err), "file store is not used")
}

func TestUnreadableStoreWarnsAndStartsEmpty(t *testing.T) {
	dir, run := project(t)
	path := persist.NewFileKV(filepath.Join(dir, "data")).Path(persist.ExpensesKey)
	require.NoError(t, os.WriteFile(path, []byte("{corrupt"), 0o644))

	r := run("list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "No expenses found.")
	assert.Contains(t, r.errOut, "Saved expenses are unreadable; starting empty")
}

func TestVersion(t *testing.T) {
	r := runWith(t, testOptions(), "--version")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "dev (commit: none")
}
