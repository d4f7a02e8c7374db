package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = BackendSQLite
	cfg.Storage.SQLitePath = "db/expenses.db"
	cfg.Insights.HighSpending = 2500

	path := filepath.Join(t.TempDir(), FileName)
	err := Save(path, cfg)
	require.NoError(t, err)

	got, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Empty(t, cfg.Storage.SQLitePath)
	assert.InDelta(t, 1000, cfg.Insights.HighSpending, 0.001)
	assert.InDelta(t, 500, cfg.Insights.Saving, 0.001)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Addr)
	assert.Equal(t, "production", cfg.Log.Env)
	assert.False(t, cfg.Git.AutoCommit)
	assert.Equal(t, "ExpenseIQ", cfg.Git.AuthorName)
	require.NoError(t, cfg.Validate())
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("insights:\n  high_spending: 1500\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.InDelta(t, 1500, cfg.Insights.HighSpending, 0.001)
	assert.InDelta(t, 500, cfg.Insights.Saving, 0.001)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "backend: file")
	assert.Contains(t, contents, "data_dir: data")
	assert.Contains(t, contents, "high_spending: 1000")
	assert.Contains(t, contents, "auto_commit: false")
	assert.NotContains(t, contents, "sqlite_path")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("EXPENSEIQ_STORAGE_BACKEND", "sqlite")
	t.Setenv("EXPENSEIQ_ADDR", ":9090")
	t.Setenv("EXPENSEIQ_HIGH_SPENDING", "750.5")
	t.Setenv("EXPENSEIQ_LOG_LEVEL", " debug ")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.InDelta(t, 750.5, cfg.Insights.HighSpending, 0.001)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "data", cfg.Storage.DataDir, "unset variables leave fields alone")
}

func TestApplyEnvBadNumbers(t *testing.T) {
	t.Setenv("EXPENSEIQ_HIGH_SPENDING", "lots")
	t.Setenv("EXPENSEIQ_SAVING", "some")

	err := Default().ApplyEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "EXPENSEIQ_HIGH_SPENDING")
	assert.Contains(t, err.Error(), "EXPENSEIQ_SAVING")
}

func TestValidateCollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "s3"
	cfg.Storage.DataDir = " "
	cfg.Insights.Saving = 0
	cfg.Log.Env = "staging"
	cfg.Git.AutoCommit = true
	cfg.Git.AuthorEmail = ""

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `storage.backend must be "file" or "sqlite", got "s3"`)
	assert.Contains(t, msg, "storage.data_dir is required")
	assert.Contains(t, msg, "insights.saving must be positive")
	assert.Contains(t, msg, `log.env must be production or development, got "staging"`)
	assert.Contains(t, msg, "git.author_name and git.author_email are required")
}

func TestLoadDir(t *testing.T) {
	t.Run("missing file uses defaults", func(t *testing.T) {
		cfg, err := LoadDir(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("dotenv overrides file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, Save(filepath.Join(dir, FileName), Default()))
		require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("EXPENSEIQ_SAVING=250\n"), 0o644))
		t.Cleanup(func() { os.Unsetenv("EXPENSEIQ_SAVING") })

		cfg, err := LoadDir(dir)
		require.NoError(t, err)
		assert.InDelta(t, 250, cfg.Insights.Saving, 0.001)
	})

	t.Run("invalid file is rejected", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("storage:\n  backend: s3\n"), 0o644))

		_, err := LoadDir(dir)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid config")
	})
}

func TestPaths(t *testing.T) {
	cfg := Default()
	assert.Equal(t, filepath.Join("/proj", "data"), cfg.DataDir("/proj"))
	assert.Equal(t, filepath.Join("/proj", "data", "expenseiq.db"), cfg.SQLitePath("/proj"))

	cfg.Storage.DataDir = "/var/lib/expenseiq"
	cfg.Storage.SQLitePath = "x.db"
	assert.Equal(t, "/var/lib/expenseiq", cfg.DataDir("/proj"))
	assert.Equal(t, filepath.Join("/proj", "x.db"), cfg.SQLitePath("/proj"))
}

func TestThresholds(t *testing.T) {
	cfg := Default()
	cfg.Insights.HighSpending = 1200.5
	th := cfg.Thresholds()
	assert.Equal(t, "1200.5", th.HighSpending.String())
	assert.Equal(t, "500", th.Saving.String())
}
