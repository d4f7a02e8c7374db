// Package config loads expenseiq.yaml and its environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/expenseiq/expenseiq/internal/insights"
)

// FileName is the config file looked up in the project directory.
const FileName = "expenseiq.yaml"

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config represents the top-level expenseiq.yaml configuration.
type Config struct {
	Storage  StorageConfig  `yaml:"storage"`
	Insights InsightsConfig `yaml:"insights"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Git      GitConfig      `yaml:"git"`
}

// StorageConfig selects where expenses are persisted. Relative paths are
// resolved against the project directory.
type StorageConfig struct {
	Backend    string `yaml:"backend"`
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path,omitempty"`
}

// InsightsConfig holds the monthly totals that trigger budget insights.
type InsightsConfig struct {
	HighSpending float64 `yaml:"high_spending"`
	Saving       float64 `yaml:"saving"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level,omitempty"` // empty: warn for commands, info for serve
}

// GitConfig controls committing the project directory after each change.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads an expenseiq.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadDir reads <dir>/expenseiq.yaml, falling back to defaults when the
// file does not exist, then applies .env and environment overrides.
func LoadDir(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	switch {
	case errors.Is(err, os.ErrNotExist):
		cfg = Default()
	case err != nil:
		return nil, err
	}
	if err := LoadDotEnv(dir); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			DataDir: "data",
		},
		Insights: InsightsConfig{
			HighSpending: 1000,
			Saving:       500,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
		Log: LogConfig{
			Env: "production",
		},
		Git: GitConfig{
			AutoCommit:  false,
			AuthorName:  "ExpenseIQ",
			AuthorEmail: "expenseiq@localhost",
		},
	}
}

// LoadDotEnv loads <dir>/.env into the process environment. A missing
// file is not an error and existing variables are not overridden.
func LoadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides fields from EXPENSEIQ_* environment variables.
func (c *Config) ApplyEnv() error {
	setString(&c.Storage.Backend, "EXPENSEIQ_STORAGE_BACKEND")
	setString(&c.Storage.DataDir, "EXPENSEIQ_DATA_DIR")
	setString(&c.Storage.SQLitePath, "EXPENSEIQ_SQLITE_PATH")
	setString(&c.Server.Addr, "EXPENSEIQ_ADDR")
	setString(&c.Log.Env, "EXPENSEIQ_LOG_ENV")
	setString(&c.Log.Level, "EXPENSEIQ_LOG_LEVEL")

	var errs []error
	if err := setFloat(&c.Insights.HighSpending, "EXPENSEIQ_HIGH_SPENDING"); err != nil {
		errs = append(errs, err)
	}
	if err := setFloat(&c.Insights.Saving, "EXPENSEIQ_SAVING"); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func setFloat(dst *float64, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return fmt.Errorf("%s: %q is not a number", key, v)
	}
	*dst = f
	return nil
}

// Validate reports every problem with the config in one error.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite:
	default:
		errs = append(errs, fmt.Errorf("storage.backend must be %q or %q, got %q", BackendFile, BackendSQLite, c.Storage.Backend))
	}
	if strings.TrimSpace(c.Storage.DataDir) == "" {
		errs = append(errs, errors.New("storage.data_dir is required"))
	}
	if c.Insights.HighSpending <= 0 {
		errs = append(errs, errors.New("insights.high_spending must be positive"))
	}
	if c.Insights.Saving <= 0 {
		errs = append(errs, errors.New("insights.saving must be positive"))
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	switch c.Log.Env {
	case "production", "development":
	default:
		errs = append(errs, fmt.Errorf("log.env must be production or development, got %q", c.Log.Env))
	}
	if c.Git.AutoCommit && (c.Git.AuthorName == "" || c.Git.AuthorEmail == "") {
		errs = append(errs, errors.New("git.author_name and git.author_email are required with git.auto_commit"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DataDir returns the storage directory resolved against dir.
func (c *Config) DataDir(dir string) string {
	return resolve(dir, c.Storage.DataDir)
}

// SQLitePath returns the database path resolved against dir. It defaults
// to expenseiq.db inside the data directory.
func (c *Config) SQLitePath(dir string) string {
	if c.Storage.SQLitePath == "" {
		return filepath.Join(c.DataDir(dir), "expenseiq.db")
	}
	return resolve(dir, c.Storage.SQLitePath)
}

// Thresholds converts the insight settings for the generator.
func (c *Config) Thresholds() insights.Thresholds {
	return insights.Thresholds{
		HighSpending: decimal.NewFromFloat(c.Insights.HighSpending),
		Saving:       decimal.NewFromFloat(c.Insights.Saving),
	}
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}
