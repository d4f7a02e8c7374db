package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/expenseiq/expenseiq/internal/config"
	"github.com/expenseiq/expenseiq/internal/gitops"
	"github.com/expenseiq/expenseiq/internal/importer"
	"github.com/expenseiq/expenseiq/internal/persist"
	"github.com/expenseiq/expenseiq/internal/render"
)

func newInitCommand() *cobra.Command {
	var backend string
	var force bool
	var git bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ExpenseIQ project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			hash, err := runInit(cmd.Context(), absDir, backend, force, git)
			if err != nil {
				return err
			}
			out := render.New(cmd.OutOrStdout())
			if hash != "" {
				out.Success("Initialized ExpenseIQ project at %s (%s)", absDir, hash)
				return nil
			}
			out.Success("Initialized ExpenseIQ project at %s", absDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&backend, "backend", config.BackendFile, "storage backend (file or sqlite)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing expenseiq.yaml")
	cmd.Flags().BoolVar(&git, "git", false, "version the project with git and commit after every change")

	return cmd
}

// runInit lays out a project. With git it also creates the repository and
// returns the initial commit hash.
func runInit(ctx context.Context, dir, backend string, force, git bool) (string, error) {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("checking config: %w", err)
	}

	cfg := config.Default()
	cfg.Storage.Backend = backend
	cfg.Git.AutoCommit = git
	if err := cfg.Validate(); err != nil {
		return "", err
	}

	// Create directory structure.
	dataDir := cfg.DataDir(dir)
	dirs := []string{
		dataDir,
		filepath.Join(dataDir, "logs"),
		importer.Dir(dataDir),
		filepath.Join(importer.Dir(dataDir), "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return "", fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	if err := config.Save(cfgPath, cfg); err != nil {
		return "", fmt.Errorf("writing config: %w", err)
	}

	if backend == config.BackendSQLite {
		dbPath := cfg.SQLitePath(dir)
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return "", fmt.Errorf("creating database directory: %w", err)
		}
		if err := persist.RunMigrations(dbPath); err != nil {
			return "", fmt.Errorf("creating database: %w", err)
		}
	}

	if !git {
		return "", nil
	}
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(".env\n"), 0o644); err != nil {
		return "", fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(importer.Dir(dataDir), ".gitkeep"), []byte{}, 0o644); err != nil {
		return "", fmt.Errorf("writing .gitkeep: %w", err)
	}
	if !gitops.IsRepo(dir) {
		if err := gitops.Init(ctx, dir); err != nil {
			return "", err
		}
	}
	hash, err := gitops.CommitAll(ctx, dir, "init: ExpenseIQ project", gitAuthor(cfg))
	if err != nil {
		return "", fmt.Errorf("initial commit: %w", err)
	}
	return hash, nil
}
