package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/expenseiq/expenseiq/internal/activity"
	"github.com/expenseiq/expenseiq/internal/config"
	"github.com/expenseiq/expenseiq/internal/gitops"
	"github.com/expenseiq/expenseiq/internal/logger"
	"github.com/expenseiq/expenseiq/internal/persist"
	"github.com/expenseiq/expenseiq/internal/render"
	"github.com/expenseiq/expenseiq/internal/tracker"
)

// app is an opened project: config, storage and a tracker over them.
type app struct {
	dir      string
	dataDir  string
	cfg      *config.Config
	tracker  *tracker.Tracker
	notices  *tracker.Collector
	activity *activity.Log
	out      *render.Printer
	errOut   *render.Printer
	closeKV  func() error
}

func projectDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	return abs, nil
}

func (o *options) open(cmd *cobra.Command) (*app, error) {
	dir, err := projectDir(cmd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	level := cfg.Log.Level
	if level == "" {
		level = "warn"
		if cmd.Name() == "serve" {
			level = "info"
		}
	}
	logger.Init(cfg.Log.Env, level)

	a := &app{
		dir:     dir,
		dataDir: cfg.DataDir(dir),
		cfg:     cfg,
		notices: &tracker.Collector{},
		out:     render.New(cmd.OutOrStdout()),
		errOut:  render.New(cmd.ErrOrStderr()),
	}
	kv, err := a.openKV()
	if err != nil {
		return nil, err
	}
	a.activity = activity.NewLog(a.dataDir)
	a.tracker = tracker.Open(cmd.Context(), tracker.Options{
		KV:         kv,
		Clock:      o.clock,
		Random:     o.random,
		Notifier:   a.notices,
		Activity:   a.activity,
		Thresholds: cfg.Thresholds(),
		NewID:      o.newID,
	})
	a.flush()
	return a, nil
}

func (a *app) openKV() (persist.KV, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendSQLite:
		kv, err := persist.OpenSQLite(a.cfg.SQLitePath(a.dir))
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		a.closeKV = kv.Close
		return kv, nil
	case config.BackendFile:
		return persist.NewFileKV(a.dataDir), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
}

// flush prints pending notices to stderr.
func (a *app) flush() {
	for _, n := range a.notices.Drain() {
		a.errOut.Notice(n)
	}
}

func (a *app) close() error {
	a.flush()
	var errs []error
	if a.closeKV != nil {
		errs = append(errs, a.closeKV())
	}
	logger.Sync()
	return errors.Join(errs...)
}

func gitAuthor(cfg *config.Config) gitops.Author {
	return gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
}

// commit records the project state in git when auto-commit is on. Failure
// is reported but does not fail the command.
func (a *app) commit(ctx context.Context, format string, args ...any) {
	if !a.cfg.Git.AutoCommit || !gitops.IsRepo(a.dir) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if _, err := gitops.CommitAll(ctx, a.dir, msg, gitAuthor(a.cfg)); err != nil {
		logger.Get().Warnw("committing changes", "error", err)
		a.notices.Notify(tracker.Notice{Level: tracker.LevelWarning, Message: "Could not commit changes to git", Err: err})
	}
}

// withApp opens the project, runs fn and closes it again.
func (o *options) withApp(cmd *cobra.Command, fn func(a *app) error) (err error) {
	a, err := o.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(); err == nil {
			err = cerr
		}
	}()
	return fn(a)
}
