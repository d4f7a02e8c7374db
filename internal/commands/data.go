package commands

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/expenseiq/expenseiq/internal/aggregate"
	apperrors "github.com/expenseiq/expenseiq/internal/errors"
	"github.com/expenseiq/expenseiq/internal/importer"
	"github.com/expenseiq/expenseiq/internal/money"
	"github.com/expenseiq/expenseiq/internal/snapshot"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

func newExportCommand(opts *options) *cobra.Command {
	var format string
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every expense as a JSON snapshot or CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatJSON && format != formatCSV {
				return fmt.Errorf("unknown export format %q (want %s or %s)", format, formatJSON, formatCSV)
			}
			return opts.withApp(cmd, func(a *app) error {
				doc := a.tracker.ExportSnapshot()

				var buf bytes.Buffer
				switch format {
				case formatCSV:
					if err := snapshot.WriteCSV(&buf, doc.Expenses); err != nil {
						return err
					}
				default:
					data, err := snapshot.Encode(doc)
					if err != nil {
						return err
					}
					buf.Write(data)
				}

				if output == "" || output == "-" {
					_, err := io.Copy(cmd.OutOrStdout(), &buf)
					return err
				}
				if err := os.WriteFile(output, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("writing export: %w", err)
				}
				a.out.Success("Exported %d expenses to %s", len(doc.Expenses), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "export format (json or csv)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")
	return cmd
}

func newImportCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all expenses with an exported snapshot",
		Long: "Replace all expenses with the contents of a JSON snapshot or a CSV " +
			"file written by export. Nothing changes if the file is invalid.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readSnapshotFile(args[0], opts)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(a *app) error {
				n, err := a.tracker.ImportSnapshot(cmd.Context(), data)
				if err != nil {
					return err
				}
				a.out.Success("Imported %d expenses from %s", n, filepath.Base(args[0]))
				a.commit(cmd.Context(), "import: %d expenses from %s", n, filepath.Base(args[0]))
				return nil
			})
		},
	}
}

// readSnapshotFile returns snapshot JSON for path. CSV exports are
// converted to a snapshot first.
func readSnapshotFile(path string, opts *options) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading import file: %w", err)
	}
	if !strings.EqualFold(filepath.Ext(path), "."+formatCSV) {
		return data, nil
	}
	expenses, err := snapshot.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.WrapWithMessage(apperrors.ErrImportFormat, "Error importing data: "+err.Error(), err)
	}
	return snapshot.Encode(snapshot.Build(expenses, opts.clock.Now()))
}

func newIngestCommand(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Add expenses from bank CSV exports in the import directory",
		Long: "Parse every CSV file in <data_dir>/import, add its debits as " +
			"categorized expenses and move the file to import/processed.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := importer.DefaultRegistry()
			if format != "" && registry.Get(format) == nil {
				return fmt.Errorf("unknown bank format %q (available: %s)", format, strings.Join(registry.Formats(), ", "))
			}
			return opts.withApp(cmd, func(a *app) error {
				files, err := importer.Scan(a.dataDir)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					a.out.Muted("No CSV files in %s", importer.Dir(a.dataDir))
					return nil
				}
				for _, f := range files {
					name := format
					if name == "" {
						name = detectFormat(f.Name, registry)
					}
					txns, err := importer.ParseFile(registry.Get(name), f.Path)
					if err != nil {
						return fmt.Errorf("parsing %s as %s: %w", f.Name, name, err)
					}
					expenses, dups := importer.ToExpenses(txns, a.tracker.Expenses(), opts.newID, opts.clock.Now())
					n, err := a.tracker.AddExpenses(cmd.Context(), expenses, f.Name)
					if err != nil {
						return fmt.Errorf("ingesting %s: %w", f.Name, err)
					}
					if err := importer.MarkProcessed(a.dataDir, f.Name); err != nil {
						return err
					}
					a.out.Success("Ingested %d of %d transactions from %s (%s)",
						n, len(txns), f.Name, money.Format(aggregate.Total(expenses)))
					if dups > 0 {
						a.out.Muted("Skipped %d already recorded", dups)
					}
					a.commit(cmd.Context(), "ingest: %s (%d expenses)", f.Name, n)
					a.flush()
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "bank format (default: detect from file name)")
	return cmd
}

// detectFormat picks the parser whose name appears in the file name,
// falling back to the generic header-driven parser.
func detectFormat(fileName string, registry *importer.Registry) string {
	lower := strings.ToLower(fileName)
	for _, f := range registry.Formats() {
		if f != "generic" && strings.Contains(lower, f) {
			return f
		}
	}
	return "generic"
}
