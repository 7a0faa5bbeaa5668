package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mesh-intelligence/shopledger/internal/export"
	"github.com/mesh-intelligence/shopledger/internal/store"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		params reportParams
		format string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export <report|all>",
		Short: "Write reports to files as CSV or JSONL",
		Long: "export writes <out>/<report>.<format>. With all, every report runs\n" +
			"concurrently; customer-orders is included only when --customer is set.",
		Example: "  shopledger export store-revenue --format csv --out ./reports\n" +
			"  shopledger export all --format jsonl --year 2024 --month 3",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return usageError(err)
			}
			selected, err := selectReports(args[0], params)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return systemError(fmt.Errorf("creating %s: %w", outDir, err))
			}

			return a.withLedger(cmd, func(b *store.Backend) error {
				files := make([]string, len(selected))
				g, ctx := errgroup.WithContext(cmd.Context())
				for i, r := range selected {
					g.Go(func() error {
						rows, err := r.run(ctx, b, params)
						if err != nil {
							return fmt.Errorf("%s: %w", r.name, err)
						}
						file := filepath.Join(outDir, r.name+"."+f.Ext())
						if err := writeReportFile(file, f, rows); err != nil {
							return systemError(err)
						}
						files[i] = file
						return nil
					})
				}
				if err := g.Wait(); err != nil {
					return err
				}
				a.log.Info("reports exported", zap.Int("count", len(files)), zap.String("dir", outDir))
				for _, file := range files {
					fmt.Fprintln(cmd.OutOrStdout(), file)
				}
				return nil
			})
		},
	}
	params.bind(cmd)
	cmd.Flags().StringVar(&format, "format", string(export.FormatCSV), "output format: csv or jsonl")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	return cmd
}

func selectReports(name string, p reportParams) ([]report, error) {
	if name != "all" {
		r, err := findReport(name)
		if err != nil {
			return nil, err
		}
		if err := r.check(p); err != nil {
			return nil, err
		}
		return []report{r}, nil
	}
	var selected []report
	for _, r := range reports {
		if r.check(p) == nil {
			selected = append(selected, r)
		}
	}
	return selected, nil
}

// writeReportFile writes rows to file, removing it again on failure.
func writeReportFile(file string, f export.Format, rows any) (err error) {
	out, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("creating %s: %w", file, err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing %s: %w", file, cerr)
		}
		if err != nil {
			os.Remove(file)
		}
	}()
	if err := export.Write(out, f, rows); err != nil {
		return fmt.Errorf("writing %s: %w", file, err)
	}
	return nil
}

func newDumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dump <table> <file.jsonl>",
		Short: "Write every row of a table to a JSONL file",
		Long:  "dump writes rows in the format import reads, ordered by primary key.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(b *store.Backend) error {
				n, err := b.ExportTableJSONL(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d %s rows to %s\n", n, args[0], args[1])
				return nil
			})
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <table> <file.jsonl>",
		Short: "Bulk-load a JSONL file into a table",
		Long: "import loads the file in one transaction. Malformed or invalid records\n" +
			"and rows whose ids already exist are skipped and counted. The inventory\n" +
			"guard does not run.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLedger(cmd, func(b *store.Backend) error {
				stats, err := b.ImportFile(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				return printLoadStats(cmd.OutOrStdout(), a.flags.jsonMode, []store.LoadStats{stats})
			})
		},
	}
}
