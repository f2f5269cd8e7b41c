package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fekuna/omnipos-inventory-service/pkg/apiclient"
	rendering "github.com/fekuna/omnipos-inventory-service/pkg/report"
	"github.com/spf13/cobra"
)

type reportFetcher func(ctx context.Context, opts apiclient.ReportOptions) (*apiclient.Blob, error)

func newReportCmd(a *app) *cobra.Command {
	var (
		opts     apiclient.ReportOptions
		from, to string
		outDir   string
	)
	cmd := &cobra.Command{
		Use:       "report <inventory|low-stock|sales>",
		Short:     "Download a report and save it to disk",
		ValidArgs: []string{"inventory", "low-stock", "sales"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Example: `  invctl report inventory
  invctl report low-stock --format txt --out ./reports
  invctl report sales --from 2026-03-01 --to 2026-03-31`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			var err error
			if opts.From, err = parseDay(from); err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			if opts.To, err = parseDay(to); err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if !opts.To.IsZero() {
				opts.To = opts.To.AddDate(0, 0, 1)
			}

			fetch := map[string]reportFetcher{
				"inventory": a.client.InventoryReport,
				"low-stock": a.client.LowStockReport,
				"sales":     a.client.SalesReport,
			}[args[0]]
			blob, err := fetch(cmd.Context(), opts)
			if err != nil {
				return err
			}

			name := blob.Filename
			if name == "" {
				name = rendering.Filename(args[0], opts.Format, time.Now())
			}
			path := filepath.Join(outDir, filepath.Base(name))
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Saved %s (%d bytes)\n", path, len(blob.Data))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.Format, "format", "csv", "csv or txt")
	f.StringVar(&opts.CategoryID, "category", "", "only products of this category")
	f.StringVar(&from, "from", "", "sales period start, YYYY-MM-DD")
	f.StringVar(&to, "to", "", "sales period end (inclusive), YYYY-MM-DD")
	f.StringVarP(&outDir, "out", "o", ".", "directory to write the report to")
	return cmd
}

func parseDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(time.DateOnly, s, time.Local)
}
