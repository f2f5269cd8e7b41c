package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apiclient"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newCheckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "End-to-end checks against a running server",
	}
	cmd.AddCommand(newAPIFlowCmd(a), newCategoryInventoryCmd(a))
	return cmd
}

type checkStep struct {
	name string
	run  func(ctx context.Context) (string, error)
}

// runSteps runs every step, printing one line each, and returns the
// combined failures.
func runSteps(ctx context.Context, w io.Writer, steps []checkStep) error {
	var errs error
	for _, s := range steps {
		detail, err := s.run(ctx)
		if err != nil {
			fmt.Fprintf(w, "FAIL  %s: %v\n", s.name, err)
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", s.name, err))
			continue
		}
		fmt.Fprintf(w, "ok    %s", s.name)
		if detail != "" {
			fmt.Fprintf(w, " (%s)", detail)
		}
		fmt.Fprintln(w)
	}
	return errs
}

func newAPIFlowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "api-flow",
		Short: "Walk the main API endpoints with the current session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			return runSteps(cmd.Context(), a.out, apiFlowSteps(a.client))
		},
	}
}

func apiFlowSteps(c *apiclient.Client) []checkStep {
	var first *model.Product
	return []checkStep{
		{"me", func(ctx context.Context) (string, error) {
			me, err := c.Me(ctx)
			if err != nil {
				return "", err
			}
			return me.User.Email, nil
		}},
		{"categories", func(ctx context.Context) (string, error) {
			tree, err := c.CategoryTree(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d root categories", len(tree)), nil
		}},
		{"products", func(ctx context.Context) (string, error) {
			page, err := c.ListProducts(ctx, apiclient.Query{Page: 1, Limit: 5})
			if err != nil {
				return "", err
			}
			if len(page.Items) > 0 {
				first = &page.Items[0]
			}
			return fmt.Sprintf("%d total", page.Pagination.Total), nil
		}},
		{"product lookup", func(ctx context.Context) (string, error) {
			if first == nil {
				return "skipped, no products", nil
			}
			p, err := c.LookupProduct(ctx, first.SKU)
			if err != nil {
				return "", err
			}
			if p.ID != first.ID {
				return "", fmt.Errorf("SKU %s resolved to %s, want %s", first.SKU, p.ID, first.ID)
			}
			return first.SKU, nil
		}},
		{"stock level", func(ctx context.Context) (string, error) {
			if first == nil {
				return "skipped, no products", nil
			}
			level, err := c.GetStockLevel(ctx, first.ID)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("total %d, available %d", level.Stock.Total, level.Stock.Available), nil
		}},
		{"alerts", func(ctx context.Context) (string, error) {
			page, err := c.ListAlerts(ctx, apiclient.Query{Page: 1, Limit: 5})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d unread", page.UnreadCount), nil
		}},
		{"dashboard", func(ctx context.Context) (string, error) {
			d, err := c.Dashboard(ctx)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%d products, %d low, %d out", d.TotalProducts, d.LowStockCount, d.OutOfStockCount), nil
		}},
		{"inventory report", func(ctx context.Context) (string, error) {
			blob, err := c.InventoryReport(ctx, apiclient.ReportOptions{Format: "csv"})
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s, %d bytes", blob.Filename, len(blob.Data)), nil
		}},
	}
}

// categoryTally is the stock of one category summed from its products.
type categoryTally struct {
	Name         string
	ProductCount int
	Listed       int
	Units        int
	Low          int
	Out          int
}

func (t categoryTally) consistent() bool { return t.ProductCount == t.Listed }

func tallyCategory(c model.Category, products []model.Product) categoryTally {
	t := categoryTally{Name: c.Name, ProductCount: c.ProductCount, Listed: len(products)}
	for i := range products {
		t.Units += products[i].TotalStock()
		switch products[i].StockStatus() {
		case model.StockStatusLow:
			t.Low++
		case model.StockStatusOutOfStock:
			t.Out++
		}
	}
	return t
}

func newCategoryInventoryCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "category-inventory",
		Short: "Sum stock per category and compare with each category's product count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			cats, err := collect(ctx, a.client.ListCategories, apiclient.Query{})
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "CATEGORY\tPRODUCTS\tLISTED\tUNITS\tLOW\tOUT\t")
			var errs error
			for _, c := range cats {
				products, err := collect(ctx, a.client.ListProducts, apiclient.Query{
					Filters: map[string]string{"categoryId": c.ID},
				})
				if err != nil {
					errs = multierr.Append(errs, fmt.Errorf("category %q: %w", c.Name, err))
					continue
				}
				t := tallyCategory(c, products)
				mark := ""
				if !t.consistent() {
					mark = "mismatch"
					errs = multierr.Append(errs, fmt.Errorf("category %q: productCount %d but %d products listed", c.Name, t.ProductCount, t.Listed))
				}
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%s\n", t.Name, t.ProductCount, t.Listed, t.Units, t.Low, t.Out, mark)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return errs
		},
	}
}
