package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/catalog"
	"github.com/spf13/cobra"
)

func newProductsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "products",
		Aliases: []string{"product", "p"},
		Short:   "Browse and adjust products",
	}
	cmd.AddCommand(
		newProductsListCmd(a),
		newProductsLookupCmd(a),
		newProductsAdjustCmd(a),
		newProductsByCategoryCmd(a),
	)
	return cmd
}

func newProductsListCmd(a *app) *cobra.Command {
	var (
		page    int
		limit   int
		filters catalog.Filters
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of products",
		Example: `  invctl products list --low-stock
  invctl products list --search rice --sort-by price --sort-order asc`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			store := catalog.NewStore(a.client, a.logger)
			store.PageSize = limit
			store.SetFilters(filters)
			if _, err := store.FetchProducts(cmd.Context(), page, true); err != nil {
				return err
			}
			snap := store.Snapshot()
			if err := writeProducts(a.out, snap.Products); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "\nPage %d/%d, %d products\n", snap.CurrentPage, snap.TotalPages, snap.TotalProducts)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&page, "page", 1, "page number")
	f.IntVar(&limit, "limit", catalog.DefaultPageSize, "products per page")
	f.StringVar(&filters.CategoryID, "category", "", "category id")
	f.StringVar(&filters.Search, "search", "", "name, SKU or code search")
	f.BoolVar(&filters.LowStock, "low-stock", false, "only products at or below their threshold")
	f.StringVar(&filters.SortBy, "sort-by", "createdAt", "name, price, createdAt or stock")
	f.StringVar(&filters.SortOrder, "sort-order", "desc", "asc or desc")
	return cmd
}

func newProductsLookupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <code>",
		Short: "Find a product by QR code or SKU",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			p, err := a.client.LookupProduct(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeProducts(a.out, []model.Product{*p})
		},
	}
}

func newProductsAdjustCmd(a *app) *cobra.Command {
	var (
		location string
		delta    int
		reason   string
	)
	cmd := &cobra.Command{
		Use:   "adjust <product-id>",
		Short: "Change the counted quantity at one location",
		Long: `Adjust adds --delta to the current quantity at --location and records
an ADJUST movement. The result never goes below zero.`,
		Example: `  invctl products adjust 7c1e... --location store --delta -2 --reason "damaged"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			ctx := cmd.Context()
			level, err := a.client.GetStockLevel(ctx, args[0])
			if err != nil {
				return err
			}
			var current int
			switch location {
			case model.LocationGodown:
				current = level.Stock.Godown
			case model.LocationStore:
				current = level.Stock.Store
			default:
				return fmt.Errorf("unknown location %q (want %s or %s)", location, model.LocationGodown, model.LocationStore)
			}

			store := catalog.NewStore(a.client, a.logger)
			res, err := store.AdjustQuantity(ctx, args[0], location, current, delta, reason)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s: %d -> %d (godown %d, store %d, available %d)\n",
				location, current, catalog.ClampQuantity(current, delta),
				res.Stock.Godown, res.Stock.Store, res.Stock.Available)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&location, "location", model.LocationStore, "godown or store")
	f.IntVar(&delta, "delta", 0, "quantity to add (negative to remove)")
	f.StringVar(&reason, "reason", "stock count", "reason recorded on the movement")
	return cmd
}

func writeProducts(w io.Writer, products []model.Product) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSKU\tNAME\tCATEGORY\tGODOWN\tSTORE\tTOTAL\tSTATUS")
	for _, p := range products {
		godown, store := "-", "-"
		if p.Stock != nil {
			godown = strconv.Itoa(p.Stock.Godown)
			store = strconv.Itoa(p.Stock.Store)
		}
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			p.ID, p.SKU, p.Name, category, godown, store, p.TotalStock(), p.StockStatus())
	}
	return tw.Flush()
}
