package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

type categoryRef struct {
	ID             string `db:"id"`
	Name           string `db:"name"`
	OrganizationID string `db:"organization_id"`
}

// categoryLine is one product as the by-category listing shows it.
type categoryLine struct {
	ID       string
	SKU      string
	Name     string
	Godown   int
	Store    int
	Total    int
	Legacy   bool
	Status   string
	Category string
}

func newProductsByCategoryCmd(a *app) *cobra.Command {
	var org string
	cmd := &cobra.Command{
		Use:   "by-category <category-id-or-name>",
		Short: "List a category's products straight from the database",
		Long: `by-category reads Postgres directly, bypassing the API. Products with no
stock level row report their legacy quantity as the total.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx := cmd.Context()
			cat, err := resolveCategory(ctx, db, args[0], org)
			if err != nil {
				return err
			}
			lines, err := loadCategoryLines(ctx, db, cat)
			if err != nil {
				return err
			}
			return writeCategoryLines(a.out, cat, lines)
		},
	}
	cmd.Flags().StringVar(&org, "org", "", "organization id, to disambiguate category names")
	return cmd
}

func resolveCategory(ctx context.Context, db *sqlx.DB, ref, org string) (*categoryRef, error) {
	var (
		found []categoryRef
		err   error
	)
	if _, perr := uuid.Parse(ref); perr == nil {
		err = db.SelectContext(ctx, &found,
			`SELECT id, name, organization_id FROM categories WHERE id = $1`, ref)
	} else {
		err = db.SelectContext(ctx, &found, `
            SELECT id, name, organization_id FROM categories
            WHERE lower(name) = lower($1) AND ($2 = '' OR organization_id::text = $2)
            ORDER BY created_at
            LIMIT 2`, ref, org)
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("category %q not found", ref)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("category name %q is used by more than one organization, pass --org", ref)
	}
}

func loadCategoryLines(ctx context.Context, db *sqlx.DB, cat *categoryRef) ([]categoryLine, error) {
	var rows []model.ProductRow
	err := db.SelectContext(ctx, &rows, `
        SELECT p.*, s.godown, s.store, s.reserved
        FROM products p
        LEFT JOIN stock_levels s ON s.product_id = p.id
        WHERE p.category_id = $1 AND p.is_active
        ORDER BY p.name`, cat.ID)
	if err != nil {
		return nil, fmt.Errorf("list category products: %w", err)
	}
	return projectCategoryLines(cat.Name, rows), nil
}

// projectCategoryLines flattens rows, falling back to the legacy quantity
// when a product has no stock level.
func projectCategoryLines(category string, rows []model.ProductRow) []categoryLine {
	lines := make([]categoryLine, 0, len(rows))
	for _, r := range rows {
		p := r.ToProduct()
		line := categoryLine{
			ID:       p.ID,
			SKU:      p.SKU,
			Name:     p.Name,
			Total:    p.TotalStock(),
			Legacy:   p.Stock == nil,
			Status:   p.StockStatus(),
			Category: category,
		}
		if p.Stock != nil {
			line.Godown = p.Stock.Godown
			line.Store = p.Stock.Store
		}
		lines = append(lines, line)
	}
	return lines
}

func writeCategoryLines(w io.Writer, cat *categoryRef, lines []categoryLine) error {
	fmt.Fprintf(w, "Category: %s (%s)\n\n", cat.Name, cat.ID)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tNAME\tGODOWN\tSTORE\tTOTAL\tSTATUS")
	units := 0
	for _, l := range lines {
		total := fmt.Sprint(l.Total)
		if l.Legacy {
			total += " (quantity)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n", l.SKU, l.Name, l.Godown, l.Store, total, l.Status)
		units += l.Total
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d products, %d units\n", len(lines), units)
	return err
}
