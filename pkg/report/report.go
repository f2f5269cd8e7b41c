// Package report renders inventory and sales data as downloadable CSV and
// plain-text documents.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/shopspring/decimal"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeText = "text/plain; charset=utf-8"
)

var inventoryHeader = []string{
	"SKU", "Name", "Category", "Unit", "Price", "Cost Price",
	"Godown", "Store", "Reserved", "Total", "Status", "Expiration Date",
}

// Filename builds names like inventory-report-2026-03-01.csv.
func Filename(kind, ext string, t time.Time) string {
	return fmt.Sprintf("%s-report-%s.%s", kind, t.Format("2006-01-02"), ext)
}

// InventoryCSV writes a header and exactly one line per product. Every field
// is quoted and embedded quotes are doubled.
func InventoryCSV(w io.Writer, products []model.Product) error {
	if err := writeQuoted(w, inventoryHeader); err != nil {
		return err
	}
	for i := range products {
		p := &products[i]
		s := stockOf(p)
		row := []string{
			p.SKU,
			p.Name,
			categoryName(p),
			p.Unit,
			p.Price.StringFixed(2),
			costString(p),
			strconv.Itoa(s.Godown),
			strconv.Itoa(s.Store),
			strconv.Itoa(s.Reserved),
			strconv.Itoa(s.Total),
			p.StockStatus(),
			dateString(p.ExpirationDate),
		}
		if err := writeQuoted(w, row); err != nil {
			return err
		}
	}
	return nil
}

// SalesCSV writes one line per product sold in the period.
func SalesCSV(w io.Writer, lines []model.SalesLine) error {
	if err := writeQuoted(w, []string{"Product ID", "Product", "Quantity", "Revenue"}); err != nil {
		return err
	}
	for _, l := range lines {
		row := []string{l.ProductID, l.ProductName, strconv.Itoa(l.Quantity), l.Revenue.StringFixed(2)}
		if err := writeQuoted(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeQuoted(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(f))
	}
	b.WriteByte('\n')
	_, err := io.WriteString(w, b.String())
	return err
}

// quote keeps a record on one line: line breaks inside a field become spaces.
func quote(field string) string {
	field = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(field)
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// Summary holds the totals printed under the text report.
type Summary struct {
	Products   int
	Units      int
	Value      decimal.Decimal
	LowStock   int
	OutOfStock int
}

func Summarize(products []model.Product) Summary {
	s := Summary{Products: len(products), Value: decimal.Zero}
	for i := range products {
		p := &products[i]
		total := p.TotalStock()
		s.Units += total
		s.Value = s.Value.Add(p.Price.Mul(decimal.NewFromInt(int64(total))))
		switch p.StockStatus() {
		case model.StockStatusLow:
			s.LowStock++
		case model.StockStatusOutOfStock:
			s.OutOfStock++
		}
	}
	return s
}

// InventoryText writes a plain-text table of the inventory with a summary.
func InventoryText(w io.Writer, title string, generatedAt time.Time, products []model.Product) error {
	writeTitle(w, title, generatedAt)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tNAME\tCATEGORY\tGODOWN\tSTORE\tTOTAL\tPRICE\tSTATUS")
	for i := range products {
		p := &products[i]
		s := stockOf(p)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			p.SKU, oneLine(p.Name), categoryName(p), s.Godown, s.Store, s.Total, p.Price.StringFixed(2), p.StockStatus())
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	sum := Summarize(products)
	_, err := fmt.Fprintf(w, "\nProducts: %d\nUnits in stock: %d\nStock value: %s\nLow stock: %d\nOut of stock: %d\n",
		sum.Products, sum.Units, sum.Value.StringFixed(2), sum.LowStock, sum.OutOfStock)
	return err
}

// LowStockText lists the products at or below their threshold with a suggested reorder.
func LowStockText(w io.Writer, generatedAt time.Time, products []model.Product) error {
	writeTitle(w, "Low Stock Report", generatedAt)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SKU\tNAME\tTOTAL\tTHRESHOLD\tREORDER")
	n := 0
	for i := range products {
		p := &products[i]
		if p.StockStatus() == model.StockStatusInStock {
			continue
		}
		n++
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", p.SKU, oneLine(p.Name), p.TotalStock(), p.LowStockThreshold, reorder(p))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nProducts needing restock: %d\n", n)
	return err
}

// SalesText writes the sales lines of a period with a revenue total.
func SalesText(w io.Writer, from, to time.Time, lines []model.SalesLine) error {
	writeTitle(w, fmt.Sprintf("Sales Report %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")), time.Now())

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PRODUCT\tQUANTITY\tREVENUE")
	units, revenue := 0, decimal.Zero
	for _, l := range lines {
		units += l.Quantity
		revenue = revenue.Add(l.Revenue)
		fmt.Fprintf(tw, "%s\t%d\t%s\n", oneLine(l.ProductName), l.Quantity, l.Revenue.StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\nUnits sold: %d\nRevenue: %s\n", units, revenue.StringFixed(2))
	return err
}

func writeTitle(w io.Writer, title string, at time.Time) {
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, strings.Repeat("=", len(title)))
	fmt.Fprintf(w, "Generated: %s\n\n", at.Format("2006-01-02 15:04"))
}

// reorder suggests enough units to get back above the threshold.
func reorder(p *model.Product) int {
	if p.ReorderQuantity > 0 {
		return p.ReorderQuantity
	}
	if n := p.LowStockThreshold*2 - p.TotalStock(); n > 0 {
		return n
	}
	return 0
}

func stockOf(p *model.Product) model.StockSummary {
	if p.Stock != nil {
		return *p.Stock
	}
	return model.NewStockSummary(0, p.Quantity, 0)
}

func categoryName(p *model.Product) string {
	if p.Category != nil {
		return p.Category.Name
	}
	return ""
}

func costString(p *model.Product) string {
	if !p.CostPrice.Valid {
		return ""
	}
	return p.CostPrice.Decimal.StringFixed(2)
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
