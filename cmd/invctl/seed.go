package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	catdto "github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	productdto "github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apiclient"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML layout read by `invctl seed`.
type seedFile struct {
	Categories []seedCategory `yaml:"categories"`
	Products   []seedProduct  `yaml:"products"`
}

type seedCategory struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Icon        string         `yaml:"icon"`
	SortOrder   int            `yaml:"sortOrder"`
	Children    []seedCategory `yaml:"children"`
}

type seedProduct struct {
	SKU               string `yaml:"sku"`
	QRCode            string `yaml:"qrCode"`
	Name              string `yaml:"name"`
	Description       string `yaml:"description"`
	Category          string `yaml:"category"`
	Price             string `yaml:"price"`
	CostPrice         string `yaml:"costPrice"`
	Unit              string `yaml:"unit"`
	LowStockThreshold *int   `yaml:"lowStockThreshold"`
	ReorderQuantity   int    `yaml:"reorderQuantity"`
	ExpirationDate    string `yaml:"expirationDate"`
	Godown            int    `yaml:"godown"`
	Store             int    `yaml:"store"`
}

func parseSeed(r io.Reader) (*seedFile, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

func (p seedProduct) input(categoryID string) (*productdto.CreateProductInput, error) {
	if strings.TrimSpace(p.SKU) == "" || strings.TrimSpace(p.Name) == "" {
		return nil, errors.New("sku and name are required")
	}
	if p.Godown < 0 || p.Store < 0 {
		return nil, errors.New("initial stock cannot be negative")
	}
	in := &productdto.CreateProductInput{
		CategoryID:        categoryID,
		SKU:               p.SKU,
		QRCode:            p.QRCode,
		Name:              p.Name,
		Description:       p.Description,
		Unit:              p.Unit,
		LowStockThreshold: p.LowStockThreshold,
		ReorderQuantity:   p.ReorderQuantity,
		InitialGodown:     p.Godown,
		InitialStore:      p.Store,
	}
	if p.Price != "" {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("price: %w", err)
		}
		in.Price = price
	}
	if p.CostPrice != "" {
		cost, err := decimal.NewFromString(p.CostPrice)
		if err != nil {
			return nil, fmt.Errorf("costPrice: %w", err)
		}
		in.CostPrice = decimal.NewNullDecimal(cost)
	}
	if p.ExpirationDate != "" {
		exp, err := time.Parse(time.DateOnly, p.ExpirationDate)
		if err != nil {
			return nil, fmt.Errorf("expirationDate: %w", err)
		}
		in.ExpirationDate = &exp
	}
	return in, nil
}

// seedAPI is the part of the API client the seeder needs.
type seedAPI interface {
	ListCategories(ctx context.Context, q apiclient.Query) (*apiclient.Page[model.Category], error)
	CreateCategory(ctx context.Context, input *catdto.CreateCategoryInput) (*model.Category, error)
	CreateProduct(ctx context.Context, input *productdto.CreateProductInput) (*model.Product, error)
}

type seedStats struct {
	CategoriesCreated int
	CategoriesReused  int
	ProductsCreated   int
	ProductsSkipped   int
}

type seeder struct {
	api        seedAPI
	categories map[string]string
	stats      seedStats
}

func newSeeder(api seedAPI) *seeder {
	return &seeder{api: api, categories: map[string]string{}}
}

// Run creates missing categories (reusing existing ones by name) and then
// the products. Products whose SKU or code already exists are skipped;
// other failures are collected and the run continues.
func (s *seeder) Run(ctx context.Context, f *seedFile) (seedStats, error) {
	existing, err := collect(ctx, s.api.ListCategories, apiclient.Query{})
	if err != nil {
		return s.stats, fmt.Errorf("list categories: %w", err)
	}
	for _, c := range existing {
		s.categories[strings.ToLower(c.Name)] = c.ID
	}

	var errs error
	for _, c := range f.Categories {
		errs = multierr.Append(errs, s.category(ctx, c, nil))
	}
	for _, p := range f.Products {
		errs = multierr.Append(errs, s.product(ctx, p))
	}
	return s.stats, errs
}

func (s *seeder) category(ctx context.Context, c seedCategory, parent *string) error {
	key := strings.ToLower(strings.TrimSpace(c.Name))
	if key == "" {
		return errors.New("category without a name")
	}
	id, ok := s.categories[key]
	if ok {
		s.stats.CategoriesReused++
	} else {
		created, err := s.api.CreateCategory(ctx, &catdto.CreateCategoryInput{
			ParentID:    parent,
			Name:        c.Name,
			Description: c.Description,
			Icon:        c.Icon,
			SortOrder:   c.SortOrder,
		})
		if err != nil {
			return fmt.Errorf("category %q: %w", c.Name, err)
		}
		id = created.ID
		s.categories[key] = id
		s.stats.CategoriesCreated++
	}

	var errs error
	for _, child := range c.Children {
		errs = multierr.Append(errs, s.category(ctx, child, &id))
	}
	return errs
}

func (s *seeder) product(ctx context.Context, p seedProduct) error {
	categoryID := ""
	if p.Category != "" {
		id, ok := s.categories[strings.ToLower(strings.TrimSpace(p.Category))]
		if !ok {
			return fmt.Errorf("product %q: unknown category %q", p.SKU, p.Category)
		}
		categoryID = id
	}
	in, err := p.input(categoryID)
	if err != nil {
		return fmt.Errorf("product %q: %w", p.SKU, err)
	}
	if _, err := s.api.CreateProduct(ctx, in); err != nil {
		if apiclient.StatusCode(err) == http.StatusConflict {
			s.stats.ProductsSkipped++
			return nil
		}
		return fmt.Errorf("product %q: %w", p.SKU, err)
	}
	s.stats.ProductsCreated++
	return nil
}

func newSeedCmd(a *app) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Create categories and products from a YAML file",
		Example: `  invctl seed testdata/shop.yaml
  invctl seed shop.yaml --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fh, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer fh.Close()
			f, err := parseSeed(fh)
			if err != nil {
				return err
			}
			if dryRun {
				fmt.Fprintf(a.out, "%d top-level categories, %d products\n", len(f.Categories), len(f.Products))
				var errs error
				for _, p := range f.Products {
					if _, err := p.input(""); err != nil {
						errs = multierr.Append(errs, fmt.Errorf("product %q: %w", p.SKU, err))
					}
				}
				return errs
			}

			if err := a.requireLogin(); err != nil {
				return err
			}
			stats, err := newSeeder(a.client).Run(cmd.Context(), f)
			fmt.Fprintf(a.out, "Categories: %d created, %d existing\nProducts: %d created, %d already present\n",
				stats.CategoriesCreated, stats.CategoriesReused, stats.ProductsCreated, stats.ProductsSkipped)
			return err
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "only validate the file")
	return cmd
}
