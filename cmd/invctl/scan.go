package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/fekuna/omnipos-inventory-service/pkg/apiclient"
	"github.com/fekuna/omnipos-inventory-service/pkg/catalog"
	"github.com/fekuna/omnipos-inventory-service/pkg/scanner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		remote bool
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Read a QR code or barcode from a photo and find the product",
		Long: `scan decodes the image locally (QR, then barcode) and matches the code
against the first page of products, falling back to a server lookup.
With --remote the image is uploaded and the server decodes it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			if remote {
				if err := a.requireLogin(); err != nil {
					return err
				}
				res, err := a.client.ScanImage(ctx, filepath.Base(args[0]), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "Code: %s (%s via %s)\n", res.Code, res.Format, res.Decoder)
				if !res.Found {
					fmt.Fprintln(a.out, "No product has this code")
					return nil
				}
				fmt.Fprintf(a.out, "Product: %s [%s], %d in stock\n", res.Product.Name, res.Product.SKU, res.Product.TotalStock())
				return nil
			}

			sc := scanner.New()
			if err := sc.Load(ctx); err != nil {
				return err
			}
			store := catalog.NewStore(a.client, a.logger)
			store.PageSize = limit
			loggedIn := a.session.IsAuthenticated()
			if loggedIn {
				if _, err := store.FetchProducts(ctx, 1, true); err != nil {
					a.logger.Warn("could not load products for matching", zap.Error(err))
				}
			}

			out, err := sc.ScanFile(ctx, f, store.Products())
			if err != nil {
				return fmt.Errorf("%s: %w", sc.State(), err)
			}
			fmt.Fprintf(a.out, "Code: %s (%s via %s)\n", out.Result.Text, out.Result.Format, out.Result.Decoder)

			product := out.Product
			if product == nil && loggedIn {
				p, err := a.client.LookupProduct(ctx, out.Result.Text)
				if err != nil && apiclient.StatusCode(err) != http.StatusNotFound {
					return err
				}
				product = p
			}
			if product == nil {
				fmt.Fprintln(a.out, "No product has this code")
				return nil
			}
			fmt.Fprintf(a.out, "Product: %s [%s], %d in stock\n", product.Name, product.SKU, product.TotalStock())
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "let the server decode the image")
	cmd.Flags().IntVar(&limit, "match-limit", 100, "products loaded for local matching")
	return cmd
}
