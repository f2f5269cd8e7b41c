package report

import (
	"context"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	orderdto "github.com/fekuna/omnipos-inventory-service/internal/order/dto"
	productdto "github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/report/dto"
)

type UseCase interface {
	Inventory(ctx context.Context, req *dto.ReportRequest) (*dto.Document, error)
	LowStock(ctx context.Context, req *dto.ReportRequest) (*dto.Document, error)
	Sales(ctx context.Context, req *dto.ReportRequest) (*dto.Document, error)
}

type ProductSource interface {
	ListProducts(ctx context.Context, filters *productdto.ProductFilters) ([]model.Product, int, error)
}

type SalesSource interface {
	SalesByProduct(ctx context.Context, filters *orderdto.SalesFilters) ([]model.SalesLine, error)
}
