package usecase

import (
	"bytes"
	"context"
	"time"

	"github.com/fekuna/omnipos-inventory-service/internal/model"
	orderdto "github.com/fekuna/omnipos-inventory-service/internal/order/dto"
	productdto "github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/report"
	"github.com/fekuna/omnipos-inventory-service/internal/report/dto"
	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	rendering "github.com/fekuna/omnipos-inventory-service/pkg/report"
	"go.uber.org/zap"
)

const defaultSalesDays = 30

type reportUseCase struct {
	products report.ProductSource
	sales    report.SalesSource
	now      func() time.Time
	logger   logger.ZapLogger
}

func NewReportUseCase(products report.ProductSource, sales report.SalesSource, log logger.ZapLogger) report.UseCase {
	return &reportUseCase{
		products: products,
		sales:    sales,
		now:      time.Now,
		logger:   log,
	}
}

func (uc *reportUseCase) Inventory(ctx context.Context, req *dto.ReportRequest) (*dto.Document, error) {
	format, err := checkFormat(req.Format)
	if err != nil {
		return nil, err
	}
	products, err := uc.allProducts(ctx, req, false)
	if err != nil {
		return nil, err
	}

	at := uc.now()
	var buf bytes.Buffer
	if format == dto.FormatCSV {
		err = rendering.InventoryCSV(&buf, products)
	} else {
		err = rendering.InventoryText(&buf, "Inventory Report", at, products)
	}
	if err != nil {
		return nil, err
	}
	uc.logger.Info("inventory report generated",
		zap.String("organization_id", req.OrganizationID),
		zap.String("format", string(format)),
		zap.Int("products", len(products)),
	)
	return document("inventory", format, at, buf.Bytes()), nil
}

func (uc *reportUseCase) LowStock(ctx context.Context, req *dto.ReportRequest) (*dto.Document, error) {
	format, err := checkFormat(req.Format)
	if err != nil {
		return nil, err
	}
	products, err := uc.allProducts(ctx, req, true)
	if err != nil {
		return nil, err
	}

	at := uc.now()
	var buf bytes.Buffer
	if format == dto.FormatCSV {
		err = rendering.InventoryCSV(&buf, products)
	} else {
		err = rendering.LowStockText(&buf, at, products)
	}
	if err != nil {
		return nil, err
	}
	return document("low-stock", format, at, buf.Bytes()), nil
}

// Sales covers the last 30 days unless a period is given.
func (uc *reportUseCase) Sales(ctx context.Context, req *dto.ReportRequest) (*dto.Document, error) {
	format, err := checkFormat(req.Format)
	if err != nil {
		return nil, err
	}
	at := uc.now()
	from, to := req.From, req.To
	if to.IsZero() {
		to = at
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -defaultSalesDays)
	}

	lines, err := uc.sales.SalesByProduct(ctx, &orderdto.SalesFilters{
		OrganizationID: req.OrganizationID,
		From:           from,
		To:             to,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if format == dto.FormatCSV {
		err = rendering.SalesCSV(&buf, lines)
	} else {
		err = rendering.SalesText(&buf, from, to, lines)
	}
	if err != nil {
		return nil, err
	}
	return document("sales", format, at, buf.Bytes()), nil
}

func (uc *reportUseCase) allProducts(ctx context.Context, req *dto.ReportRequest, lowStock bool) ([]model.Product, error) {
	active := true
	products, _, err := uc.products.ListProducts(ctx, &productdto.ProductFilters{
		OrganizationID: req.OrganizationID,
		CategoryID:     req.CategoryID,
		IsActive:       &active,
		LowStock:       lowStock,
		SortBy:         "name",
		SortOrder:      "asc",
	})
	return products, err
}

func checkFormat(f dto.Format) (dto.Format, error) {
	switch f {
	case "":
		return dto.FormatCSV, nil
	case dto.FormatCSV, dto.FormatText:
		return f, nil
	default:
		return "", apperror.Validation("unsupported report format %q", f)
	}
}

func document(kind string, format dto.Format, at time.Time, body []byte) *dto.Document {
	contentType := rendering.ContentTypeCSV
	if format == dto.FormatText {
		contentType = rendering.ContentTypeText
	}
	return &dto.Document{
		Filename:    rendering.Filename(kind, string(format), at),
		ContentType: contentType,
		Body:        body,
	}
}
