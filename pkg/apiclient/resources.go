package apiclient

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"time"

	analyticsdto "github.com/fekuna/omnipos-inventory-service/internal/analytics/dto"
	catdto "github.com/fekuna/omnipos-inventory-service/internal/category/dto"
	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	orderdto "github.com/fekuna/omnipos-inventory-service/internal/order/dto"
	productdto "github.com/fekuna/omnipos-inventory-service/internal/product/dto"
	promodto "github.com/fekuna/omnipos-inventory-service/internal/promotion/dto"
	podto "github.com/fekuna/omnipos-inventory-service/internal/purchaseorder/dto"
	supplierdto "github.com/fekuna/omnipos-inventory-service/internal/supplier/dto"
	userdto "github.com/fekuna/omnipos-inventory-service/internal/user/dto"
)

// Query holds list parameters. Zero values are left out of the URL.
type Query struct {
	Page      int
	Limit     int
	Search    string
	SortBy    string
	SortOrder string
	Filters   map[string]string
}

func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", q.SortOrder)
	}
	for k, val := range q.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	return v
}

func list[T any](ctx context.Context, c *Client, path string, q Query) (*Page[T], error) {
	var items []T
	env, err := c.call(ctx, http.MethodGet, path, q.Values(), nil, &items)
	if err != nil {
		return nil, err
	}
	p := &Page[T]{Items: items}
	if env.Pagination != nil {
		p.Pagination = *env.Pagination
	}
	return p, nil
}

func get[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	var out T
	if _, err := c.call(ctx, http.MethodGet, path, query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func write[T any](ctx context.Context, c *Client, method, path string, payload interface{}) (*T, error) {
	var out T
	if _, err := c.call(ctx, method, path, nil, payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) remove(ctx context.Context, path string) error {
	_, err := c.call(ctx, http.MethodDelete, path, nil, nil, nil)
	return err
}

func (c *Client) upload(ctx context.Context, path, field, filename string, r io.Reader, out interface{}) error {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	_, err = c.do(ctx, &request{
		method:      http.MethodPost,
		path:        path,
		body:        &body,
		contentType: w.FormDataContentType(),
	}, out)
	return err
}

// Users and sessions

func (c *Client) Login(ctx context.Context, email, password string) (*userdto.Session, error) {
	return write[userdto.Session](ctx, c, http.MethodPost, "/users/login", &userdto.LoginInput{Email: email, Password: password})
}

func (c *Client) Register(ctx context.Context, input *userdto.RegisterInput) (*userdto.Session, error) {
	return write[userdto.Session](ctx, c, http.MethodPost, "/users/register", input)
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.call(ctx, http.MethodPost, "/users/logout", nil, nil, nil)
	return err
}

func (c *Client) Me(ctx context.Context) (*userdto.Session, error) {
	return get[userdto.Session](ctx, c, "/users/me", nil)
}

func (c *Client) ListUsers(ctx context.Context, q Query) (*Page[model.User], error) {
	return list[model.User](ctx, c, "/users", q)
}

func (c *Client) CreateUser(ctx context.Context, input *userdto.CreateUserInput) (*model.User, error) {
	return write[model.User](ctx, c, http.MethodPost, "/users", input)
}

func (c *Client) UpdateUser(ctx context.Context, id string, input *userdto.UpdateUserInput) (*model.User, error) {
	return write[model.User](ctx, c, http.MethodPut, "/users/"+url.PathEscape(id), input)
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.remove(ctx, "/users/"+url.PathEscape(id))
}

// Categories

func (c *Client) ListCategories(ctx context.Context, q Query) (*Page[model.Category], error) {
	return list[model.Category](ctx, c, "/categories", q)
}

func (c *Client) CategoryTree(ctx context.Context) ([]model.Category, error) {
	var tree []model.Category
	_, err := c.call(ctx, http.MethodGet, "/categories/tree", nil, nil, &tree)
	return tree, err
}

func (c *Client) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	return get[model.Category](ctx, c, "/categories/"+url.PathEscape(id), nil)
}

func (c *Client) CreateCategory(ctx context.Context, input *catdto.CreateCategoryInput) (*model.Category, error) {
	return write[model.Category](ctx, c, http.MethodPost, "/categories", input)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, input *catdto.UpdateCategoryInput) (*model.Category, error) {
	return write[model.Category](ctx, c, http.MethodPut, "/categories/"+url.PathEscape(id), input)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.remove(ctx, "/categories/"+url.PathEscape(id))
}

// Products

func (c *Client) ListProducts(ctx context.Context, q Query) (*Page[model.Product], error) {
	return list[model.Product](ctx, c, "/products", q)
}

func (c *Client) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return get[model.Product](ctx, c, "/products/"+url.PathEscape(id), nil)
}

// LookupProduct resolves a manually entered QR code or SKU.
func (c *Client) LookupProduct(ctx context.Context, code string) (*model.Product, error) {
	return get[model.Product](ctx, c, "/products/lookup", url.Values{"code": {code}})
}

func (c *Client) CreateProduct(ctx context.Context, input *productdto.CreateProductInput) (*model.Product, error) {
	return write[model.Product](ctx, c, http.MethodPost, "/products", input)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, input *productdto.UpdateProductInput) (*model.Product, error) {
	return write[model.Product](ctx, c, http.MethodPut, "/products/"+url.PathEscape(id), input)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.remove(ctx, "/products/"+url.PathEscape(id))
}

// UploadImage stores an image and returns its public URL.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (string, error) {
	var out struct {
		URL string `json:"url"`
	}
	if err := c.upload(ctx, "/uploads/image", "image", filename, r, &out); err != nil {
		return "", err
	}
	return out.URL, nil
}

// Stock

type StockResult struct {
	Movement *model.StockMovement `json:"movement"`
	Stock    model.StockSummary   `json:"stock"`
}

type StockLevel struct {
	ProductID string             `json:"productId"`
	Stock     model.StockSummary `json:"stock"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func (c *Client) IncreaseStock(ctx context.Context, input *invdto.StockChangeInput) (*StockResult, error) {
	return write[StockResult](ctx, c, http.MethodPost, "/stock/increase", input)
}

func (c *Client) ReduceStock(ctx context.Context, input *invdto.StockChangeInput) (*StockResult, error) {
	return write[StockResult](ctx, c, http.MethodPost, "/stock/reduce", input)
}

func (c *Client) ReserveStock(ctx context.Context, input *invdto.StockChangeInput) (*StockResult, error) {
	return write[StockResult](ctx, c, http.MethodPost, "/stock/reserve", input)
}

func (c *Client) ReleaseStock(ctx context.Context, input *invdto.StockChangeInput) (*StockResult, error) {
	return write[StockResult](ctx, c, http.MethodPost, "/stock/release", input)
}

func (c *Client) MoveStock(ctx context.Context, input *invdto.MoveStockInput) (*StockResult, error) {
	return write[StockResult](ctx, c, http.MethodPost, "/stock/move", input)
}

func (c *Client) AdjustStock(ctx context.Context, input *invdto.AdjustStockInput) (*StockResult, error) {
	return write[StockResult](ctx, c, http.MethodPost, "/stock/adjust", input)
}

func (c *Client) GetStockLevel(ctx context.Context, productID string) (*StockLevel, error) {
	return get[StockLevel](ctx, c, "/stock/levels/"+url.PathEscape(productID), nil)
}

func (c *Client) ListStockLevels(ctx context.Context, q Query) (*Page[invdto.LevelView], error) {
	return list[invdto.LevelView](ctx, c, "/stock/levels", q)
}

func (c *Client) ListMovements(ctx context.Context, q Query) (*Page[model.StockMovement], error) {
	return list[model.StockMovement](ctx, c, "/stock/movements", q)
}

func (c *Client) ReceiveBatch(ctx context.Context, input *invdto.ReceiveBatchInput) (*model.Batch, error) {
	return write[model.Batch](ctx, c, http.MethodPost, "/batches", input)
}

func (c *Client) ListBatches(ctx context.Context, productID string) ([]model.Batch, error) {
	var batches []model.Batch
	q := url.Values{}
	if productID != "" {
		q.Set("productId", productID)
	}
	_, err := c.call(ctx, http.MethodGet, "/batches", q, nil, &batches)
	return batches, err
}

// Alerts

type AlertPage struct {
	Page[model.Alert]
	UnreadCount int
}

func (c *Client) ListAlerts(ctx context.Context, q Query) (*AlertPage, error) {
	var alerts []model.Alert
	env, err := c.call(ctx, http.MethodGet, "/alerts", q.Values(), nil, &alerts)
	if err != nil {
		return nil, err
	}
	p := &AlertPage{Page: Page[model.Alert]{Items: alerts}}
	if env.Pagination != nil {
		p.Pagination = *env.Pagination
	}
	if env.UnreadCount != nil {
		p.UnreadCount = *env.UnreadCount
	}
	return p, nil
}

func (c *Client) MarkAlertRead(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodPut, "/alerts/"+url.PathEscape(id)+"/read", nil, nil, nil)
	return err
}

func (c *Client) MarkAllAlertsRead(ctx context.Context) (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	if _, err := c.call(ctx, http.MethodPut, "/alerts/read-all", nil, nil, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

func (c *Client) DeleteAlert(ctx context.Context, id string) error {
	return c.remove(ctx, "/alerts/"+url.PathEscape(id))
}

// Analytics

func (c *Client) Dashboard(ctx context.Context) (*analyticsdto.Dashboard, error) {
	return get[analyticsdto.Dashboard](ctx, c, "/analytics/dashboard", nil)
}

// Promotions

func (c *Client) ListPromotions(ctx context.Context, q Query) (*Page[model.Promotion], error) {
	return list[model.Promotion](ctx, c, "/promotions", q)
}

func (c *Client) CreatePromotion(ctx context.Context, input *promodto.CreatePromotionInput) (*model.Promotion, error) {
	return write[model.Promotion](ctx, c, http.MethodPost, "/promotions", input)
}

func (c *Client) DeletePromotion(ctx context.Context, id string) error {
	return c.remove(ctx, "/promotions/"+url.PathEscape(id))
}

// Orders

func (c *Client) ListOrders(ctx context.Context, q Query) (*Page[model.Order], error) {
	return list[model.Order](ctx, c, "/orders", q)
}

func (c *Client) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	return get[model.Order](ctx, c, "/orders/"+url.PathEscape(id), nil)
}

func (c *Client) CreateOrder(ctx context.Context, input *orderdto.CreateOrderInput) (*model.Order, error) {
	return write[model.Order](ctx, c, http.MethodPost, "/orders", input)
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string) (*model.Order, error) {
	return write[model.Order](ctx, c, http.MethodPut, "/orders/"+url.PathEscape(id)+"/status",
		&orderdto.UpdateStatusInput{Status: status})
}

// Suppliers

func (c *Client) ListSuppliers(ctx context.Context, q Query) (*Page[model.Supplier], error) {
	return list[model.Supplier](ctx, c, "/suppliers", q)
}

func (c *Client) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	return get[model.Supplier](ctx, c, "/suppliers/"+url.PathEscape(id), nil)
}

func (c *Client) CreateSupplier(ctx context.Context, input *supplierdto.CreateSupplierInput) (*model.Supplier, error) {
	return write[model.Supplier](ctx, c, http.MethodPost, "/suppliers", input)
}

func (c *Client) UpdateSupplier(ctx context.Context, id string, input *supplierdto.UpdateSupplierInput) (*model.Supplier, error) {
	return write[model.Supplier](ctx, c, http.MethodPut, "/suppliers/"+url.PathEscape(id), input)
}

func (c *Client) DeleteSupplier(ctx context.Context, id string) error {
	return c.remove(ctx, "/suppliers/"+url.PathEscape(id))
}

// Purchase orders

func (c *Client) ListPurchaseOrders(ctx context.Context, q Query) (*Page[model.PurchaseOrder], error) {
	return list[model.PurchaseOrder](ctx, c, "/purchase-orders", q)
}

func (c *Client) GetPurchaseOrder(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	return get[model.PurchaseOrder](ctx, c, "/purchase-orders/"+url.PathEscape(id), nil)
}

func (c *Client) CreatePurchaseOrder(ctx context.Context, input *podto.CreatePurchaseOrderInput) (*model.PurchaseOrder, error) {
	return write[model.PurchaseOrder](ctx, c, http.MethodPost, "/purchase-orders", input)
}

func (c *Client) UpdatePurchaseOrderStatus(ctx context.Context, id, status string) (*model.PurchaseOrder, error) {
	return write[model.PurchaseOrder](ctx, c, http.MethodPut, "/purchase-orders/"+url.PathEscape(id)+"/status",
		&podto.UpdateStatusInput{Status: status})
}

func (c *Client) ReceivePurchaseOrder(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	return write[model.PurchaseOrder](ctx, c, http.MethodPost, "/purchase-orders/"+url.PathEscape(id)+"/receive", nil)
}

// Reports

// ReportOptions selects the format (csv or txt) and, for sales, the period.
type ReportOptions struct {
	Format     string
	CategoryID string
	From       time.Time
	To         time.Time
}

func (o ReportOptions) values() url.Values {
	v := url.Values{}
	if o.Format != "" {
		v.Set("format", o.Format)
	}
	if o.CategoryID != "" {
		v.Set("categoryId", o.CategoryID)
	}
	if !o.From.IsZero() {
		v.Set("from", o.From.Format(time.RFC3339))
	}
	if !o.To.IsZero() {
		v.Set("to", o.To.Format(time.RFC3339))
	}
	return v
}

func (c *Client) InventoryReport(ctx context.Context, opts ReportOptions) (*Blob, error) {
	return c.download(ctx, "/reports/inventory", opts.values())
}

func (c *Client) LowStockReport(ctx context.Context, opts ReportOptions) (*Blob, error) {
	return c.download(ctx, "/reports/low-stock", opts.values())
}

func (c *Client) SalesReport(ctx context.Context, opts ReportOptions) (*Blob, error) {
	return c.download(ctx, "/reports/sales", opts.values())
}

// Scanning

type ScanResult struct {
	Code    string         `json:"code"`
	Format  string         `json:"format"`
	Decoder string         `json:"decoder"`
	Found   bool           `json:"found"`
	Product *model.Product `json:"product"`
}

// ScanImage uploads a photo and lets the server decode it.
func (c *Client) ScanImage(ctx context.Context, filename string, r io.Reader) (*ScanResult, error) {
	var out ScanResult
	if err := c.upload(ctx, "/scan", "image", filename, r, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
