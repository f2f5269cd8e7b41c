package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/internal/model"
	"github.com/fekuna/omnipos-inventory-service/pkg/apiclient"
	"github.com/fekuna/omnipos-inventory-service/pkg/response"
	"github.com/fekuna/omnipos-inventory-service/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": status < 400,
		"data":    data,
	})
}

// runCLI executes invctl against srv with a session file in a temp dir.
func runCLI(t *testing.T, srv *httptest.Server, sessionFile string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd(config.LoadEnv())
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--api-url", srv.URL, "--session-file", sessionFile}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func loggedIn(t *testing.T, path string) {
	t.Helper()
	store := session.NewFileStore(path)
	exp := time.Now().Add(time.Hour)
	require.NoError(t, store.Set(session.Cookie{Name: session.CookieAuthToken, Value: "tok", Expires: exp}))
	require.NoError(t, store.Set(session.Cookie{Name: session.CookieUserData, Value: `{"id":"u-1","email":"a@shop.test"}`, Expires: exp}))
}

func TestLoginStoresSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/login", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "owner@shop.test", body["email"])
		writeEnvelope(w, http.StatusOK, map[string]interface{}{
			"token":        "tok-123",
			"user":         map[string]string{"id": "u-1", "name": "Owner", "email": "owner@shop.test"},
			"organization": map[string]string{"id": "org-1", "name": "Shop", "subscriptionStatus": "trial"},
		})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "session.yaml")
	out, _, err := runCLI(t, srv, path, "login", "--email", "owner@shop.test", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as Owner <owner@shop.test> (Shop, trial)")

	token, ok := session.NewFileStore(path).Get(session.CookieAuthToken)
	require.True(t, ok)
	assert.Equal(t, "tok-123", token)
}

func TestCommandsRequireLogin(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "session.yaml")
	for _, args := range [][]string{
		{"whoami"},
		{"products", "list"},
		{"report", "inventory"},
		{"check", "api-flow"},
	} {
		_, _, err := runCLI(t, srv, path, args...)
		assert.True(t, errors.Is(err, errNotLoggedIn), args)
	}
}

func TestUnauthorizedEndsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusUnauthorized, nil)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "session.yaml")
	loggedIn(t, path)

	_, errOut, err := runCLI(t, srv, path, "whoami")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apiclient.StatusCode(err))
	assert.Contains(t, errOut, "Signed out")

	_, ok := session.NewFileStore(path).Get(session.CookieAuthToken)
	assert.False(t, ok)
}

func TestReportWritesFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reports/low-stock", r.URL.Path)
		assert.Equal(t, "txt", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="low-stock-report-2026-03-01.txt"`)
		_, _ = w.Write([]byte("Low Stock Report\n"))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "session.yaml")
	loggedIn(t, path)
	dir := t.TempDir()

	out, _, err := runCLI(t, srv, path, "report", "low-stock", "--format", "txt", "--out", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "low-stock-report-2026-03-01.txt")

	data, err := os.ReadFile(filepath.Join(dir, "low-stock-report-2026-03-01.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Low Stock Report\n", string(data))
}

func TestReportRejectsUnknownKind(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	_, _, err := runCLI(t, srv, filepath.Join(t.TempDir(), "s.yaml"), "report", "profit")
	assert.Error(t, err)
}

func TestProductsList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("lowStock"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": []map[string]interface{}{
				{"id": "p1", "sku": "SOAP", "name": "Soap", "quantity": 2, "lowStockThreshold": 5},
			},
			"pagination": response.NewPagination(1, 20, 1),
		})
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "session.yaml")
	loggedIn(t, path)

	out, _, err := runCLI(t, srv, path, "products", "list", "--low-stock")
	require.NoError(t, err)
	assert.Contains(t, out, "SOAP")
	assert.Contains(t, out, "low_stock")
	assert.Contains(t, out, "Page 1/1, 1 products")
}

func TestProjectCategoryLinesFallsBackToQuantity(t *testing.T) {
	godown, store := 4, 6
	withStock := model.ProductRow{Product: model.Product{SKU: "A", Name: "A", Quantity: 99, LowStockThreshold: 2}, Godown: &godown, Store: &store}
	legacy := model.ProductRow{Product: model.Product{SKU: "B", Name: "B", Quantity: 7, LowStockThreshold: 2}}

	lines := projectCategoryLines("Staples", []model.ProductRow{withStock, legacy})
	require.Len(t, lines, 2)
	assert.Equal(t, 10, lines[0].Total)
	assert.False(t, lines[0].Legacy)
	assert.Equal(t, 7, lines[1].Total)
	assert.True(t, lines[1].Legacy)
	assert.Equal(t, "Staples", lines[1].Category)

	var buf bytes.Buffer
	require.NoError(t, writeCategoryLines(&buf, &categoryRef{ID: "c1", Name: "Staples"}, lines))
	assert.Contains(t, buf.String(), "7 (quantity)")
	assert.Contains(t, buf.String(), "2 products, 17 units")
}

func TestTallyCategory(t *testing.T) {
	c := model.Category{Name: "Household", ProductCount: 3}
	products := []model.Product{
		{Quantity: 0, LowStockThreshold: 5},
		{Quantity: 3, LowStockThreshold: 5},
		{Quantity: 20, LowStockThreshold: 5},
	}
	got := tallyCategory(c, products)
	assert.Equal(t, categoryTally{Name: "Household", ProductCount: 3, Listed: 3, Units: 23, Low: 1, Out: 1}, got)
	assert.True(t, got.consistent())
	assert.False(t, tallyCategory(c, products[:1]).consistent())
}

func TestCollectWalksPages(t *testing.T) {
	var pages []int
	fetch := func(_ context.Context, q apiclient.Query) (*apiclient.Page[int], error) {
		pages = append(pages, q.Page)
		assert.Equal(t, pageLimit, q.Limit)
		return &apiclient.Page[int]{
			Items:      []int{q.Page},
			Pagination: response.NewPagination(q.Page, q.Limit, 250),
		}, nil
	}
	all, err := collect(context.Background(), fetch, apiclient.Query{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, all)
	assert.Equal(t, []int{1, 2, 3}, pages)
}

func TestRunStepsCollectsFailures(t *testing.T) {
	var buf bytes.Buffer
	err := runSteps(context.Background(), &buf, []checkStep{
		{"first", func(context.Context) (string, error) { return "fine", nil }},
		{"second", func(context.Context) (string, error) { return "", errors.New("boom") }},
		{"third", func(context.Context) (string, error) { return "", nil }},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "second: boom")
	assert.Equal(t, "ok    first (fine)\nFAIL  second: boom\nok    third\n", buf.String())
}
