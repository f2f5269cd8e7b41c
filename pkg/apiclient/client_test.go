package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	invdto "github.com/fekuna/omnipos-inventory-service/internal/inventory/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

type fakeSession struct {
	active  bool
	expired int
}

func (s *fakeSession) HasSession() bool { return s.active }

func (s *fakeSession) HandleSessionExpiry() {
	s.expired++
	s.active = false
}

type fakeNav struct {
	path    string
	visited []string
}

func (n *fakeNav) CurrentPath() string { return n.path }

func (n *fakeNav) Navigate(path string) {
	n.visited = append(n.visited, path)
	n.path = path
}

type toasts struct {
	mu   sync.Mutex
	msgs []string
}

func (t *toasts) Error(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.msgs = append(t.msgs, msg)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestBearerTokenPerRequest(t *testing.T) {
	var got []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = append(got, r.Header.Get("Authorization"))
		writeJSON(w, 200, map[string]interface{}{"success": true, "data": []interface{}{}})
	}))
	defer srv.Close()

	c := New(srv.URL, WithTokenSource(staticToken("source-token")))
	_, err := c.ListProducts(context.Background(), Query{})
	require.NoError(t, err)
	_, err = c.ListProducts(WithToken(context.Background(), "ctx-token"), Query{})
	require.NoError(t, err)

	anon := New(srv.URL)
	_, err = anon.ListProducts(context.Background(), Query{})
	require.NoError(t, err)

	assert.Equal(t, []string{"Bearer source-token", "Bearer ctx-token", ""}, got)
}

func TestListDecodesPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "name", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "cat-1", r.URL.Query().Get("categoryId"))
		assert.False(t, r.URL.Query().Has("search"))
		writeJSON(w, 200, map[string]interface{}{
			"success":    true,
			"data":       []map[string]interface{}{{"id": "p1", "name": "Tea", "price": "3.50"}},
			"pagination": map[string]int{"page": 2, "limit": 10, "total": 11, "totalPages": 2},
		})
	}))
	defer srv.Close()

	page, err := New(srv.URL+"/api/").ListProducts(context.Background(), Query{
		Page: 2, Limit: 10, SortBy: "name", Filters: map[string]string{"categoryId": "cat-1"},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "p1", page.Items[0].ID)
	assert.Equal(t, "3.5", page.Items[0].Price.String())
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 11, page.Pagination.Total)
}

func TestUnauthorizedExpiresSessionAndRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 401, map[string]interface{}{"success": false, "message": "invalid or expired token"})
	}))
	defer srv.Close()

	tests := []struct {
		name        string
		active      bool
		path        string
		wantExpired int
		wantVisits  []string
	}{
		{"session on dashboard", true, "/dashboard", 1, []string{"/login"}},
		{"session already on login", true, "/login", 1, nil},
		{"no session", false, "/dashboard", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := &fakeSession{active: tt.active}
			nav := &fakeNav{path: tt.path}
			notes := &toasts{}
			c := New(srv.URL, WithSessionHandler(session), WithNavigator(nav), WithNotifier(notes))

			_, err := c.Me(context.Background())
			require.Error(t, err)
			assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
			assert.Equal(t, tt.wantExpired, session.expired)
			assert.Equal(t, tt.wantVisits, nav.visited)
			assert.Empty(t, notes.msgs)
		})
	}
}

func TestErrorStatusesToast(t *testing.T) {
	status := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, map[string]interface{}{"success": false, "message": "nope"})
	}))
	defer srv.Close()

	tests := []struct {
		status int
		lang   string
		want   string
	}{
		{403, "en", "You do not have permission to perform this action."},
		{404, "en", "The requested resource was not found."},
		{500, "en", "Something went wrong on our side. Please try again later."},
		{503, "id", "Terjadi kesalahan pada server. Silakan coba lagi nanti."},
		{409, "en", ""},
	}
	for _, tt := range tests {
		status = tt.status
		notes := &toasts{}
		c := New(srv.URL, WithNotifier(notes), WithLanguage(tt.lang))

		_, err := c.GetProduct(context.Background(), "p1")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tt.status, apiErr.StatusCode)
		assert.Equal(t, "nope", apiErr.Message)
		if tt.want == "" {
			assert.Empty(t, notes.msgs)
		} else {
			assert.Equal(t, []string{tt.want}, notes.msgs)
		}
	}
}

func TestNetworkErrorToast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	notes := &toasts{}
	_, err := New(url, WithNotifier(notes), WithTimeout(time.Second)).Dashboard(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Network)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, []string{"Network error. Please check your connection."}, notes.msgs)
}

func TestStockChangeSendsJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/stock/increase", r.URL.Path)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "p1", body["productId"])
		assert.EqualValues(t, 5, body["quantity"])
		assert.NotContains(t, body, "OrganizationID")
		writeJSON(w, 200, map[string]interface{}{"success": true, "data": map[string]interface{}{
			"stock": map[string]int{"godown": 5, "store": 0, "total": 5, "reserved": 0, "available": 0},
		}})
	}))
	defer srv.Close()

	res, err := New(srv.URL).IncreaseStock(context.Background(), &invdto.StockChangeInput{
		OrganizationID: "ignored", ProductID: "p1", Location: "godown", Quantity: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Stock.Total)
}

func TestReportDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "txt", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="inventory-report-2026-03-01.txt"`)
		_, _ = io.WriteString(w, "Inventory Report\n")
	}))
	defer srv.Close()

	blob, err := New(srv.URL).InventoryReport(context.Background(), ReportOptions{Format: "txt"})
	require.NoError(t, err)
	assert.Equal(t, "inventory-report-2026-03-01.txt", blob.Filename)
	assert.True(t, strings.HasPrefix(blob.ContentType, "text/plain"))
	assert.Equal(t, "Inventory Report\n", string(blob.Data))
}

func TestScanImageUploadsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, fh, err := r.FormFile("image")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "shelf.png", fh.Filename)
		writeJSON(w, 200, map[string]interface{}{"success": true, "data": map[string]interface{}{
			"code": "ABC123", "format": "QR_CODE", "decoder": "qr", "found": false,
		}})
	}))
	defer srv.Close()

	res, err := New(srv.URL).ScanImage(context.Background(), "shelf.png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, "ABC123", res.Code)
	assert.False(t, res.Found)
}

func TestStatusCodeOfOtherErrors(t *testing.T) {
	assert.Zero(t, StatusCode(errors.New("plain")))
	assert.Zero(t, StatusCode(nil))
}
