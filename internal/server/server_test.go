package server

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.LoadEnv()
	cfg.Server.UploadDir = t.TempDir()
	s, err := New(cfg, Deps{}, logger.NewNop())
	require.NoError(t, err)
	return s
}

func TestHealthWithoutBackends(t *testing.T) {
	resp, err := newTestServer(t).App().Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := newTestServer(t).App()
	for _, path := range []string{
		"/api/products", "/api/users/me", "/api/stock/levels", "/api/reports/inventory",
		"/api/analytics/dashboard", "/api/orders", "/api/alerts",
	} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestLoginIsPublic(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/users/login", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := newTestServer(t).App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestValidTokenPassesAuth(t *testing.T) {
	s := newTestServer(t)
	token, err := s.svc.tokens.Generate(auth.UserContext{OrganizationID: "org-1", UserID: "u-1"})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/api/reports/inventory?format=pdf", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := s.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestNormalizePort(t *testing.T) {
	assert.Equal(t, ":5001", normalizePort("5001"))
	assert.Equal(t, ":5001", normalizePort(":5001"))
	assert.Equal(t, "0.0.0.0:5001", normalizePort("0.0.0.0:5001"))
}
