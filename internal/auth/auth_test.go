package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fekuna/omnipos-inventory-service/pkg/logger"
	"github.com/fekuna/omnipos-inventory-service/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	want := UserContext{OrganizationID: "org-1", UserID: "user-1", Email: "a@b.c", Role: "admin"}

	token, err := tm.Generate(want)
	require.NoError(t, err)

	got, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := tm.Generate(UserContext{UserID: "u"})
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddleware(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, err := tm.Generate(UserContext{OrganizationID: "org-1", UserID: "user-1"})
	require.NoError(t, err)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler(logger.NewNop())})
	app.Get("/me", Middleware(tm), func(c *fiber.Ctx) error {
		return c.SendString(GetOrganizationID(c.UserContext()) + "/" + User(c).UserID)
	})

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantStatus int
	}{
		{"bearer", "Bearer " + token, "", 200},
		{"cookie", "", token, 200},
		{"missing", "", "", 401},
		{"garbage", "Bearer nope", "", 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.Header.Set("Cookie", CookieAuthToken+"="+tt.cookie)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
