package auth

import (
	"net/url"
	"strings"
	"time"

	"github.com/fekuna/omnipos-inventory-service/pkg/apperror"
	"github.com/gofiber/fiber/v2"
)

const (
	CookieAuthToken = "authToken"
	CookieUserData  = "userData"
)

// Middleware accepts a Bearer header or the authToken cookie and puts the
// caller on both the fiber locals and the request context.
func Middleware(tm *TokenManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(CookieAuthToken)
		if h := c.Get(fiber.HeaderAuthorization); strings.HasPrefix(h, "Bearer ") {
			token = strings.TrimPrefix(h, "Bearer ")
		}
		if token == "" {
			return apperror.Unauthorized("missing token")
		}

		u, err := tm.Parse(token)
		if err != nil {
			return apperror.Unauthorized("invalid or expired token")
		}

		c.Locals("user", u)
		c.SetUserContext(WithUser(c.UserContext(), u))
		return c.Next()
	}
}

func User(c *fiber.Ctx) UserContext {
	u, _ := c.Locals("user").(UserContext)
	return u
}

// SetSessionCookies writes authToken (HttpOnly) and userData (script readable,
// URL-encoded JSON).
func SetSessionCookies(c *fiber.Ctx, token, userJSON string, ttl time.Duration, secure bool) {
	exp := time.Now().Add(ttl)
	c.Cookie(&fiber.Cookie{
		Name:     CookieAuthToken,
		Value:    token,
		Path:     "/",
		Expires:  exp,
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	c.Cookie(&fiber.Cookie{
		Name:     CookieUserData,
		Value:    url.QueryEscape(userJSON),
		Path:     "/",
		Expires:  exp,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func ClearSessionCookies(c *fiber.Ctx) {
	for _, name := range []string{CookieAuthToken, CookieUserData} {
		c.Cookie(&fiber.Cookie{
			Name:    name,
			Value:   "",
			Path:    "/",
			Expires: time.Unix(0, 0),
		})
	}
}
