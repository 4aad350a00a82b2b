package auth

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gs-sport/storefront/internal/domain"
)

// SessionCookieName carries the session token.
const SessionCookieName = "gs-sport-token"

// CookieSource is any cookie jar outside a fiber handler, e.g. *http.Request.
type CookieSource interface {
	Cookie(name string) (*http.Cookie, error)
}

// SessionResolver turns the session cookie into an identity.
// A missing cookie is treated exactly like an invalid token.
type SessionResolver struct {
	tokens *TokenManager
}

// NewSessionResolver constructs a resolver backed by tokens.
func NewSessionResolver(tokens *TokenManager) *SessionResolver {
	return &SessionResolver{tokens: tokens}
}

// Resolve reads the session from a fiber request.
func (r *SessionResolver) Resolve(c *fiber.Ctx) (domain.Identity, bool) {
	return r.tokens.Verify(c.Cookies(SessionCookieName))
}

// ResolveCookies reads the session from a net/http style cookie source.
func (r *SessionResolver) ResolveCookies(src CookieSource) (domain.Identity, bool) {
	if src == nil {
		return domain.Identity{}, false
	}
	cookie, err := src.Cookie(SessionCookieName)
	if err != nil || cookie == nil {
		return domain.Identity{}, false
	}
	return r.tokens.Verify(cookie.Value)
}

// SetSessionCookie writes the session cookie.
func SetSessionCookie(c *fiber.Ctx, token string, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		Secure:   secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
