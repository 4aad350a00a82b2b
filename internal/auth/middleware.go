package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gs-sport/storefront/internal/domain"
)

const identityKey = "auth_identity"

// Gateway runs the access guard before routing. On pass the resolved
// identity, if any, is stored for downstream handlers.
func Gateway(resolver *SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var current *domain.Identity
		if identity, ok := resolver.Resolve(c); ok {
			current = &identity
		}

		decision := Decide(c.Path(), current)
		if decision.Outcome != OutcomePass {
			return c.Redirect(decision.Location, fiber.StatusTemporaryRedirect)
		}
		if current != nil {
			c.Locals(identityKey, *current)
		}
		return c.Next()
	}
}

// Authenticate resolves the session for API routes without enforcing it.
// Enforcement happens in RequireIdentity, RequireRole and the handlers.
func Authenticate(resolver *SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if identity, ok := resolver.Resolve(c); ok {
			c.Locals(identityKey, identity)
		}
		return c.Next()
	}
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(domain.Identity)
	return identity, ok
}
