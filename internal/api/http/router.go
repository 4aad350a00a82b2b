package http

import (
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/gs-sport/storefront/internal/api/http/handlers"
	"github.com/gs-sport/storefront/internal/auth"
	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/observability"
)

const apiPrefix = "/api"

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Auth        *handlers.AuthHandler
	Presence    *handlers.PresenceHandler
	Admin       *handlers.AdminHandler
	Orders      *handlers.OrdersHandler
	Resolver    *auth.SessionResolver
	AuthLimiter *RateLimiter
	Metrics     *observability.Metrics
	StaticDir   string
}

// RegisterRoutes wires HTTP routes. Page requests pass through the access
// gateway; JSON endpoints under /api enforce access per route instead.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	gateway := auth.Gateway(cfg.Resolver)
	app.Use(func(c *fiber.Ctx) error {
		if isAPIPath(c.Path()) {
			return c.Next()
		}
		return gateway(c)
	})

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", adaptor.HTTPHandler(adminOnly(cfg.Resolver, cfg.Metrics.Handler())))

	api := app.Group(apiPrefix, auth.Authenticate(cfg.Resolver))

	limited := func(c *fiber.Ctx) error { return c.Next() }
	if cfg.AuthLimiter != nil {
		limited = cfg.AuthLimiter.Handler()
	}
	authGroup := api.Group("/auth")
	authGroup.Post("/register", limited, cfg.Auth.Register)
	authGroup.Post("/login", limited, cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", auth.RequireIdentity(), cfg.Auth.Me)

	api.Post("/presence", cfg.Presence.Heartbeat)
	api.Get("/presence", cfg.Presence.Count)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/users", cfg.Admin.ListUsers)
	admin.Put("/users/:id", cfg.Admin.UpdateUserRole)
	admin.Delete("/users/:id", cfg.Admin.DeleteUser)
	admin.Get("/orders", cfg.Admin.ListOrders)

	orders := api.Group("/orders", auth.RequireIdentity())
	orders.Post("/", cfg.Orders.Create)
	orders.Get("/mine", cfg.Orders.Mine)
	orders.Get("/:id", cfg.Orders.Get)
	orders.Put("/:id", auth.RequireRole(domain.RoleAdmin), cfg.Orders.UpdateStatus)

	if cfg.StaticDir != "" {
		registerPages(app, cfg.StaticDir)
	}
}

// registerPages serves the storefront build. Unknown page paths fall back to
// index.html so client-side routing works; /api misses stay 404.
func registerPages(app *fiber.App, dir string) {
	app.Static("/", dir, fiber.Static{Index: "index.html"})
	index := filepath.Join(dir, "index.html")
	app.Get("/*", func(c *fiber.Ctx) error {
		if isAPIPath(c.Path()) {
			return fiber.ErrNotFound
		}
		return c.SendFile(index)
	})
}

func isAPIPath(path string) bool {
	return path == apiPrefix || strings.HasPrefix(path, apiPrefix+"/")
}
