package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gs-sport/storefront/internal/api/http/handlers"
	"github.com/gs-sport/storefront/internal/auth"
	"github.com/gs-sport/storefront/internal/config"
	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/events"
	"github.com/gs-sport/storefront/internal/observability"
	"github.com/gs-sport/storefront/internal/presence"
	"github.com/gs-sport/storefront/internal/repository/repofake"
	"github.com/gs-sport/storefront/internal/service"
)

const adminEmail = "boss@gs-sport.ge"

type testEnv struct {
	app     *fiber.App
	product domain.ProductSummary
}

func newTestEnv(t *testing.T, limiter *RateLimiter) testEnv {
	t.Helper()

	users := repofake.NewFakeUserRepo()
	product := domain.ProductSummary{ID: uuid.NewString(), Name: "Away shirt", Price: 59.9}
	products := repofake.NewFakeProductRepo(product)
	orders := repofake.NewFakeOrderRepo(products)
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager("router-test-secret")
	resolver := auth.NewSessionResolver(tokens)
	metrics := observability.NewMetrics(nil)

	authService := service.NewAuthService(
		config.AuthConfig{BcryptCost: bcrypt.MinCost, BootstrapAdminEmails: []string{adminEmail}},
		service.AuthDependencies{UserRepo: users, Tokens: tokens},
	)
	adminService := service.NewAdminService(service.AdminDependencies{UserRepo: users, Dispatcher: dispatcher})
	orderService := service.NewOrderService(service.OrderDependencies{
		OrderRepo:   orders,
		ProductRepo: products,
		Dispatcher:  dispatcher,
	})
	tracker := presence.NewTracker(presence.NewMemoryStore(), zap.NewNop(), presence.Options{Observer: metrics})

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	RegisterRoutes(app, RouteConfig{
		Health:      handlers.NewHealthHandler("storefront", "test", nil, nil),
		Auth:        handlers.NewAuthHandler(authService, false),
		Presence:    handlers.NewPresenceHandler(tracker),
		Admin:       handlers.NewAdminHandler(adminService, orderService),
		Orders:      handlers.NewOrdersHandler(orderService),
		Resolver:    resolver,
		AuthLimiter: limiter,
		Metrics:     metrics,
	})
	return testEnv{app: app, product: product}
}

func (e testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (e testEnv) register(t *testing.T, name, email string) (*http.Cookie, string) {
	t.Helper()
	resp, body := e.do(t, http.MethodPost, "/api/auth/register",
		`{"name":"`+name+`","email":"`+email+`","password":"password1"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	user := body["user"].(map[string]any)
	return sessionCookie(t, resp), user["id"].(string)
}

func sessionCookie(t *testing.T, resp *http.Response) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == auth.SessionCookieName {
			return c
		}
	}
	t.Fatalf("response has no %s cookie", auth.SessionCookieName)
	return nil
}

func TestRegisterThenListOwnOrders(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.do(t, http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ann@x.com","password":"password1"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	cookie := sessionCookie(t, resp)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)

	user := body["user"].(map[string]any)
	assert.Equal(t, "ann@x.com", user["email"])
	assert.Equal(t, "USER", user["role"])
	assert.NotContains(t, user, "passwordHash")

	resp, body = env.do(t, http.MethodGet, "/api/orders/mine", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{}, body["orders"])

	resp, body = env.do(t, http.MethodGet, "/api/auth/me", "", cookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ann", body["user"].(map[string]any)["name"])
}

func TestDuplicateRegistrationAndBadLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.register(t, "Ann", "ann@x.com")

	resp, body := env.do(t, http.MethodPost, "/api/auth/register",
		`{"name":"Ann","email":"ANN@x.com","password":"password1"}`, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "CONFLICT", body["error"].(map[string]any)["code"])

	resp, _ = env.do(t, http.MethodPost, "/api/auth/login", `{"email":"ann@x.com","password":"nope-nope"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPost, "/api/auth/login", `{"email":"ann@x.com","password":"password1"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, sessionCookie(t, resp).Value)
}

func TestLogoutClearsCookie(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.do(t, http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Empty(t, sessionCookie(t, resp).Value)
}

func TestProtectedEndpointsRequireSession(t *testing.T) {
	env := newTestEnv(t, nil)
	forged := &http.Cookie{Name: auth.SessionCookieName, Value: "not-a-token"}

	for _, path := range []string{"/api/orders/mine", "/api/auth/me", "/api/admin/users"} {
		resp, _ := env.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)

		resp, _ = env.do(t, http.MethodGet, path, "", forged)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t, nil)
	adminCookie, adminID := env.register(t, "Boss", adminEmail)
	userCookie, userID := env.register(t, "Bob", "bob@x.com")

	resp, _ := env.do(t, http.MethodGet, "/api/admin/users", "", userCookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := env.do(t, http.MethodGet, "/api/admin/users?limit=1&page=2", "", adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["total"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 1, body["limit"])
	assert.EqualValues(t, 2, body["totalPages"])
	assert.Len(t, body["users"], 1)

	resp, _ = env.do(t, http.MethodPut, "/api/admin/users/"+adminID, `{"role":"USER"}`, adminCookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/admin/users/"+adminID, "", adminCookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPut, "/api/admin/users/"+strings.ToUpper(adminID), `{"role":"USER"}`, adminCookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = env.do(t, http.MethodDelete, "/api/admin/users/"+strings.ToUpper(adminID), "", adminCookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodGet, "/api/auth/me", "", adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ADMIN", body["user"].(map[string]any)["role"])

	resp, _ = env.do(t, http.MethodPut, "/api/admin/users/"+userID, `{"role":"OWNER"}`, adminCookie)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = env.do(t, http.MethodPut, "/api/admin/users/"+userID, `{"role":"ADMIN"}`, adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ADMIN", body["role"])

	resp, body = env.do(t, http.MethodDelete, "/api/admin/users/"+userID, "", adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])

	resp, _ = env.do(t, http.MethodDelete, "/api/admin/users/"+uuid.NewString(), "", adminCookie)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderOwnership(t *testing.T) {
	env := newTestEnv(t, nil)
	u1, _ := env.register(t, "One", "one@x.com")
	u2, _ := env.register(t, "Two", "two@x.com")
	adminCookie, _ := env.register(t, "Boss", adminEmail)

	checkout := `{"items":[{"productId":"` + env.product.ID + `","quantity":2,"size":"M"}],` +
		`"shippingAddress":"1 Main St","phone":"555-0100"}`
	resp, body := env.do(t, http.MethodPost, "/api/orders", checkout, u1)
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	orderID := body["id"].(string)
	assert.Equal(t, "PENDING", body["status"])
	assert.InDelta(t, 119.8, body["total"], 0.001)

	resp, body = env.do(t, http.MethodGet, "/api/orders/"+orderID, "", u1)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	item := body["items"].([]any)[0].(map[string]any)
	assert.Equal(t, "Away shirt", item["product"].(map[string]any)["name"])

	resp, _ = env.do(t, http.MethodGet, "/api/orders/"+orderID, "", u2)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/api/orders/"+orderID, "", adminCookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = env.do(t, http.MethodPut, "/api/orders/"+orderID, `{"status":"SHIPPED"}`, u1)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = env.do(t, http.MethodPut, "/api/orders/"+orderID, `{"status":"SHIPPED"}`, adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "SHIPPED", body["status"])

	resp, body = env.do(t, http.MethodGet, "/api/admin/orders?status=SHIPPED", "", adminCookie)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["total"])

	resp, body = env.do(t, http.MethodGet, "/api/orders/mine", "", u2)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["orders"])
}

func TestPresenceAlwaysAnswers200(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.do(t, http.MethodPost, "/api/presence", `{"sessionId":"tab-1"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, body["count"])

	resp, body = env.do(t, http.MethodPost, "/api/presence", `{"sessionId":"tab-2"}`, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["count"])

	resp, body = env.do(t, http.MethodGet, "/api/presence", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, body["count"])

	for _, payload := range []string{`{"sessionId":""}`, `{"sessionId":"` + strings.Repeat("x", 101) + `"}`, `{not json`} {
		resp, body = env.do(t, http.MethodPost, "/api/presence", payload, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, payload)
		assert.EqualValues(t, 0, body["count"], payload)
	}
}

func TestGatewayRedirectsPages(t *testing.T) {
	env := newTestEnv(t, nil)
	userCookie, _ := env.register(t, "Ann", "ann@x.com")

	resp, _ := env.do(t, http.MethodGet, "/dashboard/orders", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard%2Forders", resp.Header.Get(fiber.HeaderLocation))

	resp, _ = env.do(t, http.MethodGet, "/admin", "", userCookie)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))

	resp, _ = env.do(t, http.MethodGet, "/ADMIN/users", "", userCookie)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get(fiber.HeaderLocation))

	resp, _ = env.do(t, http.MethodGet, "/Dashboard", "", nil)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/login?callbackUrl=%2FDashboard", resp.Header.Get(fiber.HeaderLocation))

	resp, _ = env.do(t, http.MethodGet, "/login", "", userCookie)
	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/dashboard", resp.Header.Get(fiber.HeaderLocation))
}

func TestMetricsRequireAdmin(t *testing.T) {
	env := newTestEnv(t, nil)
	userCookie, _ := env.register(t, "Ann", "ann@x.com")
	adminCookie, _ := env.register(t, "Boss", adminEmail)

	resp, _ := env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/metrics", "", userCookie)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = env.do(t, http.MethodGet, "/metrics", "", adminCookie)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthRateLimit(t *testing.T) {
	limiter := NewRateLimiter(RateLimiterConfig{PerMinute: 1, Burst: 1}, nil)
	t.Cleanup(limiter.Stop)
	env := newTestEnv(t, limiter)

	resp, _ := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"password1"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"password1"}`, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))
	assert.Equal(t, "RATE_LIMITED", body["error"].(map[string]any)["code"])

	resp, _ = env.do(t, http.MethodGet, "/api/presence", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteUsesErrorEnvelope(t *testing.T) {
	env := newTestEnv(t, nil)

	resp, body := env.do(t, http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["error"].(map[string]any)["code"])
}
