package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/gs-sport/storefront/internal/api/dto"
	"github.com/gs-sport/storefront/internal/auth"
	"github.com/gs-sport/storefront/internal/service"
	apperrors "github.com/gs-sport/storefront/pkg/util"
)

// AdminHandler exposes user and order management for administrators.
type AdminHandler struct {
	admin  *service.AdminService
	orders *service.OrderService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService, orderService *service.OrderService) *AdminHandler {
	return &AdminHandler{admin: adminService, orders: orderService}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	page, err := h.admin.ListUsers(c.UserContext(), identity, service.UserQuery{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   parsePage(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserListResponse(page))
}

// UpdateUserRole handles PUT /api/admin/users/:id.
func (h *AdminHandler) UpdateUserRole(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.admin.UpdateUserRole(c.UserContext(), identity, c.Params("id"), req.Role)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// DeleteUser handles DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	if err := h.admin.DeleteUser(c.UserContext(), identity, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(dto.SuccessResponse{Success: true})
}

// ListOrders handles GET /api/admin/orders.
func (h *AdminHandler) ListOrders(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	page, err := h.orders.List(c.UserContext(), identity, service.OrderQuery{
		Status: c.Query("status"),
		Page:   parsePage(c),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderListResponse(page))
}

func parsePage(c *fiber.Ctx) service.Page {
	return service.Page{
		Number: parseInt(c.Query("page"), 1),
		Size:   parseInt(c.Query("limit"), 0),
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
