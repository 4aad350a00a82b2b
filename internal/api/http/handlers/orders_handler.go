package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gs-sport/storefront/internal/api/dto"
	"github.com/gs-sport/storefront/internal/auth"
	"github.com/gs-sport/storefront/internal/service"
	apperrors "github.com/gs-sport/storefront/pkg/util"
)

// OrdersHandler exposes checkout and order lookup.
type OrdersHandler struct {
	orders *service.OrderService
}

// NewOrdersHandler constructs handler.
func NewOrdersHandler(orderService *service.OrderService) *OrdersHandler {
	return &OrdersHandler{orders: orderService}
}

// Create handles POST /api/orders.
func (h *OrdersHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	order, err := h.orders.Create(c.UserContext(), identity, req.ToInput())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewOrderResponse(order))
}

// Mine handles GET /api/orders/mine.
func (h *OrdersHandler) Mine(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	orders, err := h.orders.ListMine(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrdersResponse(orders))
}

// Get handles GET /api/orders/:id.
func (h *OrdersHandler) Get(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	order, err := h.orders.Get(c.UserContext(), identity, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(order))
}

// UpdateStatus handles PUT /api/orders/:id.
func (h *OrdersHandler) UpdateStatus(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	order, err := h.orders.UpdateStatus(c.UserContext(), identity, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewOrderResponse(order))
}
