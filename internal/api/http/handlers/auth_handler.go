package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gs-sport/storefront/internal/api/dto"
	"github.com/gs-sport/storefront/internal/auth"
	"github.com/gs-sport/storefront/internal/service"
	apperrors "github.com/gs-sport/storefront/pkg/util"
)

// AuthHandler exposes account session endpoints.
type AuthHandler struct {
	auth         *service.AuthService
	secureCookie bool
}

// NewAuthHandler constructs handler. secureCookie marks the session cookie Secure.
func NewAuthHandler(authService *service.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{auth: authService, secureCookie: secureCookie}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}

	auth.SetSessionCookie(c, session.Token, h.secureCookie)
	return c.Status(fiber.StatusCreated).JSON(dto.SessionResponse{User: dto.NewUserResponse(session.User)})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	auth.SetSessionCookie(c, session.Token, h.secureCookie)
	return c.JSON(dto.SessionResponse{User: dto.NewUserResponse(session.User)})
}

// Logout handles POST /api/auth/logout. It succeeds with or without a session.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	auth.ClearSessionCookie(c, h.secureCookie)
	return c.JSON(dto.SuccessResponse{Success: true})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	user, err := h.auth.Me(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return c.JSON(dto.SessionResponse{User: dto.NewUserResponse(user)})
}
