package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/gs-sport/storefront/internal/api/dto"
	"github.com/gs-sport/storefront/internal/presence"
)

// PresenceHandler serves the online visitor counter. It always answers 200;
// anything that goes wrong is reported as a count of zero.
type PresenceHandler struct {
	tracker *presence.Tracker
}

// NewPresenceHandler constructs handler.
func NewPresenceHandler(tracker *presence.Tracker) *PresenceHandler {
	return &PresenceHandler{tracker: tracker}
}

// Heartbeat handles POST /api/presence.
func (h *PresenceHandler) Heartbeat(c *fiber.Ctx) error {
	var req dto.HeartbeatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.JSON(dto.PresenceResponse{Count: 0})
	}
	return c.JSON(dto.PresenceResponse{Count: h.tracker.Heartbeat(c.UserContext(), req.SessionID)})
}

// Count handles GET /api/presence.
func (h *PresenceHandler) Count(c *fiber.Ctx) error {
	return c.JSON(dto.PresenceResponse{Count: h.tracker.Peek(c.UserContext())})
}
