package referral

import (
	"github.com/gofiber/fiber/v2"
)

// Handler exposes HTTP endpoints for referral stats and history.
type Handler struct {
	service *Service
}

// NewHandler constructs a referral handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// Stats returns referral totals for the authenticated user.
func (h *Handler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), userID(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(stats)
}

// List returns the referrals brought in by the authenticated user.
func (h *Handler) List(c *fiber.Ctx) error {
	referrals, err := h.service.List(c.UserContext(), userID(c))
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if referrals == nil {
		referrals = []Referral{}
	}
	return c.JSON(referrals)
}
