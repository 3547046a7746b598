package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/varlixo/varlixo/internal/identity"
)

// RegisterProfileRoutes wires the profile and two-factor endpoints.
func RegisterProfileRoutes(r fiber.Router, h *identity.Handler) {
	r.Get("/me", h.Me)
	r.Post("/me/2fa/enable", h.EnableTwoFactor)
	r.Post("/me/2fa/confirm", h.ConfirmTwoFactor)
}
