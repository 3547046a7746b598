package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/varlixo/varlixo/internal/referral"
)

// RegisterReferralRoutes wires referral history and stats endpoints.
func RegisterReferralRoutes(r fiber.Router, h *referral.Handler) {
	group := r.Group("/referrals")
	group.Get("", h.List)
	group.Get("/stats", h.Stats)
}
