package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/varlixo/varlixo/internal/kyc"
	"github.com/varlixo/varlixo/internal/middleware"
)

// RegisterKycRoutes wires KYC submission, status and admin review endpoints.
func RegisterKycRoutes(r fiber.Router, h *kyc.Handler) {
	group := r.Group("/kyc")
	group.Post("/submit", h.Submit)
	group.Get("/status", h.Status)
	group.Post("/:id/review", middleware.RequireAdmin(), h.Review)
}
