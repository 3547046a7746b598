package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/varlixo/varlixo/internal/funding"
)

// RegisterWalletRoutes wires the wallet overview, deposit, withdrawal and
// transaction endpoints.
func RegisterWalletRoutes(r fiber.Router, h *funding.Handler) {
	group := r.Group("/wallet")
	group.Get("", h.Summary)
	group.Get("/deposits", h.ListDeposits)
	group.Post("/deposits", h.CreateDeposit)
	group.Post("/deposits/:id/proof", h.UploadProof)
	group.Get("/withdrawals", h.ListWithdrawals)
	group.Post("/withdrawals", h.CreateWithdrawal)
	group.Delete("/withdrawals/:id", h.CancelWithdrawal)
	group.Get("/transactions", h.ListTransactions)
}
