package funding

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/varlixo/varlixo/internal/pagination"
)

// Handler exposes HTTP endpoints for deposits, withdrawals and the wallet
// overview.
type Handler struct {
	service *Service
}

// NewHandler constructs a funding handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("user_id").(string)
	return id
}

// CreateDeposit registers a deposit request and returns payment instructions.
func (h *Handler) CreateDeposit(c *fiber.Ctx) error {
	var req CreateDepositRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	receipt, err := h.service.CreateDeposit(c.UserContext(), userID(c), CreateDepositInput{
		Amount:         req.Amount,
		PaymentMethod:  PaymentMethod(req.PaymentMethod),
		CryptoCurrency: req.CryptoCurrency,
		UserNote:       req.UserNote,
	})
	if err != nil {
		return mapError(err)
	}

	return c.Status(http.StatusCreated).JSON(DepositReceiptResponse{
		Deposit:      toDepositResponse(receipt.Deposit),
		Instructions: receipt.Instructions,
	})
}

// UploadProof attaches proof of payment to a pending deposit.
func (h *Handler) UploadProof(c *fiber.Ctx) error {
	var req UploadProofRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	deposit, err := h.service.UploadDepositProof(c.UserContext(), userID(c), c.Params("id"), req.ProofOfPayment, req.ReferenceNumber)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(toDepositResponse(deposit))
}

// ListDeposits returns the user's deposits, paginated.
func (h *Handler) ListDeposits(c *fiber.Ctx) error {
	var p pagination.Params
	if err := c.QueryParser(&p); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p = p.Normalize()

	deposits, total, err := h.service.ListDeposits(c.UserContext(), userID(c), p)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(pagination.NewPage(toDepositResponses(deposits), total, p))
}

// CreateWithdrawal places a withdrawal request against the main balance.
func (h *Handler) CreateWithdrawal(c *fiber.Ctx) error {
	var req CreateWithdrawalRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	withdrawal, err := h.service.CreateWithdrawal(c.UserContext(), userID(c), CreateWithdrawalInput{
		Amount:        req.Amount,
		PaymentMethod: PaymentMethod(req.PaymentMethod),
		WalletAddress: req.WalletAddress,
		Network:       req.Network,
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		RoutingNumber: req.RoutingNumber,
		SwiftCode:     req.SwiftCode,
		IBAN:          req.IBAN,
		UserNote:      req.UserNote,
		TwoFactorCode: req.TwoFactorCode,
	})
	if err != nil {
		return mapError(err)
	}

	return c.Status(http.StatusCreated).JSON(toWithdrawalResponse(withdrawal))
}

// CancelWithdrawal reverses a pending withdrawal and refunds the hold.
func (h *Handler) CancelWithdrawal(c *fiber.Ctx) error {
	if err := h.service.CancelWithdrawal(c.UserContext(), userID(c), c.Params("id")); err != nil {
		return mapError(err)
	}
	return c.JSON(fiber.Map{"status": "cancelled"})
}

// ListWithdrawals returns the user's withdrawals, paginated.
func (h *Handler) ListWithdrawals(c *fiber.Ctx) error {
	var p pagination.Params
	if err := c.QueryParser(&p); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p = p.Normalize()

	withdrawals, total, err := h.service.ListWithdrawals(c.UserContext(), userID(c), p)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(pagination.NewPage(toWithdrawalResponses(withdrawals), total, p))
}

// Summary returns the wallet overview.
func (h *Handler) Summary(c *fiber.Ctx) error {
	summary, err := h.service.WalletSummary(c.UserContext(), userID(c))
	if err != nil {
		return mapError(err)
	}
	return c.JSON(toSummaryResponse(summary))
}

// ListTransactions returns the user's transaction history, paginated.
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	var p pagination.Params
	if err := c.QueryParser(&p); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	p = p.Normalize()

	transactions, total, err := h.service.ListTransactions(c.UserContext(), userID(c), p)
	if err != nil {
		return mapError(err)
	}

	return c.JSON(pagination.NewPage(transactions, total, p))
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrDepositNotFound),
		errors.Is(err, ErrWithdrawalNotFound),
		errors.Is(err, ErrUserNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrKycRequired):
		return fiber.NewError(http.StatusForbidden, err.Error())
	default:
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
}
