package identity

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes profile and two-factor endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs an identity handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	user, err := h.service.Get(c.UserContext(), userID)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "user not found")
	}
	return c.JSON(fiber.Map{
		"id":               user.ID,
		"email":            user.Email,
		"firstName":        user.FirstName,
		"lastName":         user.LastName,
		"role":             user.Role,
		"kycStatus":        user.KycStatus,
		"twoFactorEnabled": user.TwoFactorEnabled,
		"referralCode":     user.ReferralCode,
		"createdAt":        user.CreatedAt,
	})
}

// EnableTwoFactor starts TOTP enrollment and returns the secret and otpauth URL.
func (h *Handler) EnableTwoFactor(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	enrollment, err := h.service.BeginTwoFactor(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusUnauthorized, "user not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"secret": enrollment.Secret, "otpauthUrl": enrollment.URL})
}

type confirmTwoFactorRequest struct {
	Code string `json:"code"`
}

// ConfirmTwoFactor verifies the first code and switches 2FA on.
func (h *Handler) ConfirmTwoFactor(c *fiber.Ctx) error {
	var req confirmTwoFactorRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	userID, _ := c.Locals("user_id").(string)
	if err := h.service.ConfirmTwoFactor(c.UserContext(), userID, req.Code); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(fiber.Map{"twoFactorEnabled": true})
}
