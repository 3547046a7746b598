package kyc

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/varlixo/varlixo/internal/identity"
)

// Handler exposes HTTP endpoints for KYC submission and review.
type Handler struct {
	service *Service
}

// NewHandler constructs a KYC handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SubmitRequest carries the document references for a verification request.
type SubmitRequest struct {
	DocumentType   string `json:"documentType"`
	DocumentNumber string `json:"documentNumber"`
	DocumentFront  string `json:"documentFront"`
	DocumentBack   string `json:"documentBack"`
	SelfieWithDoc  string `json:"selfieWithDoc"`
	Country        string `json:"country"`
	DateOfBirth    string `json:"dateOfBirth"`
	Address        string `json:"address"`
}

// ReviewRequest carries an admin decision.
type ReviewRequest struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// Submit files a verification request for the authenticated user.
func (h *Handler) Submit(c *fiber.Ctx) error {
	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	userID, _ := c.Locals("user_id").(string)
	submission, err := h.service.Submit(c.UserContext(), userID, SubmitInput{
		DocumentType:   req.DocumentType,
		DocumentNumber: req.DocumentNumber,
		DocumentFront:  req.DocumentFront,
		DocumentBack:   req.DocumentBack,
		SelfieWithDoc:  req.SelfieWithDoc,
		Country:        req.Country,
		DateOfBirth:    req.DateOfBirth,
		Address:        req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadySubmitted):
			return fiber.NewError(http.StatusConflict, err.Error())
		case errors.Is(err, identity.ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}

	return c.Status(http.StatusCreated).JSON(submission)
}

// Status returns the authenticated user's latest submission.
func (h *Handler) Status(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	submission, err := h.service.Status(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.JSON(fiber.Map{"status": identity.KycNotSubmitted})
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(submission)
}

// Review applies an admin decision to a submission.
func (h *Handler) Review(c *fiber.Ctx) error {
	var req ReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	reviewerID, _ := c.Locals("user_id").(string)
	submission, err := h.service.Review(c.UserContext(), c.Params("id"), req.Decision, req.Reason, reviewerID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return fiber.NewError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidDecision):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		default:
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}

	return c.JSON(submission)
}
