package kyc

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/varlixo/varlixo/internal/identity"
)

// Service handles KYC submissions and admin review.
type Service struct {
	repo   Repository
	users  identity.Repository
	logger *slog.Logger
}

// NewService wires the KYC workflow.
func NewService(repo Repository, users identity.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, logger: logger}
}

// SubmitInput carries the documents a user uploads for verification.
type SubmitInput struct {
	DocumentType   string
	DocumentNumber string
	DocumentFront  string
	DocumentBack   string
	SelfieWithDoc  string
	Country        string
	DateOfBirth    string
	Address        string
}

// Submit files a verification request and marks the user's KYC as pending.
// Users with a pending or approved submission cannot file again.
func (s *Service) Submit(ctx context.Context, userID string, input SubmitInput) (Submission, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return Submission{}, err
	}

	latest, err := s.repo.LatestByUser(ctx, userID)
	if err == nil && latest.Status != StatusRejected {
		return Submission{}, ErrAlreadySubmitted
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return Submission{}, err
	}

	submission := Submission{
		ID:             uuid.New().String(),
		UserID:         userID,
		DocumentType:   input.DocumentType,
		DocumentNumber: input.DocumentNumber,
		DocumentFront:  input.DocumentFront,
		DocumentBack:   input.DocumentBack,
		SelfieWithDoc:  input.SelfieWithDoc,
		Country:        input.Country,
		DateOfBirth:    input.DateOfBirth,
		Address:        input.Address,
		Status:         StatusPending,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return Submission{}, err
	}

	if err := s.users.UpdateKycStatus(ctx, userID, identity.KycPending); err != nil {
		s.logger.Error("update kyc status",
			slog.String("user_id", userID), slog.Any("error", err))
	}

	return submission, nil
}

// Review applies an admin decision to a pending submission and propagates
// the result to the user record.
func (s *Service) Review(ctx context.Context, submissionID, decision, reason, reviewerID string) (Submission, error) {
	var status, userStatus string
	switch decision {
	case "approve":
		status, userStatus = StatusApproved, identity.KycApproved
	case "reject":
		status, userStatus = StatusRejected, identity.KycRejected
	default:
		return Submission{}, ErrInvalidDecision
	}

	submission, err := s.repo.Review(ctx, submissionID, status, reason, reviewerID, time.Now().UTC())
	if err != nil {
		return Submission{}, err
	}

	if err := s.users.UpdateKycStatus(ctx, submission.UserID, userStatus); err != nil {
		s.logger.Error("update kyc status",
			slog.String("user_id", submission.UserID), slog.Any("error", err))
	}

	return submission, nil
}

// Status returns the user's latest submission.
func (s *Service) Status(ctx context.Context, userID string) (Submission, error) {
	return s.repo.LatestByUser(ctx, userID)
}
