package kyc

import (
	"context"
	"errors"
	"time"
)

// Submission statuses mirror the user's kyc_status values.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var (
	// ErrNotFound indicates the submission does not exist or was already reviewed.
	ErrNotFound = errors.New("kyc submission not found")
	// ErrAlreadySubmitted indicates the user already has a pending or approved submission.
	ErrAlreadySubmitted = errors.New("kyc already submitted")
	// ErrInvalidDecision indicates a review decision other than approve or reject.
	ErrInvalidDecision = errors.New("invalid review decision")
)

// Submission holds the identity documents a user uploaded for verification.
// Document fields are storage references, not file contents.
type Submission struct {
	ID              string     `json:"id"`
	UserID          string     `json:"userId"`
	DocumentType    string     `json:"documentType"`
	DocumentNumber  string     `json:"documentNumber"`
	DocumentFront   string     `json:"documentFront"`
	DocumentBack    string     `json:"documentBack,omitempty"`
	SelfieWithDoc   string     `json:"selfieWithDoc"`
	Country         string     `json:"country"`
	DateOfBirth     string     `json:"dateOfBirth"`
	Address         string     `json:"address"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	ReviewedBy      string     `json:"reviewedBy,omitempty"`
	ReviewedAt      *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// Repository persists KYC submissions.
type Repository interface {
	Create(ctx context.Context, s Submission) error
	FindByID(ctx context.Context, id string) (Submission, error)
	// LatestByUser returns the user's most recent submission.
	LatestByUser(ctx context.Context, userID string) (Submission, error)
	// Review moves a pending submission to approved or rejected. The status
	// guard makes a second review fail with ErrNotFound.
	Review(ctx context.Context, id, status, reason, reviewerID string, at time.Time) (Submission, error)
}
