package kyc

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed KYC repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const submissionColumns = `id, user_id, document_type, document_number, document_front,
        document_back, selfie_with_doc, country, date_of_birth, address, status,
        rejection_reason, reviewed_by, reviewed_at, created_at`

// Create inserts a submission.
func (r *PostgresRepository) Create(ctx context.Context, s Submission) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO kyc_submissions (id, user_id, document_type, document_number, document_front,
                document_back, selfie_with_doc, country, date_of_birth, address, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		s.ID, s.UserID, s.DocumentType, s.DocumentNumber, s.DocumentFront,
		s.DocumentBack, s.SelfieWithDoc, s.Country, s.DateOfBirth, s.Address,
		s.Status, s.CreatedAt)
	return err
}

// FindByID loads a submission.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Submission, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+submissionColumns+` FROM kyc_submissions WHERE id = $1`, id)
	s, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return s, err
}

// LatestByUser loads the user's most recent submission.
func (r *PostgresRepository) LatestByUser(ctx context.Context, userID string) (Submission, error) {
	row := r.db.QueryRow(ctx, `
        SELECT `+submissionColumns+`
        FROM kyc_submissions
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT 1`, userID)
	s, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return s, err
}

// Review advances a pending submission to its decision.
func (r *PostgresRepository) Review(ctx context.Context, id, status, reason, reviewerID string, at time.Time) (Submission, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE kyc_submissions
        SET status = $2, rejection_reason = $3, reviewed_by = $4, reviewed_at = $5
        WHERE id = $1 AND status = 'pending'
        RETURNING `+submissionColumns,
		id, status, reason, reviewerID, at)
	s, err := scanSubmission(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Submission{}, ErrNotFound
	}
	return s, err
}

func scanSubmission(row pgx.Row) (Submission, error) {
	var s Submission
	err := row.Scan(&s.ID, &s.UserID, &s.DocumentType, &s.DocumentNumber, &s.DocumentFront,
		&s.DocumentBack, &s.SelfieWithDoc, &s.Country, &s.DateOfBirth, &s.Address,
		&s.Status, &s.RejectionReason, &s.ReviewedBy, &s.ReviewedAt, &s.CreatedAt)
	return s, err
}
