package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the requested user does not exist.
var ErrNotFound = errors.New("user not found")

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByReferralCode(ctx context.Context, code string) (User, error)
	UpdateKycStatus(ctx context.Context, id, status string) error
	SetTwoFactor(ctx context.Context, id, secret string, enabled bool) error
	UpdateTokenVersion(ctx context.Context, id string, version int) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, first_name, last_name, password_hash, role, kyc_status,
        two_factor_enabled, two_factor_secret, referral_code, referred_by, token_version, created_at`

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''), $12, $13)`,
		userID, user.Email, user.FirstName, user.LastName, user.PasswordHash, user.Role,
		user.KycStatus, user.TwoFactorEnabled, user.TwoFactorSecret, user.ReferralCode,
		user.ReferredBy, user.TokenVersion, user.CreatedAt.UTC())
	return err
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return r.scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

// FindByEmail fetches a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return r.scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// FindByReferralCode fetches the user owning a referral code.
func (r *PostgresRepository) FindByReferralCode(ctx context.Context, code string) (User, error) {
	return r.scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE referral_code = $1`, code))
}

// UpdateKycStatus sets the user's KYC verification state.
func (r *PostgresRepository) UpdateKycStatus(ctx context.Context, id, status string) error {
	return r.updateOne(ctx, `UPDATE users SET kyc_status = $1 WHERE id = $2`, status, id)
}

// SetTwoFactor stores the TOTP secret and enabled flag.
func (r *PostgresRepository) SetTwoFactor(ctx context.Context, id, secret string, enabled bool) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE users SET two_factor_secret = $1, two_factor_enabled = $2 WHERE id = $3`,
		secret, enabled, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateTokenVersion bumps the token version, invalidating issued tokens.
func (r *PostgresRepository) UpdateTokenVersion(ctx context.Context, id string, version int) error {
	return r.updateOne(ctx, `UPDATE users SET token_version = $1 WHERE id = $2`, version, id)
}

func (r *PostgresRepository) updateOne(ctx context.Context, query string, value any, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, query, value, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) scanUser(row pgx.Row) (User, error) {
	var (
		id         uuid.UUID
		referredBy *string
		createdAt  time.Time
		user       User
	)
	err := row.Scan(&id, &user.Email, &user.FirstName, &user.LastName, &user.PasswordHash,
		&user.Role, &user.KycStatus, &user.TwoFactorEnabled, &user.TwoFactorSecret,
		&user.ReferralCode, &referredBy, &user.TokenVersion, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	if referredBy != nil {
		user.ReferredBy = *referredBy
	}
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
