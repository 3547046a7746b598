package referral

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed referral repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const referralColumns = `id, referrer_id, referred_id, referred_email, code, status,
        bonus_amount, rewarded_at, created_at`

// Create inserts a referral relationship.
func (r *PostgresRepository) Create(ctx context.Context, ref Referral) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO referrals (id, referrer_id, referred_id, referred_email, code, status, bonus_amount, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		ref.ID, ref.ReferrerID, ref.ReferredID, ref.ReferredEmail, ref.Code,
		ref.Status, ref.BonusAmount, ref.CreatedAt)
	return err
}

// Reward flips an unrewarded referral to rewarded and records the bonus. The
// status guard keeps a referral from being rewarded twice.
func (r *PostgresRepository) Reward(ctx context.Context, id string, bonus decimal.Decimal, at time.Time) (Referral, error) {
	row := r.db.QueryRow(ctx, `
        UPDATE referrals
        SET status = 'rewarded', bonus_amount = $2, rewarded_at = $3
        WHERE id = $1 AND status <> 'rewarded'
        RETURNING `+referralColumns,
		id, bonus, at)
	ref, err := scanReferral(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Referral{}, ErrNotFound
	}
	return ref, err
}

// ListByReferrer returns the referrals brought in by a user, newest first.
func (r *PostgresRepository) ListByReferrer(ctx context.Context, referrerID string) ([]Referral, error) {
	rows, err := r.db.Query(ctx, `
        SELECT `+referralColumns+`
        FROM referrals
        WHERE referrer_id = $1
        ORDER BY created_at DESC`,
		referrerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Referral
	for rows.Next() {
		ref, err := scanReferral(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

// StatsByReferrer aggregates totals for a referrer.
func (r *PostgresRepository) StatsByReferrer(ctx context.Context, referrerID string) (Stats, error) {
	var stats Stats
	err := r.db.QueryRow(ctx, `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'rewarded'),
               COALESCE(SUM(bonus_amount) FILTER (WHERE status = 'rewarded'), 0)
        FROM referrals
        WHERE referrer_id = $1`,
		referrerID).Scan(&stats.TotalReferrals, &stats.Rewarded, &stats.TotalEarned)
	return stats, err
}

func scanReferral(row pgx.Row) (Referral, error) {
	var ref Referral
	err := row.Scan(&ref.ID, &ref.ReferrerID, &ref.ReferredID, &ref.ReferredEmail,
		&ref.Code, &ref.Status, &ref.BonusAmount, &ref.RewardedAt, &ref.CreatedAt)
	return ref, err
}
