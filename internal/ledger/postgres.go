package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/varlixo/varlixo/internal/pagination"
)

// PostgresRepository persists transactions in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a Postgres-backed transaction store.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const txColumns = `id, user_id, transaction_ref, type, status, amount, currency, fee,
        net_amount, payment_method, description, balance_before, balance_after, created_at`

// Record appends a transaction to the audit trail.
func (r *PostgresRepository) Record(ctx context.Context, tx Transaction) error {
	id := tx.ID
	if id == "" {
		id = uuid.New().String()
	}
	txID, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(tx.UserID)
	if err != nil {
		return err
	}
	createdAt := tx.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = r.db.Exec(ctx, `INSERT INTO transactions (`+txColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		txID, userID, tx.Ref, tx.Type, tx.Status, tx.Amount, tx.Currency, tx.Fee,
		tx.NetAmount, tx.PaymentMethod, tx.Description, tx.BalanceBefore, tx.BalanceAfter,
		createdAt.UTC())
	return err
}

// List returns a page of the user's transactions.
func (r *PostgresRepository) List(ctx context.Context, userID string, p pagination.Params) ([]Transaction, int, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, errors.New("invalid user id")
	}
	p = p.Normalize()

	where := `WHERE user_id = $1`
	args := []any{uid}
	if p.Search != "" {
		where += ` AND (transaction_ref ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')`
		args = append(args, p.Search)
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM transactions `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := "DESC"
	if p.SortOrder == "asc" {
		order = "ASC"
	}
	query := fmt.Sprintf(`SELECT %s FROM transactions %s ORDER BY created_at %s LIMIT %d OFFSET %d`,
		txColumns, where, order, p.Limit, p.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items, err := scanTransactions(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Recent returns the user's n most recent transactions.
func (r *PostgresRepository) Recent(ctx context.Context, userID string, n int) ([]Transaction, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, errors.New("invalid user id")
	}
	rows, err := r.db.Query(ctx, `SELECT `+txColumns+` FROM transactions
        WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, uid, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]Transaction, error) {
	var items []Transaction
	for rows.Next() {
		var (
			id, uid   uuid.UUID
			method    *string
			createdAt time.Time
			tx        Transaction
		)
		if err := rows.Scan(&id, &uid, &tx.Ref, &tx.Type, &tx.Status, &tx.Amount, &tx.Currency,
			&tx.Fee, &tx.NetAmount, &method, &tx.Description, &tx.BalanceBefore,
			&tx.BalanceAfter, &createdAt); err != nil {
			return nil, err
		}
		tx.ID = id.String()
		tx.UserID = uid.String()
		if method != nil {
			tx.PaymentMethod = *method
		}
		tx.CreatedAt = createdAt.UTC()
		items = append(items, tx)
	}
	return items, rows.Err()
}
