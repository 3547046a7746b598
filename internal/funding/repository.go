package funding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/varlixo/varlixo/internal/ledger"
	"github.com/varlixo/varlixo/internal/pagination"
)

// DepositRepository persists deposit requests.
type DepositRepository interface {
	Create(ctx context.Context, d Deposit) error
	FindByID(ctx context.Context, id, userID string) (Deposit, error)
	// AttachProof transitions a PENDING deposit to PROCESSING while storing
	// the proof reference. The transition is conditional on the current
	// status so a reprocessed deposit cannot be modified.
	AttachProof(ctx context.Context, id, userID, proofPath, referenceNumber string) (Deposit, error)
	List(ctx context.Context, userID string, p pagination.Params) ([]Deposit, int, error)
	CountPending(ctx context.Context, userID string) (int, error)
}

// WithdrawalRepository persists withdrawal requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, w Withdrawal) error
	// CancelPending transitions a PENDING withdrawal to CANCELLED and
	// returns it. The conditional update is what makes cancellation safe to
	// retry: a second attempt matches no row.
	CancelPending(ctx context.Context, id, userID string) (Withdrawal, error)
	List(ctx context.Context, userID string, p pagination.Params) ([]Withdrawal, int, error)
	CountPending(ctx context.Context, userID string) (int, error)
}

// PostgresDepositRepository stores deposits in PostgreSQL.
type PostgresDepositRepository struct {
	db *pgxpool.Pool
}

// NewPostgresDepositRepository builds a Postgres deposit repository.
func NewPostgresDepositRepository(db *pgxpool.Pool) *PostgresDepositRepository {
	return &PostgresDepositRepository{db: db}
}

const depositColumns = `id, user_id, deposit_ref, amount, currency, payment_method, status,
        deposit_address, crypto_currency, reference_number, proof_of_payment, user_note,
        expires_at, created_at`

// Create inserts a deposit record.
func (r *PostgresDepositRepository) Create(ctx context.Context, d Deposit) error {
	depositID, err := uuid.Parse(d.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO deposits (`+depositColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		depositID, userID, d.Ref, d.Amount, d.Currency, string(d.PaymentMethod), d.Status,
		d.DepositAddress, d.CryptoCurrency, d.ReferenceNumber, d.ProofOfPayment, d.UserNote,
		d.ExpiresAt.UTC(), d.CreatedAt.UTC())
	return err
}

// FindByID fetches a deposit owned by the user.
func (r *PostgresDepositRepository) FindByID(ctx context.Context, id, userID string) (Deposit, error) {
	depositID, uid, err := parseIDs(id, userID)
	if err != nil {
		return Deposit{}, ErrDepositNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+depositColumns+` FROM deposits
        WHERE id = $1 AND user_id = $2`, depositID, uid)
	return scanDeposit(row)
}

// AttachProof performs the status-guarded PENDING to PROCESSING transition.
func (r *PostgresDepositRepository) AttachProof(ctx context.Context, id, userID, proofPath, referenceNumber string) (Deposit, error) {
	depositID, uid, err := parseIDs(id, userID)
	if err != nil {
		return Deposit{}, ErrDepositNotFound
	}
	row := r.db.QueryRow(ctx, `UPDATE deposits
        SET proof_of_payment = $3, reference_number = $4, status = $5
        WHERE id = $1 AND user_id = $2 AND status = $6
        RETURNING `+depositColumns,
		depositID, uid, proofPath, referenceNumber, ledger.StatusProcessing, ledger.StatusPending)
	d, err := scanDeposit(row)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, ErrDepositNotFound) {
		return Deposit{}, err
	}
	// No row matched: figure out whether the deposit is missing or already
	// past the pending state.
	if _, findErr := r.FindByID(ctx, id, userID); findErr == nil {
		return Deposit{}, ErrDepositProcessed
	}
	return Deposit{}, ErrDepositNotFound
}

// List returns a page of the user's deposits.
func (r *PostgresDepositRepository) List(ctx context.Context, userID string, p pagination.Params) ([]Deposit, int, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, errors.New("invalid user id")
	}
	p = p.Normalize()

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM deposits WHERE user_id = $1`, uid).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM deposits WHERE user_id = $1
        ORDER BY created_at %s LIMIT %d OFFSET %d`,
		depositColumns, sqlOrder(p), p.Limit, p.Offset()), uid)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

// CountPending counts the user's deposits still awaiting payment or review.
func (r *PostgresDepositRepository) CountPending(ctx context.Context, userID string) (int, error) {
	return countPending(ctx, r.db, `deposits`, userID)
}

// PostgresWithdrawalRepository stores withdrawals in PostgreSQL.
type PostgresWithdrawalRepository struct {
	db *pgxpool.Pool
}

// NewPostgresWithdrawalRepository builds a Postgres withdrawal repository.
func NewPostgresWithdrawalRepository(db *pgxpool.Pool) *PostgresWithdrawalRepository {
	return &PostgresWithdrawalRepository{db: db}
}

const withdrawalColumns = `id, user_id, withdrawal_ref, amount, fee, net_amount, currency,
        payment_method, status, wallet_address, network, bank_name, account_number,
        account_name, routing_number, swift_code, iban, user_note, balance_at_request,
        two_factor_verified, created_at`

// Create inserts a withdrawal record.
func (r *PostgresWithdrawalRepository) Create(ctx context.Context, w Withdrawal) error {
	withdrawalID, err := uuid.Parse(w.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(w.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO withdrawals (`+withdrawalColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		withdrawalID, userID, w.Ref, w.Amount, w.Fee, w.NetAmount, w.Currency,
		string(w.PaymentMethod), w.Status, w.WalletAddress, w.Network, w.BankName,
		w.AccountNumber, w.AccountName, w.RoutingNumber, w.SwiftCode, w.IBAN, w.UserNote,
		w.BalanceAtRequest, w.TwoFactorVerified, w.CreatedAt.UTC())
	return err
}

// CancelPending performs the status-guarded PENDING to CANCELLED transition.
func (r *PostgresWithdrawalRepository) CancelPending(ctx context.Context, id, userID string) (Withdrawal, error) {
	withdrawalID, uid, err := parseIDs(id, userID)
	if err != nil {
		return Withdrawal{}, ErrWithdrawalNotFound
	}
	row := r.db.QueryRow(ctx, `UPDATE withdrawals
        SET status = $3
        WHERE id = $1 AND user_id = $2 AND status = $4
        RETURNING `+withdrawalColumns,
		withdrawalID, uid, ledger.StatusCancelled, ledger.StatusPending)
	w, err := scanWithdrawal(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Withdrawal{}, ErrWithdrawalNotFound
		}
		return Withdrawal{}, err
	}
	return w, nil
}

// List returns a page of the user's withdrawals.
func (r *PostgresWithdrawalRepository) List(ctx context.Context, userID string, p pagination.Params) ([]Withdrawal, int, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, errors.New("invalid user id")
	}
	p = p.Normalize()

	var total int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM withdrawals WHERE user_id = $1`, uid).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM withdrawals WHERE user_id = $1
        ORDER BY created_at %s LIMIT %d OFFSET %d`,
		withdrawalColumns, sqlOrder(p), p.Limit, p.Offset()), uid)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Withdrawal
	for rows.Next() {
		w, err := scanWithdrawal(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, w)
	}
	return items, total, rows.Err()
}

// CountPending counts the user's withdrawals awaiting processing.
func (r *PostgresWithdrawalRepository) CountPending(ctx context.Context, userID string) (int, error) {
	return countPending(ctx, r.db, `withdrawals`, userID)
}

func parseIDs(id, userID string) (uuid.UUID, uuid.UUID, error) {
	entityID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return entityID, uid, nil
}

func countPending(ctx context.Context, db *pgxpool.Pool, table, userID string) (int, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return 0, errors.New("invalid user id")
	}
	var count int
	err = db.QueryRow(ctx, `SELECT count(*) FROM `+table+` WHERE user_id = $1 AND status = $2`,
		uid, ledger.StatusPending).Scan(&count)
	return count, err
}

func sqlOrder(p pagination.Params) string {
	if p.SortOrder == "asc" {
		return "ASC"
	}
	return "DESC"
}

func scanDeposit(row pgx.Row) (Deposit, error) {
	var (
		id, uid    uuid.UUID
		method     string
		expiresAt  time.Time
		createdAt  time.Time
		d          Deposit
	)
	err := row.Scan(&id, &uid, &d.Ref, &d.Amount, &d.Currency, &method, &d.Status,
		&d.DepositAddress, &d.CryptoCurrency, &d.ReferenceNumber, &d.ProofOfPayment,
		&d.UserNote, &expiresAt, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Deposit{}, ErrDepositNotFound
		}
		return Deposit{}, err
	}
	d.ID = id.String()
	d.UserID = uid.String()
	d.PaymentMethod = PaymentMethod(method)
	d.ExpiresAt = expiresAt.UTC()
	d.CreatedAt = createdAt.UTC()
	return d, nil
}

func scanWithdrawal(row pgx.Row) (Withdrawal, error) {
	var (
		id, uid   uuid.UUID
		method    string
		createdAt time.Time
		w         Withdrawal
	)
	err := row.Scan(&id, &uid, &w.Ref, &w.Amount, &w.Fee, &w.NetAmount, &w.Currency,
		&method, &w.Status, &w.WalletAddress, &w.Network, &w.BankName, &w.AccountNumber,
		&w.AccountName, &w.RoutingNumber, &w.SwiftCode, &w.IBAN, &w.UserNote,
		&w.BalanceAtRequest, &w.TwoFactorVerified, &createdAt)
	if err != nil {
		return Withdrawal{}, err
	}
	w.ID = id.String()
	w.UserID = uid.String()
	w.PaymentMethod = PaymentMethod(method)
	w.CreatedAt = createdAt.UTC()
	return w, nil
}
