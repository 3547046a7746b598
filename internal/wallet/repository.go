package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound indicates no wallet exists for the user.
	ErrNotFound = errors.New("wallet not found")
	// ErrInsufficientFunds occurs when the main balance cannot cover a hold.
	ErrInsufficientFunds = errors.New("insufficient balance")
	// ErrFrozen indicates the wallet rejects mutating operations.
	ErrFrozen = errors.New("wallet is frozen")
)

// Repository persists wallets and performs atomic balance movements. The
// check-and-debit of Hold must be a single conditional update so concurrent
// requests can never over-withdraw.
type Repository interface {
	GetOrCreate(ctx context.Context, userID string) (Wallet, error)
	// Hold moves amount from the main balance into the pending balance,
	// failing with ErrInsufficientFunds when main < amount and ErrFrozen
	// when the wallet is frozen.
	Hold(ctx context.Context, userID string, amount decimal.Decimal) (Movement, error)
	// Release is the inverse of Hold: pending back into main.
	Release(ctx context.Context, userID string, amount decimal.Decimal) (Movement, error)
	// CreditMain adds amount to the main balance.
	CreditMain(ctx context.Context, userID string, amount decimal.Decimal) (Movement, error)
	// CreditReferral adds amount to the main balance and to the referral
	// earnings counter.
	CreditReferral(ctx context.Context, userID string, amount decimal.Decimal) (Movement, error)
	SetDepositAddress(ctx context.Context, userID, currency, address string) error
	Freeze(ctx context.Context, userID, reason string) error
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const walletColumns = `id, user_id, main_balance, pending_balance, locked_balance,
        total_earnings, referral_earnings, crypto_balances, deposit_addresses,
        is_frozen, frozen_reason, created_at, updated_at`

// GetOrCreate fetches the user's wallet, creating it with zeroed balances on
// first access.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID string) (Wallet, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Wallet{}, ErrNotFound
	}
	_, err = r.db.Exec(ctx, `INSERT INTO wallets (id, user_id, created_at, updated_at)
        VALUES ($1, $2, now(), now()) ON CONFLICT (user_id) DO NOTHING`, uuid.New(), uid)
	if err != nil {
		return Wallet{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE user_id = $1`, uid)
	return scanWallet(row)
}

// Hold executes the conditional main-to-pending move.
func (r *PostgresRepository) Hold(ctx context.Context, userID string, amount decimal.Decimal) (Movement, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Movement{}, ErrNotFound
	}
	var after decimal.Decimal
	err = r.db.QueryRow(ctx, `UPDATE wallets
        SET main_balance = main_balance - $2,
            pending_balance = pending_balance + $2,
            updated_at = now()
        WHERE user_id = $1 AND NOT is_frozen AND main_balance >= $2
        RETURNING main_balance`, uid, amount).Scan(&after)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movement{}, r.rejectionReason(ctx, uid)
		}
		return Movement{}, err
	}
	return Movement{Before: after.Add(amount), After: after}, nil
}

// Release moves held funds back into the main balance.
func (r *PostgresRepository) Release(ctx context.Context, userID string, amount decimal.Decimal) (Movement, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Movement{}, ErrNotFound
	}
	var after decimal.Decimal
	err = r.db.QueryRow(ctx, `UPDATE wallets
        SET pending_balance = pending_balance - $2,
            main_balance = main_balance + $2,
            updated_at = now()
        WHERE user_id = $1 AND pending_balance >= $2
        RETURNING main_balance`, uid, amount).Scan(&after)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movement{}, ErrInsufficientFunds
		}
		return Movement{}, err
	}
	return Movement{Before: after.Sub(amount), After: after}, nil
}

// CreditMain adds funds to the main balance.
func (r *PostgresRepository) CreditMain(ctx context.Context, userID string, amount decimal.Decimal) (Movement, error) {
	return r.credit(ctx, userID, amount, `UPDATE wallets
        SET main_balance = main_balance + $2, updated_at = now()
        WHERE user_id = $1 AND NOT is_frozen
        RETURNING main_balance`)
}

// CreditReferral credits the main balance and referral earnings together.
func (r *PostgresRepository) CreditReferral(ctx context.Context, userID string, amount decimal.Decimal) (Movement, error) {
	return r.credit(ctx, userID, amount, `UPDATE wallets
        SET main_balance = main_balance + $2,
            referral_earnings = referral_earnings + $2,
            total_earnings = total_earnings + $2,
            updated_at = now()
        WHERE user_id = $1 AND NOT is_frozen
        RETURNING main_balance`)
}

func (r *PostgresRepository) credit(ctx context.Context, userID string, amount decimal.Decimal, query string) (Movement, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return Movement{}, ErrNotFound
	}
	var after decimal.Decimal
	err = r.db.QueryRow(ctx, query, uid, amount).Scan(&after)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movement{}, r.rejectionReason(ctx, uid)
		}
		return Movement{}, err
	}
	return Movement{Before: after.Sub(amount), After: after}, nil
}

// SetDepositAddress records a generated deposit address for a currency.
func (r *PostgresRepository) SetDepositAddress(ctx context.Context, userID, currency, address string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE wallets
        SET deposit_addresses = deposit_addresses || jsonb_build_object($2::text, $3::text),
            updated_at = now()
        WHERE user_id = $1`, uid, currency, address)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Freeze marks the wallet as rejecting balance mutations.
func (r *PostgresRepository) Freeze(ctx context.Context, userID, reason string) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE wallets
        SET is_frozen = true, frozen_reason = $2, updated_at = now()
        WHERE user_id = $1`, uid, reason)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// rejectionReason distinguishes why a conditional update matched no row.
func (r *PostgresRepository) rejectionReason(ctx context.Context, uid uuid.UUID) error {
	var frozen bool
	err := r.db.QueryRow(ctx, `SELECT is_frozen FROM wallets WHERE user_id = $1`, uid).Scan(&frozen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if frozen {
		return ErrFrozen
	}
	return ErrInsufficientFunds
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		id, uid        uuid.UUID
		cryptoRaw      []byte
		addressRaw     []byte
		frozenReason   *string
		created, updat time.Time
		w              Wallet
	)
	err := row.Scan(&id, &uid, &w.MainBalance, &w.PendingBalance, &w.LockedBalance,
		&w.TotalEarnings, &w.ReferralEarnings, &cryptoRaw, &addressRaw,
		&w.IsFrozen, &frozenReason, &created, &updat)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	w.ID = id.String()
	w.UserID = uid.String()
	if len(cryptoRaw) > 0 {
		if err := json.Unmarshal(cryptoRaw, &w.CryptoBalances); err != nil {
			return Wallet{}, err
		}
	}
	w.DepositAddresses = map[string]string{}
	if len(addressRaw) > 0 {
		if err := json.Unmarshal(addressRaw, &w.DepositAddresses); err != nil {
			return Wallet{}, err
		}
	}
	if frozenReason != nil {
		w.FrozenReason = *frozenReason
	}
	w.CreatedAt = created.UTC()
	w.UpdatedAt = updat.UTC()
	return w, nil
}
