package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/varlixo/varlixo/internal/pagination"
)

// Transaction types.
const (
	TypeDeposit       = "deposit"
	TypeWithdrawal    = "withdrawal"
	TypeProfit        = "profit"
	TypeReferralBonus = "referral_bonus"
	TypeBonus         = "bonus"
	TypeFee           = "fee"
	TypeRefund        = "refund"
	TypeTransfer      = "transfer"
)

// Statuses shared by transactions, deposits and withdrawals.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
	StatusRejected   = "rejected"
)

// Transaction is an immutable audit record of a balance-affecting event.
// Records are append-only; nothing rewrites them after creation.
type Transaction struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId"`
	Ref           string          `json:"transactionRef"`
	Type          string          `json:"type"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Fee           decimal.Decimal `json:"fee"`
	NetAmount     decimal.Decimal `json:"netAmount"`
	PaymentMethod string          `json:"paymentMethod,omitempty"`
	Description   string          `json:"description"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Repository persists the audit trail.
type Repository interface {
	Record(ctx context.Context, tx Transaction) error
	// List returns the user's transactions, newest first by default, with
	// optional substring search over reference and description.
	List(ctx context.Context, userID string, p pagination.Params) ([]Transaction, int, error)
	Recent(ctx context.Context, userID string, n int) ([]Transaction, error)
}
