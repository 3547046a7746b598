package wallet

import (
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyBalance tracks per-currency crypto funds inside a wallet.
type CurrencyBalance struct {
	Currency       string          `json:"currency"`
	Available      decimal.Decimal `json:"available"`
	Pending        decimal.Decimal `json:"pending"`
	Locked         decimal.Decimal `json:"locked"`
	TotalDeposited decimal.Decimal `json:"totalDeposited"`
	TotalWithdrawn decimal.Decimal `json:"totalWithdrawn"`
}

// Wallet holds a user's balances. Exactly one wallet exists per user; it is
// created lazily on first access. All balance fields are non-negative.
type Wallet struct {
	ID               string
	UserID           string
	MainBalance      decimal.Decimal
	PendingBalance   decimal.Decimal
	LockedBalance    decimal.Decimal
	TotalEarnings    decimal.Decimal
	ReferralEarnings decimal.Decimal
	CryptoBalances   []CurrencyBalance
	DepositAddresses map[string]string
	IsFrozen         bool
	FrozenReason     string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TotalBalance is the sum of main, pending and locked funds.
func (w Wallet) TotalBalance() decimal.Decimal {
	return w.MainBalance.Add(w.PendingBalance).Add(w.LockedBalance)
}

// Movement reports the main-balance snapshot around an atomic balance
// mutation. Before/After are captured by the mutation itself, never
// re-read afterwards.
type Movement struct {
	Before decimal.Decimal
	After  decimal.Decimal
}
