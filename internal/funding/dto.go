package funding

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/varlixo/varlixo/internal/ledger"
	"github.com/varlixo/varlixo/internal/wallet"
)

// CreateDepositRequest captures user-provided data to register a deposit.
type CreateDepositRequest struct {
	Amount         decimal.Decimal `json:"amount"`
	PaymentMethod  string          `json:"paymentMethod"`
	CryptoCurrency string          `json:"cryptoCurrency"`
	UserNote       string          `json:"userNote"`
}

// UploadProofRequest attaches proof of payment to a pending deposit.
type UploadProofRequest struct {
	ProofOfPayment  string `json:"proofOfPayment"`
	ReferenceNumber string `json:"referenceNumber"`
}

// CreateWithdrawalRequest captures user-provided data to request a withdrawal.
type CreateWithdrawalRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentMethod string          `json:"paymentMethod"`
	WalletAddress string          `json:"walletAddress"`
	Network       string          `json:"network"`
	BankName      string          `json:"bankName"`
	AccountNumber string          `json:"accountNumber"`
	AccountName   string          `json:"accountName"`
	RoutingNumber string          `json:"routingNumber"`
	SwiftCode     string          `json:"swiftCode"`
	IBAN          string          `json:"iban"`
	UserNote      string          `json:"userNote"`
	TwoFactorCode string          `json:"twoFactorCode"`
}

// DepositResponse represents a deposit in API responses.
type DepositResponse struct {
	ID              string          `json:"id"`
	Ref             string          `json:"depositRef"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	PaymentMethod   string          `json:"paymentMethod"`
	Status          string          `json:"status"`
	DepositAddress  string          `json:"depositAddress,omitempty"`
	CryptoCurrency  string          `json:"cryptoCurrency,omitempty"`
	ReferenceNumber string          `json:"referenceNumber,omitempty"`
	ProofOfPayment  string          `json:"proofOfPayment,omitempty"`
	ExpiresAt       time.Time       `json:"expiresAt"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// DepositReceiptResponse is returned when a deposit is created.
type DepositReceiptResponse struct {
	Deposit      DepositResponse `json:"deposit"`
	Instructions map[string]any  `json:"paymentInstructions"`
}

// WithdrawalResponse represents a withdrawal in API responses.
type WithdrawalResponse struct {
	ID            string          `json:"id"`
	Ref           string          `json:"withdrawalRef"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	NetAmount     decimal.Decimal `json:"netAmount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"paymentMethod"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// SummaryResponse is the wallet overview payload.
type SummaryResponse struct {
	MainBalance        decimal.Decimal          `json:"mainBalance"`
	PendingBalance     decimal.Decimal          `json:"pendingBalance"`
	LockedBalance      decimal.Decimal          `json:"lockedBalance"`
	TotalBalance       decimal.Decimal          `json:"totalBalance"`
	TotalEarnings      decimal.Decimal          `json:"totalEarnings"`
	ReferralEarnings   decimal.Decimal          `json:"referralEarnings"`
	CryptoBalances     []wallet.CurrencyBalance `json:"cryptoBalances"`
	IsFrozen           bool                     `json:"isFrozen"`
	RecentTransactions []ledger.Transaction     `json:"recentTransactions"`
	PendingDeposits    int                      `json:"pendingDeposits"`
	PendingWithdrawals int                      `json:"pendingWithdrawals"`
}

func toDepositResponse(d Deposit) DepositResponse {
	return DepositResponse{
		ID:              d.ID,
		Ref:             d.Ref,
		Amount:          d.Amount,
		Currency:        d.Currency,
		PaymentMethod:   string(d.PaymentMethod),
		Status:          d.Status,
		DepositAddress:  d.DepositAddress,
		CryptoCurrency:  d.CryptoCurrency,
		ReferenceNumber: d.ReferenceNumber,
		ProofOfPayment:  d.ProofOfPayment,
		ExpiresAt:       d.ExpiresAt,
		CreatedAt:       d.CreatedAt,
	}
}

func toWithdrawalResponse(w Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		ID:            w.ID,
		Ref:           w.Ref,
		Amount:        w.Amount,
		Fee:           w.Fee,
		NetAmount:     w.NetAmount,
		Currency:      w.Currency,
		PaymentMethod: string(w.PaymentMethod),
		Status:        w.Status,
		CreatedAt:     w.CreatedAt,
	}
}

func toDepositResponses(deposits []Deposit) []DepositResponse {
	out := make([]DepositResponse, len(deposits))
	for i, d := range deposits {
		out[i] = toDepositResponse(d)
	}
	return out
}

func toWithdrawalResponses(withdrawals []Withdrawal) []WithdrawalResponse {
	out := make([]WithdrawalResponse, len(withdrawals))
	for i, w := range withdrawals {
		out[i] = toWithdrawalResponse(w)
	}
	return out
}

func toSummaryResponse(s Summary) SummaryResponse {
	return SummaryResponse{
		MainBalance:        s.Wallet.MainBalance,
		PendingBalance:     s.Wallet.PendingBalance,
		LockedBalance:      s.Wallet.LockedBalance,
		TotalBalance:       s.TotalBalance,
		TotalEarnings:      s.Wallet.TotalEarnings,
		ReferralEarnings:   s.Wallet.ReferralEarnings,
		CryptoBalances:     s.Wallet.CryptoBalances,
		IsFrozen:           s.Wallet.IsFrozen,
		RecentTransactions: s.RecentTransactions,
		PendingDeposits:    s.PendingDeposits,
		PendingWithdrawals: s.PendingWithdrawals,
	}
}
