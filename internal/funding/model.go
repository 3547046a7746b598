package funding

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositExpiry is how long a pending deposit stays payable.
const DepositExpiry = 24 * time.Hour

// Deposit is a request to add funds. Creating one never touches wallet
// balances; funds move only when an operator approves the deposit.
type Deposit struct {
	ID              string
	UserID          string
	Ref             string
	Amount          decimal.Decimal
	Currency        string
	PaymentMethod   PaymentMethod
	Status          string
	DepositAddress  string
	CryptoCurrency  string
	ReferenceNumber string
	ProofOfPayment  string
	UserNote        string
	ExpiresAt       time.Time
	CreatedAt       time.Time
}

// Withdrawal is a request to remove funds. Creating one moves the gross
// amount from the main balance into the pending balance.
type Withdrawal struct {
	ID                string
	UserID            string
	Ref               string
	Amount            decimal.Decimal
	Fee               decimal.Decimal
	NetAmount         decimal.Decimal
	Currency          string
	PaymentMethod     PaymentMethod
	Status            string
	WalletAddress     string
	Network           string
	BankName          string
	AccountNumber     string
	AccountName       string
	RoutingNumber     string
	SwiftCode         string
	IBAN              string
	UserNote          string
	BalanceAtRequest  decimal.Decimal
	TwoFactorVerified bool
	CreatedAt         time.Time
}
