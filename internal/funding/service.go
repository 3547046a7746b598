package funding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/varlixo/varlixo/internal/identity"
	"github.com/varlixo/varlixo/internal/ledger"
	"github.com/varlixo/varlixo/internal/notification"
	"github.com/varlixo/varlixo/internal/pagination"
	"github.com/varlixo/varlixo/internal/twofactor"
	"github.com/varlixo/varlixo/internal/wallet"
)

var hundred = decimal.NewFromInt(100)

// Fee computes the withdrawal fee for an amount: 2% for crypto methods, 1%
// otherwise, rounded to 2 decimals.
func Fee(amount decimal.Decimal, method PaymentMethod) decimal.Decimal {
	percent := decimal.NewFromInt(1)
	if method.IsCrypto() {
		percent = decimal.NewFromInt(2)
	}
	return amount.Mul(percent).Div(hundred).Round(2)
}

// Service owns the fund-movement workflow: deposit requests, withdrawal
// requests with their balance hold, cancellation refunds, and the read-side
// queries over all three collections.
type Service struct {
	users       identity.Repository
	wallets     wallet.Repository
	deposits    DepositRepository
	withdrawals WithdrawalRepository
	ledger      ledger.Repository
	verifier    twofactor.Verifier
	notifier    notification.Notifier
	logger      *slog.Logger
	adminEmail  string
}

// NewService wires the funding workflow with its collaborators.
func NewService(users identity.Repository, wallets wallet.Repository,
	deposits DepositRepository, withdrawals WithdrawalRepository,
	txlog ledger.Repository, verifier twofactor.Verifier,
	notifier notification.Notifier, logger *slog.Logger, adminEmail string) *Service {
	return &Service{
		users:       users,
		wallets:     wallets,
		deposits:    deposits,
		withdrawals: withdrawals,
		ledger:      txlog,
		verifier:    verifier,
		notifier:    notifier,
		logger:      logger,
		adminEmail:  adminEmail,
	}
}

// CreateDepositInput captures a deposit request.
type CreateDepositInput struct {
	Amount         decimal.Decimal
	PaymentMethod  PaymentMethod
	CryptoCurrency string
	UserNote       string
}

// DepositReceipt is returned to the user after a deposit is registered.
type DepositReceipt struct {
	Deposit      Deposit
	Instructions map[string]any
}

// CreateDeposit registers a funding request and returns payment
// instructions. Wallet balances are untouched; funds land only when an
// operator approves the deposit.
func (s *Service) CreateDeposit(ctx context.Context, userID string, input CreateDepositInput) (DepositReceipt, error) {
	if !input.Amount.IsPositive() {
		return DepositReceipt{}, ErrInvalidAmount
	}
	if !input.PaymentMethod.Valid() {
		return DepositReceipt{}, ErrInvalidMethod
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return DepositReceipt{}, ErrUserNotFound
	}

	ref := NewReference(RefPrefixDeposit)

	var depositAddress string
	if input.PaymentMethod.IsCrypto() {
		depositAddress = GenerateDepositAddress(input.PaymentMethod)
		if _, err := s.wallets.GetOrCreate(ctx, userID); err == nil {
			if err := s.wallets.SetDepositAddress(ctx, userID, string(input.PaymentMethod), depositAddress); err != nil {
				s.logger.Warn("store deposit address", slog.Any("error", err))
			}
		}
	}

	now := time.Now().UTC()
	deposit := Deposit{
		ID:             uuid.New().String(),
		UserID:         userID,
		Ref:            ref,
		Amount:         input.Amount,
		Currency:       "USD",
		PaymentMethod:  input.PaymentMethod,
		Status:         ledger.StatusPending,
		DepositAddress: depositAddress,
		CryptoCurrency: input.CryptoCurrency,
		UserNote:       input.UserNote,
		ExpiresAt:      now.Add(DepositExpiry),
		CreatedAt:      now,
	}
	if err := s.deposits.Create(ctx, deposit); err != nil {
		return DepositReceipt{}, err
	}

	if err := s.ledger.Record(ctx, ledger.Transaction{
		UserID:        userID,
		Ref:           NewReference(RefPrefixTransaction),
		Type:          ledger.TypeDeposit,
		Status:        ledger.StatusPending,
		Amount:        input.Amount,
		Currency:      "USD",
		PaymentMethod: string(input.PaymentMethod),
		Description:   fmt.Sprintf("Deposit via %s", input.PaymentMethod.Label()),
		CreatedAt:     now,
	}); err != nil {
		return DepositReceipt{}, err
	}

	notification.Dispatch(s.notifier, s.logger,
		notification.Message{
			Kind:        notification.KindDepositReceived,
			Destination: user.Email,
			Subject:     "We received your deposit request",
			Body:        fmt.Sprintf("Hi %s, your deposit of $%s USD via %s is pending.", user.FirstName, input.Amount.String(), input.PaymentMethod.Label()),
			Reference:   ref,
		},
		notification.Message{
			Kind:        notification.KindAdminNewDeposit,
			Destination: s.adminEmail,
			Subject:     "New deposit request",
			Body:        fmt.Sprintf("%s (%s) requested a deposit of $%s USD via %s.", user.FullName(), user.Email, input.Amount.String(), input.PaymentMethod.Label()),
			Reference:   ref,
		})

	return DepositReceipt{
		Deposit:      deposit,
		Instructions: Instructions(input.PaymentMethod, depositAddress, input.Amount),
	}, nil
}

// UploadDepositProof attaches proof of payment and advances the deposit to
// PROCESSING.
func (s *Service) UploadDepositProof(ctx context.Context, userID, depositID, proofPath, referenceNumber string) (Deposit, error) {
	return s.deposits.AttachProof(ctx, depositID, userID, proofPath, referenceNumber)
}

// CreateWithdrawalInput captures a withdrawal request.
type CreateWithdrawalInput struct {
	Amount        decimal.Decimal
	PaymentMethod PaymentMethod
	WalletAddress string
	Network       string
	BankName      string
	AccountNumber string
	AccountName   string
	RoutingNumber string
	SwiftCode     string
	IBAN          string
	UserNote      string
	TwoFactorCode string
}

// CreateWithdrawal validates eligibility, computes fees, moves the gross
// amount from main into pending, and records the request.
//
// The balance check and debit happen in one atomic repository operation, so
// concurrent requests against the same wallet can never over-withdraw.
func (s *Service) CreateWithdrawal(ctx context.Context, userID string, input CreateWithdrawalInput) (Withdrawal, error) {
	if !input.Amount.IsPositive() {
		return Withdrawal{}, ErrInvalidAmount
	}
	if !input.PaymentMethod.Valid() {
		return Withdrawal{}, ErrInvalidMethod
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return Withdrawal{}, ErrUserNotFound
	}

	if user.KycStatus != identity.KycApproved {
		return Withdrawal{}, ErrKycRequired
	}

	if user.TwoFactorEnabled {
		if input.TwoFactorCode == "" {
			return Withdrawal{}, ErrTwoFactorRequired
		}
		if !s.verifier.Verify(user.TwoFactorSecret, input.TwoFactorCode) {
			return Withdrawal{}, ErrTwoFactorInvalid
		}
	}

	if _, err := s.wallets.GetOrCreate(ctx, userID); err != nil {
		return Withdrawal{}, err
	}

	fee := Fee(input.Amount, input.PaymentMethod)
	netAmount := input.Amount.Sub(fee).Round(2)

	// The gross amount is checked and debited; the fee is absorbed from the
	// withdrawn amount, so the net amount is what the destination receives.
	move, err := s.wallets.Hold(ctx, userID, input.Amount)
	if err != nil {
		switch {
		case errors.Is(err, wallet.ErrInsufficientFunds):
			return Withdrawal{}, ErrInsufficientBalance
		case errors.Is(err, wallet.ErrFrozen):
			return Withdrawal{}, ErrWalletFrozen
		default:
			return Withdrawal{}, err
		}
	}

	ref := NewReference(RefPrefixWithdrawal)
	now := time.Now().UTC()
	withdrawal := Withdrawal{
		ID:                uuid.New().String(),
		UserID:            userID,
		Ref:               ref,
		Amount:            input.Amount,
		Fee:               fee,
		NetAmount:         netAmount,
		Currency:          "USD",
		PaymentMethod:     input.PaymentMethod,
		Status:            ledger.StatusPending,
		WalletAddress:     input.WalletAddress,
		Network:           input.Network,
		BankName:          input.BankName,
		AccountNumber:     input.AccountNumber,
		AccountName:       input.AccountName,
		RoutingNumber:     input.RoutingNumber,
		SwiftCode:         input.SwiftCode,
		IBAN:              input.IBAN,
		UserNote:          input.UserNote,
		BalanceAtRequest:  move.Before,
		TwoFactorVerified: user.TwoFactorEnabled,
		CreatedAt:         now,
	}
	if err := s.withdrawals.Create(ctx, withdrawal); err != nil {
		// The hold already happened; give the funds back before surfacing
		// the failure.
		if _, releaseErr := s.wallets.Release(ctx, userID, input.Amount); releaseErr != nil {
			s.logger.Error("release hold after failed withdrawal persist",
				slog.String("user_id", userID), slog.Any("error", releaseErr))
		}
		return Withdrawal{}, err
	}

	if err := s.ledger.Record(ctx, ledger.Transaction{
		UserID:        userID,
		Ref:           NewReference(RefPrefixTransaction),
		Type:          ledger.TypeWithdrawal,
		Status:        ledger.StatusPending,
		Amount:        input.Amount,
		Currency:      "USD",
		Fee:           fee,
		NetAmount:     netAmount,
		PaymentMethod: string(input.PaymentMethod),
		Description:   fmt.Sprintf("Withdrawal via %s", input.PaymentMethod.Label()),
		BalanceBefore: move.Before,
		BalanceAfter:  move.After,
		CreatedAt:     now,
	}); err != nil {
		s.logger.Error("record withdrawal transaction",
			slog.String("withdrawal_ref", ref), slog.Any("error", err))
	}

	notification.Dispatch(s.notifier, s.logger,
		notification.Message{
			Kind:        notification.KindWithdrawalRequested,
			Destination: user.Email,
			Subject:     "Withdrawal request received",
			Body:        fmt.Sprintf("Hi %s, your withdrawal of $%s USD is being processed.", user.FirstName, input.Amount.String()),
			Reference:   ref,
		},
		notification.Message{
			Kind:        notification.KindAdminNewWithdrawal,
			Destination: s.adminEmail,
			Subject:     "New withdrawal request",
			Body:        fmt.Sprintf("%s (%s) requested a withdrawal of $%s USD via %s.", user.FullName(), user.Email, input.Amount.String(), input.PaymentMethod.Label()),
			Reference:   ref,
		})

	return withdrawal, nil
}

// CancelWithdrawal reverses a pending withdrawal, returning the held funds
// to the main balance. The status-guarded cancel makes a second attempt fail
// with ErrWithdrawalNotFound instead of refunding twice.
func (s *Service) CancelWithdrawal(ctx context.Context, userID, withdrawalID string) error {
	withdrawal, err := s.withdrawals.CancelPending(ctx, withdrawalID, userID)
	if err != nil {
		return err
	}

	move, err := s.wallets.Release(ctx, userID, withdrawal.Amount)
	if err != nil {
		return err
	}

	if err := s.ledger.Record(ctx, ledger.Transaction{
		UserID:        userID,
		Ref:           NewReference(RefPrefixTransaction),
		Type:          ledger.TypeRefund,
		Status:        ledger.StatusCompleted,
		Amount:        withdrawal.Amount,
		Currency:      "USD",
		Description:   fmt.Sprintf("Withdrawal cancelled - %s", withdrawal.Ref),
		BalanceBefore: move.Before,
		BalanceAfter:  move.After,
	}); err != nil {
		s.logger.Error("record refund transaction",
			slog.String("withdrawal_ref", withdrawal.Ref), slog.Any("error", err))
	}

	return nil
}

// Summary describes the wallet overview returned by the dashboard.
type Summary struct {
	Wallet             wallet.Wallet
	TotalBalance       decimal.Decimal
	RecentTransactions []ledger.Transaction
	PendingDeposits    int
	PendingWithdrawals int
}

// WalletSummary assembles balances, recent activity and in-flight counts.
func (s *Service) WalletSummary(ctx context.Context, userID string) (Summary, error) {
	w, err := s.wallets.GetOrCreate(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	recent, err := s.ledger.Recent(ctx, userID, 5)
	if err != nil {
		return Summary{}, err
	}
	pendingDeposits, err := s.deposits.CountPending(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	pendingWithdrawals, err := s.withdrawals.CountPending(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Wallet:             w,
		TotalBalance:       w.TotalBalance(),
		RecentTransactions: recent,
		PendingDeposits:    pendingDeposits,
		PendingWithdrawals: pendingWithdrawals,
	}, nil
}

// ListDeposits returns the user's deposits, paginated.
func (s *Service) ListDeposits(ctx context.Context, userID string, p pagination.Params) ([]Deposit, int, error) {
	return s.deposits.List(ctx, userID, p)
}

// ListWithdrawals returns the user's withdrawals, paginated.
func (s *Service) ListWithdrawals(ctx context.Context, userID string, p pagination.Params) ([]Withdrawal, int, error) {
	return s.withdrawals.List(ctx, userID, p)
}

// ListTransactions returns the user's transaction history, paginated, with
// optional substring search over reference and description.
func (s *Service) ListTransactions(ctx context.Context, userID string, p pagination.Params) ([]ledger.Transaction, int, error) {
	return s.ledger.List(ctx, userID, p)
}
