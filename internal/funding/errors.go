package funding

import "errors"

var (
	// ErrUserNotFound indicates the requesting user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidAmount indicates a non-positive amount.
	ErrInvalidAmount = errors.New("amount must be positive")
	// ErrInvalidMethod indicates an unsupported payment method.
	ErrInvalidMethod = errors.New("unsupported payment method")
	// ErrKycRequired blocks withdrawals until KYC is approved.
	ErrKycRequired = errors.New("KYC verification required for withdrawals")
	// ErrTwoFactorRequired indicates 2FA is enabled but no code was supplied.
	ErrTwoFactorRequired = errors.New("two-factor authentication code required")
	// ErrTwoFactorInvalid indicates the supplied 2FA code did not verify.
	ErrTwoFactorInvalid = errors.New("invalid 2FA code")
	// ErrInsufficientBalance indicates the main balance cannot cover the amount.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrWalletFrozen indicates the wallet rejects fund movements.
	ErrWalletFrozen = errors.New("wallet is frozen")
	// ErrDepositNotFound indicates no matching deposit for the user.
	ErrDepositNotFound = errors.New("deposit not found")
	// ErrDepositProcessed indicates the deposit already left the pending state.
	ErrDepositProcessed = errors.New("deposit already processed")
	// ErrWithdrawalNotFound indicates no pending withdrawal matched; a cancel
	// retry hits this, which is what prevents double refunds.
	ErrWithdrawalNotFound = errors.New("withdrawal not found or already processed")
)
