package funding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/varlixo/varlixo/internal/identity"
	"github.com/varlixo/varlixo/internal/ledger"
	"github.com/varlixo/varlixo/internal/logging"
	"github.com/varlixo/varlixo/internal/pagination"
	"github.com/varlixo/varlixo/internal/wallet"
)

type stubVerifier struct {
	accept string
}

func (v stubVerifier) Verify(_ string, code string) bool {
	return code == v.accept
}

type testEnv struct {
	service *Service
	users   identity.Repository
	wallets wallet.Repository
	ledger  ledger.Repository
}

func newTestEnv(t *testing.T, user identity.User) testEnv {
	t.Helper()
	users := identity.NewMemoryRepository()
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	wallets := wallet.NewMemoryRepository()
	txlog := ledger.NewInMemory()
	service := NewService(users, wallets,
		NewMemoryDepositRepository(), NewMemoryWithdrawalRepository(),
		txlog, stubVerifier{accept: "123456"}, nil, logging.Discard(), "ops@example.com")
	return testEnv{service: service, users: users, wallets: wallets, ledger: txlog}
}

func approvedUser(id string) identity.User {
	return identity.User{
		ID:        id,
		Email:     fmt.Sprintf("%s@example.com", id),
		FirstName: "Ada",
		LastName:  "Osei",
		KycStatus: identity.KycApproved,
	}
}

func mainBalance(t *testing.T, env testEnv, userID string) decimal.Decimal {
	t.Helper()
	w, err := env.wallets.GetOrCreate(context.Background(), userID)
	if err != nil {
		t.Fatalf("load wallet: %v", err)
	}
	return w.MainBalance
}

func pendingBalance(t *testing.T, env testEnv, userID string) decimal.Decimal {
	t.Helper()
	w, err := env.wallets.GetOrCreate(context.Background(), userID)
	if err != nil {
		t.Fatalf("load wallet: %v", err)
	}
	return w.PendingBalance
}

func TestCreateDepositLeavesBalancesUntouched(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))
	wallet.SeedBalance(env.wallets, "u1", decimal.NewFromInt(100))

	receipt, err := env.service.CreateDeposit(context.Background(), "u1", CreateDepositInput{
		Amount:        decimal.NewFromInt(500),
		PaymentMethod: MethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}

	d := receipt.Deposit
	if d.Status != ledger.StatusPending {
		t.Fatalf("status = %q, want %q", d.Status, ledger.StatusPending)
	}
	if !strings.HasPrefix(d.Ref, "DEP-") {
		t.Fatalf("ref = %q, want DEP- prefix", d.Ref)
	}
	wantExpiry := d.CreatedAt.Add(24 * time.Hour)
	if !d.ExpiresAt.Equal(wantExpiry) {
		t.Fatalf("expiresAt = %v, want %v", d.ExpiresAt, wantExpiry)
	}
	if got := mainBalance(t, env, "u1"); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("main balance = %s, want 100", got)
	}

	note, _ := receipt.Instructions["note"].(string)
	if !strings.Contains(note, "500") {
		t.Fatalf("bank instructions note %q does not mention the amount", note)
	}
}

func TestCreateDepositCryptoAssignsAddress(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))

	receipt, err := env.service.CreateDeposit(context.Background(), "u1", CreateDepositInput{
		Amount:        decimal.NewFromInt(250),
		PaymentMethod: MethodCryptoBTC,
	})
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}
	if receipt.Deposit.DepositAddress == "" {
		t.Fatal("expected a deposit address for crypto method")
	}
	if !strings.HasPrefix(receipt.Deposit.DepositAddress, "1") {
		t.Fatalf("btc address = %q, want leading 1", receipt.Deposit.DepositAddress)
	}

	w, err := env.wallets.GetOrCreate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("load wallet: %v", err)
	}
	if w.DepositAddresses[string(MethodCryptoBTC)] != receipt.Deposit.DepositAddress {
		t.Fatal("deposit address not stored on the wallet")
	}
}

func TestCreateDepositRejectsBadInput(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))

	_, err := env.service.CreateDeposit(context.Background(), "u1", CreateDepositInput{
		Amount:        decimal.NewFromInt(-5),
		PaymentMethod: MethodBankTransfer,
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}

	_, err = env.service.CreateDeposit(context.Background(), "u1", CreateDepositInput{
		Amount:        decimal.NewFromInt(5),
		PaymentMethod: PaymentMethod("carrier_pigeon"),
	})
	if !errors.Is(err, ErrInvalidMethod) {
		t.Fatalf("err = %v, want ErrInvalidMethod", err)
	}

	_, err = env.service.CreateDeposit(context.Background(), "ghost", CreateDepositInput{
		Amount:        decimal.NewFromInt(5),
		PaymentMethod: MethodBankTransfer,
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestUploadProofMovesDepositToProcessing(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))

	receipt, err := env.service.CreateDeposit(context.Background(), "u1", CreateDepositInput{
		Amount:        decimal.NewFromInt(200),
		PaymentMethod: MethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("create deposit: %v", err)
	}

	updated, err := env.service.UploadDepositProof(context.Background(), "u1", receipt.Deposit.ID, "/uploads/proof.png", "BNK-42")
	if err != nil {
		t.Fatalf("upload proof: %v", err)
	}
	if updated.Status != ledger.StatusProcessing {
		t.Fatalf("status = %q, want %q", updated.Status, ledger.StatusProcessing)
	}
	if updated.ProofOfPayment != "/uploads/proof.png" || updated.ReferenceNumber != "BNK-42" {
		t.Fatal("proof fields not recorded")
	}

	// A second upload finds the deposit no longer pending.
	_, err = env.service.UploadDepositProof(context.Background(), "u1", receipt.Deposit.ID, "/uploads/other.png", "BNK-43")
	if !errors.Is(err, ErrDepositProcessed) {
		t.Fatalf("err = %v, want ErrDepositProcessed", err)
	}

	_, err = env.service.UploadDepositProof(context.Background(), "u1", "missing", "/uploads/p.png", "")
	if !errors.Is(err, ErrDepositNotFound) {
		t.Fatalf("err = %v, want ErrDepositNotFound", err)
	}
}

func TestCreateWithdrawalDebitsGrossAndComputesFee(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))
	wallet.SeedBalance(env.wallets, "u1", decimal.NewFromInt(1000))

	w, err := env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
		Amount:        decimal.NewFromInt(300),
		PaymentMethod: MethodCryptoBTC,
		WalletAddress: "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2",
	})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	if !w.Fee.Equal(decimal.RequireFromString("6.00")) {
		t.Fatalf("fee = %s, want 6.00", w.Fee)
	}
	if !w.NetAmount.Equal(decimal.RequireFromString("294.00")) {
		t.Fatalf("net = %s, want 294.00", w.NetAmount)
	}
	if w.Status != ledger.StatusPending {
		t.Fatalf("status = %q, want %q", w.Status, ledger.StatusPending)
	}
	if !w.BalanceAtRequest.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("balance at request = %s, want 1000", w.BalanceAtRequest)
	}
	if got := mainBalance(t, env, "u1"); !got.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("main balance = %s, want 700", got)
	}
	if got := pendingBalance(t, env, "u1"); !got.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("pending balance = %s, want 300", got)
	}

	recent, err := env.ledger.Recent(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].Type != ledger.TypeWithdrawal {
		t.Fatalf("recent = %+v, want one withdrawal record", recent)
	}
	if !recent[0].BalanceBefore.Equal(decimal.NewFromInt(1000)) || !recent[0].BalanceAfter.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("snapshots = %s/%s, want 1000/700", recent[0].BalanceBefore, recent[0].BalanceAfter)
	}
}

func TestCreateWithdrawalFeeIsOnePercentForFiat(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))
	wallet.SeedBalance(env.wallets, "u1", decimal.NewFromInt(1000))

	w, err := env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
		Amount:        decimal.RequireFromString("333.33"),
		PaymentMethod: MethodBankTransfer,
		BankName:      "First Bank",
		AccountNumber: "0011223344",
	})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}
	if !w.Fee.Equal(decimal.RequireFromString("3.33")) {
		t.Fatalf("fee = %s, want 3.33", w.Fee)
	}
	if !w.NetAmount.Equal(decimal.RequireFromString("330.00")) {
		t.Fatalf("net = %s, want 330.00", w.NetAmount)
	}
}

func TestCreateWithdrawalInsufficientBalance(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))
	wallet.SeedBalance(env.wallets, "u1", decimal.NewFromInt(50))

	_, err := env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
		Amount:        decimal.NewFromInt(300),
		PaymentMethod: MethodBankTransfer,
	})
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}
	if got := mainBalance(t, env, "u1"); !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("main balance = %s, want unchanged 50", got)
	}
	if got := pendingBalance(t, env, "u1"); !got.IsZero() {
		t.Fatalf("pending balance = %s, want 0", got)
	}

	withdrawals, total, err := env.service.ListWithdrawals(context.Background(), "u1", pagination.Params{})
	if err != nil {
		t.Fatalf("list withdrawals: %v", err)
	}
	if total != 0 || len(withdrawals) != 0 {
		t.Fatal("rejected withdrawal should not be recorded")
	}
}

func TestCreateWithdrawalRequiresApprovedKyc(t *testing.T) {
	user := approvedUser("u1")
	user.KycStatus = identity.KycPending
	env := newTestEnv(t, user)
	wallet.SeedBalance(env.wallets, "u1", decimal.NewFromInt(1000))

	_, err := env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: MethodBankTransfer,
	})
	if !errors.Is(err, ErrKycRequired) {
		t.Fatalf("err = %v, want ErrKycRequired", err)
	}
}

func TestCreateWithdrawalEnforcesTwoFactor(t *testing.T) {
	user := approvedUser("u1")
	user.TwoFactorEnabled = true
	user.TwoFactorSecret = "SECRET"
	env := newTestEnv(t, user)
	wallet.SeedBalance(env.wallets, "u1", decimal.NewFromInt(1000))

	_, err := env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: MethodBankTransfer,
	})
	if !errors.Is(err, ErrTwoFactorRequired) {
		t.Fatalf("err = %v, want ErrTwoFactorRequired", err)
	}

	_, err = env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: MethodBankTransfer,
		TwoFactorCode: "000000",
	})
	if !errors.Is(err, ErrTwoFactorInvalid) {
		t.Fatalf("err = %v, want ErrTwoFactorInvalid", err)
	}
	if got := mainBalance(t, env, "u1"); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("main balance = %s, want unchanged 1000", got)
	}

	w, err := env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: MethodBankTransfer,
		TwoFactorCode: "123456",
	})
	if err != nil {
		t.Fatalf("create withdrawal with valid code: %v", err)
	}
	if !w.TwoFactorVerified {
		t.Fatal("expected TwoFactorVerified to be set")
	}
}

func TestCreateWithdrawalFrozenWallet(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))
	wallet.SeedBalance(env.wallets, "u1", decimal.NewFromInt(1000))
	if err := env.wallets.Freeze(context.Background(), "u1", "chargeback review"); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	_, err := env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: MethodBankTransfer,
	})
	if !errors.Is(err, ErrWalletFrozen) {
		t.Fatalf("err = %v, want ErrWalletFrozen", err)
	}
}

func TestCancelWithdrawalRefundsExactly(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))
	wallet.SeedBalance(env.wallets, "u1", decimal.NewFromInt(1000))

	w, err := env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
		Amount:        decimal.NewFromInt(300),
		PaymentMethod: MethodCryptoBTC,
	})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	if err := env.service.CancelWithdrawal(context.Background(), "u1", w.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if got := mainBalance(t, env, "u1"); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("main balance = %s, want 1000 after refund", got)
	}
	if got := pendingBalance(t, env, "u1"); !got.IsZero() {
		t.Fatalf("pending balance = %s, want 0 after refund", got)
	}

	// Cancelling again must not refund twice.
	err = env.service.CancelWithdrawal(context.Background(), "u1", w.ID)
	if !errors.Is(err, ErrWithdrawalNotFound) {
		t.Fatalf("second cancel err = %v, want ErrWithdrawalNotFound", err)
	}
	if got := mainBalance(t, env, "u1"); !got.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("main balance = %s, want still 1000", got)
	}

	recent, err := env.ledger.Recent(context.Background(), "u1", 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	var refunds int
	for _, tx := range recent {
		if tx.Type == ledger.TypeRefund && tx.Status == ledger.StatusCompleted {
			refunds++
		}
	}
	if refunds != 1 {
		t.Fatalf("refund records = %d, want 1", refunds)
	}
}

func TestCancelWithdrawalWrongUser(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))
	other := approvedUser("u2")
	if err := env.users.Create(context.Background(), other); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	wallet.SeedBalance(env.wallets, "u1", decimal.NewFromInt(1000))

	w, err := env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: MethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	err = env.service.CancelWithdrawal(context.Background(), "u2", w.ID)
	if !errors.Is(err, ErrWithdrawalNotFound) {
		t.Fatalf("err = %v, want ErrWithdrawalNotFound for another user", err)
	}
}

func TestConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))
	// Balance covers exactly 3 withdrawals of 100.
	wallet.SeedBalance(env.wallets, "u1", decimal.NewFromInt(300))

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
				Amount:        decimal.NewFromInt(100),
				PaymentMethod: MethodBankTransfer,
			})
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, ErrInsufficientBalance):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 3 {
		t.Fatalf("succeeded = %d, want exactly 3", succeeded)
	}
	if got := mainBalance(t, env, "u1"); !got.IsZero() {
		t.Fatalf("main balance = %s, want 0", got)
	}
	if got := pendingBalance(t, env, "u1"); !got.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("pending balance = %s, want 300", got)
	}
}

func TestWalletSummaryCounts(t *testing.T) {
	env := newTestEnv(t, approvedUser("u1"))
	wallet.SeedBalance(env.wallets, "u1", decimal.NewFromInt(1000))

	if _, err := env.service.CreateDeposit(context.Background(), "u1", CreateDepositInput{
		Amount:        decimal.NewFromInt(200),
		PaymentMethod: MethodBankTransfer,
	}); err != nil {
		t.Fatalf("create deposit: %v", err)
	}
	if _, err := env.service.CreateWithdrawal(context.Background(), "u1", CreateWithdrawalInput{
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: MethodBankTransfer,
	}); err != nil {
		t.Fatalf("create withdrawal: %v", err)
	}

	summary, err := env.service.WalletSummary(context.Background(), "u1")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.PendingDeposits != 1 {
		t.Fatalf("pending deposits = %d, want 1", summary.PendingDeposits)
	}
	if summary.PendingWithdrawals != 1 {
		t.Fatalf("pending withdrawals = %d, want 1", summary.PendingWithdrawals)
	}
	if !summary.TotalBalance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("total balance = %s, want 1000 (main + pending)", summary.TotalBalance)
	}
	if len(summary.RecentTransactions) == 0 {
		t.Fatal("expected recent transactions")
	}
}

func TestFeeRounding(t *testing.T) {
	cases := []struct {
		amount string
		method PaymentMethod
		want   string
	}{
		{"300", MethodCryptoBTC, "6"},
		{"300", MethodBankTransfer, "3"},
		{"100.555", MethodCryptoUSDT, "2.01"},
		{"0.01", MethodPayPal, "0"},
		{"333.33", MethodCard, "3.33"},
	}
	for _, tc := range cases {
		got := Fee(decimal.RequireFromString(tc.amount), tc.method)
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Errorf("Fee(%s, %s) = %s, want %s", tc.amount, tc.method, got, tc.want)
		}
	}
}
