package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
)

func TestHoldMovesMainToPending(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if _, err := repo.GetOrCreate(ctx, "u1"); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	SeedBalance(repo, "u1", decimal.NewFromInt(100))

	move, err := repo.Hold(ctx, "u1", decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("hold: %v", err)
	}
	if !move.Before.Equal(decimal.NewFromInt(100)) || !move.After.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("movement = %s/%s, want 100/60", move.Before, move.After)
	}

	w, _ := repo.GetOrCreate(ctx, "u1")
	if !w.MainBalance.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("main = %s, want 60", w.MainBalance)
	}
	if !w.PendingBalance.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("pending = %s, want 40", w.PendingBalance)
	}
	if !w.TotalBalance().Equal(decimal.NewFromInt(100)) {
		t.Fatalf("total = %s, want conserved 100", w.TotalBalance())
	}
}

func TestHoldInsufficientFunds(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if _, err := repo.GetOrCreate(ctx, "u1"); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	SeedBalance(repo, "u1", decimal.NewFromInt(10))

	_, err := repo.Hold(ctx, "u1", decimal.NewFromInt(11))
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}

	w, _ := repo.GetOrCreate(ctx, "u1")
	if !w.MainBalance.Equal(decimal.NewFromInt(10)) || !w.PendingBalance.IsZero() {
		t.Fatal("failed hold must not change balances")
	}
}

func TestHoldFrozenWallet(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if _, err := repo.GetOrCreate(ctx, "u1"); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	SeedBalance(repo, "u1", decimal.NewFromInt(100))
	if err := repo.Freeze(ctx, "u1", "manual review"); err != nil {
		t.Fatalf("freeze: %v", err)
	}

	if _, err := repo.Hold(ctx, "u1", decimal.NewFromInt(1)); !errors.Is(err, ErrFrozen) {
		t.Fatalf("err = %v, want ErrFrozen", err)
	}
}

func TestReleaseReversesHold(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if _, err := repo.GetOrCreate(ctx, "u1"); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	SeedBalance(repo, "u1", decimal.NewFromInt(100))

	if _, err := repo.Hold(ctx, "u1", decimal.NewFromInt(40)); err != nil {
		t.Fatalf("hold: %v", err)
	}
	move, err := repo.Release(ctx, "u1", decimal.NewFromInt(40))
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if !move.Before.Equal(decimal.NewFromInt(60)) || !move.After.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("movement = %s/%s, want 60/100", move.Before, move.After)
	}

	w, _ := repo.GetOrCreate(ctx, "u1")
	if !w.MainBalance.Equal(decimal.NewFromInt(100)) || !w.PendingBalance.IsZero() {
		t.Fatal("release must restore the original balances")
	}

	// Releasing more than is pending fails.
	if _, err := repo.Release(ctx, "u1", decimal.NewFromInt(1)); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
}

func TestCreditReferralTracksEarnings(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	if _, err := repo.CreditReferral(ctx, "u1", decimal.NewFromInt(25)); err != nil {
		t.Fatalf("credit referral: %v", err)
	}
	w, _ := repo.GetOrCreate(ctx, "u1")
	if !w.MainBalance.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("main = %s, want 25", w.MainBalance)
	}
	if !w.ReferralEarnings.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("referral earnings = %s, want 25", w.ReferralEarnings)
	}
	if !w.TotalEarnings.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("total earnings = %s, want 25", w.TotalEarnings)
	}
}

func TestConcurrentHoldsRespectBalance(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	if _, err := repo.GetOrCreate(ctx, "u1"); err != nil {
		t.Fatalf("get or create: %v", err)
	}
	SeedBalance(repo, "u1", decimal.NewFromInt(500))

	const attempts = 20
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Hold(ctx, "u1", decimal.NewFromInt(100))
		}(i)
	}
	wg.Wait()

	var succeeded int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, ErrInsufficientFunds) {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if succeeded != 5 {
		t.Fatalf("succeeded = %d, want exactly 5", succeeded)
	}

	w, _ := repo.GetOrCreate(ctx, "u1")
	if !w.MainBalance.IsZero() || !w.PendingBalance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("balances = %s/%s, want 0/500", w.MainBalance, w.PendingBalance)
	}
}
