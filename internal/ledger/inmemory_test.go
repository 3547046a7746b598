package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/varlixo/varlixo/internal/pagination"
)

func seedTransactions(t *testing.T, repo Repository, userID string, n int) {
	t.Helper()
	base := time.Now().UTC().Add(-time.Duration(n) * time.Minute)
	for i := 0; i < n; i++ {
		err := repo.Record(context.Background(), Transaction{
			UserID:      userID,
			Ref:         "TXN-SEED-" + string(rune('A'+i)),
			Type:        TypeDeposit,
			Status:      StatusPending,
			Amount:      decimal.NewFromInt(int64(i + 1)),
			Currency:    "USD",
			Description: "seed transaction",
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("record: %v", err)
		}
	}
}

func TestListPaginatesNewestFirst(t *testing.T) {
	repo := NewInMemory()
	seedTransactions(t, repo, "user-1", 5)
	seedTransactions(t, repo, "user-2", 3)

	items, total, err := repo.List(context.Background(), "user-1", pagination.Params{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("expected total 5, got %d", total)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].CreatedAt.Before(items[1].CreatedAt) {
		t.Fatal("expected newest first")
	}

	asc, _, err := repo.List(context.Background(), "user-1", pagination.Params{Page: 1, Limit: 2, SortOrder: "asc"})
	if err != nil {
		t.Fatalf("list asc: %v", err)
	}
	if asc[0].CreatedAt.After(asc[1].CreatedAt) {
		t.Fatal("expected oldest first with asc order")
	}
}

func TestListSearchesRefAndDescription(t *testing.T) {
	repo := NewInMemory()
	ctx := context.Background()

	if err := repo.Record(ctx, Transaction{UserID: "u", Ref: "TXN-AAA-11111111", Description: "Deposit via bank transfer"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := repo.Record(ctx, Transaction{UserID: "u", Ref: "TXN-BBB-22222222", Description: "Withdrawal via crypto btc"}); err != nil {
		t.Fatalf("record: %v", err)
	}

	items, total, err := repo.List(ctx, "u", pagination.Params{Search: "bbb"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Ref != "TXN-BBB-22222222" {
		t.Fatalf("expected ref match, got total=%d items=%v", total, items)
	}

	items, total, err = repo.List(ctx, "u", pagination.Params{Search: "bank"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || items[0].Ref != "TXN-AAA-11111111" {
		t.Fatalf("expected description match, got total=%d", total)
	}
}

func TestRecentLimits(t *testing.T) {
	repo := NewInMemory()
	seedTransactions(t, repo, "user-1", 8)

	recent, err := repo.Recent(context.Background(), "user-1", 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("expected 5 recent, got %d", len(recent))
	}
}
