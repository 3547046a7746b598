package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type memoryRepository struct {
	mu      sync.Mutex
	wallets map[string]Wallet // keyed by user id
}

// NewMemoryRepository constructs an in-memory repository for development and
// tests. The mutex makes every balance movement atomic, matching the
// conditional-update semantics of the Postgres implementation.
func NewMemoryRepository() Repository {
	return &memoryRepository{wallets: make(map[string]Wallet)}
}

func (r *memoryRepository) GetOrCreate(_ context.Context, userID string) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(userID), nil
}

func (r *memoryRepository) getOrCreateLocked(userID string) Wallet {
	w, ok := r.wallets[userID]
	if !ok {
		now := time.Now().UTC()
		w = Wallet{
			ID:               uuid.New().String(),
			UserID:           userID,
			DepositAddresses: map[string]string{},
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		r.wallets[userID] = w
	}
	return w
}

func (r *memoryRepository) Hold(_ context.Context, userID string, amount decimal.Decimal) (Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return Movement{}, ErrNotFound
	}
	if w.IsFrozen {
		return Movement{}, ErrFrozen
	}
	if w.MainBalance.LessThan(amount) {
		return Movement{}, ErrInsufficientFunds
	}
	before := w.MainBalance
	w.MainBalance = w.MainBalance.Sub(amount)
	w.PendingBalance = w.PendingBalance.Add(amount)
	w.UpdatedAt = time.Now().UTC()
	r.wallets[userID] = w
	return Movement{Before: before, After: w.MainBalance}, nil
}

func (r *memoryRepository) Release(_ context.Context, userID string, amount decimal.Decimal) (Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return Movement{}, ErrNotFound
	}
	if w.PendingBalance.LessThan(amount) {
		return Movement{}, ErrInsufficientFunds
	}
	before := w.MainBalance
	w.PendingBalance = w.PendingBalance.Sub(amount)
	w.MainBalance = w.MainBalance.Add(amount)
	w.UpdatedAt = time.Now().UTC()
	r.wallets[userID] = w
	return Movement{Before: before, After: w.MainBalance}, nil
}

func (r *memoryRepository) CreditMain(_ context.Context, userID string, amount decimal.Decimal) (Movement, error) {
	return r.credit(userID, amount, false)
}

func (r *memoryRepository) CreditReferral(_ context.Context, userID string, amount decimal.Decimal) (Movement, error) {
	return r.credit(userID, amount, true)
}

func (r *memoryRepository) credit(userID string, amount decimal.Decimal, referral bool) (Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w := r.getOrCreateLocked(userID)
	if w.IsFrozen {
		return Movement{}, ErrFrozen
	}
	before := w.MainBalance
	w.MainBalance = w.MainBalance.Add(amount)
	if referral {
		w.ReferralEarnings = w.ReferralEarnings.Add(amount)
		w.TotalEarnings = w.TotalEarnings.Add(amount)
	}
	w.UpdatedAt = time.Now().UTC()
	r.wallets[userID] = w
	return Movement{Before: before, After: w.MainBalance}, nil
}

func (r *memoryRepository) SetDepositAddress(_ context.Context, userID, currency, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return ErrNotFound
	}
	if w.DepositAddresses == nil {
		w.DepositAddresses = map[string]string{}
	}
	w.DepositAddresses[currency] = address
	r.wallets[userID] = w
	return nil
}

func (r *memoryRepository) Freeze(_ context.Context, userID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[userID]
	if !ok {
		return ErrNotFound
	}
	w.IsFrozen = true
	w.FrozenReason = reason
	r.wallets[userID] = w
	return nil
}

// SeedBalance is a test helper that sets the main balance directly when using
// the in-memory repository.
func SeedBalance(repo Repository, userID string, amount decimal.Decimal) {
	if mem, ok := repo.(*memoryRepository); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		w := mem.getOrCreateLocked(userID)
		w.MainBalance = amount
		mem.wallets[userID] = w
	}
}
