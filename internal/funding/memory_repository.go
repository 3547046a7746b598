package funding

import (
	"context"
	"sort"
	"sync"

	"github.com/varlixo/varlixo/internal/ledger"
	"github.com/varlixo/varlixo/internal/pagination"
)

type memoryDepositRepository struct {
	mu       sync.RWMutex
	deposits map[string]Deposit
}

// NewMemoryDepositRepository builds an in-memory deposit store for
// development and tests.
func NewMemoryDepositRepository() DepositRepository {
	return &memoryDepositRepository{deposits: make(map[string]Deposit)}
}

func (r *memoryDepositRepository) Create(_ context.Context, d Deposit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deposits[d.ID] = d
	return nil
}

func (r *memoryDepositRepository) FindByID(_ context.Context, id, userID string) (Deposit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.deposits[id]
	if !ok || d.UserID != userID {
		return Deposit{}, ErrDepositNotFound
	}
	return d, nil
}

func (r *memoryDepositRepository) AttachProof(_ context.Context, id, userID, proofPath, referenceNumber string) (Deposit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.deposits[id]
	if !ok || d.UserID != userID {
		return Deposit{}, ErrDepositNotFound
	}
	if d.Status != ledger.StatusPending {
		return Deposit{}, ErrDepositProcessed
	}
	d.ProofOfPayment = proofPath
	d.ReferenceNumber = referenceNumber
	d.Status = ledger.StatusProcessing
	r.deposits[id] = d
	return d, nil
}

func (r *memoryDepositRepository) List(_ context.Context, userID string, p pagination.Params) ([]Deposit, int, error) {
	p = p.Normalize()

	r.mu.RLock()
	var matched []Deposit
	for _, d := range r.deposits {
		if d.UserID == userID {
			matched = append(matched, d)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if p.SortOrder == "asc" {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start, end := pageBounds(total, p)
	return matched[start:end], total, nil
}

func (r *memoryDepositRepository) CountPending(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, d := range r.deposits {
		if d.UserID == userID && d.Status == ledger.StatusPending {
			count++
		}
	}
	return count, nil
}

type memoryWithdrawalRepository struct {
	mu          sync.RWMutex
	withdrawals map[string]Withdrawal
}

// NewMemoryWithdrawalRepository builds an in-memory withdrawal store for
// development and tests.
func NewMemoryWithdrawalRepository() WithdrawalRepository {
	return &memoryWithdrawalRepository{withdrawals: make(map[string]Withdrawal)}
}

func (r *memoryWithdrawalRepository) Create(_ context.Context, w Withdrawal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.withdrawals[w.ID] = w
	return nil
}

func (r *memoryWithdrawalRepository) CancelPending(_ context.Context, id, userID string) (Withdrawal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.withdrawals[id]
	if !ok || w.UserID != userID || w.Status != ledger.StatusPending {
		return Withdrawal{}, ErrWithdrawalNotFound
	}
	w.Status = ledger.StatusCancelled
	r.withdrawals[id] = w
	return w, nil
}

func (r *memoryWithdrawalRepository) List(_ context.Context, userID string, p pagination.Params) ([]Withdrawal, int, error) {
	p = p.Normalize()

	r.mu.RLock()
	var matched []Withdrawal
	for _, w := range r.withdrawals {
		if w.UserID == userID {
			matched = append(matched, w)
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if p.SortOrder == "asc" {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start, end := pageBounds(total, p)
	return matched[start:end], total, nil
}

func (r *memoryWithdrawalRepository) CountPending(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, w := range r.withdrawals {
		if w.UserID == userID && w.Status == ledger.StatusPending {
			count++
		}
	}
	return count, nil
}

func pageBounds(total int, p pagination.Params) (int, int) {
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}
