package referral

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

type memoryRepository struct {
	mu        sync.RWMutex
	referrals map[string]Referral
}

// NewMemoryRepository constructs an in-memory repository for development and
// tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{referrals: make(map[string]Referral)}
}

func (r *memoryRepository) Create(_ context.Context, ref Referral) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.referrals[ref.ID] = ref
	return nil
}

func (r *memoryRepository) Reward(_ context.Context, id string, bonus decimal.Decimal, at time.Time) (Referral, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.referrals[id]
	if !ok || ref.Status == StatusRewarded {
		return Referral{}, ErrNotFound
	}
	ref.Status = StatusRewarded
	ref.BonusAmount = bonus
	ref.RewardedAt = &at
	r.referrals[id] = ref
	return ref, nil
}

func (r *memoryRepository) ListByReferrer(_ context.Context, referrerID string) ([]Referral, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Referral
	for _, ref := range r.referrals {
		if ref.ReferrerID == referrerID {
			out = append(out, ref)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memoryRepository) StatsByReferrer(_ context.Context, referrerID string) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := Stats{TotalEarned: decimal.Zero}
	for _, ref := range r.referrals {
		if ref.ReferrerID != referrerID {
			continue
		}
		stats.TotalReferrals++
		if ref.Status == StatusRewarded {
			stats.Rewarded++
			stats.TotalEarned = stats.TotalEarned.Add(ref.BonusAmount)
		}
	}
	return stats, nil
}
