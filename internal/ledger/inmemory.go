package ledger

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/varlixo/varlixo/internal/pagination"
)

type inMemoryRepository struct {
	mu           sync.RWMutex
	transactions []Transaction
}

// NewInMemory creates a concurrency-safe in-memory transaction store for
// development and tests.
func NewInMemory() Repository {
	return &inMemoryRepository{}
}

func (r *inMemoryRepository) Record(_ context.Context, tx Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	r.transactions = append(r.transactions, tx)
	return nil
}

func (r *inMemoryRepository) List(_ context.Context, userID string, p pagination.Params) ([]Transaction, int, error) {
	p = p.Normalize()

	r.mu.RLock()
	var matched []Transaction
	for _, tx := range r.transactions {
		if tx.UserID != userID {
			continue
		}
		if p.Search != "" && !matchesSearch(tx, p.Search) {
			continue
		}
		matched = append(matched, tx)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if p.SortOrder == "asc" {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := p.Offset()
	if start > total {
		start = total
	}
	end := start + p.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *inMemoryRepository) Recent(ctx context.Context, userID string, n int) ([]Transaction, error) {
	items, _, err := r.List(ctx, userID, pagination.Params{Page: 1, Limit: n})
	return items, err
}

func matchesSearch(tx Transaction, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(tx.Ref), needle) ||
		strings.Contains(strings.ToLower(tx.Description), needle)
}
