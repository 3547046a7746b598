package kyc

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu          sync.RWMutex
	submissions map[string]Submission
}

// NewMemoryRepository constructs an in-memory repository for development and
// tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{submissions: make(map[string]Submission)}
}

func (r *memoryRepository) Create(_ context.Context, s Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submissions[s.ID] = s
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.submissions[id]
	if !ok {
		return Submission{}, ErrNotFound
	}
	return s, nil
}

func (r *memoryRepository) LatestByUser(_ context.Context, userID string) (Submission, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest Submission
	var found bool
	for _, s := range r.submissions {
		if s.UserID != userID {
			continue
		}
		if !found || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
			found = true
		}
	}
	if !found {
		return Submission{}, ErrNotFound
	}
	return latest, nil
}

func (r *memoryRepository) Review(_ context.Context, id, status, reason, reviewerID string, at time.Time) (Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.submissions[id]
	if !ok || s.Status != StatusPending {
		return Submission{}, ErrNotFound
	}
	s.Status = status
	s.RejectionReason = reason
	s.ReviewedBy = reviewerID
	s.ReviewedAt = &at
	r.submissions[id] = s
	return s, nil
}
