package referral

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Statuses of a referral relationship.
const (
	StatusPending   = "pending"
	StatusQualified = "qualified"
	StatusRewarded  = "rewarded"
)

// ErrNotFound indicates the referral record does not exist or is not in a
// rewardable state.
var ErrNotFound = errors.New("referral not found")

// Referral links a referred user to the account that invited them.
type Referral struct {
	ID            string          `json:"id"`
	ReferrerID    string          `json:"referrerId"`
	ReferredID    string          `json:"referredId"`
	ReferredEmail string          `json:"referredEmail"`
	Code          string          `json:"code"`
	Status        string          `json:"status"`
	BonusAmount   decimal.Decimal `json:"bonusAmount"`
	RewardedAt    *time.Time      `json:"rewardedAt,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Stats aggregates a referrer's results.
type Stats struct {
	TotalReferrals int             `json:"totalReferrals"`
	Rewarded       int             `json:"rewarded"`
	TotalEarned    decimal.Decimal `json:"totalEarned"`
}

// Repository persists referral relationships.
type Repository interface {
	Create(ctx context.Context, r Referral) error
	// Reward marks a pending or qualified referral as rewarded, recording
	// the bonus. It fails with ErrNotFound if the referral does not exist
	// or was already rewarded.
	Reward(ctx context.Context, id string, bonus decimal.Decimal, at time.Time) (Referral, error)
	ListByReferrer(ctx context.Context, referrerID string) ([]Referral, error)
	StatsByReferrer(ctx context.Context, referrerID string) (Stats, error)
}
