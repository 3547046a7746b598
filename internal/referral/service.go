package referral

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/varlixo/varlixo/internal/funding"
	"github.com/varlixo/varlixo/internal/ledger"
	"github.com/varlixo/varlixo/internal/wallet"
)

// Service tracks referral relationships and credits bonuses.
type Service struct {
	repo    Repository
	wallets wallet.Repository
	ledger  ledger.Repository
	logger  *slog.Logger
}

// NewService wires the referral workflow.
func NewService(repo Repository, wallets wallet.Repository, txlog ledger.Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, wallets: wallets, ledger: txlog, logger: logger}
}

// Track records that a new user signed up with a referrer's code. Called
// after registration; failures are logged rather than failing the signup.
func (s *Service) Track(ctx context.Context, referrerID, referredID, referredEmail, code string) {
	err := s.repo.Create(ctx, Referral{
		ID:            uuid.New().String(),
		ReferrerID:    referrerID,
		ReferredID:    referredID,
		ReferredEmail: referredEmail,
		Code:          code,
		Status:        StatusPending,
		CreatedAt:     time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("track referral",
			slog.String("referrer_id", referrerID), slog.Any("error", err))
	}
}

// AwardBonus credits a referral bonus to the referrer's wallet and records
// the audit transaction. The status guard on Reward keeps the bonus from
// being paid twice for the same referral.
func (s *Service) AwardBonus(ctx context.Context, referralID string, bonus decimal.Decimal) (Referral, error) {
	ref, err := s.repo.Reward(ctx, referralID, bonus, time.Now().UTC())
	if err != nil {
		return Referral{}, err
	}

	move, err := s.wallets.CreditReferral(ctx, ref.ReferrerID, bonus)
	if err != nil {
		return Referral{}, err
	}

	if err := s.ledger.Record(ctx, ledger.Transaction{
		UserID:        ref.ReferrerID,
		Ref:           funding.NewReference(funding.RefPrefixTransaction),
		Type:          ledger.TypeReferralBonus,
		Status:        ledger.StatusCompleted,
		Amount:        bonus,
		Currency:      "USD",
		Description:   fmt.Sprintf("Referral bonus for %s", ref.ReferredEmail),
		BalanceBefore: move.Before,
		BalanceAfter:  move.After,
	}); err != nil {
		s.logger.Error("record referral bonus transaction",
			slog.String("referral_id", referralID), slog.Any("error", err))
	}

	return ref, nil
}

// Stats aggregates a referrer's results.
func (s *Service) Stats(ctx context.Context, referrerID string) (Stats, error) {
	return s.repo.StatsByReferrer(ctx, referrerID)
}

// List returns the referrals brought in by a user.
func (s *Service) List(ctx context.Context, referrerID string) ([]Referral, error) {
	return s.repo.ListByReferrer(ctx, referrerID)
}
