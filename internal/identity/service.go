package identity

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/varlixo/varlixo/internal/twofactor"
)

var (
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials indicates email/password mismatch.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidCode indicates a TOTP code did not verify.
	ErrInvalidCode = errors.New("invalid 2FA code")
)

const referralCodeChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Service manages the account lifecycle.
type Service struct {
	repo Repository
	totp twofactor.TOTP
}

// NewService creates a new identity service.
func NewService(repo Repository, totp twofactor.TOTP) *Service {
	return &Service{repo: repo, totp: totp}
}

// Register creates an account with a hashed password and a fresh referral
// code. When reg.ReferralCode names an existing user, the new account is
// linked to that referrer.
func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	email := strings.ToLower(strings.TrimSpace(reg.Email))
	if !strings.Contains(email, "@") {
		return User{}, errors.New("invalid email address")
	}
	if len(reg.Password) < 8 {
		return User{}, errors.New("password must be at least 8 characters")
	}
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PasswordHash: hash,
		Role:         RoleUser,
		KycStatus:    KycNotSubmitted,
		ReferralCode: newReferralCode(8),
		CreatedAt:    time.Now().UTC(),
	}

	if code := strings.TrimSpace(reg.ReferralCode); code != "" {
		if referrer, err := s.repo.FindByReferralCode(ctx, strings.ToUpper(code)); err == nil {
			user.ReferredBy = referrer.ID
		}
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Get returns the user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// BeginTwoFactor generates and stores a TOTP secret for the user. The secret
// stays disabled until ConfirmTwoFactor succeeds.
func (s *Service) BeginTwoFactor(ctx context.Context, userID string) (twofactor.Enrollment, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return twofactor.Enrollment{}, err
	}
	enrollment, err := s.totp.Generate(user.Email)
	if err != nil {
		return twofactor.Enrollment{}, err
	}
	if err := s.repo.SetTwoFactor(ctx, userID, enrollment.Secret, false); err != nil {
		return twofactor.Enrollment{}, err
	}
	return enrollment, nil
}

// ConfirmTwoFactor verifies a code against the stored secret and enables 2FA.
func (s *Service) ConfirmTwoFactor(ctx context.Context, userID, code string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TwoFactorSecret == "" {
		return errors.New("2FA enrollment not started")
	}
	if !s.totp.Verify(user.TwoFactorSecret, code) {
		return ErrInvalidCode
	}
	return s.repo.SetTwoFactor(ctx, userID, user.TwoFactorSecret, true)
}

func newReferralCode(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = referralCodeChars[rand.IntN(len(referralCodeChars))]
	}
	return string(b)
}
