package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"

	"github.com/varlixo/varlixo/internal/twofactor"
)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), twofactor.TOTP{Issuer: "VarlixoTest"})
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	user, err := svc.Register(ctx, Registration{
		Email:     "Alice@Example.com",
		Password:  "correcthorse",
		FirstName: "Alice",
		LastName:  "Doe",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %s", user.Email)
	}
	if user.KycStatus != KycNotSubmitted {
		t.Fatalf("expected kyc %s, got %s", KycNotSubmitted, user.KycStatus)
	}
	if len(user.ReferralCode) != 8 {
		t.Fatalf("expected 8-char referral code, got %q", user.ReferralCode)
	}

	if _, err := svc.Register(ctx, Registration{Email: "alice@example.com", Password: "correcthorse"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	if _, err := svc.Authenticate(ctx, "alice@example.com", "correcthorse"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "alice@example.com", "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegisterLinksReferrer(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	referrer, err := svc.Register(ctx, Registration{Email: "ref@example.com", Password: "correcthorse"})
	if err != nil {
		t.Fatalf("register referrer: %v", err)
	}

	referred, err := svc.Register(ctx, Registration{
		Email:        "friend@example.com",
		Password:     "correcthorse",
		ReferralCode: referrer.ReferralCode,
	})
	if err != nil {
		t.Fatalf("register referred: %v", err)
	}
	if referred.ReferredBy != referrer.ID {
		t.Fatalf("expected referredBy %s, got %s", referrer.ID, referred.ReferredBy)
	}

	// Unknown codes are ignored rather than rejected.
	stray, err := svc.Register(ctx, Registration{
		Email:        "stray@example.com",
		Password:     "correcthorse",
		ReferralCode: "NOPE1234",
	})
	if err != nil {
		t.Fatalf("register stray: %v", err)
	}
	if stray.ReferredBy != "" {
		t.Fatalf("expected empty referredBy, got %s", stray.ReferredBy)
	}
}

func TestTwoFactorEnrollment(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	user, err := svc.Register(ctx, Registration{Email: "tf@example.com", Password: "correcthorse"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	enrollment, err := svc.BeginTwoFactor(ctx, user.ID)
	if err != nil {
		t.Fatalf("begin 2fa: %v", err)
	}

	stored, err := svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.TwoFactorEnabled {
		t.Fatal("2FA must stay disabled until confirmed")
	}

	if err := svc.ConfirmTwoFactor(ctx, user.ID, "999999"); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}
	if err := svc.ConfirmTwoFactor(ctx, user.ID, code); err != nil {
		t.Fatalf("confirm 2fa: %v", err)
	}

	stored, err = svc.Get(ctx, user.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.TwoFactorEnabled {
		t.Fatal("expected 2FA enabled after confirmation")
	}
}
