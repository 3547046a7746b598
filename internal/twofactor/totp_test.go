package twofactor

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestGenerateAndVerify(t *testing.T) {
	tf := TOTP{Issuer: "Varlixo"}

	enrollment, err := tf.Generate("user@example.com")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if enrollment.Secret == "" {
		t.Fatal("expected non-empty secret")
	}
	if enrollment.URL == "" {
		t.Fatal("expected provisioning URL")
	}

	code, err := totp.GenerateCode(enrollment.Secret, time.Now())
	if err != nil {
		t.Fatalf("generate code: %v", err)
	}

	if !tf.Verify(enrollment.Secret, code) {
		t.Fatal("expected current code to verify")
	}
	if tf.Verify(enrollment.Secret, "000000") {
		t.Fatal("expected bogus code to fail")
	}
}
