package twofactor

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Verifier checks a time-based one-time code against a stored secret.
// Services accept this interface so tests can substitute a stub.
type Verifier interface {
	Verify(secret, code string) bool
}

// TOTP implements Verifier using RFC 6238 time-based one-time passwords
// with base32-encoded secrets.
type TOTP struct {
	Issuer string
}

// Enrollment holds the material a user needs to set up an authenticator app.
type Enrollment struct {
	Secret string
	URL    string
}

// Generate produces a new base32 secret and otpauth provisioning URL for
// the given account name.
func (t TOTP) Generate(account string) (Enrollment, error) {
	issuer := t.Issuer
	if issuer == "" {
		issuer = "Varlixo"
	}
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return Enrollment{}, err
	}
	return Enrollment{Secret: key.Secret(), URL: key.URL()}, nil
}

// Verify reports whether code is currently valid for secret.
func (t TOTP) Verify(secret, code string) bool {
	return totp.Validate(code, secret)
}
