package identity

import "time"

// KYC verification states carried on the user record. Withdrawals require
// StatusApproved.
const (
	KycNotSubmitted = "not_submitted"
	KycPending      = "pending"
	KycApproved     = "approved"
	KycRejected     = "rejected"
)

// Roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account holder.
type User struct {
	ID               string
	Email            string
	FirstName        string
	LastName         string
	PasswordHash     []byte
	Role             string
	KycStatus        string
	TwoFactorEnabled bool
	TwoFactorSecret  string
	ReferralCode     string
	ReferredBy       string
	TokenVersion     int
	CreatedAt        time.Time
}

// FullName returns the display name used in notifications.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// Registration captures data required to create an account.
type Registration struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	ReferralCode string
}
