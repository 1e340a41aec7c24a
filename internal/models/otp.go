package models

import "time"

const (
	OTPCodeMin = 100000
	OTPCodeMax = 999999
	OTPExpiry  = 10 * time.Minute
)

// OTPEntry is a one-time code issued to an email address. The ledger is
// shared by the user and admin flows, so Email is not tied to an account type.
type OTPEntry struct {
	ID        string
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the code has expired
func (o *OTPEntry) IsExpired() bool {
	return !time.Now().Before(o.ExpiresAt)
}

// OTPPurpose selects the email template used when a code is sent
type OTPPurpose string

const (
	OTPPurposeUserVerification OTPPurpose = "user_verification"
	OTPPurposeAdminLogin       OTPPurpose = "admin_login"
)
