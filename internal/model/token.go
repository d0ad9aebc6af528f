package model

import "time"

const (
	TokenPurposeVerifyEmail   = "verify_email"
	TokenPurposeResetPassword = "reset_password"
)

// ActionToken is a single-use token mailed to a user for email verification
// or password reset.
type ActionToken struct {
	Token     string
	UserID    string
	Purpose   string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the token is past its expiry.
func (t *ActionToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
