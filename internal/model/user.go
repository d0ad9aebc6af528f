package model

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a user in the system. JSON field names follow the document
// layout the mobile clients already consume (uid, username, firstname, ...).
type User struct {
	ID            string    `json:"uid"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Firstname     string    `json:"firstname"`
	Lastname      string    `json:"lastname"`
	PasswordHash  string    `json:"-"` // Do not expose password hash in JSON responses
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"-"`
}

// UserProfile is the small projection the profile screen renders.
type UserProfile struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}
