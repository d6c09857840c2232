package models

import "time"

// User represents a registered account. Email is the case-folded, immutable
// business key; PasswordHash is the bcrypt output, never the plaintext.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`

	// Pending password reset credential, at most one per user. A new reset
	// request overwrites the previous one; consumption nulls both fields.
	ResetToken        *string    `json:"-"`
	ResetTokenExpires *time.Time `json:"-"`
}
