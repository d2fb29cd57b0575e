package models

import "time"

// TemporaryCode is a short-lived, single-use numeric credential gating a
// password reset. A code is valid only while used_at is null and the expiry
// has not passed.
type TemporaryCode struct {
	ID          int64      `json:"id" db:"id"`
	Code        string     `json:"-" db:"code"`
	Description string     `json:"description" db:"description"`
	UserEmail   string     `json:"user_email" db:"user_email"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at" db:"expires_at"`
	UsedAt      *time.Time `json:"used_at,omitempty" db:"used_at"`
}
