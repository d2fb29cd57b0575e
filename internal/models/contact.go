package models

import "time"

// Contact is an address-book entry owned by exactly one user.
type Contact struct {
	ID          int64      `json:"id" db:"id"`
	UserID      int64      `json:"user_id" db:"user_id"`
	FirstName   string     `json:"first_name" db:"first_name"`
	LastName    string     `json:"last_name" db:"last_name"`
	Email       string     `json:"email" db:"email"`
	Phone       string     `json:"phone" db:"phone"`
	Birthday    *time.Time `json:"birthday,omitempty" db:"birthday"`
	Description string     `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

// FullName is the display name used by the fullname substring filter.
func (c Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}
