package dto

import "time"

type ContactRequest struct {
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Birthday    *time.Time `json:"birthday,omitempty"`
	Description string     `json:"description,omitempty"`
}
