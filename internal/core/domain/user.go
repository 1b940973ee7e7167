package domain

import "time"

// User models a registered account. Identity is immutable after
// registration; there are no profile update or delete operations.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
