package domain

import "time"

type User struct {
	ID           string
	Username     string
	Email        *string // nil when the deployment tracks usernames only
	PasswordHash string  // argon2 encoded, never the raw password
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// EmailOrEmpty returns the email if set, otherwise "".
func (u User) EmailOrEmpty() string {
	if u.Email == nil {
		return ""
	}
	return *u.Email
}
