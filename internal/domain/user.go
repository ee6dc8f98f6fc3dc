package domain

import "time"

// User represents a tracker account. PasswordHash is never serialized.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash []byte
	CreatedAt    time.Time
}
