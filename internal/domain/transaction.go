package domain

import "time"

// Transaction records a single income or expense entry for a user.
type Transaction struct {
	ID         string
	UserID     string
	CategoryID string
	Title      string
	Amount     float64
	Date       time.Time
	CreatedAt  time.Time
}
