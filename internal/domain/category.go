package domain

import "time"

// Category kinds.
const (
	CategoryTypeIncome  = "INCOME"
	CategoryTypeExpense = "EXPENSE"
)

// Category labels transactions as income or expense.
type Category struct {
	ID        string
	Name      string
	Type      string
	CreatedAt time.Time
}
