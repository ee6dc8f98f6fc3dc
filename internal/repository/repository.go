package repository

import (
	"context"

	"github.com/SurajRakshe/Expense-Tracker/internal/domain"
)

// UserRepository persists tracker accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// CategoryRepository persists transaction categories.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	GetCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CategoryExistsByName(ctx context.Context, name string) (bool, error)
}

// TransactionRepository persists income and expense entries.
type TransactionRepository interface {
	CreateTransaction(ctx context.Context, txn *domain.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error)
	ListTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error)
	UpdateTransaction(ctx context.Context, txn *domain.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
}
