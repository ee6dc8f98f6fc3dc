package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/SurajRakshe/Expense-Tracker/internal/domain"
	"github.com/SurajRakshe/Expense-Tracker/internal/repository"
)

var (
	ErrTitleRequired    = errors.New("transaction: title required")
	ErrCategoryNotFound = errors.New("transaction: category not found")
	ErrNotFound         = errors.New("transaction: not found")
)

// Input carries the mutable fields of a transaction.
type Input struct {
	Title      string
	Amount     float64
	Date       time.Time
	CategoryID string
}

// Service manages a user's income and expense entries. Reads and writes are
// scoped to the owning user; rows belonging to someone else behave as absent.
type Service struct {
	transactions repository.TransactionRepository
	categories   repository.CategoryRepository
	logger       *slog.Logger
}

// New constructs a Service.
func New(transactions repository.TransactionRepository, categories repository.CategoryRepository, logger *slog.Logger) Service {
	return Service{transactions: transactions, categories: categories, logger: logger}
}

// Create stores a new entry owned by userID.
func (s Service) Create(ctx context.Context, userID string, in Input) (*domain.Transaction, error) {
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	txn := &domain.Transaction{
		ID:         uuid.NewString(),
		UserID:     userID,
		CategoryID: in.CategoryID,
		Title:      in.Title,
		Amount:     in.Amount,
		Date:       in.Date,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.transactions.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return txn, nil
}

// Get returns one of the user's entries.
func (s Service) Get(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	return s.owned(ctx, userID, id)
}

// ListByUser returns the user's entries, newest first.
func (s Service) ListByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	return s.transactions.ListTransactionsByUser(ctx, userID)
}

// Update rewrites an entry the user owns.
func (s Service) Update(ctx context.Context, userID, id string, in Input) (*domain.Transaction, error) {
	txn, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, &in); err != nil {
		return nil, err
	}
	txn.Title = in.Title
	txn.Amount = in.Amount
	txn.Date = in.Date
	txn.CategoryID = in.CategoryID
	if err := s.transactions.UpdateTransaction(ctx, txn); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update transaction: %w", err)
	}
	return txn, nil
}

// Delete removes an entry the user owns.
func (s Service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.transactions.DeleteTransaction(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func (s Service) owned(ctx context.Context, userID, id string) (*domain.Transaction, error) {
	txn, err := s.transactions.GetTransactionByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load transaction: %w", err)
	}
	if txn.UserID != userID {
		return nil, ErrNotFound
	}
	return txn, nil
}

func (s Service) validate(ctx context.Context, in *Input) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return ErrTitleRequired
	}
	if in.Date.IsZero() {
		in.Date = time.Now().UTC()
	}
	if in.CategoryID != "" {
		if _, err := s.categories.GetCategoryByID(ctx, in.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrCategoryNotFound
			}
			return fmt.Errorf("load category: %w", err)
		}
	}
	return nil
}
