package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/SurajRakshe/Expense-Tracker/internal/domain"
	"github.com/SurajRakshe/Expense-Tracker/internal/repository"
)

// nullIfEmpty maps an optional identifier onto a nullable column.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// CreateTransaction inserts a transaction.
func (r *Repository) CreateTransaction(ctx context.Context, txn *domain.Transaction) error {
	const query = `INSERT INTO transactions (id, user_id, category_id, title, amount, occurred_on, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.pool.Exec(ctx, query, txn.ID, txn.UserID, nullIfEmpty(txn.CategoryID), txn.Title, txn.Amount, txn.Date, txn.CreatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

// GetTransactionByID fetches a transaction by identifier.
func (r *Repository) GetTransactionByID(ctx context.Context, id string) (*domain.Transaction, error) {
	const query = `SELECT id, user_id, category_id, title, amount, occurred_on, created_at
		FROM transactions WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return txn, nil
}

// ListTransactionsByUser returns the user's transactions, newest first.
func (r *Repository) ListTransactionsByUser(ctx context.Context, userID string) ([]domain.Transaction, error) {
	const query = `SELECT id, user_id, category_id, title, amount, occurred_on, created_at
		FROM transactions WHERE user_id = $1 ORDER BY occurred_on DESC, created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txns = append(txns, *txn)
	}
	return txns, rows.Err()
}

// UpdateTransaction rewrites mutable fields of a transaction.
func (r *Repository) UpdateTransaction(ctx context.Context, txn *domain.Transaction) error {
	const query = `UPDATE transactions
		SET category_id = $2, title = $3, amount = $4, occurred_on = $5
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, txn.ID, nullIfEmpty(txn.CategoryID), txn.Title, txn.Amount, txn.Date)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction by identifier.
func (r *Repository) DeleteTransaction(ctx context.Context, id string) error {
	const query = `DELETE FROM transactions WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		t          domain.Transaction
		categoryID *string
	)
	if err := row.Scan(&t.ID, &t.UserID, &categoryID, &t.Title, &t.Amount, &t.Date, &t.CreatedAt); err != nil {
		return nil, err
	}
	if categoryID != nil {
		t.CategoryID = *categoryID
	}
	return &t, nil
}
