package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/SurajRakshe/Expense-Tracker/internal/domain"
	"github.com/SurajRakshe/Expense-Tracker/internal/repository"
)

// CreateCategory inserts a category.
func (r *Repository) CreateCategory(ctx context.Context, category *domain.Category) error {
	const query = `INSERT INTO categories (id, name, type, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, query, category.ID, category.Name, category.Type, category.CreatedAt)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	const query = `SELECT id, name, type, created_at FROM categories ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// GetCategoryByID fetches a category by identifier.
func (r *Repository) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	const query = `SELECT id, name, type, created_at FROM categories WHERE id = $1`
	row := r.pool.QueryRow(ctx, query, id)
	var c domain.Category
	if err := row.Scan(&c.ID, &c.Name, &c.Type, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DeleteCategory removes a category by identifier.
func (r *Repository) DeleteCategory(ctx context.Context, id string) error {
	const query = `DELETE FROM categories WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// CategoryExistsByName reports whether a category with the name exists.
func (r *Repository) CategoryExistsByName(ctx context.Context, name string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM categories WHERE name = $1)`
	row := r.pool.QueryRow(ctx, query, name)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
