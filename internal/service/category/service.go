package category

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
	ErrNameRequired = errors.New("category: name required")
	ErrInvalidType  = errors.New("category: type must be INCOME or EXPENSE")
	ErrNameTaken    = errors.New("category: name already exists")
)

// defaults seeded at startup; Investment is the only income category.
var defaults = []string{"Food", "Travel", "Health", "Investment"}

// Service manages transaction categories.
type Service struct {
	categories repository.CategoryRepository
	logger     *slog.Logger
}

// New constructs a Service.
func New(categories repository.CategoryRepository, logger *slog.Logger) Service {
	return Service{categories: categories, logger: logger}
}

// Create stores a new category.
func (s Service) Create(ctx context.Context, name, categoryType string) (*domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	categoryType = strings.ToUpper(strings.TrimSpace(categoryType))
	if categoryType != domain.CategoryTypeIncome && categoryType != domain.CategoryTypeExpense {
		return nil, ErrInvalidType
	}
	category := &domain.Category{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      categoryType,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.categories.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	return category, nil
}

// List returns all categories.
func (s Service) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.ListCategories(ctx)
}

// Delete removes a category by identifier.
func (s Service) Delete(ctx context.Context, id string) error {
	return s.categories.DeleteCategory(ctx, id)
}

// EnsureDefaults seeds the stock categories if they are missing.
func (s Service) EnsureDefaults(ctx context.Context) error {
	for _, name := range defaults {
		exists, err := s.categories.CategoryExistsByName(ctx, name)
		if err != nil {
			return fmt.Errorf("check category %q: %w", name, err)
		}
		if exists {
			continue
		}
		categoryType := domain.CategoryTypeExpense
		if strings.EqualFold(name, "Investment") {
			categoryType = domain.CategoryTypeIncome
		}
		category := &domain.Category{
			ID:        uuid.NewString(),
			Name:      name,
			Type:      categoryType,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.categories.CreateCategory(ctx, category); err != nil {
			// Another instance may have seeded it first.
			if errors.Is(err, repository.ErrConflict) {
				continue
			}
			return fmt.Errorf("seed category %q: %w", name, err)
		}
		s.logger.Info("seeded category", "name", name, "type", categoryType)
	}
	return nil
}
