package category

import (
	"context"
	"errors"
	"io"
	"testing"

	"log/slog"

	"github.com/SurajRakshe/Expense-Tracker/internal/domain"
	"github.com/SurajRakshe/Expense-Tracker/internal/repository"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type categoryRepoMock struct {
	createFunc func(ctx context.Context, category *domain.Category) error
	listFunc   func(ctx context.Context) ([]domain.Category, error)
	getFunc    func(ctx context.Context, id string) (*domain.Category, error)
	deleteFunc func(ctx context.Context, id string) error
	existsFunc func(ctx context.Context, name string) (bool, error)
}

func (m categoryRepoMock) CreateCategory(ctx context.Context, category *domain.Category) error {
	if m.createFunc == nil {
		return nil
	}
	return m.createFunc(ctx, category)
}

func (m categoryRepoMock) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if m.listFunc == nil {
		return nil, nil
	}
	return m.listFunc(ctx)
}

func (m categoryRepoMock) GetCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	if m.getFunc == nil {
		return nil, repository.ErrNotFound
	}
	return m.getFunc(ctx, id)
}

func (m categoryRepoMock) DeleteCategory(ctx context.Context, id string) error {
	if m.deleteFunc == nil {
		return nil
	}
	return m.deleteFunc(ctx, id)
}

func (m categoryRepoMock) CategoryExistsByName(ctx context.Context, name string) (bool, error) {
	if m.existsFunc == nil {
		return false, nil
	}
	return m.existsFunc(ctx, name)
}

func TestCreateValidatesInput(t *testing.T) {
	svc := New(categoryRepoMock{}, newLogger())

	if _, err := svc.Create(context.Background(), "  ", "EXPENSE"); !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "Food", "SAVINGS"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestCreateNormalizesType(t *testing.T) {
	var saved *domain.Category
	repo := categoryRepoMock{
		createFunc: func(_ context.Context, category *domain.Category) error {
			saved = category
			return nil
		},
	}
	svc := New(repo, newLogger())

	created, err := svc.Create(context.Background(), " Food ", "expense")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Name != "Food" || created.Type != domain.CategoryTypeExpense {
		t.Fatalf("unexpected category: %+v", created)
	}
	if saved == nil || saved.ID == "" {
		t.Fatalf("expected persisted category with generated id")
	}
}

func TestCreateDuplicateName(t *testing.T) {
	repo := categoryRepoMock{
		createFunc: func(_ context.Context, _ *domain.Category) error {
			return repository.ErrConflict
		},
	}
	svc := New(repo, newLogger())

	if _, err := svc.Create(context.Background(), "Food", "EXPENSE"); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken, got %v", err)
	}
}

func TestEnsureDefaultsSeedsMissing(t *testing.T) {
	seeded := make(map[string]string)
	repo := categoryRepoMock{
		existsFunc: func(_ context.Context, name string) (bool, error) {
			return name == "Food", nil
		},
		createFunc: func(_ context.Context, category *domain.Category) error {
			seeded[category.Name] = category.Type
			return nil
		},
	}
	svc := New(repo, newLogger())

	if err := svc.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := seeded["Food"]; ok {
		t.Fatalf("existing category must not be reseeded")
	}
	if seeded["Travel"] != domain.CategoryTypeExpense || seeded["Health"] != domain.CategoryTypeExpense {
		t.Fatalf("expected expense defaults, got %v", seeded)
	}
	if seeded["Investment"] != domain.CategoryTypeIncome {
		t.Fatalf("expected Investment to be income, got %v", seeded)
	}
}

func TestEnsureDefaultsToleratesConcurrentSeed(t *testing.T) {
	repo := categoryRepoMock{
		createFunc: func(_ context.Context, _ *domain.Category) error {
			return repository.ErrConflict
		},
	}
	svc := New(repo, newLogger())

	if err := svc.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("conflict during seeding must not fail startup: %v", err)
	}
}
