package httpx

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"log/slog"

	"github.com/SurajRakshe/Expense-Tracker/internal/domain"
	"github.com/SurajRakshe/Expense-Tracker/internal/repository"
	"github.com/SurajRakshe/Expense-Tracker/internal/service/auth"
	"github.com/SurajRakshe/Expense-Tracker/internal/service/category"
	"github.com/SurajRakshe/Expense-Tracker/internal/service/transaction"
	"github.com/SurajRakshe/Expense-Tracker/internal/token"
)

// memRepo is an in-memory stand-in for the postgres repository.
type memRepo struct {
	mu           sync.Mutex
	users        map[string]*domain.User // keyed by email
	categories   map[string]*domain.Category
	transactions map[string]*domain.Transaction
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:        make(map[string]*domain.User),
		categories:   make(map[string]*domain.Category),
		transactions: make(map[string]*domain.Transaction),
	}
}

func (m *memRepo) CreateUser(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.Email]; ok {
		return repository.ErrConflict
	}
	clone := *user
	m.users[user.Email] = &clone
	return nil
}

func (m *memRepo) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (m *memRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.users[email]
	return ok, nil
}

func (m *memRepo) CreateCategory(_ context.Context, c *domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.categories {
		if existing.Name == c.Name {
			return repository.ErrConflict
		}
	}
	clone := *c
	m.categories[c.ID] = &clone
	return nil
}

func (m *memRepo) ListCategories(_ context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Category, 0, len(m.categories))
	for _, c := range m.categories {
		out = append(out, *c)
	}
	return out, nil
}

func (m *memRepo) GetCategoryByID(_ context.Context, id string) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *memRepo) DeleteCategory(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *memRepo) CategoryExistsByName(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.categories {
		if c.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRepo) CreateTransaction(_ context.Context, txn *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *txn
	m.transactions[txn.ID] = &clone
	return nil
}

func (m *memRepo) GetTransactionByID(_ context.Context, id string) (*domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	txn, ok := m.transactions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *txn
	return &clone, nil
}

func (m *memRepo) ListTransactionsByUser(_ context.Context, userID string) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Transaction, 0)
	for _, txn := range m.transactions {
		if txn.UserID == userID {
			out = append(out, *txn)
		}
	}
	return out, nil
}

func (m *memRepo) UpdateTransaction(_ context.Context, txn *domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[txn.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *txn
	m.transactions[txn.ID] = &clone
	return nil
}

func (m *memRepo) DeleteTransaction(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.transactions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.transactions, id)
	return nil
}

func newTestRouter(t *testing.T) (*Router, *memRepo, *token.Codec) {
	t.Helper()
	repo := newMemRepo()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	codec := token.NewCodec("test-secret", "expense-tracker", time.Minute)

	authSvc := auth.New(repo, codec, log)
	categorySvc := category.New(repo, log)
	txnSvc := transaction.New(repo, repo, log)

	router := NewRouter(log, authSvc, categorySvc, txnSvc, []string{"http://localhost:3000"}, nil)
	return router, repo, codec
}
