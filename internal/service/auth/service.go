package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/SurajRakshe/Expense-Tracker/internal/crypto"
	"github.com/SurajRakshe/Expense-Tracker/internal/domain"
	"github.com/SurajRakshe/Expense-Tracker/internal/repository"
	"github.com/SurajRakshe/Expense-Tracker/internal/token"
)

// Authentication failures surfaced to callers.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password;
	// callers must not be able to tell which.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrUnknownSubject     = errors.New("auth: unknown subject")
	ErrInvalidInput       = errors.New("auth: email and password required")
)

// Service handles registration, login, and bearer-token authorization.
type Service struct {
	users  repository.UserRepository
	tokens *token.Codec
	logger *slog.Logger
}

// New constructs a Service.
func New(users repository.UserRepository, tokens *token.Codec, logger *slog.Logger) Service {
	return Service{users: users, tokens: tokens, logger: logger}
}

// Login verifies credentials and mints a token with the account email as
// subject. It never mutates store state.
func (s Service) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a comparison so the unknown-email path costs the same as
			// a wrong password.
			crypto.VerifyPassword(crypto.DummyHash, password)
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("look up user: %w", err)
	}
	if !crypto.VerifyPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	signed, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	s.logger.Info("user logged in", "user_id", user.ID)
	return signed, nil
}

// Register creates an account. The existence check and the insert are not
// atomic; the unique index on users.email is the backstop and its conflict
// also surfaces as ErrEmailTaken.
func (s Service) Register(ctx context.Context, email, username, password string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidInput
	}
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}
	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Authorize verifies a bearer token and resolves its subject to a stored
// account. A token whose subject no longer exists yields ErrUnknownSubject.
func (s Service) Authorize(ctx context.Context, raw string) (*domain.User, error) {
	subject, err := s.tokens.Verify(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByEmail(ctx, subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnknownSubject
		}
		return nil, fmt.Errorf("resolve subject: %w", err)
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
