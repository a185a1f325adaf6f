package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/feedback-hub/internal/apperr"
	"github.com/hongminglow/feedback-hub/internal/models"
	"github.com/hongminglow/feedback-hub/internal/storage"
)

const invalidCredentials = "invalid credentials"

// Service registers and authenticates users.
type Service struct {
	users  storage.UserStore
	tokens *TokenManager
	cost   int

	dummyHash []byte
}

// NewService constructs a Service hashing passwords with the given bcrypt cost.
// Logins for unknown emails are checked against a dummy hash of the same cost.
func NewService(users storage.UserStore, tokens *TokenManager, cost int) (*Service, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("feedbackhub-timing-equaliser"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Service{users: users, tokens: tokens, cost: cost, dummyHash: dummy}, nil
}

// Register creates a user and returns its id.
func (s *Service) Register(ctx context.Context, email, password string) (int64, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return 0, apperr.Validation("email and password are required", nil)
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return 0, apperr.Conflict("user already exists")
	case !errors.Is(err, storage.ErrNotFound):
		return 0, apperr.Internal(fmt.Errorf("lookup user: %w", err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return 0, apperr.Validation("password is too long", map[string]string{"password": "must be at most 72 bytes"})
		}
		return 0, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}

	created, err := s.users.CreateUser(ctx, models.User{Email: email, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return 0, apperr.Conflict("user already exists")
		}
		return 0, apperr.Internal(fmt.Errorf("create user: %w", err))
	}
	return created.ID, nil
}

// Login verifies the credentials and returns a signed bearer token.
// Unknown email and wrong password fail identically.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return "", apperr.Validation("email and password are required", nil)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return "", apperr.Authentication(invalidCredentials)
		}
		return "", apperr.Internal(fmt.Errorf("lookup user: %w", err))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", apperr.Authentication(invalidCredentials)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("sign token: %w", err))
	}
	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
