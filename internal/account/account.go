// Package account creates credentialed user profiles once a registrant has
// been verified.
package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/retroconnect/idverify/internal/domain"
)

// ErrInvalidCredentials is returned by Authenticate for any mismatch.
var ErrInvalidCredentials = &domain.AppError{
	Code:       "INVALID_CREDENTIALS",
	Message:    "Invalid email or password",
	StatusCode: 401,
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type Service struct {
	users  UserRepositoryInterface
	cost   int
	logger *slog.Logger
}

func NewService(users UserRepositoryInterface, logger *slog.Logger) *Service {
	return &Service{
		users:  users,
		cost:   bcrypt.DefaultCost,
		logger: logger.With("component", "account"),
	}
}

// WithCost returns a copy hashing at the given bcrypt cost.
func (s *Service) WithCost(cost int) *Service {
	c := *s
	c.cost = cost
	return &c
}

// SignUp hashes the password and stores the profile with its credentials.
// The profile gets a fresh id.
func (s *Service) SignUp(ctx context.Context, email, password string, profile *domain.User) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.ErrBadRequest.WithMessage("Email and password are required.")
	}
	if profile == nil {
		return nil, domain.ErrBadRequest.WithMessage("Profile is required.")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := *profile
	user.ID = uuid.New()
	user.Email = email
	user.PasswordHash = string(hash)

	if err := s.users.Create(ctx, &user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "account created", "user_id", user.ID.String(), "status", string(user.Status))
	return &user, nil
}

// Authenticate checks a password against the stored hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.IsSuspended() {
		return nil, domain.ErrForbidden.WithMessage("This account has been suspended.")
	}

	return user, nil
}
