package account

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/retroconnect/idverify/internal/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func newTestService(repo *MockUserRepository) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, logger).WithCost(bcrypt.MinCost)
}

func TestService_SignUp(t *testing.T) {
	t.Run("hashes password and stores profile", func(t *testing.T) {
		repo := new(MockUserRepository)
		var stored *domain.User
		repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).
			Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.User) }).
			Return(nil)

		profile := &domain.User{Username: "juandc", Status: domain.UserStatusPendingApproval}
		user, err := newTestService(repo).SignUp(context.Background(), " juan@example.com ", "Secret#123", profile)

		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "juan@example.com", user.Email)
		assert.NotEqual(t, "Secret#123", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Secret#123")))
		assert.Empty(t, profile.PasswordHash, "caller profile must not be mutated")
		repo.AssertExpectations(t)
	})

	t.Run("missing credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		_, err := newTestService(repo).SignUp(context.Background(), "", "x", &domain.User{})

		var appErr *domain.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "BAD_REQUEST", appErr.Code)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("email taken passes through", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(domain.ErrEmailTaken)

		_, err := newTestService(repo).SignUp(context.Background(), "juan@example.com", "Secret#123", &domain.User{})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})
}

func TestService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Secret#123"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name     string
		user     *domain.User
		repoErr  error
		password string
		wantErr  error
	}{
		{
			name:     "valid password",
			user:     &domain.User{Email: "juan@example.com", PasswordHash: string(hash), Status: domain.UserStatusActive},
			password: "Secret#123",
		},
		{
			name:     "wrong password",
			user:     &domain.User{Email: "juan@example.com", PasswordHash: string(hash), Status: domain.UserStatusActive},
			password: "nope",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			repoErr:  domain.ErrUserNotFound,
			password: "Secret#123",
			wantErr:  ErrInvalidCredentials,
		},
		{
			name:     "repository failure",
			repoErr:  errors.New("connection refused"),
			password: "Secret#123",
			wantErr:  errors.New("connection refused"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			if tt.user != nil {
				repo.On("GetByEmail", mock.Anything, "juan@example.com").Return(tt.user, nil)
			} else {
				repo.On("GetByEmail", mock.Anything, "juan@example.com").Return(nil, tt.repoErr)
			}

			got, err := newTestService(repo).Authenticate(context.Background(), "juan@example.com", tt.password)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "juan@example.com", got.Email)
		})
	}
}

func TestService_Authenticate_Suspended(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Secret#123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := new(MockUserRepository)
	repo.On("GetByEmail", mock.Anything, "juan@example.com").
		Return(&domain.User{PasswordHash: string(hash), Status: domain.UserStatusSuspended}, nil)

	_, err = newTestService(repo).Authenticate(context.Background(), "juan@example.com", "Secret#123")

	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 403, appErr.StatusCode)
}
