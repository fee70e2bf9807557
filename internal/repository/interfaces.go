package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/retroconnect/idverify/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool used by repositories; pgxmock
// pools satisfy it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// UserRepositoryInterface defines operations for user profile data access
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error
}

// VerificationAttemptRepositoryInterface defines operations for attempt history
type VerificationAttemptRepositoryInterface interface {
	Create(ctx context.Context, attempt *domain.VerificationAttempt) error
	ListByUserRef(ctx context.Context, userRef string, limit int) ([]domain.VerificationAttempt, error)
}
