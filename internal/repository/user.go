package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/retroconnect/idverify/internal/domain"
)

const userColumns = `id, email, username, password_hash, first_name, last_name, full_name,
	date_of_birth, gender, phone_number, business_address, postal_code, id_type,
	selfie_url, id_front_url, id_back_url, is_face_verified, face_match_score,
	status, role, created_at, updated_at`

type UserRepository struct {
	pool PgxPool
}

func NewUserRepository(pool PgxPool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO users (id, email, username, password_hash, first_name, last_name, full_name,
			date_of_birth, gender, phone_number, business_address, postal_code, id_type,
			selfie_url, id_front_url, id_back_url, is_face_verified, face_match_score,
			status, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		u.ID,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		u.FullName,
		u.DateOfBirth,
		u.Gender,
		u.PhoneNumber,
		u.BusinessAddress,
		u.PostalCode,
		string(u.IDType),
		u.SelfieURL,
		u.IDFrontURL,
		u.IDBackURL,
		u.IsFaceVerified,
		u.FaceMatchScore,
		string(u.Status),
		string(u.Role),
	).Scan(&u.CreatedAt, &u.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

	u, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.UserStatus) error {
	query := `UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("update user status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var idType, status, role string

	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.FullName,
		&u.DateOfBirth,
		&u.Gender,
		&u.PhoneNumber,
		&u.BusinessAddress,
		&u.PostalCode,
		&idType,
		&u.SelfieURL,
		&u.IDFrontURL,
		&u.IDBackURL,
		&u.IsFaceVerified,
		&u.FaceMatchScore,
		&status,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.IDType = domain.IDType(idType)
	u.Status = domain.UserStatus(status)
	u.Role = domain.UserRole(role)
	return &u, nil
}
