package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/retroconnect/idverify/internal/domain"
)

type VerificationAttemptRepository struct {
	pool PgxPool
}

func NewVerificationAttemptRepository(pool PgxPool) *VerificationAttemptRepository {
	return &VerificationAttemptRepository{pool: pool}
}

func (r *VerificationAttemptRepository) Create(ctx context.Context, a *domain.VerificationAttempt) error {
	query := `
		INSERT INTO verification_attempts (id, user_ref, id_type, match, method, similarity, details, latency_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING created_at
	`

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	err := r.pool.QueryRow(ctx, query,
		a.ID,
		a.UserRef,
		a.IDType,
		a.Match,
		string(a.Method),
		a.Similarity,
		a.Details,
		a.LatencyMs,
	).Scan(&a.CreatedAt)

	if err != nil {
		return fmt.Errorf("create verification attempt: %w", err)
	}

	return nil
}

// ListByUserRef returns the most recent attempts first.
func (r *VerificationAttemptRepository) ListByUserRef(ctx context.Context, userRef string, limit int) ([]domain.VerificationAttempt, error) {
	query := `
		SELECT id, user_ref, id_type, match, method, similarity, details, latency_ms, created_at
		FROM verification_attempts
		WHERE user_ref = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, userRef, limit)
	if err != nil {
		return nil, fmt.Errorf("list verification attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]domain.VerificationAttempt, 0)
	for rows.Next() {
		var a domain.VerificationAttempt
		var method string
		if err := rows.Scan(&a.ID, &a.UserRef, &a.IDType, &a.Match, &method, &a.Similarity, &a.Details, &a.LatencyMs, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan verification attempt: %w", err)
		}
		a.Method = domain.VerificationMethod(method)
		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verification attempts: %w", err)
	}

	return attempts, nil
}
