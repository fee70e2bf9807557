package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Querier is the read side of a pgx pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// StatsService reports on verification outcomes for moderators.
type StatsService struct {
	db     Querier
	logger *slog.Logger
}

func NewStatsService(db Querier, logger *slog.Logger) *StatsService {
	return &StatsService{
		db:     db,
		logger: logger,
	}
}

// GetVerificationMetrics counts attempts by outcome and decision method.
func (s *StatsService) GetVerificationMetrics(ctx context.Context, params MetricsParams) (*VerificationMetrics, error) {
	byMethod := make(map[string]int64)
	var total, matched int64

	rows, err := s.db.Query(ctx, `
		SELECT method, COUNT(*), COUNT(*) FILTER (WHERE match = true)
		FROM verification_attempts
		WHERE created_at BETWEEN $1 AND $2
		GROUP BY method
	`, params.StartDate, params.EndDate)
	if err != nil {
		return nil, fmt.Errorf("failed to count verification attempts: %w", err)
	}
	for rows.Next() {
		var method string
		var count, matchedCount int64
		if err := rows.Scan(&method, &count, &matchedCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan method counts: %w", err)
		}
		byMethod[method] = count
		total += count
		matched += matchedCount
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("method counts iteration error: %w", err)
	}

	timelineRows, err := s.db.Query(ctx, `
		SELECT
			date_trunc($1, created_at) as period,
			COUNT(*) as total,
			COUNT(*) FILTER (WHERE match = true) as matched,
			COUNT(*) FILTER (WHERE match = false) as failed
		FROM verification_attempts
		WHERE created_at BETWEEN $2 AND $3
		GROUP BY period
		ORDER BY period ASC
		LIMIT $4 OFFSET $5
	`, params.Interval, params.StartDate, params.EndDate, params.Limit, params.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query verification timeline: %w", err)
	}
	defer timelineRows.Close()

	timeline := make([]VerificationTimeline, 0)
	for timelineRows.Next() {
		var entry VerificationTimeline
		var period interface{}
		if err := timelineRows.Scan(&period, &entry.Total, &entry.Matched, &entry.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan verification timeline: %w", err)
		}
		entry.Period = fmt.Sprint(period)
		timeline = append(timeline, entry)
	}
	if err := timelineRows.Err(); err != nil {
		return nil, fmt.Errorf("verification timeline iteration error: %w", err)
	}

	var rate float64
	if total > 0 {
		rate = float64(matched) / float64(total)
	}

	return &VerificationMetrics{
		Total:     total,
		Matched:   matched,
		MatchRate: rate,
		ByMethod:  byMethod,
		Timeline:  timeline,
	}, nil
}

// GetLatencyMetrics returns decision latency percentiles for the period.
func (s *StatsService) GetLatencyMetrics(ctx context.Context, params MetricsParams) (*LatencyMetrics, error) {
	var m LatencyMetrics
	err := s.db.QueryRow(ctx, `
		SELECT
			COALESCE(AVG(latency_ms), 0),
			COALESCE(percentile_cont(0.50) WITHIN GROUP (ORDER BY latency_ms), 0),
			COALESCE(percentile_cont(0.95) WITHIN GROUP (ORDER BY latency_ms), 0),
			COALESCE(percentile_cont(0.99) WITHIN GROUP (ORDER BY latency_ms), 0)
		FROM verification_attempts
		WHERE created_at BETWEEN $1 AND $2
	`, params.StartDate, params.EndDate).Scan(&m.AverageMs, &m.P50Ms, &m.P95Ms, &m.P99Ms)
	if err != nil {
		return nil, fmt.Errorf("failed to query latency percentiles: %w", err)
	}
	return &m, nil
}
