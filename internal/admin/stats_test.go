package admin

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParams() MetricsParams {
	return MetricsParams{
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		Interval:  "day",
		Limit:     100,
	}
}

func TestStatsService_GetVerificationMetrics(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	params := testParams()
	mock.ExpectQuery("SELECT method, COUNT").
		WithArgs(params.StartDate, params.EndDate).
		WillReturnRows(pgxmock.NewRows([]string{"method", "count", "matched"}).
			AddRow("face", int64(6), int64(6)).
			AddRow("ocr", int64(3), int64(1)).
			AddRow("id_type_gate", int64(1), int64(0)))
	mock.ExpectQuery("date_trunc").
		WithArgs(params.Interval, params.StartDate, params.EndDate, params.Limit, params.Offset).
		WillReturnRows(pgxmock.NewRows([]string{"period", "total", "matched", "failed"}).
			AddRow("2026-01-02", int64(10), int64(7), int64(3)))

	svc := NewStatsService(mock, slog.Default())
	got, err := svc.GetVerificationMetrics(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Total)
	assert.Equal(t, int64(7), got.Matched)
	assert.InDelta(t, 0.7, got.MatchRate, 0.0001)
	assert.Equal(t, int64(3), got.ByMethod["ocr"])
	require.Len(t, got.Timeline, 1)
	assert.Equal(t, "2026-01-02", got.Timeline[0].Period)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsService_GetVerificationMetrics_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT method, COUNT").
		WillReturnRows(pgxmock.NewRows([]string{"method", "count", "matched"}))
	mock.ExpectQuery("date_trunc").
		WillReturnRows(pgxmock.NewRows([]string{"period", "total", "matched", "failed"}))

	svc := NewStatsService(mock, slog.Default())
	got, err := svc.GetVerificationMetrics(context.Background(), testParams())

	require.NoError(t, err)
	assert.Zero(t, got.MatchRate)
	assert.Empty(t, got.Timeline)
}

func TestStatsService_GetVerificationMetrics_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT method, COUNT").WillReturnError(errors.New("connection reset"))

	svc := NewStatsService(mock, slog.Default())
	_, err = svc.GetVerificationMetrics(context.Background(), testParams())

	assert.ErrorContains(t, err, "connection reset")
}

func TestStatsService_GetLatencyMetrics(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	params := testParams()
	mock.ExpectQuery("percentile_cont").
		WithArgs(params.StartDate, params.EndDate).
		WillReturnRows(pgxmock.NewRows([]string{"avg", "p50", "p95", "p99"}).
			AddRow(812.5, 700.0, 1900.0, 2600.0))

	svc := NewStatsService(mock, slog.Default())
	got, err := svc.GetLatencyMetrics(context.Background(), params)

	require.NoError(t, err)
	assert.InDelta(t, 812.5, got.AverageMs, 0.001)
	assert.InDelta(t, 2600, got.P99Ms, 0.001)
	assert.NoError(t, mock.ExpectationsWereMet())
}
