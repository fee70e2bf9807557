package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/retroconnect/idverify/internal/admin"
)

const dateLayout = "2006-01-02"

// StatsReader is implemented by admin.StatsService.
type StatsReader interface {
	GetVerificationMetrics(ctx context.Context, params admin.MetricsParams) (*admin.VerificationMetrics, error)
	GetLatencyMetrics(ctx context.Context, params admin.MetricsParams) (*admin.LatencyMetrics, error)
}

// MetricsHandler serves moderator reporting endpoints
type MetricsHandler struct {
	stats  StatsReader
	logger *slog.Logger
	now    func() time.Time
}

func NewMetricsHandler(stats StatsReader, logger *slog.Logger) *MetricsHandler {
	return &MetricsHandler{
		stats:  stats,
		logger: logger,
		now:    time.Now,
	}
}

// GetVerificationMetrics handles GET /v1/admin/metrics/verifications
func (h *MetricsHandler) GetVerificationMetrics(c *fiber.Ctx) error {
	params, err := h.parseMetricsParams(c)
	if err != nil {
		h.logger.Debug("invalid metrics params", "error", err)
		return err
	}

	metrics, err := h.stats.GetVerificationMetrics(c.UserContext(), params)
	if err != nil {
		h.logger.Error("failed to get verification metrics", "error", err)
		return fiber.ErrInternalServerError
	}

	return c.JSON(admin.MetricsResponse{
		Data: metrics,
		Meta: h.meta(params),
		Pagination: &admin.PaginationMeta{
			Total:  len(metrics.Timeline),
			Limit:  params.Limit,
			Offset: params.Offset,
		},
	})
}

// GetLatencyMetrics handles GET /v1/admin/metrics/latency
func (h *MetricsHandler) GetLatencyMetrics(c *fiber.Ctx) error {
	params, err := h.parseMetricsParams(c)
	if err != nil {
		h.logger.Debug("invalid metrics params", "error", err)
		return err
	}

	metrics, err := h.stats.GetLatencyMetrics(c.UserContext(), params)
	if err != nil {
		h.logger.Error("failed to get latency metrics", "error", err)
		return fiber.ErrInternalServerError
	}

	return c.JSON(admin.MetricsResponse{
		Data: metrics,
		Meta: h.meta(params),
	})
}

func (h *MetricsHandler) meta(params admin.MetricsParams) admin.ResponseMeta {
	return admin.ResponseMeta{
		Period:      admin.Period{Start: params.StartDate.Format(dateLayout), End: params.EndDate.Format(dateLayout)},
		GeneratedAt: h.now(),
	}
}

// parseMetricsParams reads start_date, end_date (inclusive, YYYY-MM-DD),
// granularity, limit and offset. The default window is the last 30 days.
func (h *MetricsHandler) parseMetricsParams(c *fiber.Ctx) (admin.MetricsParams, error) {
	now := h.now()
	startDate := c.Query("start_date", now.AddDate(0, 0, -30).Format(dateLayout))
	endDate := c.Query("end_date", now.Format(dateLayout))
	interval := c.Query("granularity", "day")
	limit := c.QueryInt("limit", 100)
	offset := c.QueryInt("offset", 0)

	if interval != "day" && interval != "week" && interval != "month" {
		interval = "day"
	}

	if limit > 1000 {
		limit = 1000
	}
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return admin.MetricsParams{}, fiber.NewError(fiber.StatusBadRequest, "invalid start_date format, expected YYYY-MM-DD")
	}

	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return admin.MetricsParams{}, fiber.NewError(fiber.StatusBadRequest, "invalid end_date format, expected YYYY-MM-DD")
	}

	if start.After(end) {
		return admin.MetricsParams{}, fiber.NewError(fiber.StatusBadRequest, "start_date must be before or equal to end_date")
	}

	return admin.MetricsParams{
		StartDate: start,
		EndDate:   end.Add(24*time.Hour - time.Nanosecond),
		Interval:  interval,
		Limit:     limit,
		Offset:    offset,
	}, nil
}
