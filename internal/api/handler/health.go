package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/retroconnect/idverify/internal/database"
)

const Version = "1.0.0"

type HealthHandler struct {
	db      database.Pinger
	started time.Time
}

// NewHealthHandler builds the probes. A nil db makes Ready always succeed.
func NewHealthHandler(db database.Pinger) *HealthHandler {
	return &HealthHandler{db: db, started: time.Now()}
}

type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version,omitempty"`
	UptimeSeconds int64             `json:"uptime_seconds,omitempty"`
	Checks        map[string]string `json:"checks,omitempty"`
}

// Health is the liveness probe; it never touches dependencies.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:        "ok",
		Version:       Version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}

// Ready pings Postgres and answers 503 when it is
// unreachable, so the load balancer stops routing verification traffic.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.db == nil {
		return c.JSON(HealthResponse{Status: "ready"})
	}

	if err := database.HealthCheck(c.UserContext(), h.db); err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status: "unavailable",
			Checks: map[string]string{"database": "unreachable"},
		})
	}
	return c.JSON(HealthResponse{
		Status: "ready",
		Checks: map[string]string{"database": "ok"},
	})
}
